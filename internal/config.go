package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CategoryRule maps a keyword found anywhere in the OCR text to a category
type CategoryRule struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
}

// DefaultCategoryRules is the built-in keyword list. Order is significant:
// the first keyword found in the text decides the category.
// These are included unless disabled via use_default_categories: false
var DefaultCategoryRules = []CategoryRule{
	{Keyword: "rapido", Category: "Travel"},
	{Keyword: "auto", Category: "Travel"},
	{Keyword: "zomato", Category: "Food"},
	{Keyword: "swiggy", Category: "Food"},
	{Keyword: "fooding", Category: "Food"},
	{Keyword: "hardware", Category: "Material"},
	{Keyword: "paint", Category: "Material"},
	{Keyword: "rent", Category: "Housing"},
	{Keyword: "bhupendra", Category: "Personal"},
	{Keyword: "aniket", Category: "Travel"},
}

// AnomalyRules holds the thresholds used when flagging records
type AnomalyRules struct {
	// HighAmountMultiple flags round amounts (multiples of this value)
	HighAmountMultiple int `yaml:"high_amount_multiple,omitempty"`
	// HighAmountLimit flags amounts strictly above this value
	HighAmountLimit int `yaml:"high_amount_limit,omitempty"`
	// EarliestHour and LatestHour bound the usual payment hours (inclusive)
	EarliestHour *int `yaml:"earliest_hour,omitempty"`
	LatestHour   *int `yaml:"latest_hour,omitempty"`
	// FrequencyWindow is the minimum gap between two payments to the same recipient
	FrequencyWindow time.Duration `yaml:"frequency_window,omitempty"`
}

// DefaultAnomalyRules returns the stock thresholds
func DefaultAnomalyRules() AnomalyRules {
	earliest, latest := 6, 22
	return AnomalyRules{
		HighAmountMultiple: 1000,
		HighAmountLimit:    10000,
		EarliestHour:       &earliest,
		LatestHour:         &latest,
		FrequencyWindow:    time.Hour,
	}
}

// withDefaults fills every unset threshold from DefaultAnomalyRules
func (r AnomalyRules) withDefaults() AnomalyRules {
	d := DefaultAnomalyRules()
	if r.HighAmountMultiple <= 0 {
		r.HighAmountMultiple = d.HighAmountMultiple
	}
	if r.HighAmountLimit <= 0 {
		r.HighAmountLimit = d.HighAmountLimit
	}
	if r.EarliestHour == nil {
		r.EarliestHour = d.EarliestHour
	}
	if r.LatestHour == nil {
		r.LatestHour = d.LatestHour
	}
	if r.FrequencyWindow <= 0 {
		r.FrequencyWindow = d.FrequencyWindow
	}
	return r
}

type Config struct {
	// UseDefaultCategories controls whether the built-in keyword rules are used.
	// Defaults to true.
	UseDefaultCategories *bool `yaml:"use_default_categories,omitempty"`

	// Categories are extra keyword rules, matched before the defaults
	Categories []CategoryRule `yaml:"categories,omitempty"`

	// Anomalies overrides the flagging thresholds
	Anomalies AnomalyRules `yaml:"anomalies,omitempty"`
}

// DefaultConfigPath returns the default config file path (~/.expense-extractor/config.yaml)
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".expense-extractor", "config.yaml")
}

// NewDefaultConfig creates a config with only the built-in rules.
// Use this when no config file exists.
func NewDefaultConfig() *Config {
	return &Config{Anomalies: DefaultAnomalyRules()}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	for i, rule := range cfg.Categories {
		keyword := strings.ToLower(strings.TrimSpace(rule.Keyword))
		if keyword == "" {
			return nil, fmt.Errorf("category rule %d: keyword is empty", i+1)
		}
		if strings.TrimSpace(rule.Category) == "" {
			return nil, fmt.Errorf("category rule %q: category is empty", rule.Keyword)
		}
		cfg.Categories[i].Keyword = keyword
	}

	cfg.Anomalies = cfg.Anomalies.withDefaults()
	if *cfg.Anomalies.EarliestHour < 0 || *cfg.Anomalies.LatestHour > 23 || *cfg.Anomalies.EarliestHour > *cfg.Anomalies.LatestHour {
		return nil, fmt.Errorf("invalid usual hours %d-%d", *cfg.Anomalies.EarliestHour, *cfg.Anomalies.LatestHour)
	}

	return &cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CategoryRules returns the effective rule list: user rules first, then the defaults
func (c *Config) CategoryRules() []CategoryRule {
	if c == nil {
		return DefaultCategoryRules
	}
	useDefaults := c.UseDefaultCategories == nil || *c.UseDefaultCategories
	rules := make([]CategoryRule, 0, len(c.Categories)+len(DefaultCategoryRules))
	rules = append(rules, c.Categories...)
	if useDefaults {
		rules = append(rules, DefaultCategoryRules...)
	}
	return rules
}

// AnomalyRules returns the effective thresholds
func (c *Config) AnomalyRules() AnomalyRules {
	if c == nil {
		return DefaultAnomalyRules()
	}
	return c.Anomalies.withDefaults()
}
