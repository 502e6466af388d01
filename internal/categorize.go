package internal

import "strings"

// Categorizer assigns a spending category from raw OCR text
type Categorizer struct {
	rules []CategoryRule
}

// NewCategorizer creates a categorizer that tries rules in the given order
func NewCategorizer(rules []CategoryRule) *Categorizer {
	normalized := make([]CategoryRule, 0, len(rules))
	for _, r := range rules {
		keyword := strings.ToLower(r.Keyword)
		if keyword == "" {
			continue
		}
		normalized = append(normalized, CategoryRule{Keyword: keyword, Category: r.Category})
	}
	return &Categorizer{rules: normalized}
}

// Categorize returns the category of the first rule whose keyword occurs in the text.
// Keywords match as plain substrings, so "auto" also matches "automatic".
func (c *Categorizer) Categorize(text string) string {
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		if strings.Contains(lower, r.Keyword) {
			return r.Category
		}
	}
	return Uncategorized
}
