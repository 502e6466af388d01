package internal

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleSuggestion is a candidate keyword rule for recipients that no rule matched
type RuleSuggestion struct {
	Keyword     string
	Recipient   string // display name, most recent spelling
	Occurrences int
	Total       int // sum of amounts that were found
}

// SuggestCategoryRules looks at uncategorized records and proposes one keyword
// per distinct recipient, most frequent first.
func SuggestCategoryRules(records []ExpenseRecord) []RuleSuggestion {
	byKeyword := make(map[string]*RuleSuggestion)
	for _, rec := range records {
		if rec.Category != Uncategorized || rec.Recipient == "" {
			continue
		}
		keyword := suggestKeyword(rec.Recipient)
		if keyword == "" {
			continue
		}
		s, ok := byKeyword[keyword]
		if !ok {
			s = &RuleSuggestion{Keyword: keyword}
			byKeyword[keyword] = s
		}
		s.Recipient = rec.Recipient
		s.Occurrences++
		if rec.Amount != nil {
			s.Total += *rec.Amount
		}
	}

	suggestions := make([]RuleSuggestion, 0, len(byKeyword))
	for _, s := range byKeyword {
		suggestions = append(suggestions, *s)
	}
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Occurrences != suggestions[j].Occurrences {
			return suggestions[i].Occurrences > suggestions[j].Occurrences
		}
		return suggestions[i].Keyword < suggestions[j].Keyword
	})
	return suggestions
}

// suggestKeyword uses the first word of the recipient that is long enough to be
// specific. Very short words would match far too much text.
func suggestKeyword(recipient string) string {
	for _, word := range strings.Fields(strings.ToLower(recipient)) {
		word = strings.Trim(word, ".,:;-'\"()")
		if len([]rune(word)) >= 4 {
			return word
		}
	}
	return ""
}

// FormatSuggestionsYAML renders suggestions as a config snippet with empty categories to fill in
func FormatSuggestionsYAML(suggestions []RuleSuggestion) (string, error) {
	if len(suggestions) == 0 {
		return "", nil
	}
	rules := make([]CategoryRule, 0, len(suggestions))
	for _, s := range suggestions {
		rules = append(rules, CategoryRule{Keyword: s.Keyword, Category: ""}) // Empty category as placeholder
	}
	data, err := yaml.Marshal(Config{Categories: rules})
	if err != nil {
		return "", fmt.Errorf("marshaling suggestions: %w", err)
	}
	return string(data), nil
}
