package internal

import (
	"strings"
	"time"
)

// Flag marks a record as suspicious or incomplete
type Flag string

const (
	FlagDuplicate     Flag = "DUPLICATE"
	FlagMissingData   Flag = "MISSING DATA"
	FlagHighAmount    Flag = "DUBIOUS (HIGH AMOUNT)"
	FlagUnusualTime   Flag = "DUBIOUS (UNUSUAL TIME)"
	FlagHighFrequency Flag = "DUBIOUS (HIGH FREQUENCY)"
)

// Uncategorized is used when no keyword rule matches
const Uncategorized = "Uncategorized"

// Fields is the partial record produced from raw OCR text
type Fields struct {
	Date      *time.Time
	Amount    *int
	Recipient string
	Comment   string
}

// ExpenseRecord is one parsed payment screenshot
type ExpenseRecord struct {
	Date      *time.Time `json:"date"`
	Amount    *int       `json:"amount"`
	Recipient string     `json:"recipient"`
	Comment   string     `json:"comment"`
	Category  string     `json:"category"`
	Source    string     `json:"source"`
	Flags     []Flag     `json:"flags"`
}

// FlagsString renders the flags the way they appear in the spreadsheet
func (r ExpenseRecord) FlagsString() string {
	parts := make([]string, len(r.Flags))
	for i, f := range r.Flags {
		parts[i] = string(f)
	}
	return strings.Join(parts, ", ")
}

// Upload is one image handed to the pipeline, in upload order
type Upload struct {
	Source      string
	ContentType string
	Data        []byte

	// Transcript, when non-nil, is used as the OCR text and Data is never
	// sent to the text extractor.
	Transcript *string
}
