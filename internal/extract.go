package internal

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateLayout is the only layout accepted for payment timestamps,
// e.g. "15 March 2024, 9:30 PM"
const dateLayout = "2 January 2006, 3:04 PM"

var (
	amountPattern    = regexp.MustCompile(`₹[\s\p{Z}]?(\d+[\d,]*)`)
	datePattern      = regexp.MustCompile(`\d{1,2} [\p{L}\p{N}_]+ \d{4},? \d{1,2}:\d{2}(?: [APap][Mm])?`)
	recipientPattern = regexp.MustCompile(`(?m)^To:? (.*)`)
)

// ExtractFields parses raw OCR text into a partial record.
// Every field is matched independently and a miss leaves that field absent or empty.
func ExtractFields(text string) Fields {
	return Fields{
		Date:      ExtractDate(text),
		Amount:    ExtractAmount(text),
		Recipient: ExtractRecipient(text),
		Comment:   ExtractComment(text),
	}
}

// ExtractAmount returns the first rupee amount in the text with comma
// separators removed, or nil if there is none.
func ExtractAmount(text string) *int {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	amount, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		// only reachable on overflow
		return nil
	}
	return &amount
}

// ExtractDate returns the first payment timestamp in the text, or nil when
// nothing date-shaped is found or the match does not fit dateLayout.
func ExtractDate(text string) *time.Time {
	match := datePattern.FindString(text)
	if match == "" {
		return nil
	}
	if clockHour(match) == 0 {
		return nil
	}
	// am/pm is accepted in any case
	if n := len(match); n > 3 && match[n-3] == ' ' {
		match = match[:n-2] + strings.ToUpper(match[n-2:])
	}
	t, err := time.Parse(dateLayout, match)
	if err != nil {
		return nil
	}
	return &t
}

// clockHour returns the hour digits of a date match. time.Parse accepts 0
// for 12-hour clocks, but a payment time is only valid for hours 1-12.
func clockHour(match string) int {
	colon := strings.LastIndexByte(match, ':')
	start := colon
	for start > 0 && match[start-1] >= '0' && match[start-1] <= '9' {
		start--
	}
	hour, err := strconv.Atoi(match[start:colon])
	if err != nil {
		return -1
	}
	return hour
}

// ExtractRecipient returns the rest of the first line starting with "To" or "To:".
func ExtractRecipient(text string) string {
	m := recipientPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ExtractComment returns the line right after the first line.
func ExtractComment(text string) string {
	idx := strings.Index(text, "\n")
	if idx == -1 {
		return ""
	}
	rest := text[idx+1:]
	if end := strings.Index(rest, "\n"); end != -1 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
