package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// JSONOutput is the root JSON output object
type JSONOutput struct {
	Records []JSONRecord `json:"records"`
	Summary Summary      `json:"summary"`
}

// JSONRecord is the JSON output format for a record
type JSONRecord struct {
	Date      string   `json:"date,omitempty"` // 2006-01-02T15:04
	Amount    *int     `json:"amount,omitempty"`
	Recipient string   `json:"recipient"`
	Comment   string   `json:"comment"`
	Category  string   `json:"category"`
	Source    string   `json:"source"`
	Flags     []string `json:"flags"`
}

// Summary contains aggregate statistics of a batch
type Summary struct {
	Count      int            `json:"count"`
	Flagged    int            `json:"flagged"`
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
}

// Summarize counts records and totals the amounts that were found
func Summarize(records []ExpenseRecord) Summary {
	s := Summary{Count: len(records), ByCategory: make(map[string]int)}
	for _, rec := range records {
		if len(rec.Flags) > 0 {
			s.Flagged++
		}
		if rec.Amount == nil {
			continue
		}
		s.Total += *rec.Amount
		s.ByCategory[rec.Category] += *rec.Amount
	}
	return s
}

// ToJSONRecords converts records to their JSON output form
func ToJSONRecords(records []ExpenseRecord) []JSONRecord {
	out := make([]JSONRecord, 0, len(records))
	for _, rec := range records {
		jr := JSONRecord{
			Amount:    rec.Amount,
			Recipient: rec.Recipient,
			Comment:   rec.Comment,
			Category:  rec.Category,
			Source:    rec.Source,
			Flags:     make([]string, 0, len(rec.Flags)),
		}
		if rec.Date != nil {
			jr.Date = rec.Date.Format("2006-01-02T15:04")
		}
		for _, f := range rec.Flags {
			jr.Flags = append(jr.Flags, string(f))
		}
		out = append(out, jr)
	}
	return out
}

// PrintRecordsJSON outputs records in JSON format
func PrintRecordsJSON(w io.Writer, records []ExpenseRecord) error {
	output := JSONOutput{
		Records: ToJSONRecords(records),
		Summary: Summarize(records),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// PrintRecordsTable outputs records as a formatted table followed by per-category totals
func PrintRecordsTable(w io.Writer, records []ExpenseRecord, rupee Rupee) {
	summary := Summarize(records)
	fmt.Fprintf(w, "Extracted %d records (%d flagged)\n\n", summary.Count, summary.Flagged)
	if len(records) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Date", "Amount", "Recipient", "Comment", "Category", "Source", "Flags"})

	for _, rec := range records {
		dateStr := text.FgHiBlack.Sprint("-")
		if rec.Date != nil {
			dateStr = rec.Date.Format("2006-01-02 15:04")
		}
		t.AppendRow(table.Row{
			dateStr,
			rupee.FormatOptional(rec.Amount),
			rec.Recipient,
			truncate(rec.Comment, 30),
			rec.Category,
			rec.Source,
			colorFlags(rec.Flags),
		})
	}

	t.AppendSeparator()
	t.AppendFooter(table.Row{text.Bold.Sprint("Total"), text.Bold.Sprint(rupee.Format(summary.Total)), "", "", "", "", ""})

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	t.Render()

	printCategoryTotals(w, summary, rupee)
}

func printCategoryTotals(w io.Writer, summary Summary, rupee Rupee) {
	if len(summary.ByCategory) == 0 {
		return
	}
	categories := make([]string, 0, len(summary.ByCategory))
	for c := range summary.ByCategory {
		categories = append(categories, c)
	}
	// Highest spend first, then by name
	sort.Slice(categories, func(i, j int) bool {
		ci, cj := summary.ByCategory[categories[i]], summary.ByCategory[categories[j]]
		if ci != cj {
			return ci > cj
		}
		return categories[i] < categories[j]
	})

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Category", "Total"})
	for _, c := range categories {
		t.AppendRow(table.Row{c, rupee.Format(summary.ByCategory[c])})
	}
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	fmt.Fprintln(w)
	t.Render()
}

func colorFlags(flags []Flag) string {
	s := ""
	for i, f := range flags {
		if i > 0 {
			s += ", "
		}
		switch f {
		case FlagDuplicate, FlagMissingData:
			s += text.FgRed.Sprint(string(f))
		default:
			s += text.FgYellow.Sprint(string(f))
		}
	}
	return s
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-2]) + ".."
}
