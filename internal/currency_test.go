package internal

import "testing"

func TestRupee_Format(t *testing.T) {
	r := NewRupee()
	tests := []struct {
		amount   int
		expected string
	}{
		{0, "₹0"},
		{99, "₹99"},
		{1500, "₹1,500"},
		{2000, "₹2,000"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := r.Format(tt.amount)
			if got != tt.expected {
				t.Errorf("Format(%d) = %q, want %q", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestRupee_FormatOptional(t *testing.T) {
	r := NewRupee()
	if got := r.FormatOptional(nil); got != "-" {
		t.Errorf("FormatOptional(nil) = %q, want -", got)
	}
	amount := 250
	if got := r.FormatOptional(&amount); got != "₹250" {
		t.Errorf("FormatOptional(250) = %q, want ₹250", got)
	}
}
