package internal

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

// textExtractor returns the upload bytes as text after a short random delay
func textExtractor() TextExtractorFunc {
	return func(ctx context.Context, image []byte, contentType string) (string, error) {
		select {
		case <-time.After(time.Duration(rand.Intn(20)) * time.Millisecond):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		if string(image) == "fail" {
			return "", errors.New("ocr unavailable")
		}
		return string(image), nil
	}
}

func imageUpload(source, text string) Upload {
	return Upload{Source: source, ContentType: "image/png", Data: []byte(text)}
}

func TestPipeline_EndToEnd(t *testing.T) {
	p := NewPipeline(textExtractor(), nil, 2)

	records, err := p.Run(context.Background(), []Upload{
		imageUpload("shot.png", "₹ 2,000\n15 March 2024, 9:30 PM\nTo: Aniket\nLunch"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Amount == nil || *rec.Amount != 2000 {
		t.Errorf("Amount = %v, want 2000", rec.Amount)
	}
	if rec.Date == nil || !rec.Date.Equal(ts("2024-03-15 21:30")) {
		t.Errorf("Date = %v, want 2024-03-15 21:30", rec.Date)
	}
	if rec.Recipient != "Aniket" {
		t.Errorf("Recipient = %q, want Aniket", rec.Recipient)
	}
	if rec.Category != "Travel" {
		t.Errorf("Category = %q, want Travel", rec.Category)
	}
	if rec.Source != "shot.png" {
		t.Errorf("Source = %q, want shot.png", rec.Source)
	}
	if !reflect.DeepEqual(rec.Flags, []Flag{FlagHighAmount}) {
		t.Errorf("Flags = %v, want [%s]", rec.Flags, FlagHighAmount)
	}
}

func TestPipeline_PreservesUploadOrder(t *testing.T) {
	p := NewPipeline(textExtractor(), nil, 8)

	uploads := []Upload{
		imageUpload("1.png", "₹ 100\n12 May 2024, 10:00 AM\nTo: Rapido"),
		imageUpload("2.png", "₹ 100\n12 May 2024, 10:00 AM\nTo: Rapido"),
		imageUpload("3.png", "₹ 120\n12 May 2024, 10:20 AM\nTo: Rapido"),
		imageUpload("4.png", "₹ 450\n12 May 2024, 8:00 PM\nTo: Swiggy"),
		imageUpload("5.png", "₹ 75\n13 May 2024, 9:00 AM\nTo: Local Shop"),
	}

	// Repeat to give the random delays a chance to reorder completions
	for range 5 {
		records, err := p.Run(context.Background(), uploads)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != len(uploads) {
			t.Fatalf("expected %d records, got %d", len(uploads), len(records))
		}
		for i, rec := range records {
			if rec.Source != uploads[i].Source {
				t.Fatalf("record %d has source %q, want %q", i, rec.Source, uploads[i].Source)
			}
		}

		if len(records[0].Flags) != 0 {
			t.Errorf("first record flags = %v, want none", records[0].Flags)
		}
		expected := []Flag{FlagDuplicate, FlagHighFrequency}
		if !reflect.DeepEqual(records[1].Flags, expected) {
			t.Errorf("second record flags = %v, want %v", records[1].Flags, expected)
		}
		if !reflect.DeepEqual(records[2].Flags, []Flag{FlagHighFrequency}) {
			t.Errorf("third record flags = %v, want HIGH FREQUENCY", records[2].Flags)
		}
		if len(records[3].Flags) != 0 || len(records[4].Flags) != 0 {
			t.Errorf("unrelated records flagged: %v %v", records[3].Flags, records[4].Flags)
		}
		if records[4].Category != Uncategorized {
			t.Errorf("Category = %q, want %q", records[4].Category, Uncategorized)
		}
	}
}

func TestPipeline_OCRFailureYieldsMissingData(t *testing.T) {
	p := NewPipeline(textExtractor(), nil, 2)

	records, err := p.Run(context.Background(), []Upload{
		imageUpload("ok.png", "₹ 250\n12 May 2024, 1:05 PM\nTo: Swiggy"),
		imageUpload("broken.png", "fail"),
	})
	if err != nil {
		t.Fatalf("OCR failures must not fail the batch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	broken := records[1]
	if broken.Source != "broken.png" {
		t.Errorf("Source = %q, want broken.png", broken.Source)
	}
	if broken.Amount != nil || broken.Date != nil || broken.Recipient != "" {
		t.Errorf("expected empty fields, got %+v", broken)
	}
	if broken.Category != Uncategorized {
		t.Errorf("Category = %q, want %q", broken.Category, Uncategorized)
	}
	if !reflect.DeepEqual(broken.Flags, []Flag{FlagMissingData}) {
		t.Errorf("Flags = %v, want [%s]", broken.Flags, FlagMissingData)
	}
}

func TestPipeline_EmptyBatch(t *testing.T) {
	p := NewPipeline(textExtractor(), nil, 2)

	records, err := p.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestPipeline_TranscriptsSkipOCR(t *testing.T) {
	var calls atomic.Int32
	extractor := TextExtractorFunc(func(ctx context.Context, image []byte, contentType string) (string, error) {
		calls.Add(1)
		return string(image), nil
	})
	p := NewPipeline(extractor, nil, 2)

	transcript := "₹ 300\nTo: Zomato"
	records, err := p.Run(context.Background(), []Upload{
		{Source: "a.txt", Transcript: &transcript},
		imageUpload("b.png", "₹ 40\nTo: Auto stand"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 OCR call, got %d", calls.Load())
	}
	if records[0].Category != "Food" || records[1].Category != "Travel" {
		t.Errorf("categories = %q, %q", records[0].Category, records[1].Category)
	}
}

func TestPipeline_NilExtractor(t *testing.T) {
	p := NewPipeline(nil, nil, 0)

	records, err := p.Run(context.Background(), []Upload{imageUpload("a.png", "₹ 300")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(records[0].Flags, []Flag{FlagMissingData}) {
		t.Errorf("Flags = %v, want [%s]", records[0].Flags, FlagMissingData)
	}
}

func TestPipeline_Cancelled(t *testing.T) {
	p := NewPipeline(textExtractor(), nil, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, []Upload{imageUpload("a.png", "₹ 300")})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPipeline_UsesConfig(t *testing.T) {
	useDefaults := false
	cfg := &Config{
		UseDefaultCategories: &useDefaults,
		Categories:           []CategoryRule{{Keyword: "chai", Category: "Snacks"}},
		Anomalies:            AnomalyRules{HighAmountLimit: 100},
	}
	p := NewPipeline(textExtractor(), cfg, 1)

	records, err := p.Run(context.Background(), []Upload{
		imageUpload("a.png", "₹ 150\n12 May 2024, 4:00 PM\nTo: Chai Point"),
		imageUpload("b.png", "₹ 150\n12 May 2024, 6:00 PM\nTo: Swiggy"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records[0].Category != "Snacks" {
		t.Errorf("Category = %q, want Snacks", records[0].Category)
	}
	if records[1].Category != Uncategorized {
		t.Errorf("Category = %q, want %q", records[1].Category, Uncategorized)
	}
	if !reflect.DeepEqual(records[0].Flags, []Flag{FlagHighAmount}) {
		t.Errorf("Flags = %v, want [%s]", records[0].Flags, FlagHighAmount)
	}
}
