package internal

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gigurra/expense-extractor/internal/logger"
)

// TextExtractor turns an image into raw text (OCR)
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte, contentType string) (string, error)
}

// TextExtractorFunc is a function that implements TextExtractor
type TextExtractorFunc func(ctx context.Context, image []byte, contentType string) (string, error)

func (f TextExtractorFunc) ExtractText(ctx context.Context, image []byte, contentType string) (string, error) {
	return f(ctx, image, contentType)
}

// DefaultWorkers is the number of concurrent OCR calls when none is configured
const DefaultWorkers = 4

// Pipeline turns a batch of uploads into expense records
type Pipeline struct {
	extractor   TextExtractor
	categorizer *Categorizer
	rules       AnomalyRules
	workers     int
}

// NewPipeline creates a pipeline. extractor may be nil if every upload carries a transcript.
func NewPipeline(extractor TextExtractor, cfg *Config, workers int) *Pipeline {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Pipeline{
		extractor:   extractor,
		categorizer: NewCategorizer(cfg.CategoryRules()),
		rules:       cfg.AnomalyRules(),
		workers:     workers,
	}
}

// Run processes the uploads as one batch. OCR may run concurrently, but
// records are assembled and flagged strictly in upload order.
// Only context cancellation makes Run fail; a failed OCR call yields an
// empty text and therefore a record with missing data.
func (p *Pipeline) Run(ctx context.Context, uploads []Upload) ([]ExpenseRecord, error) {
	log := logger.FromContext(ctx).With().Str("batch", uuid.NewString()).Logger()
	log.Info().Int("uploads", len(uploads)).Msg("Processing batch")

	texts, err := p.extractTexts(ctx, log, uploads)
	if err != nil {
		return nil, err
	}

	state := NewBatchState()
	records := make([]ExpenseRecord, 0, len(uploads))
	for i, up := range uploads {
		rec := p.Assemble(up.Source, texts[i], state)
		log.Debug().
			Str("source", rec.Source).
			Str("category", rec.Category).
			Str("flags", rec.FlagsString()).
			Msg("Assembled record")
		records = append(records, rec)
	}

	log.Info().Int("records", len(records)).Msg("Batch complete")
	return records, nil
}

// Assemble builds one record from OCR text: parse, categorize, then flag against state.
func (p *Pipeline) Assemble(source, text string, state *BatchState) ExpenseRecord {
	fields := ExtractFields(text)
	rec := ExpenseRecord{
		Date:      fields.Date,
		Amount:    fields.Amount,
		Recipient: fields.Recipient,
		Comment:   fields.Comment,
		Category:  p.categorizer.Categorize(text),
		Source:    source,
	}
	rec.Flags = DetectAnomalies(rec, state, p.rules)
	return rec
}

// extractTexts returns the text of every upload, indexed like uploads
func (p *Pipeline) extractTexts(ctx context.Context, log zerolog.Logger, uploads []Upload) ([]string, error) {
	texts := make([]string, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, up := range uploads {
		if up.Transcript != nil {
			texts[i] = *up.Transcript
			continue
		}
		if p.extractor == nil {
			log.Warn().Str("source", up.Source).Msg("No OCR engine configured, treating as empty text")
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := p.extractor.ExtractText(gctx, up.Data, up.ContentType)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Warn().Err(err).Str("source", up.Source).Msg("OCR failed, treating as empty text")
				return nil
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	return texts, nil
}
