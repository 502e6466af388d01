package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/rs/zerolog"

	"github.com/gigurra/expense-extractor/internal"
	"github.com/gigurra/expense-extractor/internal/logger"
	"github.com/gigurra/expense-extractor/internal/ocr"
	"github.com/gigurra/expense-extractor/internal/web"
)

type Params struct {
	Files       []string `descr:"Screenshots or directories of screenshots, in upload order. Prefix with a format to skip OCR (text:ocr.txt, simple-json:batch.json)" positional:"true" optional:"true"`
	Out         string   `descr:"Spreadsheet to write" default:"expenses.xlsx"`
	Output      string   `descr:"Console output format" alts:"table,json,none" strict:"true" default:"table"`
	Config      string   `descr:"Config file (default: ~/.expense-extractor/config.yaml)" optional:"true"`
	Engine      string   `descr:"OCR engine" alts:"ocrspace,gemini" strict:"true" default:"ocrspace"`
	OCRSpaceURL string   `name:"ocrspace-url" descr:"OCR.Space parse endpoint" default:"https://api.ocr.space/parse/image"`
	OCRSpaceKey string   `name:"ocrspace-key" descr:"OCR.Space API key" env:"OCR_SPACE_API_KEY" default:"helloworld"`
	GeminiKey   string   `name:"gemini-key" descr:"Google Gemini API key" env:"GEMINI_API_KEY" optional:"true"`
	GeminiModel string   `name:"gemini-model" descr:"Google Gemini model name" default:"gemini-2.5-flash"`
	Workers     int      `descr:"Concurrent OCR requests" default:"4"`
	Serve       string   `descr:"Serve the upload page on this address (e.g. :8080) instead of processing files" optional:"true"`
	AuthUser    string   `name:"auth-user" descr:"Basic auth username for --serve" env:"EXPENSE_AUTH_USER" optional:"true"`
	AuthPass    string   `name:"auth-pass" descr:"Basic auth password for --serve" env:"EXPENSE_AUTH_PASS" optional:"true"`
	Suggest     bool     `descr:"Print suggested category rules for uncategorized recipients" optional:"true"`
	Verbose     bool     `descr:"Log every assembled record" optional:"true"`
}

func main() {
	boa.NewCmdT[Params]("expense-extractor").
		WithShort("Extract expenses from payment screenshots").
		WithLong("Reads payment confirmation screenshots with OCR, extracts date, amount, recipient and comment, " +
			"categorizes each payment by keyword and flags duplicates and suspicious entries. " +
			"The result is written as an Excel spreadsheet.").
		WithRunFunc(func(params *Params) {
			if err := run(params); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}).
		Run()
}

func run(params *Params) error {
	log := logger.New(params.Verbose)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	cfg, err := loadConfig(params.Config, log)
	if err != nil {
		return err
	}

	if params.Serve == "" && len(params.Files) == 0 {
		return errors.New("no screenshots given (pass files or directories, or --serve to start the upload page)")
	}

	var uploads []internal.Upload
	if params.Serve == "" {
		uploads, err = internal.LoadArgs(params.Files)
		if err != nil {
			return err
		}
	}

	var extractor internal.TextExtractor
	if params.Serve != "" || needsOCR(uploads) {
		engine, err := newEngine(ctx, params, log)
		if err != nil {
			return err
		}
		defer engine.Close()
		extractor = engine
	}

	pipeline := internal.NewPipeline(extractor, cfg, params.Workers)

	if params.Serve != "" {
		server := web.NewServer(pipeline, web.BasicAuth{Username: params.AuthUser, Password: params.AuthPass}, log)
		log.Info().Str("address", params.Serve).Msg("Serving upload page")
		return server.Start(ctx, params.Serve)
	}

	records, err := pipeline.Run(ctx, uploads)
	if err != nil {
		return err
	}

	if err := internal.SaveXLSX(params.Out, records); err != nil {
		return fmt.Errorf("writing %s: %w", params.Out, err)
	}
	log.Info().Str("file", params.Out).Int("records", len(records)).Msg("Spreadsheet written")

	switch params.Output {
	case "json":
		if err := internal.PrintRecordsJSON(os.Stdout, records); err != nil {
			return fmt.Errorf("writing JSON: %w", err)
		}
	case "table":
		internal.PrintRecordsTable(os.Stdout, records, internal.NewRupee())
	}

	if params.Suggest {
		// keep stdout parseable in JSON mode
		w := os.Stdout
		if params.Output == "json" {
			w = os.Stderr
		}
		printSuggestions(w, records)
	}
	return nil
}

// loadConfig reads the explicit config file, or the default one if it exists
func loadConfig(path string, log zerolog.Logger) (*internal.Config, error) {
	if path != "" {
		cfg, err := internal.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("path", path).Msg("Loaded config")
		return cfg, nil
	}

	defaultPath := internal.DefaultConfigPath()
	if defaultPath == "" {
		return internal.NewDefaultConfig(), nil
	}
	cfg, err := internal.LoadConfig(defaultPath)
	if errors.Is(err, fs.ErrNotExist) {
		return internal.NewDefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", defaultPath).Msg("Loaded config")
	return cfg, nil
}

func needsOCR(uploads []internal.Upload) bool {
	for _, up := range uploads {
		if up.Transcript == nil {
			return true
		}
	}
	return false
}

func newEngine(ctx context.Context, params *Params, log zerolog.Logger) (ocr.Engine, error) {
	switch params.Engine {
	case "gemini":
		log.Info().Str("model", params.GeminiModel).Msg("Using Gemini OCR")
		engine, err := ocr.NewGemini(ctx, params.GeminiKey, params.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("initializing Gemini: %w", err)
		}
		return engine, nil
	default:
		if params.OCRSpaceKey == ocr.DefaultOCRSpaceKey {
			log.Warn().Msg("Using the OCR.Space demo key, which is heavily rate limited (set --ocrspace-key or OCR_SPACE_API_KEY)")
		}
		return ocr.NewOCRSpace(params.OCRSpaceURL, params.OCRSpaceKey), nil
	}
}

func printSuggestions(w io.Writer, records []internal.ExpenseRecord) {
	suggestions := internal.SuggestCategoryRules(records)
	if len(suggestions) == 0 {
		fmt.Fprintln(w, "\nNo uncategorized recipients.")
		return
	}

	rupee := internal.NewRupee()
	fmt.Fprintf(w, "\nUncategorized recipients:\n")
	for _, s := range suggestions {
		fmt.Fprintf(w, "  %-25s  %dx  %s\n", truncate(s.Recipient, 25), s.Occurrences, rupee.Format(s.Total))
	}

	snippet, err := internal.FormatSuggestionsYAML(suggestions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting suggestions: %v\n", err)
		return
	}
	fmt.Fprintf(w, "\nAdd to your config (fill in the categories):\n\n%s", snippet)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-2]) + ".."
}
