package ocr

import "context"

// Engine extracts raw text from a screenshot
type Engine interface {
	// ExtractText returns the text found in the image. An empty string with a
	// nil error means the service found no text.
	ExtractText(ctx context.Context, image []byte, contentType string) (string, error)
	// Close releases resources held by the engine
	Close() error
}
