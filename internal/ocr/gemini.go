package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// transcribePrompt asks the model for a plain transcription, not an interpretation,
// so the local field extraction sees the same kind of text a classic OCR returns.
const transcribePrompt = `Transcribe all text visible in this payment confirmation screenshot.

Rules:
- Output the text exactly as shown, one visual line per output line, top to bottom
- Keep currency symbols (₹), commas in amounts, dates and times exactly as written
- Do not summarise, translate, correct or explain anything
- Do not use markdown code blocks
- If there is no text, output nothing`

// Gemini implements Engine using a Google Gemini vision model
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini engine
func NewGemini(ctx context.Context, apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &Gemini{
		client: client,
		model:  model,
	}, nil
}

// ExtractText asks the model to transcribe the screenshot
func (g *Gemini) ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	finalImageData, mimeType, err := prepareImage(imageData, contentType)
	if err != nil {
		return "", err
	}

	// genai.ImageData expects just the format suffix (e.g., "png"), not the full MIME type
	parts := []genai.Part{
		genai.ImageData(strings.TrimPrefix(mimeType, "image/"), finalImageData),
		genai.Text(transcribePrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	return stripCodeFence(text.String()), nil
}

// stripCodeFence removes a markdown code block wrapper if the model added one anyway
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx != -1 {
		text = text[idx+1:] // drop language tag line
	} else {
		text = ""
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
