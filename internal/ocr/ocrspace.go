package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultOCRSpaceURL is the public OCR.Space parse endpoint
	DefaultOCRSpaceURL = "https://api.ocr.space/parse/image"
	// DefaultOCRSpaceKey is OCR.Space's free demo key (rate limited)
	DefaultOCRSpaceKey = "helloworld"
)

// OCRSpace implements Engine using the OCR.Space REST API
type OCRSpace struct {
	url      string
	apiKey   string
	language string
	client   *http.Client
}

// NewOCRSpace creates a new OCR.Space engine. Empty arguments fall back to the public defaults.
func NewOCRSpace(url, apiKey string) *OCRSpace {
	if url == "" {
		url = DefaultOCRSpaceURL
	}
	if apiKey == "" {
		apiKey = DefaultOCRSpaceKey
	}
	return &OCRSpace{
		url:      url,
		apiKey:   apiKey,
		language: "eng",
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ocrSpaceResponse is the subset of the parse response we use
type ocrSpaceResponse struct {
	ParsedResults []struct {
		ParsedText        string `json:"ParsedText"`
		FileParseExitCode any    `json:"FileParseExitCode"`
		ErrorMessage      string `json:"ErrorMessage"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool `json:"IsErroredOnProcessing"`
	// ErrorMessage is a string or a list of strings depending on the failure
	ErrorMessage json.RawMessage `json:"ErrorMessage"`
}

// ExtractText uploads the image and returns the text of the first parsed result
func (o *OCRSpace) ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	finalImageData, mimeType, err := prepareImage(imageData, contentType)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("apikey", o.apiKey); err != nil {
		return "", fmt.Errorf("writing form: %w", err)
	}
	if err := mw.WriteField("language", o.language); err != nil {
		return "", fmt.Errorf("writing form: %w", err)
	}
	part, err := mw.CreateFormFile("file", "screenshot"+fileExtension(mimeType))
	if err != nil {
		return "", fmt.Errorf("writing form: %w", err)
	}
	if _, err := part.Write(finalImageData); err != nil {
		return "", fmt.Errorf("writing form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("writing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, &body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling OCR.Space API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("OCR.Space API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed ocrSpaceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if parsed.IsErroredOnProcessing {
		return "", fmt.Errorf("OCR.Space processing error: %s", errorMessage(parsed.ErrorMessage))
	}
	if len(parsed.ParsedResults) == 0 {
		return "", nil
	}
	return parsed.ParsedResults[0].ParsedText, nil
}

// errorMessage flattens OCR.Space's ErrorMessage, which may be a string or a list
func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "unknown error"
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Close is a no-op for the HTTP client
func (o *OCRSpace) Close() error {
	return nil
}
