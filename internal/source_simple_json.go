package internal

import (
	"encoding/json"
	"fmt"
	"os"
)

// SimpleJSONFormat is a minimal JSON format for already transcribed screenshots
// Example:
//
//	{
//	  "screenshots": [
//	    {"source": "IMG_0001.png", "text": "₹ 250\n12 May 2024, 1:05 PM\nTo: Swiggy"},
//	    {"source": "IMG_0002.png", "text": ""}
//	  ]
//	}
//
// This is handy for replaying OCR output without calling the OCR service again.
type SimpleJSONFormat struct {
	Screenshots []SimpleJSONScreenshot `json:"screenshots"`
}

type SimpleJSONScreenshot struct {
	Source string `json:"source"`
	Text   string `json:"text"` // Raw OCR text
}

// LoadSimpleJSON loads transcripts from a file in the simple JSON format
func LoadSimpleJSON(path string) ([]Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var jsonData SimpleJSONFormat
	if err := json.Unmarshal(data, &jsonData); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	uploads := make([]Upload, 0, len(jsonData.Screenshots))
	for i, s := range jsonData.Screenshots {
		source := s.Source
		if source == "" {
			source = fmt.Sprintf("%s#%d", path, i+1)
		}
		text := s.Text
		uploads = append(uploads, Upload{Source: source, ContentType: "text/plain", Transcript: &text})
	}

	return uploads, nil
}

func init() {
	RegisterLoader("simple-json", LoaderFunc(LoadSimpleJSON))
}
