package internal

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Loader reads uploads from a path
type Loader interface {
	Load(path string) ([]Upload, error)
}

// LoaderFunc is a function that implements Loader
type LoaderFunc func(path string) ([]Upload, error)

func (f LoaderFunc) Load(path string) ([]Upload, error) {
	return f(path)
}

// loaders is the registry of available input formats
var loaders = map[string]Loader{}

// DefaultFormat is used for arguments without a format prefix
const DefaultFormat = "image"

// RegisterLoader registers a loader with the given format name
func RegisterLoader(name string, l Loader) {
	loaders[name] = l
}

// GetLoader returns the loader for the given format
func GetLoader(format string) (Loader, error) {
	l, ok := loaders[format]
	if !ok {
		return nil, fmt.Errorf("unknown input format: %s (available: %v)", format, AvailableFormats())
	}
	return l, nil
}

// AvailableFormats returns the registered input formats, sorted
func AvailableFormats() []string {
	var formats []string
	for name := range loaders {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}

// IsKnownFormat returns true if the name is a registered input format
func IsKnownFormat(name string) bool {
	_, ok := loaders[name]
	return ok
}

// ParseFileArg parses a file argument that may have a format prefix.
// Returns (format, path). If no valid prefix, format is empty.
// Example: "text:ocr.txt" → ("text", "ocr.txt")
// Example: "shot.png" → ("", "shot.png")
// Example: "C:\shots\a.png" → ("", "C:\shots\a.png") // Windows path
func ParseFileArg(arg string) (format, path string) {
	idx := strings.Index(arg, ":")
	if idx == -1 {
		return "", arg
	}
	prefix := arg[:idx]
	if IsKnownFormat(prefix) {
		return prefix, arg[idx+1:]
	}
	return "", arg // Not a known format, treat whole thing as path
}

// LoadArgs loads every argument in order and concatenates the uploads
func LoadArgs(args []string) ([]Upload, error) {
	var uploads []Upload
	for _, arg := range args {
		format, path := ParseFileArg(arg)
		if format == "" {
			format = DefaultFormat
		}
		l, err := GetLoader(format)
		if err != nil {
			return nil, err
		}
		loaded, err := l.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		uploads = append(uploads, loaded...)
	}
	return uploads, nil
}

// imageExtensions are the file types picked up when a directory is given
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".heic": true,
	".heif": true,
}

// LoadImages reads a screenshot file, or every screenshot in a directory sorted by name
func LoadImages(path string) ([]Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if !info.IsDir() {
		up, err := loadImage(path)
		if err != nil {
			return nil, err
		}
		return []Upload{up}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}
	var uploads []Upload
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		up, err := loadImage(filepath.Join(path, e.Name()))
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, up)
	}
	return uploads, nil
}

func loadImage(path string) (Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Upload{}, fmt.Errorf("reading file: %w", err)
	}
	return Upload{
		Source:      filepath.Base(path),
		ContentType: DetectContentType(path, data),
		Data:        data,
	}, nil
}

// DetectContentType sniffs the image type, falling back to the file extension
// for formats the sniffer does not know (HEIC).
func DetectContentType(name string, data []byte) string {
	ct := http.DetectContentType(data)
	if ct != "application/octet-stream" {
		return ct
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	return ct
}

// LoadTranscript reads a file holding raw OCR text, skipping OCR for it
func LoadTranscript(path string) ([]Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	text := string(data)
	return []Upload{{Source: filepath.Base(path), ContentType: "text/plain", Transcript: &text}}, nil
}

func init() {
	// Register built-in loaders
	RegisterLoader(DefaultFormat, LoaderFunc(LoadImages))
	RegisterLoader("text", LoaderFunc(LoadTranscript))
}
