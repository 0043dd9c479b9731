// Package codec reads and writes events in the formats the viewer accepts.
package codec

import (
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"hepevd/internal/domain"
)

// Importer interface for reading events from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.Event, error)
	Format() string
}

// Exporter interface for writing events to various formats
type Exporter interface {
	Export(event *domain.Event, w io.Writer) error
	Format() string
}

// Codec both reads and writes one format
type Codec interface {
	Importer
	Exporter
	ContentType() string
}

// Formats lists the supported format identifiers
var Formats = []string{"json", "yaml"}

// ForFormat returns the codec for a format identifier
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// ForContentType picks a codec from a Content-Type header, defaulting to JSON
func ForContentType(contentType string) Codec {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return NewJSONCodec()
	}
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return NewYAMLCodec()
	default:
		return NewJSONCodec()
	}
}

// ForPath picks a codec from a file extension, defaulting to JSON
func ForPath(path string) Codec {
	if c, err := ForFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return c
	}
	return NewJSONCodec()
}

// Decode parses an event and validates it
func Decode(imp Importer, r io.Reader) (*domain.Event, error) {
	event, err := imp.Parse(r)
	if err != nil {
		return nil, err
	}
	event.Normalize()
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return event, nil
}
