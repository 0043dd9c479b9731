package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"hepevd/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ContentType returns the media type of the format
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// Parse reads an event from JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.Event, error) {
	var event domain.Event
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&event); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &event, nil
}

// Export writes an event as JSON
func (c *JSONCodec) Export(event *domain.Event, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
