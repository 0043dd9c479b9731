package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"hepevd/internal/domain"
)

// YAMLCodec handles YAML import/export. Field names match the JSON form.
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ContentType returns the media type of the format
func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// Parse reads an event from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Event, error) {
	var event domain.Event
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&event); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &event, nil
}

// Export writes an event as YAML
func (c *YAMLCodec) Export(event *domain.Event, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
