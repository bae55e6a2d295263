package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DecodeStrict decodes a single YAML document into out, rejecting keys the
// struct does not declare. An empty input leaves out untouched.
func DecodeStrict(r io.Reader, out interface{}) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	err := dec.Decode(out)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); err != io.EOF {
		return fmt.Errorf("invalid config: expected a single YAML document")
	}
	return nil
}
