package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// render writes v as indented JSON, or as YAML keyed by the JSON field names.
func render(w io.Writer, format string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	b := buf.Bytes()

	switch strings.ToLower(format) {
	case "", OutputJSON:
		_, err := w.Write(b)
		return err
	case OutputYAML:
		var generic any
		if err := yaml.Unmarshal(b, &generic); err != nil {
			return fmt.Errorf("convert output: %w", err)
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		_, err = w.Write(out)
		return err
	}
	return fmt.Errorf("unknown output format %q (want json or yaml)", format)
}
