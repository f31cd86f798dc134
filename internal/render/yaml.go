package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/mark3labs/census/internal/census"
)

// PayloadYAML marshals a step payload the way the editor and `census step`
// show it.
func PayloadYAML(p census.Payload) (string, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Step %d: %s\n# %s\n", p.Step(), p.Step().Title(), p.Step().Info().Description)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return "", fmt.Errorf("marshaling %s: %w", p.Step().Title(), err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("marshaling %s: %w", p.Step().Title(), err)
	}
	return buf.String(), nil
}

// ParsePayloadYAML reads a step payload written as YAML. Keys are the
// payload's JSON field names; unknown keys are rejected.
func ParsePayloadYAML(step census.Step, data []byte) (census.Payload, error) {
	var doc map[string]any
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("step %d payload is empty", step)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("converting YAML: %w", err)
	}
	p, err := census.DecodePayload(step, raw, true)
	if err != nil {
		return nil, fmt.Errorf("step %d payload: %w", step, err)
	}
	return p, nil
}
