package report

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// JSONWriter outputs reports as indented JSON
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the document
func (w *JSONWriter) Write(doc *Document) (int, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return 0, err
	}
	return w.output.Write(append(data, '\n'))
}

// YAMLWriter outputs reports as YAML
type YAMLWriter struct {
	baseWriter
}

// NewYAMLWriter creates a YAMLWriter that outputs to the given writer
func NewYAMLWriter(output io.Writer) *YAMLWriter {
	return &YAMLWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the document
func (w *YAMLWriter) Write(doc *Document) (int, error) {
	counter := &countingWriter{w: w.output}
	enc := yaml.NewEncoder(counter)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return counter.n, err
	}
	err := enc.Close()
	return counter.n, err
}
