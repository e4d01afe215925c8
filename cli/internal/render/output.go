package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatYAML  OutputFormat = "yaml"
	OutputFormatJSON  OutputFormat = "json"
)

func (o OutputFormat) String() string {
	return string(o)
}

// OutputFormats lists the supported formats, the default first.
func OutputFormats() []string {
	return []string{OutputFormatTable.String(), OutputFormatYAML.String(), OutputFormatJSON.String()}
}

// TableFunc fills a table with items.
type TableFunc[T any] func(t table.Writer, items []T)

// Render writes items to w in the given format.
func Render[T any](w io.Writer, format string, items []T, tableFunc TableFunc[T]) error {
	switch OutputFormat(format) {
	case OutputFormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(items)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(items)
	case OutputFormatTable:
		t := table.NewWriter()
		t.SetOutputMirror(w)
		tableFunc(t, items)
		style := table.StyleLight
		style.Options.DrawBorder = false
		t.SetStyle(style)
		t.Render()
		return nil
	default:
		return fmt.Errorf("invalid output format %q", format)
	}
}
