package render

import (
	"bytes"
	"testing"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name  string `json:"name"  yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

func itemTable(t table.Writer, items []item) {
	t.AppendHeader(table.Row{"Name", "Value"})
	for _, i := range items {
		t.AppendRow(table.Row{i.Name, i.Value})
	}
}

func TestRender(t *testing.T) {
	items := []item{{Name: "alpha", Value: 1}, {Name: "beta", Value: 2}}

	tests := []struct {
		format   string
		contains []string
	}{
		{format: "json", contains: []string{`"name": "alpha"`, `"value": 2`}},
		{format: "yaml", contains: []string{"- name: alpha", "value: 2"}},
		{format: "table", contains: []string{"NAME", "VALUE", "alpha", "beta"}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			r := require.New(t)
			var buf bytes.Buffer
			r.NoError(Render(&buf, tt.format, items, itemTable))
			for _, c := range tt.contains {
				r.Contains(buf.String(), c)
			}
		})
	}

	require.Error(t, Render(&bytes.Buffer{}, "xml", items, itemTable))
}
