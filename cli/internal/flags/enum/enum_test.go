package enum

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestEnumFlag(t *testing.T) {
	r := require.New(t)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	VarP(fs, "output", "o", []string{"table", "yaml", "json"}, "output format")
	fs.Int("count", 1, "not an enum")

	v, err := Get(fs, "output")
	r.NoError(err)
	r.Equal("table", v)

	r.NoError(fs.Parse([]string{"-o", "json"}))
	v, err = Get(fs, "output")
	r.NoError(err)
	r.Equal("json", v)

	r.Error(fs.Parse([]string{"--output", "xml"}))

	_, err = Get(fs, "missing")
	r.Error(err)
	_, err = Get(fs, "count")
	r.Error(err)
}
