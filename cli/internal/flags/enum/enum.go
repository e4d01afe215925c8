// Package enum provides a string flag restricted to a fixed set of values.
// The first value is the default.
package enum

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

const Type = "enum"

type Flag struct {
	value   string
	allowed []string
}

func (f *Flag) String() string {
	return f.value
}

func (f *Flag) Set(s string) error {
	if !slices.Contains(f.allowed, s) {
		return fmt.Errorf("must be one of %s", strings.Join(f.allowed, ", "))
	}
	f.value = s
	return nil
}

func (f *Flag) Type() string {
	return Type
}

func newFlag(allowed []string) *Flag {
	if len(allowed) == 0 {
		panic("enum flag requires at least one allowed value")
	}
	return &Flag{value: allowed[0], allowed: slices.Clone(allowed)}
}

func Var(f *pflag.FlagSet, name string, allowed []string, usage string) {
	f.Var(newFlag(allowed), name, usageWithValues(usage, allowed))
}

func VarP(f *pflag.FlagSet, name, shorthand string, allowed []string, usage string) {
	f.VarP(newFlag(allowed), name, shorthand, usageWithValues(usage, allowed))
}

func Get(f *pflag.FlagSet, name string) (string, error) {
	flag := f.Lookup(name)
	if flag == nil {
		return "", fmt.Errorf("flag accessed but not defined: %s", name)
	}
	if flag.Value.Type() != Type {
		return "", fmt.Errorf("trying to get %s value of flag of type %s", Type, flag.Value.Type())
	}
	return flag.Value.String(), nil
}

func usageWithValues(usage string, allowed []string) string {
	return fmt.Sprintf("%s (must be one of [%s])", usage, strings.Join(allowed, " "))
}
