package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

const Type = "path"

// Flag defines a path flag that points to a regular file if the file exists.
type Flag struct {
	path   *string
	exists bool
}

func (f *Flag) String() string {
	return *f.path
}

// Exists reports whether the path existed when the flag was set.
func (f *Flag) Exists() bool {
	return f.exists
}

// IsSet reports whether a path was given.
func (f *Flag) IsSet() bool {
	return *f.path != ""
}

// ReadFile returns the contents of the file.
func (f *Flag) ReadFile() ([]byte, error) {
	if !f.exists {
		return nil, fmt.Errorf("file %q does not exist", *f.path)
	}
	return os.ReadFile(*f.path)
}

func (f *Flag) Set(s string) error {
	*f.path = s
	info, err := os.Stat(s)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		f.exists = false
	case err != nil:
		return fmt.Errorf("unable to stat path %q: %w", s, err)
	case info.IsDir():
		return fmt.Errorf("path %q is a directory", s)
	case !info.Mode().IsRegular():
		return fmt.Errorf("path %q is not a regular file", s)
	default:
		f.exists = true
	}
	return nil
}

func (f *Flag) Type() string {
	return Type
}

func Var(f *pflag.FlagSet, name string, value string, usage string) {
	actual := strings.Clone(value)
	f.Var(&Flag{path: &actual}, name, usage)
}

func VarP(f *pflag.FlagSet, name, shorthand string, value string, usage string) {
	actual := strings.Clone(value)
	f.VarP(&Flag{path: &actual}, name, shorthand, usage)
}

func Get(f *pflag.FlagSet, name string) (*Flag, error) {
	flag := f.Lookup(name)
	if flag == nil {
		return nil, fmt.Errorf("flag accessed but not defined: %s", name)
	}

	if flag.Value.Type() != Type {
		return nil, fmt.Errorf("trying to get %s value of flag of type %s", Type, flag.Value.Type())
	}

	val, ok := flag.Value.(*Flag)
	if !ok {
		return nil, fmt.Errorf("flag %s is not of type %s", name, Type)
	}
	return val, nil
}
