package digest

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ocm.software/open-component-model/bindings/go/fnv/signing/digest"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "digest {file...}",
		Short: "Print the FNV-1a digest of files",
		Long: `Print the FNV-1a digest of files.

The digest is printed the way signatures record it: lowercase hexadecimal
without leading zeros, followed by the file name.`,
		Args:              cobra.MinimumNArgs(1),
		RunE:              PrintDigests,
		DisableAutoGenTag: true,
	}
}

func PrintDigests(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		d, err := digestFile(path)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", d, path); err != nil {
			return err
		}
	}
	return nil
}

func digestFile(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %q failed: %w", path, err)
	}
	defer f.Close()
	d, err := digest.FromReader(f)
	if err != nil {
		return 0, fmt.Errorf("reading %q failed: %w", path, err)
	}
	return d, nil
}
