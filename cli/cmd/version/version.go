package version

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"ocm.software/open-component-model/bindings/go/fnv/cli/internal/version"
)

const (
	FlagFormat            = "format"
	FlagFormatJSON        = "json"
	FlagFormatGoBuildInfo = "gobuildinfo"
)

var BuildVersion = "n/a"

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Retrieve the version of the fnv CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmd.Flags().GetString(FlagFormat)
			if err != nil {
				return err
			}
			ver, ok := debug.ReadBuildInfo()
			if !ok {
				return fmt.Errorf("no build info available")
			}
			if BuildVersion != "n/a" {
				ver.Main.Version = BuildVersion
			}
			switch format {
			case FlagFormatJSON:
				info, err := version.Get(ver)
				if err != nil {
					return err
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(info)
			case FlagFormatGoBuildInfo:
				_, err = io.Copy(cmd.OutOrStdout(), strings.NewReader(ver.String()))
				return err
			default:
				return fmt.Errorf("unknown version format %q", format)
			}
		},
		DisableAutoGenTag: true,
	}

	cmd.Flags().String(FlagFormat, FlagFormatJSON, fmt.Sprintf("format of the version output (%s, %s)", FlagFormatJSON, FlagFormatGoBuildInfo))
	return cmd
}
