package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"ocm.software/open-component-model/bindings/go/fnv/cli/cmd/certificates"
	"ocm.software/open-component-model/bindings/go/fnv/cli/cmd/digest"
	"ocm.software/open-component-model/bindings/go/fnv/cli/cmd/setup"
	"ocm.software/open-component-model/bindings/go/fnv/cli/cmd/setup/hooks"
	"ocm.software/open-component-model/bindings/go/fnv/cli/cmd/sign"
	"ocm.software/open-component-model/bindings/go/fnv/cli/cmd/verify"
	"ocm.software/open-component-model/bindings/go/fnv/cli/cmd/version"
	"ocm.software/open-component-model/bindings/go/fnv/cli/internal/flags/log"
)

// Execute adds all child commands to the Cmd command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the Cmd.
func Execute() {
	err := New().Execute()
	if err != nil {
		os.Exit(1)
	}
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fnv [sub-command]",
		Short: "Sign and verify files with FNV-1a signatures",
		Long: `The fnv command line client signs files with FNV-1a signatures and verifies them.

An FNV-1a signature records the 32 bit FNV-1a digest of a file together with the
subject and issuer of a certificate. Signatures can be stored next to local files
or attached to the signature requests of documents in a document directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: hooks.PreRunE,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	setup.RegisterConfigFlag(cmd)
	log.RegisterLoggingFlags(cmd.PersistentFlags())
	cmd.AddCommand(sign.New())
	cmd.AddCommand(verify.New())
	cmd.AddCommand(certificates.New())
	cmd.AddCommand(digest.New())
	cmd.AddCommand(version.New())
	return cmd
}
