package certificates

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"ocm.software/open-component-model/bindings/go/fnv/cli/cmd/global"
	fnvctx "ocm.software/open-component-model/bindings/go/fnv/cli/internal/context"
	"ocm.software/open-component-model/bindings/go/fnv/cli/internal/flags/enum"
	"ocm.software/open-component-model/bindings/go/fnv/cli/internal/render"
	"ocm.software/open-component-model/bindings/go/fnv/signing/v1alpha1"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "certificates",
		Aliases: []string{"certificate", "certs", "cert"},
		Short:   "List the certificates available for signing",
		Args:    cobra.NoArgs,
		Long: `List the certificates available for signing.

Certificates come from the signing configuration given by --config.
Without configured certificates the built-in test certificate is listed.
Pass the thumbprint of a certificate to "fnv sign --certificate" to sign with it.`,
		RunE:              ListCertificates,
		DisableAutoGenTag: true,
	}

	enum.VarP(cmd.Flags(), global.OutputFlag, global.OutputFlagShortHand, render.OutputFormats(), "output format of the certificate list")

	return cmd
}

func ListCertificates(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	fnvContext := fnvctx.FromContext(ctx)
	if fnvContext == nil {
		return fmt.Errorf("no fnv context found")
	}

	output, err := enum.Get(cmd.Flags(), global.OutputFlag)
	if err != nil {
		return fmt.Errorf("getting output flag failed: %w", err)
	}

	providers := fnvContext.Providers()
	if providers == nil {
		return fmt.Errorf("no signature providers configured")
	}
	certs, err := providers.Certificates(ctx)
	if err != nil {
		return fmt.Errorf("listing certificates failed: %w", err)
	}
	return render.Render(cmd.OutOrStdout(), output, certs, certificateTable)
}

func certificateTable(t table.Writer, certs []v1alpha1.Certificate) {
	t.AppendHeader(table.Row{"Thumbprint", "Subject", "Issuer", "Valid From", "Valid To", "Algorithm"})
	for _, c := range certs {
		t.AppendRow(table.Row{c.Thumbprint, c.Subject, c.Issuer, c.ValidFromDate, c.ValidToDate, c.PublicKeyOID})
	}
}
