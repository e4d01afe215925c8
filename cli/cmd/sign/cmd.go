package sign

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ocm.software/open-component-model/bindings/go/fnv/cli/cmd/global"
	fnvctx "ocm.software/open-component-model/bindings/go/fnv/cli/internal/context"
	"ocm.software/open-component-model/bindings/go/fnv/signing/attach/filesystem"
	"ocm.software/open-component-model/bindings/go/fnv/signing/handler"
)

const (
	FlagCertificate = "certificate"
	FlagRequest     = "request"
	FlagOut         = "out"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign {file}",
		Short: "Sign a file with an FNV-1a signature",
		Args:  cobra.ExactArgs(1),
		Long: fmt.Sprintf(`Sign a file with an FNV-1a signature.

The signature records the FNV-1a digest of the file content together with the
subject and issuer of the signing certificate. It detects modification of the
file, it does not prove who signed it.

Without --%[1]s the argument is a path to a local file and the signature is
written to --%[2]s or stdout.

With --%[1]s the argument names a file of the document directory given by
--%[1]s. The signature is attached to the document for every --%[3]s that
matches a pending signature request of the file. Requests without a match
are skipped.`, global.DocumentFlag, FlagOut, FlagRequest),
		Example: `  # sign a local file with the first configured certificate
  fnv sign contract.pdf --out contract.pdf.sig

  # sign a document file and fulfil two of its signature requests
  fnv sign contract.pdf --document ./documents/doc-1 --request r1 --request r2`,
		RunE:              SignFile,
		DisableAutoGenTag: true,
	}

	cmd.Flags().String(FlagCertificate, "", "thumbprint of the certificate to sign with. if not set, the first configured certificate is used")
	cmd.Flags().String(global.DocumentFlag, "", "document directory containing a "+filesystem.ManifestFileName)
	cmd.Flags().StringSlice(FlagRequest, nil, "signature request ids to fulfil, requires --"+global.DocumentFlag)
	cmd.Flags().String(FlagOut, "", "path to write the signature to. if not set, the signature is written to stdout")

	return cmd
}

func SignFile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fnvContext := fnvctx.FromContext(ctx)
	if fnvContext == nil {
		return fmt.Errorf("no fnv context found")
	}

	thumbprint, err := cmd.Flags().GetString(FlagCertificate)
	if err != nil {
		return fmt.Errorf("getting certificate flag failed: %w", err)
	}
	documentDir, err := cmd.Flags().GetString(global.DocumentFlag)
	if err != nil {
		return fmt.Errorf("getting document flag failed: %w", err)
	}
	requestIDs, err := cmd.Flags().GetStringSlice(FlagRequest)
	if err != nil {
		return fmt.Errorf("getting request flag failed: %w", err)
	}
	out, err := cmd.Flags().GetString(FlagOut)
	if err != nil {
		return fmt.Errorf("getting out flag failed: %w", err)
	}
	if len(requestIDs) > 0 && documentDir == "" {
		return fmt.Errorf("--%s requires --%s", FlagRequest, global.DocumentFlag)
	}

	h := fnvContext.Handler()
	cert, err := h.Certificate(thumbprint)
	if err != nil {
		return err
	}

	var signature []byte
	if documentDir == "" {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading file %q failed: %w", args[0], err)
		}
		if signature, err = h.CreateSignature(content, cert); err != nil {
			return fmt.Errorf("creating signature failed: %w", err)
		}
	} else {
		abs, err := filepath.Abs(documentDir)
		if err != nil {
			return fmt.Errorf("resolving document directory %q failed: %w", documentDir, err)
		}
		host := filesystem.New(filepath.Dir(abs))
		documentID := filepath.Base(abs)

		file, content, err := host.ReadFile(documentID, args[0])
		if err != nil {
			return err
		}
		documentHandler, err := handler.New(host, fnvContext.Configuration())
		if err != nil {
			return fmt.Errorf("could not create signature handler: %w", err)
		}
		if signature, err = documentHandler.Sign(ctx, documentID, file, content, cert, requestIDs); err != nil {
			return fmt.Errorf("signing %q in document %q failed: %w", args[0], documentID, err)
		}
	}
	slog.InfoContext(ctx, "file signed", "file", args[0], "subject", cert.Subject, "issuer", cert.Issuer)

	if out == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(signature))
		return err
	}
	if err := os.WriteFile(out, signature, 0o644); err != nil {
		return fmt.Errorf("writing signature to %q failed: %w", out, err)
	}
	return nil
}
