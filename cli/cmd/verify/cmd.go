package verify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ocm.software/open-component-model/bindings/go/fnv/cli/cmd/global"
	fnvctx "ocm.software/open-component-model/bindings/go/fnv/cli/internal/context"
	"ocm.software/open-component-model/bindings/go/fnv/cli/internal/flags/enum"
	"ocm.software/open-component-model/bindings/go/fnv/cli/internal/render"
	"ocm.software/open-component-model/bindings/go/fnv/signing"
	"ocm.software/open-component-model/bindings/go/fnv/signing/attach"
	"ocm.software/open-component-model/bindings/go/fnv/signing/attach/filesystem"
)

const FlagImported = "imported"

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify {file} [signature...]",
		Short: "Verify FNV-1a signatures of a file",
		Args:  cobra.MinimumNArgs(1),
		Long: fmt.Sprintf(`Verify FNV-1a signatures of a file.

Every signature is classified as
* Valid: the signature matches the file content.
* Invalid: the signature was readable but was created for different content.
* Error: the signature could not be read.

Without --%[1]s all signature files given after the file are verified.
With --%[1]s the file names a file of the document directory and every
fulfilled signature request of that file is verified against its attached
signature.

With --%[2]s signatures are verified as imported signatures that are not
bound to a signature request, which reports less signer information.

The command fails if any signature is not valid.`, global.DocumentFlag, FlagImported),
		Example: `  # verify detached signatures of a local file
  fnv verify contract.pdf contract.pdf.sig other.sig

  # verify all signatures attached to a document file as yaml
  fnv verify contract.pdf --document ./documents/doc-1 -o yaml`,
		RunE:              VerifyFile,
		DisableAutoGenTag: true,
	}

	cmd.Flags().Bool(FlagImported, false, "verify as imported signatures")
	cmd.Flags().String(global.DocumentFlag, "", "document directory containing a "+filesystem.ManifestFileName)
	cmd.Flags().Int(global.ConcurrencyLimitFlag, 4, "maximum amount of signatures verified in parallel")
	enum.VarP(cmd.Flags(), global.OutputFlag, global.OutputFlagShortHand, render.OutputFormats(), "output format of the verification results")

	return cmd
}

// Result is the rendered outcome of verifying one signature.
type Result struct {
	Signature     string `json:"signature"               yaml:"signature"`
	Request       string `json:"request,omitempty"       yaml:"request,omitempty"`
	Status        string `json:"status"                  yaml:"status"`
	SignerName    string `json:"signerName,omitempty"    yaml:"signerName,omitempty"`
	IssuerName    string `json:"issuerName,omitempty"    yaml:"issuerName,omitempty"`
	SignDate      string `json:"signDate,omitempty"      yaml:"signDate,omitempty"`
	PublicKeyOID  string `json:"publicKeyOid,omitempty"  yaml:"publicKeyOid,omitempty"`
	SignatureType string `json:"signatureType,omitempty" yaml:"signatureType,omitempty"`
	Error         string `json:"error,omitempty"         yaml:"error,omitempty"`
}

// Valid reports whether the signature matched.
func (r Result) Valid() bool {
	return r.Status == signing.StatusValid.String()
}

type target struct {
	name      string
	request   attach.SignatureRequest
	signature []byte
}

func VerifyFile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fnvContext := fnvctx.FromContext(ctx)
	if fnvContext == nil {
		return fmt.Errorf("no fnv context found")
	}

	imported, err := cmd.Flags().GetBool(FlagImported)
	if err != nil {
		return fmt.Errorf("getting imported flag failed: %w", err)
	}
	documentDir, err := cmd.Flags().GetString(global.DocumentFlag)
	if err != nil {
		return fmt.Errorf("getting document flag failed: %w", err)
	}
	concurrencyLimit, err := cmd.Flags().GetInt(global.ConcurrencyLimitFlag)
	if err != nil {
		return fmt.Errorf("getting concurrency limit flag failed: %w", err)
	} else if concurrencyLimit < 1 {
		return fmt.Errorf("--%s must be at least 1", global.ConcurrencyLimitFlag)
	}
	output, err := enum.Get(cmd.Flags(), global.OutputFlag)
	if err != nil {
		return fmt.Errorf("getting output flag failed: %w", err)
	}

	var (
		content []byte
		targets []target
	)
	if documentDir == "" {
		if len(args) < 2 {
			return fmt.Errorf("at least one signature is required without --%s", global.DocumentFlag)
		}
		if content, err = os.ReadFile(args[0]); err != nil {
			return fmt.Errorf("reading file %q failed: %w", args[0], err)
		}
		if targets, err = localTargets(args[1:]); err != nil {
			return err
		}
	} else {
		if len(args) > 1 {
			return fmt.Errorf("signatures cannot be given together with --%s", global.DocumentFlag)
		}
		if content, targets, err = documentTargets(documentDir, args[0]); err != nil {
			return err
		}
	}
	if len(targets) == 0 {
		return fmt.Errorf("no signatures found to verify")
	}

	providers := fnvContext.Providers()
	if providers == nil {
		return fmt.Errorf("no signature providers configured")
	}
	results := verifyAll(ctx, providers, content, targets, imported, concurrencyLimit)
	if err := render.Render(cmd.OutOrStdout(), output, results, resultTable); err != nil {
		return fmt.Errorf("rendering results failed: %w", err)
	}

	failed := 0
	for _, r := range results {
		if !r.Valid() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("SIGNATURE VERIFICATION FAILED: %d of %d signatures are not valid", failed, len(results))
	}
	slog.InfoContext(ctx, "SIGNATURE VERIFICATION SUCCESSFUL", "signatures", len(results))
	return nil
}

func localTargets(paths []string) ([]target, error) {
	targets := make([]target, 0, len(paths))
	for _, path := range paths {
		signature, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading signature %q failed: %w", path, err)
		}
		targets = append(targets, target{name: path, signature: signature})
	}
	return targets, nil
}

func documentTargets(documentDir, name string) ([]byte, []target, error) {
	abs, err := filepath.Abs(documentDir)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving document directory %q failed: %w", documentDir, err)
	}
	host := filesystem.New(filepath.Dir(abs))
	documentID := filepath.Base(abs)

	file, content, err := host.ReadFile(documentID, name)
	if err != nil {
		return nil, nil, err
	}
	var targets []target
	for _, req := range file.SignatureRequests {
		if req.SignID == "" {
			continue
		}
		id, err := uuid.Parse(req.SignID)
		if err != nil {
			return nil, nil, fmt.Errorf("signature request %q has invalid sign id %q: %w", req.ID, req.SignID, err)
		}
		att, signature, err := host.ReadAttachment(documentID, id)
		if err != nil {
			return nil, nil, err
		}
		targets = append(targets, target{name: att.Name, request: req, signature: signature})
	}
	return content, targets, nil
}

// providerFor selects the provider of a signature. Fulfilled signature requests name the
// algorithm they were signed with, other signatures are recognized by their content.
func providerFor(providers *signing.Registry, t target) (signing.Provider, error) {
	if t.request.PublicKeyOID != "" {
		return providers.ForAlgorithm(t.request.PublicKeyOID)
	}
	return providers.ForSignature(t.signature)
}

func verifyAll(ctx context.Context, providers *signing.Registry, content []byte, targets []target, imported bool, limit int) []Result {
	results := make([]Result, len(targets))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, t := range targets {
		eg.Go(func() error {
			start := time.Now()
			defer func() {
				slog.DebugContext(egctx, "signature verification completed", "signature", t.name, "duration", time.Since(start).String())
			}()
			p, err := providerFor(providers, t)
			switch {
			case err != nil:
				results[i] = Result{Signature: t.name, Request: t.request.ID, Status: signing.StatusError.String(), Error: err.Error()}
			case imported:
				results[i] = fromImported(t, p.VerifyImported(egctx, content, t.signature))
			default:
				results[i] = fromResult(t, p.Verify(egctx, content, t.signature, t.request))
			}
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

func fromResult(t target, res signing.VerificationResult) Result {
	return Result{
		Signature:  t.name,
		Request:    t.request.ID,
		Status:     res.Status.String(),
		SignerName: res.SignerName,
		IssuerName: res.IssuerName,
		SignDate:   res.SignDate,
		Error:      res.Error,
	}
}

func fromImported(t target, res signing.ImportedVerificationResult) Result {
	return Result{
		Signature:     t.name,
		Request:       t.request.ID,
		Status:        res.Status.String(),
		SignerName:    res.SignerName,
		PublicKeyOID:  res.PublicKeyOID,
		SignatureType: string(res.SignatureType),
		Error:         res.Error,
	}
}

func resultTable(t table.Writer, results []Result) {
	t.AppendHeader(table.Row{"Signature", "Request", "Status", "Signer", "Issuer", "Signed", "Error"})
	for _, r := range results {
		t.AppendRow(table.Row{r.Signature, r.Request, r.Status, r.SignerName, r.IssuerName, r.SignDate, r.Error})
	}
}
