package hooks

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"ocm.software/open-component-model/bindings/go/fnv/cli/cmd/setup"
	fnvctx "ocm.software/open-component-model/bindings/go/fnv/cli/internal/context"
	"ocm.software/open-component-model/bindings/go/fnv/cli/internal/flags/log"
	"ocm.software/open-component-model/bindings/go/fnv/signing"
	"ocm.software/open-component-model/bindings/go/fnv/signing/handler"
)

// PreRunE sets up logging, configuration, the signature handler and the provider registry
// for all commands.
func PreRunE(cmd *cobra.Command, _ []string) error {
	logger, err := log.GetBaseLogger(cmd)
	if err != nil {
		return fmt.Errorf("could not retrieve logger: %w", err)
	}
	slog.SetDefault(logger)

	cfg, err := setup.GetConfigForCommand(cmd)
	if err != nil {
		return err
	}
	ctx := fnvctx.WithConfiguration(cmd.Context(), cfg)

	h, err := handler.New(nil, cfg)
	if err != nil {
		return fmt.Errorf("could not create signature handler: %w", err)
	}
	ctx = fnvctx.WithHandler(ctx, h)

	providers, err := signing.NewRegistry(h)
	if err != nil {
		return fmt.Errorf("could not register signature providers: %w", err)
	}
	ctx = fnvctx.WithProviders(ctx, providers)
	cmd.SetContext(ctx)

	slog.DebugContext(ctx, "configuration loaded", slog.Int("certificates", len(cfg.GetCertificates())))
	return nil
}
