package setup

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"ocm.software/open-component-model/bindings/go/fnv/cli/cmd/global"
	"ocm.software/open-component-model/bindings/go/fnv/cli/internal/flags/file"
	"ocm.software/open-component-model/bindings/go/fnv/signing/v1alpha1"
	"ocm.software/open-component-model/bindings/go/runtime"
)

// RegisterConfigFlag adds the flag pointing to an FNVSigningConfiguration file.
func RegisterConfigFlag(cmd *cobra.Command) {
	file.VarP(cmd.PersistentFlags(), global.ConfigFlag, "c", "", `path to a signing configuration file, e.g.

type: FNVSigningConfiguration/v1alpha1
certificates:
- issuer: CA1
  subject: Alice
  thumbprint: a1

if not set, a built-in test certificate is used`)
}

// GetConfigForCommand returns the configuration given by the config flag of cmd or an
// empty configuration if the flag is not set.
func GetConfigForCommand(cmd *cobra.Command) (*v1alpha1.Config, error) {
	cfg := &v1alpha1.Config{Type: runtime.NewVersionedType(v1alpha1.ConfigType, v1alpha1.Version)}

	flag, err := file.Get(cmd.Flags(), global.ConfigFlag)
	if err != nil {
		return nil, err
	}
	if !flag.IsSet() {
		return cfg, nil
	}
	data, err := flag.ReadFile()
	if err != nil {
		return nil, fmt.Errorf("could not read configuration: %w", err)
	}
	if err := v1alpha1.Scheme.Decode(bytes.NewReader(data), cfg); err != nil {
		return nil, fmt.Errorf("could not decode configuration %q: %w", flag, err)
	}
	return cfg, nil
}
