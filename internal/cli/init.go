package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/recipebox/internal/paths"
	"github.com/mesh-intelligence/recipebox/pkg/types"
)

// configFile holds the structure written to config.yaml by init.
type configFile struct {
	Backend  string `yaml:"backend"`
	Recovery string `yaml:"recovery"`
	DataDir  string `yaml:"data_dir,omitempty"`
}

func newInitCmd(a *app) *cobra.Command {
	var backendName string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize recipebox storage",
		Long: "Create the configuration and data directories, write config.yaml if it\n" +
			"is missing, and lay down empty recipe and favorite files.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd, backendName)
		},
	}
	cmd.Flags().StringVar(&backendName, "backend", types.BackendJSONL, "storage backend written to a new config.yaml (jsonl, sqlite)")
	return cmd
}

func (a *app) runInit(cmd *cobra.Command, backendName string) error {
	if err := (types.Config{Backend: backendName}).Validate(); err != nil {
		return fmt.Errorf("--backend %q: %w", backendName, err)
	}

	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return systemError("resolve config dir: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return systemError("create config directory: %w", err)
	}

	// An explicit --data-dir is recorded so later runs find the same data.
	var dataDir string
	if a.dataDir != "" {
		if dataDir, err = filepath.Abs(a.dataDir); err != nil {
			return systemError("resolve data dir: %w", err)
		}
	}
	configPath := filepath.Join(configDir, configFileExt)
	if err := writeConfigIfMissing(configPath, configFile{
		Backend:  backendName,
		Recovery: types.RecoveryCoupled,
		DataDir:  dataDir,
	}); err != nil {
		return systemError("write config: %w", err)
	}

	cfg, err := a.resolveConfig()
	if err != nil {
		return err
	}
	gw, err := newBackend(cfg)
	if err != nil {
		return err
	}
	if err := gw.Init(); err != nil {
		return systemError("initialize storage: %w", err)
	}

	if a.jsonMode {
		return writeJSON(cmd.OutOrStdout(), cfg)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recipebox initialized (%s backend) in %s\n", cfg.Backend, cfg.DataDir)
	return nil
}

// writeConfigIfMissing creates config.yaml from cfg if the file does not
// exist. An existing file is left untouched.
func writeConfigIfMissing(path string, cfg configFile) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
