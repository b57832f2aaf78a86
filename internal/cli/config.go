package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/recipebox/internal/paths"
	"github.com/mesh-intelligence/recipebox/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend  = "backend"
	cfgKeyDataDir  = "data_dir"
	cfgKeyRecovery = "recovery"
)

// defaultConfigYAML is written to config.yaml on first run when init has
// not created one.
const defaultConfigYAML = `# recipebox configuration

# Storage backend: jsonl or sqlite
backend: jsonl

# What to reset when a stored file cannot be read:
#   coupled      reset recipes and favorites together
#   independent  reset only the file that failed
recovery: coupled

# Data directory (optional; overridable by --data-dir)
# data_dir:
`

// loadConfig reads config.yaml from configDir using viper, creating the
// directory and a default file on first run. A missing config.yaml is not
// an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendJSONL)
	v.SetDefault(cfgKeyRecovery, types.RecoveryCoupled)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// resolveConfig combines flags, config.yaml, and the environment into a
// validated types.Config.
func (a *app) resolveConfig() (types.Config, error) {
	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return types.Config{}, systemError("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return types.Config{}, systemError("%w", err)
	}
	dataDir, err := paths.ResolveDataDir(a.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, systemError("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Backend:  v.GetString(cfgKeyBackend),
		DataDir:  dataDir,
		Recovery: v.GetString(cfgKeyRecovery),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("%s: %w", filepath.Join(configDir, configFileExt), err)
	}
	a.logger.Debug("config_resolved",
		"config_dir", configDir,
		"backend", cfg.Backend,
		"data_dir", cfg.DataDir,
		"recovery", cfg.RecoveryPolicy(),
	)
	return cfg, nil
}
