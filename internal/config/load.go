package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// newViperInstance creates a Viper instance with the standard SLOTSHIFT
// environment prefix, key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("SLOTSHIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the YAML tag names exactly.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("azure.subscription_id", "")
	v.SetDefault("deploy.max_parallel", defaults.Deploy.MaxParallel)
	v.SetDefault("deploy.job_timeout", defaults.Deploy.JobTimeout)
	v.SetDefault("deploy.validation_timeout", defaults.Deploy.ValidationTimeout)
	v.SetDefault("deploy.validation_url", "")
	v.SetDefault("output", defaults.Output)
}

// isConfigNotFoundError reports whether err is viper's config file not
// found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// Load reads configuration from all available sources with proper
// precedence: environment variables over project config over global
// config over defaults. Missing config files are not an error.
//
// CLI flag overrides have the highest precedence and are applied by the
// command layer after Load.
func Load() (*Config, error) {
	globalPath, _ := GlobalConfigPath()
	return LoadFromPaths(ProjectConfigPath(), globalPath)
}

// LoadFromPaths loads configuration from explicit file paths. Either path
// may be empty or point at a missing file; both cases fall back to lower
// precedence sources.
func LoadFromPaths(projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" && fileExists(globalConfigPath) {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, fmt.Errorf("read global config %s: %w", globalConfigPath, err)
		}
	}

	if projectConfigPath != "" && fileExists(projectConfigPath) {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, fmt.Errorf("read project config %s: %w", projectConfigPath, err)
		}
	}

	cfg := &Config{
		Azure: AzureConfig{
			SubscriptionID: v.GetString("azure.subscription_id"),
		},
		Deploy: DeployConfig{
			MaxParallel:       v.GetInt("deploy.max_parallel"),
			JobTimeout:        v.GetDuration("deploy.job_timeout"),
			ValidationTimeout: v.GetDuration("deploy.validation_timeout"),
			ValidationURL:     v.GetString("deploy.validation_url"),
		},
		Output: v.GetString("output"),
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fileExists reports whether the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
