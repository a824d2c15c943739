//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package config provides configuration management for the enforcer using
// [Viper] for flexible configuration sources.
//
// Configuration can be provided via:
//   - YAML configuration files
//   - Environment variables with the OPENPERM_ prefix
//   - Programmatic defaults
//
// # Configuration File
//
// By default, the enforcer looks for openperm-config.yaml in the current
// directory. Override the location using environment variables:
//
//	OPENPERM_CONFIG_PATH=/etc/openperm
//	OPENPERM_CONFIG_FILENAME=production-config
//
// Example configuration file:
//
//	log:
//	  level: ".:info"
//	audit:
//	  includesuppressed: true
//	  env:
//	    pod: HOSTNAME
//	    region: AWS_REGION
//
// # Environment Variables
//
// All configuration keys can be set via environment variables with the
// OPENPERM_ prefix. Dots in key names become underscores:
//
//	OPENPERM_LOG_LEVEL=.:debug
//	OPENPERM_AUDIT_INCLUDESUPPRESSED=false
//
// [Viper]: https://github.com/spf13/viper
package config

import (
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/cufyorg/openperm/internal/logging"
	"github.com/spf13/viper"
)

// Environment variable and default path constants for configuration loading.
const (
	// EnvVarPrefix is the prefix for all enforcer environment variables.
	// For example, the key "log.level" becomes OPENPERM_LOG_LEVEL.
	EnvVarPrefix string = "OPENPERM"

	// ConfigPathEnv is the environment variable that specifies the
	// directory containing the configuration file.
	ConfigPathEnv string = "OPENPERM_CONFIG_PATH"

	// ConfigFileNameEnv is the environment variable that specifies the
	// configuration file name (without extension).
	ConfigFileNameEnv string = "OPENPERM_CONFIG_FILENAME"

	// ConfigDefaultPath is the default directory to search for config files.
	ConfigDefaultPath string = "."

	// ConfigDefaultFilename is the default configuration file name (without extension).
	ConfigDefaultFilename string = "openperm-config"
)

// Configuration key constants for use with [VConfig].
const (
	logLevel string = "log.level"

	// IncludeSuppressed controls whether suppressed sibling evaluations are
	// included in audit records, or only the decisive verdict.
	//
	// Default: true
	// Set via environment: OPENPERM_AUDIT_INCLUDESUPPRESSED=false
	IncludeSuppressed string = "audit.includesuppressed"

	// AuditEnv defines a mapping from audit record metadata keys to
	// environment variable names. The values of the specified environment
	// variables are included in every audit record.
	//
	// Example config:
	//
	//	audit:
	//	  env:
	//	    pod: HOSTNAME
	//	    region: AWS_REGION
	AuditEnv string = "audit.env"
)

var (
	once     sync.Once
	loadOnce sync.Once
	loadErr  error

	// VConfig is the global Viper configuration instance for the enforcer.
	//
	// Use the configuration key constants ([IncludeSuppressed], [AuditEnv],
	// etc.) to access specific settings. VConfig is initialized
	// automatically when [Load] or [Init] is called; most applications
	// never touch it directly.
	VConfig *viper.Viper
	logger  = logging.GetLogger("openperm.config")
)

// Init initializes the configuration system without loading config files.
//
// Init sets up Viper with file paths, environment variable handling and
// defaults. It is safe to call multiple times; subsequent calls are no-ops.
// Call it explicitly only to set Viper defaults before [Load] reads the
// configuration file.
func Init() {
	once.Do(doInitialize)
}

func getConfigPath() string {
	if configPath, ok := os.LookupEnv(ConfigPathEnv); ok {
		return configPath
	}
	return ConfigDefaultPath
}

func getConfigFileName() string {
	if configName, ok := os.LookupEnv(ConfigFileNameEnv); ok {
		return configName
	}
	return ConfigDefaultFilename
}

func doInitialize() {
	VConfig = viper.New()

	// config-file loading: default is './openperm-config.yaml' but can be
	// overridden with $(OPENPERM_CONFIG_PATH)/$(OPENPERM_CONFIG_FILENAME).yaml
	VConfig.AddConfigPath(getConfigPath())
	VConfig.SetConfigName(getConfigFileName())
	VConfig.SetConfigType("yaml")

	// envvar handling: keys such as 'log.level' become 'OPENPERM_LOG_LEVEL'
	VConfig.SetEnvPrefix(EnvVarPrefix)
	VConfig.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	VConfig.AutomaticEnv()

	VConfig.SetDefault(logLevel, ".:info")
	VConfig.SetDefault(IncludeSuppressed, true)
}

// Load initializes configuration and loads settings from files and the
// environment, then applies the configured log levels. Missing config
// files are not an error. Safe for concurrent use; calls after the first
// successful load are no-ops.
func Load() error {
	loadOnce.Do(func() {
		Init()

		// Early log level update from the environment allows debugging of
		// the config loading itself.
		if earlyLoglevel := os.Getenv("OPENPERM_LOG_LEVEL"); earlyLoglevel != "" {
			if err := logging.UpdateLogLevels(earlyLoglevel); err != nil {
				logger.SysErrorf("Failed updating early log level %s: %+v", earlyLoglevel, err)
				loadErr = err
				return
			}
		}

		logger.SysDebugf("Loading configuration from %s/%s.yaml", getConfigPath(), getConfigFileName())
		if err := VConfig.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				logger.SysWarnf("error reading config; using defaults: %+v", err)
			}
			logger.SysDebugf("No config file found at %s/%s.yaml", getConfigPath(), getConfigFileName())
		}

		loglevel := VConfig.GetString(logLevel)
		if err := logging.UpdateLogLevels(loglevel); err != nil {
			logger.SysErrorf("Failed updating log level %s: %+v", loglevel, err)
			loadErr = err
			return
		}

		if logger.IsDebugEnabled() {
			VConfig.DebugTo(logger.Out())
		}
	})

	return loadErr
}

// ResetConfig clears all configuration and reinitializes with defaults.
//
// WARNING: intended for testing only. It resets global configuration
// state, which can cause race conditions in concurrent code.
func ResetConfig() {
	VConfig = nil
	once = sync.Once{}
	loadOnce = sync.Once{}
	loadErr = nil
	Init()
	_ = Load()
}

// GetAuditEnv returns resolved audit environment metadata for audit
// records: the audit.env configuration section with each configured
// environment variable replaced by its current value. Unset variables
// yield empty strings; absent configuration yields an empty map.
func GetAuditEnv() map[string]string {
	result := make(map[string]string)

	for key, envVarName := range VConfig.GetStringMapString(AuditEnv) {
		result[key] = os.Getenv(envVarName)
	}

	return result
}
