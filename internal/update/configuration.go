package update

import "strings"

const (
	defaultRosterPathConstant                  = "repos.csv"
	defaultCommandTimeoutSecondsConstant       = 120
	configurationRosterKeyConstant             = "roster"
	configurationDryRunKeyConstant             = "dry_run"
	configurationNoColorKeyConstant            = "no_color"
	configurationCommandTimeoutSecondsConstant = "command_timeout_seconds"
	configurationKeySeparatorConstant          = "."
)

// CommandConfiguration captures persistent settings for the update command.
type CommandConfiguration struct {
	RosterPath            string `mapstructure:"roster"`
	DryRun                bool   `mapstructure:"dry_run"`
	NoColor               bool   `mapstructure:"no_color"`
	CommandTimeoutSeconds int    `mapstructure:"command_timeout_seconds"`
}

// DefaultCommandConfiguration returns baseline configuration values for the update command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RosterPath:            defaultRosterPathConstant,
		DryRun:                false,
		NoColor:               false,
		CommandTimeoutSeconds: defaultCommandTimeoutSecondsConstant,
	}
}

// DefaultConfigurationValues exposes viper defaults for the update command under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationRosterKeyConstant:             defaults.RosterPath,
		rootKey + configurationKeySeparatorConstant + configurationDryRunKeyConstant:             defaults.DryRun,
		rootKey + configurationKeySeparatorConstant + configurationNoColorKeyConstant:            defaults.NoColor,
		rootKey + configurationKeySeparatorConstant + configurationCommandTimeoutSecondsConstant: defaults.CommandTimeoutSeconds,
	}
}

// Sanitize trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.RosterPath = strings.TrimSpace(configuration.RosterPath)
	if len(sanitized.RosterPath) == 0 {
		sanitized.RosterPath = defaultRosterPathConstant
	}
	if sanitized.CommandTimeoutSeconds <= 0 {
		sanitized.CommandTimeoutSeconds = defaultCommandTimeoutSecondsConstant
	}

	return sanitized
}
