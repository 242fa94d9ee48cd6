package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repo_updater/internal/utils"
)

const (
	testEnvironmentPrefixConstant     = "TESTREPOUPDATER"
	testLogLevelKeyConstant           = "common.log_level"
	testDefaultLogLevelConstant       = "info"
	testFileLogLevelConstant          = "warn"
	testEnvironmentLogLevelConstant   = "error"
	testConfigurationNameConstant     = "config"
	testConfigurationTypeConstant     = "yaml"
	testConfigurationFileNameConstant = "config.yaml"
	testConfigurationContentConstant  = "common:\n  log_level: warn\n"
)

type configurationFixture struct {
	Common configurationCommonFixture `mapstructure:"common"`
}

type configurationCommonFixture struct {
	LogLevel string `mapstructure:"log_level"`
}

func newTestLoader(searchPaths []string) *utils.ConfigurationLoader {
	return utils.NewConfigurationLoader(
		testConfigurationNameConstant,
		testConfigurationTypeConstant,
		testEnvironmentPrefixConstant,
		searchPaths,
	)
}

func TestConfigurationLoaderAppliesDefaults(testInstance *testing.T) {
	loader := newTestLoader([]string{testInstance.TempDir()})

	var loadedFixture configurationFixture
	_, loadError := loader.LoadConfiguration("", map[string]any{testLogLevelKeyConstant: testDefaultLogLevelConstant}, &loadedFixture)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, testDefaultLogLevelConstant, loadedFixture.Common.LogLevel)
}

func TestConfigurationLoaderFileOverridesDefaults(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	configurationPath := filepath.Join(configurationDirectory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o644))

	loader := newTestLoader([]string{configurationDirectory})

	var loadedFixture configurationFixture
	loadedMetadata, loadError := loader.LoadConfiguration(configurationPath, map[string]any{testLogLevelKeyConstant: testDefaultLogLevelConstant}, &loadedFixture)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, testFileLogLevelConstant, loadedFixture.Common.LogLevel)
	require.Equal(testInstance, configurationPath, loadedMetadata.ConfigFileUsed)
}

func TestConfigurationLoaderEnvironmentOverridesFile(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	configurationPath := filepath.Join(configurationDirectory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o644))

	testInstance.Setenv(testEnvironmentPrefixConstant+"_COMMON_LOG_LEVEL", testEnvironmentLogLevelConstant)

	loader := newTestLoader([]string{configurationDirectory})

	var loadedFixture configurationFixture
	_, loadError := loader.LoadConfiguration(configurationPath, map[string]any{testLogLevelKeyConstant: testDefaultLogLevelConstant}, &loadedFixture)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, testEnvironmentLogLevelConstant, loadedFixture.Common.LogLevel)
}

func TestConfigurationLoaderRejectsMalformedFile(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	configurationPath := filepath.Join(configurationDirectory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte("common: ["), 0o644))

	loader := newTestLoader([]string{configurationDirectory})

	var loadedFixture configurationFixture
	_, loadError := loader.LoadConfiguration(configurationPath, nil, &loadedFixture)
	require.Error(testInstance, loadError)
	require.Contains(testInstance, loadError.Error(), "failed to read configuration")
}
