package update

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultCommandConfiguration(testInstance *testing.T) {
	configuration := DefaultCommandConfiguration()
	require.Equal(testInstance, "repos.csv", configuration.RosterPath)
	require.False(testInstance, configuration.DryRun)
	require.False(testInstance, configuration.NoColor)
	require.Equal(testInstance, 120, configuration.CommandTimeoutSeconds)
}

func TestDefaultConfigurationValuesUseRootKey(testInstance *testing.T) {
	defaultValues := DefaultConfigurationValues("tools.update")
	require.Equal(testInstance, "repos.csv", defaultValues["tools.update.roster"])
	require.Equal(testInstance, false, defaultValues["tools.update.dry_run"])
	require.Equal(testInstance, false, defaultValues["tools.update.no_color"])
	require.Equal(testInstance, 120, defaultValues["tools.update.command_timeout_seconds"])
}

func TestCommandConfigurationSanitize(testInstance *testing.T) {
	testCases := []struct {
		name                   string
		configuration          CommandConfiguration
		expectedRosterPath     string
		expectedTimeoutSeconds int
	}{
		{
			name:                   "trims_roster_path",
			configuration:          CommandConfiguration{RosterPath: "  custom.csv  ", CommandTimeoutSeconds: 30},
			expectedRosterPath:     "custom.csv",
			expectedTimeoutSeconds: 30,
		},
		{
			name:                   "empty_roster_uses_default",
			configuration:          CommandConfiguration{RosterPath: "   ", CommandTimeoutSeconds: 30},
			expectedRosterPath:     "repos.csv",
			expectedTimeoutSeconds: 30,
		},
		{
			name:                   "non_positive_timeout_uses_default",
			configuration:          CommandConfiguration{RosterPath: "custom.csv", CommandTimeoutSeconds: 0},
			expectedRosterPath:     "custom.csv",
			expectedTimeoutSeconds: 120,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			sanitized := testCase.configuration.Sanitize()
			require.Equal(testInstance, testCase.expectedRosterPath, sanitized.RosterPath)
			require.Equal(testInstance, testCase.expectedTimeoutSeconds, sanitized.CommandTimeoutSeconds)
		})
	}
}

func TestRepositoryConfigurationSanitize(testInstance *testing.T) {
	configuration := RepositoryConfiguration{
		Path:     "  /repos/alpha  ",
		Branches: []string{" main ", "", "develop"},
		Enabled:  true,
	}

	sanitized := configuration.Sanitize()
	require.Equal(testInstance, "/repos/alpha", sanitized.Path)
	require.Equal(testInstance, []string{"main", "develop"}, sanitized.Branches)
	require.True(testInstance, sanitized.Enabled)
}
