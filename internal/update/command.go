package update

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repo_updater/internal/execshell"
	"github.com/temirov/repo_updater/internal/gitrepo"
	"github.com/temirov/repo_updater/internal/ui"
	"github.com/temirov/repo_updater/internal/utils"
)

const (
	commandUseConstant                = "update"
	commandShortDescriptionConstant   = "Fetch and fast-forward configured repository branches"
	commandLongDescriptionConstant    = "update reads a repository roster, fetches every remote with pruning, fast-forwards each configured branch, and restores the branch that was checked out before the run."
	rosterFlagNameConstant            = "roster"
	rosterFlagDescriptionConstant     = "Path to the repository roster (CSV, or YAML with a .yaml/.yml extension)"
	dryRunFlagNameConstant            = "dry-run"
	dryRunFlagDescriptionConstant     = "List configured repositories and branches without touching them"
	noColorFlagNameConstant           = "no-color"
	noColorFlagDescriptionConstant    = "Disable ANSI styling in progress and summary output"
	rosterLoadErrorTemplateConstant   = "unable to load repository roster: %w"
	configurationFileMessageConstant  = "using configuration file"
	configurationFileLogFieldConstant = "config_file"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the update command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  gitrepo.GitExecutor
	RepositoryManager            RepositoryManager
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the update command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(rosterFlagNameConstant, DefaultCommandConfiguration().RosterPath, rosterFlagDescriptionConstant)
	command.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)
	command.Flags().Bool(noColorFlagNameConstant, false, noColorFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	if command.Flags().Changed(rosterFlagNameConstant) {
		rosterFlagValue, rosterFlagError := command.Flags().GetString(rosterFlagNameConstant)
		if rosterFlagError != nil {
			return rosterFlagError
		}
		configuration.RosterPath = rosterFlagValue
	}
	if command.Flags().Changed(dryRunFlagNameConstant) {
		dryRunFlagValue, dryRunFlagError := command.Flags().GetBool(dryRunFlagNameConstant)
		if dryRunFlagError != nil {
			return dryRunFlagError
		}
		configuration.DryRun = dryRunFlagValue
	}
	if command.Flags().Changed(noColorFlagNameConstant) {
		noColorFlagValue, noColorFlagError := command.Flags().GetBool(noColorFlagNameConstant)
		if noColorFlagError != nil {
			return noColorFlagError
		}
		configuration.NoColor = noColorFlagValue
	}
	configuration = configuration.Sanitize()

	logger := builder.resolveLogger()

	contextAccessor := utils.NewCommandContextAccessor()
	if configurationFilePath, configurationFilePathAvailable := contextAccessor.ConfigurationFilePath(command.Context()); configurationFilePathAvailable && len(configurationFilePath) > 0 {
		logger.Debug(configurationFileMessageConstant, zap.String(configurationFileLogFieldConstant, configurationFilePath))
	}

	repositoryManager, managerError := builder.resolveRepositoryManager(logger, configuration)
	if managerError != nil {
		return managerError
	}

	rosterLoader := NewRosterLoader(logger)
	repositories, loadError := rosterLoader.LoadRepositories(configuration.RosterPath)
	if loadError != nil {
		return fmt.Errorf(rosterLoadErrorTemplateConstant, loadError)
	}

	reporter := NewReporter(command.OutOrStdout(), configuration.NoColor)

	service, serviceCreationError := NewService(Dependencies{
		RepositoryManager: repositoryManager,
		Logger:            logger,
		Progress:          reporter,
	})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	runContext, stopSignalNotifications := signal.NotifyContext(command.Context(), os.Interrupt, syscall.SIGTERM)
	defer stopSignalNotifications()

	results, runError := service.Run(runContext, Options{
		Repositories: repositories,
		DryRun:       configuration.DryRun,
	})

	// The summary covers partial runs too, so it prints before the error surfaces.
	reporter.PrintSummary(results)

	return runError
}

func (builder *CommandBuilder) resolveRepositoryManager(logger *zap.Logger, configuration CommandConfiguration) (RepositoryManager, error) {
	if builder.RepositoryManager != nil {
		return builder.RepositoryManager, nil
	}

	gitExecutor := builder.GitExecutor
	if gitExecutor == nil {
		commandObservers := []execshell.CommandEventObserver{}
		if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
			commandObservers = append(commandObservers, ui.NewConsoleCommandEventLogger(logger))
			logger = zap.NewNop()
		}

		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), commandObservers...)
		if executorError != nil {
			return nil, executorError
		}
		shellExecutor.SetCommandTimeout(time.Duration(configuration.CommandTimeoutSeconds) * time.Second)
		gitExecutor = shellExecutor
	}

	return gitrepo.NewRepositoryManager(gitExecutor)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
