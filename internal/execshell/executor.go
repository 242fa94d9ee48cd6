package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	commandTimedOutTemplateConstant           = "%s timed out after %s"
	defaultCommandTimeoutConstant             = 2 * time.Minute
	gitTerminalPromptEnvironmentNameConstant  = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisableValueConstant     = "0"
)

// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// CommandName identifies a supported executable.
type CommandName string

// Supported executables.
const (
	CommandGit CommandName = "git"
)

// CommandDetails describes a single command invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand combines a CommandName with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outputs of an executed command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner represents the ability to run shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that completed with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command including its exit code and stderr.
func (failure CommandFailedError) Error() string {
	return CommandMessageFormatter{}.BuildFailureMessage(failure.Command, failure.Result)
}

// CommandExecutionError reports a command that could not be executed at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return CommandMessageFormatter{}.BuildExecutionFailureMessage(failure.Command, failure.Cause)
}

// Unwrap exposes the underlying cause for errors.Is inspection.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// CommandTimedOutError reports a command that exceeded the executor's timeout bound.
type CommandTimedOutError struct {
	Command ShellCommand
	Timeout time.Duration
}

// Error describes the timed-out command and the configured bound.
func (failure CommandTimedOutError) Error() string {
	label := string(failure.Command.Name)
	if len(failure.Command.Details.Arguments) > 0 {
		label = label + " " + strings.Join(failure.Command.Details.Arguments, " ")
	}
	return fmt.Sprintf(commandTimedOutTemplateConstant, label, failure.Timeout)
}

// Unwrap surfaces context.DeadlineExceeded so callers can classify timeouts generically.
func (failure CommandTimedOutError) Unwrap() error {
	return context.DeadlineExceeded
}

// ShellExecutor coordinates command execution, logging, and lifecycle notifications.
type ShellExecutor struct {
	logger         *zap.Logger
	runner         CommandRunner
	formatter      CommandMessageFormatter
	observers      []CommandEventObserver
	commandTimeout time.Duration
}

// NewShellExecutor constructs a ShellExecutor from the provided logger, runner, and optional observers.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, observers ...CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	registeredObservers := make([]CommandEventObserver, 0, len(observers))
	for _, observer := range observers {
		if observer == nil {
			continue
		}
		registeredObservers = append(registeredObservers, observer)
	}

	return &ShellExecutor{
		logger:         logger,
		runner:         runner,
		formatter:      CommandMessageFormatter{},
		observers:      registeredObservers,
		commandTimeout: defaultCommandTimeoutConstant,
	}, nil
}

// SetCommandTimeout overrides the per-command timeout bound; non-positive values restore the default.
func (executor *ShellExecutor) SetCommandTimeout(timeout time.Duration) {
	if executor == nil {
		return
	}
	if timeout <= 0 {
		executor.commandTimeout = defaultCommandTimeoutConstant
		return
	}
	executor.commandTimeout = timeout
}

// ExecuteGit runs git with the provided details, disabling interactive credential prompts.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	if details.EnvironmentVariables == nil {
		details.EnvironmentVariables = map[string]string{}
	}
	details.EnvironmentVariables[gitTerminalPromptEnvironmentNameConstant] = gitTerminalPromptDisableValueConstant
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// Execute runs the supplied command under the executor's timeout bound and reports lifecycle events.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.notifyStarted(command)
	executor.logger.Info(executor.formatter.BuildStartedMessage(command))

	boundedContext := executionContext
	cancelBoundedContext := context.CancelFunc(func() {})
	if executor.commandTimeout > 0 {
		boundedContext, cancelBoundedContext = context.WithTimeout(executionContext, executor.commandTimeout)
	}
	defer cancelBoundedContext()

	executionResult, runError := executor.runner.Run(boundedContext, command)

	if boundedContext.Err() == context.DeadlineExceeded && executionContext.Err() == nil {
		timeoutFailure := CommandTimedOutError{Command: command, Timeout: executor.commandTimeout}
		executor.notifyExecutionFailed(command, timeoutFailure)
		executor.logger.Error(executor.formatter.BuildExecutionFailureMessage(command, timeoutFailure))
		return ExecutionResult{}, timeoutFailure
	}

	if runError != nil {
		executionFailure := CommandExecutionError{Command: command, Cause: runError}
		executor.notifyExecutionFailed(command, runError)
		executor.logger.Error(executor.formatter.BuildExecutionFailureMessage(command, runError))
		return ExecutionResult{}, executionFailure
	}

	executor.notifyCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		executor.logger.Warn(executor.formatter.BuildFailureMessage(command, executionResult))
		return executionResult, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Info(executor.formatter.BuildSuccessMessageWithResult(command, executionResult))
	return executionResult, nil
}

func (executor *ShellExecutor) notifyStarted(command ShellCommand) {
	for _, observer := range executor.observers {
		observer.CommandStarted(command)
	}
}

func (executor *ShellExecutor) notifyCompleted(command ShellCommand, result ExecutionResult) {
	for _, observer := range executor.observers {
		observer.CommandCompleted(command, result)
	}
}

func (executor *ShellExecutor) notifyExecutionFailed(command ShellCommand, failure error) {
	for _, observer := range executor.observers {
		observer.CommandExecutionFailed(command, failure)
	}
}
