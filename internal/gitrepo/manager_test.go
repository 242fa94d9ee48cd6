package gitrepo_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repo_updater/internal/execshell"
	"github.com/temirov/repo_updater/internal/gitrepo"
)

const testRepositoryPathConstant = "/tmp/repositories/demo"

type stubExecutionOutcome struct {
	result         execshell.ExecutionResult
	executionError error
}

type stubGitExecutor struct {
	outcomes         []stubExecutionOutcome
	recordedCommands []execshell.CommandDetails
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	if len(executor.outcomes) == 0 {
		return execshell.ExecutionResult{}, nil
	}
	outcome := executor.outcomes[0]
	executor.outcomes = executor.outcomes[1:]
	return outcome.result, outcome.executionError
}

func TestNewRepositoryManagerRequiresExecutor(testInstance *testing.T) {
	manager, creationError := gitrepo.NewRepositoryManager(nil)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrExecutorNotConfigured)
	require.Nil(testInstance, manager)
}

func TestIsGitRepository(testInstance *testing.T) {
	manager, creationError := gitrepo.NewRepositoryManager(&stubGitExecutor{})
	require.NoError(testInstance, creationError)

	repositoryDirectory := testInstance.TempDir()
	require.False(testInstance, manager.IsGitRepository(repositoryDirectory))

	require.NoError(testInstance, os.Mkdir(filepath.Join(repositoryDirectory, ".git"), 0o755))
	require.True(testInstance, manager.IsGitRepository(repositoryDirectory))

	worktreeDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(worktreeDirectory, ".git"), []byte("gitdir: elsewhere"), 0o644))
	require.True(testInstance, manager.IsGitRepository(worktreeDirectory))

	require.False(testInstance, manager.IsGitRepository(filepath.Join(repositoryDirectory, "missing")))
	require.False(testInstance, manager.IsGitRepository("   "))
}

func TestCheckCleanWorktree(testInstance *testing.T) {
	testCases := []struct {
		name          string
		statusOutput  string
		expectedClean bool
	}{
		{name: "clean", statusOutput: "", expectedClean: true},
		{name: "whitespace_only", statusOutput: "  \n", expectedClean: true},
		{name: "dirty", statusOutput: " M internal/service.go\n?? notes.txt\n", expectedClean: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{outcomes: []stubExecutionOutcome{{result: execshell.ExecutionResult{StandardOutput: testCase.statusOutput}}}}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			clean, checkError := manager.CheckCleanWorktree(context.Background(), testRepositoryPathConstant)
			require.NoError(testInstance, checkError)
			require.Equal(testInstance, testCase.expectedClean, clean)
			require.Equal(testInstance, []string{"status", "--porcelain"}, executor.recordedCommands[0].Arguments)
			require.Equal(testInstance, testRepositoryPathConstant, executor.recordedCommands[0].WorkingDirectory)
		})
	}
}

func TestGetCurrentBranch(testInstance *testing.T) {
	executor := &stubGitExecutor{outcomes: []stubExecutionOutcome{{result: execshell.ExecutionResult{StandardOutput: "main\n"}}}}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	branchName, branchError := manager.GetCurrentBranch(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, branchError)
	require.Equal(testInstance, "main", branchName)
	require.Equal(testInstance, []string{"rev-parse", "--abbrev-ref", "HEAD"}, executor.recordedCommands[0].Arguments)
}

func TestGetCurrentBranchReportsDetachedHead(testInstance *testing.T) {
	executor := &stubGitExecutor{outcomes: []stubExecutionOutcome{{result: execshell.ExecutionResult{StandardOutput: "HEAD\n"}}}}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	branchName, branchError := manager.GetCurrentBranch(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, branchError)
	require.Equal(testInstance, gitrepo.DetachedHeadIndicator, branchName)
}

func TestFetchAllRemotesUsesPruning(testInstance *testing.T) {
	executor := &stubGitExecutor{}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, manager.FetchAllRemotes(context.Background(), testRepositoryPathConstant))
	require.Equal(testInstance, []string{"fetch", "--all", "--prune"}, executor.recordedCommands[0].Arguments)
}

func TestCheckoutBranchValidatesName(testInstance *testing.T) {
	executor := &stubGitExecutor{}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	require.ErrorIs(testInstance, manager.CheckoutBranch(context.Background(), testRepositoryPathConstant, "  "), gitrepo.ErrBranchNameRequired)
	require.Empty(testInstance, executor.recordedCommands)

	require.NoError(testInstance, manager.CheckoutBranch(context.Background(), testRepositoryPathConstant, "develop"))
	require.Equal(testInstance, []string{"checkout", "develop"}, executor.recordedCommands[0].Arguments)
}

func TestPullFastForwardClassifiesDivergence(testInstance *testing.T) {
	divergedCommand := execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{"pull", "--ff-only"}, WorkingDirectory: testRepositoryPathConstant},
	}

	testCases := []struct {
		name             string
		outcome          stubExecutionOutcome
		expectDivergence bool
		expectOtherError bool
	}{
		{
			name: "divergence_refusal",
			outcome: stubExecutionOutcome{
				result: execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal: Not possible to fast-forward, aborting.\n"},
				executionError: execshell.CommandFailedError{
					Command: divergedCommand,
					Result:  execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal: Not possible to fast-forward, aborting.\n"},
				},
			},
			expectDivergence: true,
		},
		{
			name: "divergent_branches_refusal",
			outcome: stubExecutionOutcome{
				executionError: execshell.CommandFailedError{
					Command: divergedCommand,
					Result:  execshell.ExecutionResult{ExitCode: 1, StandardError: "fatal: You have divergent branches and need to specify how to reconcile them.\n"},
				},
			},
			expectDivergence: true,
		},
		{
			name: "network_failure",
			outcome: stubExecutionOutcome{
				executionError: execshell.CommandFailedError{
					Command: divergedCommand,
					Result:  execshell.ExecutionResult{ExitCode: 1, StandardError: "fatal: unable to access remote\n"},
				},
			},
			expectOtherError: true,
		},
		{
			name: "execution_failure",
			outcome: stubExecutionOutcome{
				executionError: errors.New("git binary missing"),
			},
			expectOtherError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{outcomes: []stubExecutionOutcome{testCase.outcome}}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			pullError := manager.PullFastForward(context.Background(), testRepositoryPathConstant)
			require.Error(testInstance, pullError)
			require.Equal(testInstance, []string{"pull", "--ff-only"}, executor.recordedCommands[0].Arguments)

			if testCase.expectDivergence {
				require.ErrorIs(testInstance, pullError, gitrepo.ErrFastForwardNotPossible)
			} else {
				require.NotErrorIs(testInstance, pullError, gitrepo.ErrFastForwardNotPossible)
			}
		})
	}
}

func TestPullFastForwardSucceeds(testInstance *testing.T) {
	executor := &stubGitExecutor{}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, manager.PullFastForward(context.Background(), testRepositoryPathConstant))
}
