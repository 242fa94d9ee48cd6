package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/repo_updater/internal/execshell"
)

const (
	executorNotConfiguredMessageConstant  = "git executor not configured"
	fastForwardNotPossibleMessageConstant = "fast-forward not possible"
	emptyBranchNameMessageConstant        = "branch name is required"
	gitMetadataDirectoryNameConstant      = ".git"
	gitStatusSubcommandConstant           = "status"
	gitStatusPorcelainFlagConstant        = "--porcelain"
	gitRevParseSubcommandConstant         = "rev-parse"
	gitAbbrevRefFlagConstant              = "--abbrev-ref"
	gitHeadReferenceConstant              = "HEAD"
	gitFetchSubcommandConstant            = "fetch"
	gitFetchAllFlagConstant               = "--all"
	gitFetchPruneFlagConstant             = "--prune"
	gitCheckoutSubcommandConstant         = "checkout"
	gitPullSubcommandConstant             = "pull"
	gitPullFastForwardOnlyFlagConstant    = "--ff-only"
	fastForwardWrapTemplateConstant       = "%w: %s"
)

// DetachedHeadIndicator is the value git reports for a detached HEAD via rev-parse --abbrev-ref.
const DetachedHeadIndicator = gitHeadReferenceConstant

// Phrases git emits when a fast-forward-only pull is refused because histories diverged.
var fastForwardRefusalPhrases = []string{
	"not possible to fast-forward",
	"diverging",
	"divergent",
}

// ErrExecutorNotConfigured indicates the manager was constructed without a git executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// ErrFastForwardNotPossible marks pull failures caused by divergent local and remote histories.
var ErrFastForwardNotPossible = errors.New(fastForwardNotPossibleMessageConstant)

// ErrBranchNameRequired indicates a checkout was requested without a branch name.
var ErrBranchNameRequired = errors.New(emptyBranchNameMessageConstant)

// GitExecutor describes the git invocation capability the manager requires.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager drives git operations against one on-disk repository at a time.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager backed by the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// IsGitRepository reports whether repositoryPath names an existing directory containing git metadata.
func (manager *RepositoryManager) IsGitRepository(repositoryPath string) bool {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return false
	}

	repositoryInfo, statError := os.Stat(trimmedRepositoryPath)
	if statError != nil || !repositoryInfo.IsDir() {
		return false
	}

	// Worktrees keep a .git file rather than a directory, so only existence matters.
	_, metadataStatError := os.Stat(filepath.Join(trimmedRepositoryPath, gitMetadataDirectoryNameConstant))
	return metadataStatError == nil
}

// CheckCleanWorktree reports whether the repository has no modified, staged, or untracked entries.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return false, executionError
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) == 0, nil
}

// GetCurrentBranch returns the checked-out branch name, or DetachedHeadIndicator for a detached HEAD.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// FetchAllRemotes fetches every configured remote and prunes stale remote-tracking references.
func (manager *RepositoryManager) FetchAllRemotes(executionContext context.Context, repositoryPath string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitFetchSubcommandConstant, gitFetchAllFlagConstant, gitFetchPruneFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// CheckoutBranch switches the repository to the named branch.
func (manager *RepositoryManager) CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return ErrBranchNameRequired
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCheckoutSubcommandConstant, trimmedBranchName},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// PullFastForward pulls the current branch with fast-forward-only semantics.
// Divergence refusals are classified as ErrFastForwardNotPossible so callers can
// distinguish them from network or remote failures.
func (manager *RepositoryManager) PullFastForward(executionContext context.Context, repositoryPath string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitPullSubcommandConstant, gitPullFastForwardOnlyFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError == nil {
		return nil
	}

	var commandFailure execshell.CommandFailedError
	if errors.As(executionError, &commandFailure) {
		combinedOutput := commandFailure.Result.StandardError + "\n" + commandFailure.Result.StandardOutput
		if refusalPhrase, refusalDetected := detectFastForwardRefusal(combinedOutput); refusalDetected {
			return fmt.Errorf(fastForwardWrapTemplateConstant, ErrFastForwardNotPossible, refusalPhrase)
		}
	}

	return executionError
}

func detectFastForwardRefusal(commandOutput string) (string, bool) {
	loweredOutput := strings.ToLower(commandOutput)
	for _, refusalPhrase := range fastForwardRefusalPhrases {
		if strings.Contains(loweredOutput, refusalPhrase) {
			return refusalPhrase, true
		}
	}
	return "", false
}
