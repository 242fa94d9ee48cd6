package update

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/repo_updater/internal/gitrepo"
)

const (
	repositoryManagerMissingMessageConstant = "repository manager not configured"
	runInterruptedMessageConstant           = "update run interrupted"
	updatesFailedMessageConstant            = "one or more branch updates failed"
	notARepositoryMessageConstant           = "not a git repository"
	uncommittedChangesMessageConstant       = "uncommitted changes"
	dryRunMessageConstant                   = "dry run"
	dryRunDisabledMessageConstant           = "dry run (disabled)"
	branchUpdatedMessageConstant            = "updated"
	interruptedBeforeUpdateMessageConstant  = "interrupted before update"
	cleanCheckFailureTemplateConstant       = "unable to verify clean worktree: %v"
	branchCaptureFailureTemplateConstant    = "unable to determine current branch: %v"
	fetchFailureTemplateConstant            = "fetch failed: %v"
	checkoutFailureTemplateConstant         = "checkout failed: %v"
	pullFailureTemplateConstant             = "pull failed: %v"
	restoreFailureTemplateConstant          = "repository left on the wrong branch: restoring %s failed: %v"
	detachedHeadWarningMessageConstant      = "detached HEAD captured; branch restoration skipped"
	logFieldRepositoryPathConstant          = "repository_path"
	logFieldBranchNameConstant              = "branch_name"
)

// ErrRepositoryManagerNotConfigured indicates the repository manager dependency was missing.
var ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessageConstant)

// ErrRunInterrupted indicates the run stopped early because the user interrupted it.
var ErrRunInterrupted = errors.New(runInterruptedMessageConstant)

// ErrUpdatesFailed indicates at least one branch update recorded a failed outcome.
var ErrUpdatesFailed = errors.New(updatesFailedMessageConstant)

// RepositoryManager enumerates the git operations the orchestrator performs per repository.
type RepositoryManager interface {
	IsGitRepository(repositoryPath string) bool
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	FetchAllRemotes(executionContext context.Context, repositoryPath string) error
	CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error
	PullFastForward(executionContext context.Context, repositoryPath string) error
}

// ProgressReporter receives a notification as each repository begins processing.
type ProgressReporter interface {
	RepositoryStarted(repositoryPath string)
}

// Dependencies enumerates external collaborators required by the update service.
type Dependencies struct {
	RepositoryManager RepositoryManager
	Logger            *zap.Logger
	Progress          ProgressReporter
}

// Options configures one update run.
type Options struct {
	Repositories []RepositoryConfiguration
	DryRun       bool
}

// Service orchestrates sequential per-repository branch updates.
type Service struct {
	repositoryManager RepositoryManager
	logger            *zap.Logger
	progress          ProgressReporter
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repositoryManager: dependencies.RepositoryManager,
		logger:            logger,
		progress:          dependencies.Progress,
	}, nil
}

// Run processes every configured repository in order and returns the accumulated results.
// It returns ErrRunInterrupted when the context is cancelled mid-run and ErrUpdatesFailed
// when at least one branch recorded a failed outcome; partial results accompany both.
func (service *Service) Run(executionContext context.Context, options Options) ([]UpdateResult, error) {
	if options.DryRun {
		return service.listRepositories(options.Repositories), nil
	}

	results := []UpdateResult{}
	interrupted := false

	for _, repositoryConfiguration := range options.Repositories {
		if !repositoryConfiguration.Enabled {
			continue
		}
		if executionContext.Err() != nil {
			interrupted = true
			break
		}

		service.notifyRepositoryStarted(repositoryConfiguration.Path)
		repositoryResults, repositoryInterrupted := service.processRepository(executionContext, repositoryConfiguration)
		results = append(results, repositoryResults...)
		if repositoryInterrupted {
			interrupted = true
			break
		}
	}

	if interrupted {
		return results, ErrRunInterrupted
	}
	if anyFailed(results) {
		return results, ErrUpdatesFailed
	}
	return results, nil
}

// processRepository applies the validated → fetched → per-branch → restored sequence
// for one repository. The captured branch is restored on every path that mutated the
// checkout, including interruption.
func (service *Service) processRepository(executionContext context.Context, configuration RepositoryConfiguration) ([]UpdateResult, bool) {
	repositoryPath := configuration.Path

	if !service.repositoryManager.IsGitRepository(repositoryPath) {
		return []UpdateResult{{
			RepositoryPath: repositoryPath,
			Outcome:        OutcomeSkipped,
			Message:        notARepositoryMessageConstant,
		}}, false
	}

	worktreeClean, cleanCheckError := service.repositoryManager.CheckCleanWorktree(executionContext, repositoryPath)
	if cleanCheckError != nil {
		return service.resultPerBranch(configuration, OutcomeFailed, fmt.Sprintf(cleanCheckFailureTemplateConstant, cleanCheckError)), false
	}
	if !worktreeClean {
		return service.resultPerBranch(configuration, OutcomeSkipped, uncommittedChangesMessageConstant), false
	}

	capturedBranch, captureError := service.repositoryManager.GetCurrentBranch(executionContext, repositoryPath)
	if captureError != nil {
		// Without a trustworthy captured branch there is nothing to restore.
		return service.resultPerBranch(configuration, OutcomeFailed, fmt.Sprintf(branchCaptureFailureTemplateConstant, captureError)), false
	}

	results := []UpdateResult{}
	interrupted := false

	fetchError := service.repositoryManager.FetchAllRemotes(executionContext, repositoryPath)
	if fetchError != nil {
		results = service.resultPerBranch(configuration, OutcomeFailed, fmt.Sprintf(fetchFailureTemplateConstant, fetchError))
	} else {
		for _, branchName := range configuration.Branches {
			if executionContext.Err() != nil {
				interrupted = true
				results = append(results, UpdateResult{
					RepositoryPath: repositoryPath,
					BranchName:     branchName,
					Outcome:        OutcomeSkipped,
					Message:        interruptedBeforeUpdateMessageConstant,
				})
				continue
			}
			results = append(results, service.updateBranch(executionContext, repositoryPath, branchName))
		}
	}

	if restoreResult, restoreFailed := service.restoreBranch(executionContext, repositoryPath, capturedBranch); restoreFailed {
		results = append(results, restoreResult)
	}

	return results, interrupted || executionContext.Err() != nil
}

// updateBranch attempts checkout followed by a fast-forward-only pull for one branch.
func (service *Service) updateBranch(executionContext context.Context, repositoryPath string, branchName string) UpdateResult {
	if checkoutError := service.repositoryManager.CheckoutBranch(executionContext, repositoryPath, branchName); checkoutError != nil {
		return UpdateResult{
			RepositoryPath: repositoryPath,
			BranchName:     branchName,
			Outcome:        OutcomeFailed,
			Message:        fmt.Sprintf(checkoutFailureTemplateConstant, checkoutError),
		}
	}

	if pullError := service.repositoryManager.PullFastForward(executionContext, repositoryPath); pullError != nil {
		return UpdateResult{
			RepositoryPath: repositoryPath,
			BranchName:     branchName,
			Outcome:        OutcomeFailed,
			Message:        fmt.Sprintf(pullFailureTemplateConstant, pullError),
		}
	}

	return UpdateResult{
		RepositoryPath: repositoryPath,
		BranchName:     branchName,
		Outcome:        OutcomeSuccess,
		Message:        branchUpdatedMessageConstant,
	}
}

// restoreBranch checks out the captured branch regardless of earlier outcomes.
// It runs on a context detached from cancellation so interruption cannot leave the
// repository on the wrong branch. A detached HEAD capture is never restored.
func (service *Service) restoreBranch(executionContext context.Context, repositoryPath string, capturedBranch string) (UpdateResult, bool) {
	if capturedBranch == gitrepo.DetachedHeadIndicator || len(capturedBranch) == 0 {
		service.logger.Warn(
			detachedHeadWarningMessageConstant,
			zap.String(logFieldRepositoryPathConstant, repositoryPath),
		)
		return UpdateResult{}, false
	}

	restoreContext := context.WithoutCancel(executionContext)
	restoreError := service.repositoryManager.CheckoutBranch(restoreContext, repositoryPath, capturedBranch)
	if restoreError == nil {
		return UpdateResult{}, false
	}

	service.logger.Warn(
		fmt.Sprintf(restoreFailureTemplateConstant, capturedBranch, restoreError),
		zap.String(logFieldRepositoryPathConstant, repositoryPath),
		zap.String(logFieldBranchNameConstant, capturedBranch),
	)
	return UpdateResult{
		RepositoryPath: repositoryPath,
		Outcome:        OutcomeFailed,
		Message:        fmt.Sprintf(restoreFailureTemplateConstant, capturedBranch, restoreError),
	}, true
}

// listRepositories renders the dry-run view: every roster row is reported, none is touched.
func (service *Service) listRepositories(repositories []RepositoryConfiguration) []UpdateResult {
	results := []UpdateResult{}
	for _, repositoryConfiguration := range repositories {
		listingMessage := dryRunMessageConstant
		if !repositoryConfiguration.Enabled {
			listingMessage = dryRunDisabledMessageConstant
		}
		for _, branchName := range repositoryConfiguration.Branches {
			results = append(results, UpdateResult{
				RepositoryPath: repositoryConfiguration.Path,
				BranchName:     branchName,
				Outcome:        OutcomeSkipped,
				Message:        listingMessage,
			})
		}
	}
	return results
}

func (service *Service) resultPerBranch(configuration RepositoryConfiguration, outcome UpdateOutcome, message string) []UpdateResult {
	results := make([]UpdateResult, 0, len(configuration.Branches))
	for _, branchName := range configuration.Branches {
		results = append(results, UpdateResult{
			RepositoryPath: configuration.Path,
			BranchName:     branchName,
			Outcome:        outcome,
			Message:        message,
		})
	}
	return results
}

func (service *Service) notifyRepositoryStarted(repositoryPath string) {
	if service.progress == nil {
		return
	}
	service.progress.RepositoryStarted(repositoryPath)
}

func anyFailed(results []UpdateResult) bool {
	for _, result := range results {
		if result.Outcome == OutcomeFailed {
			return true
		}
	}
	return false
}
