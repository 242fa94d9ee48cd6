package update

import "strings"

const (
	outcomeSuccessValueConstant = "success"
	outcomeSkippedValueConstant = "skipped"
	outcomeFailedValueConstant  = "failed"
)

// UpdateOutcome classifies the terminal state of one (repository, branch) attempt.
type UpdateOutcome string

// Terminal outcomes recorded per branch (or per repository for validation and restore entries).
const (
	OutcomeSuccess UpdateOutcome = UpdateOutcome(outcomeSuccessValueConstant)
	OutcomeSkipped UpdateOutcome = UpdateOutcome(outcomeSkippedValueConstant)
	OutcomeFailed  UpdateOutcome = UpdateOutcome(outcomeFailedValueConstant)
)

// RepositoryConfiguration describes one configured repository and its update order.
type RepositoryConfiguration struct {
	Path     string
	Branches []string
	Enabled  bool
}

// Sanitize trims the path and branch names and drops empty branch entries.
func (configuration RepositoryConfiguration) Sanitize() RepositoryConfiguration {
	sanitizedBranches := make([]string, 0, len(configuration.Branches))
	for _, branchName := range configuration.Branches {
		trimmedBranchName := strings.TrimSpace(branchName)
		if len(trimmedBranchName) == 0 {
			continue
		}
		sanitizedBranches = append(sanitizedBranches, trimmedBranchName)
	}

	return RepositoryConfiguration{
		Path:     strings.TrimSpace(configuration.Path),
		Branches: sanitizedBranches,
		Enabled:  configuration.Enabled,
	}
}

// UpdateResult records the outcome of one attempt; BranchName is empty for
// repository-level entries such as invalid paths and restore warnings.
type UpdateResult struct {
	RepositoryPath string
	BranchName     string
	Outcome        UpdateOutcome
	Message        string
}
