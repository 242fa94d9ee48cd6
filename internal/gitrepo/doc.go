// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// It exposes RepositoryManager for validating checkouts, inspecting worktree
// status and the current branch, fetching remotes, and performing checkout and
// fast-forward pull operations on behalf of the update orchestrator.
package gitrepo
