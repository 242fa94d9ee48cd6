// Package update implements the batch checkout updater: roster loading,
// per-repository orchestration of fetch/checkout/fast-forward-pull with
// guaranteed branch restoration, result reporting, and the cobra command
// exposing the workflow.
package update
