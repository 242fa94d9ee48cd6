package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/repo_updater/cmd/cli"
	"github.com/temirov/repo_updater/internal/update"
)

const (
	exitErrorTemplateConstant   = "%v\n"
	failureExitCodeConstant     = 1
	interruptedExitCodeConstant = 130
)

// main executes the repo-updater command-line application.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}

	fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	if errors.Is(executionError, update.ErrRunInterrupted) {
		os.Exit(interruptedExitCodeConstant)
	}
	os.Exit(failureExitCodeConstant)
}
