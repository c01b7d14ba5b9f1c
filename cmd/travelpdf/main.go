package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ternarybob/travelpdf/internal/common"
	"github.com/ternarybob/travelpdf/internal/models"
)

// Exit codes
const (
	exitOK           = 0
	exitFailure      = 1
	exitInvalidInput = 2
)

func main() {
	defer common.RecoverWithCrashFile()

	if err := newCLI().execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error onto the process exit status. Payload problems are
// distinguished from render and I/O failures so scripts can tell them apart.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var inputErr *models.InputError
	if errors.As(err, &inputErr) {
		return exitInvalidInput
	}
	return exitFailure
}
