package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sokinpui/fsplit"
)

func main() {
	if err := fsplit.Execute(); err != nil {
		var rb *fsplit.RollbackError
		if errors.As(err, &rb) {
			fmt.Fprintf(os.Stderr, "FATAL: could not restore %s. Original content is preserved in %s\n", rb.Original, rb.Backup)
		}
		var de *fsplit.DetailedError
		if errors.As(err, &de) {
			fmt.Fprintf(os.Stderr, "%s\n", de.Stack)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
