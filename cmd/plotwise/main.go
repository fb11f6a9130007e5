// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package main

import (
	"fmt"
	"os"

	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

func main() {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "plotwise: %v\n", err)
	}
	os.Exit(exitCode(err))
}

// exitCode is 2 for bad input (flags, config values, dataset format)
// and 1 for any other failure.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case pwerr.IsInvalidInput(err):
		return 2
	default:
		return 1
	}
}
