// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"

	"welder-cli/internal/issue"
)

// formatErrorForDisplay renders an error for the terminal. Actionable
// errors include their suggestion bullets (and the full chain when
// verbose); anything else falls back to its plain message.
func formatErrorForDisplay(err error, verbose bool) string {
	var actionable *issue.ActionableError
	if errors.As(err, &actionable) {
		return actionable.Format(verbose)
	}
	return err.Error()
}
