// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

// Status is the outcome of a single health check.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusWarn Status = "warn"
	StatusSkip Status = "skip"
)

// Result holds the outcome of a single health check.
type Result struct {
	Name    string
	Status  Status
	Message string

	// Hint is printed under a failed or warning check, usually the
	// configuration key to change.
	Hint string

	// Details are extra lines printed under the check, such as the
	// candidate names a pattern was tried against.
	Details []string
}

// Pass creates a passing check result.
func Pass(name, message string) Result {
	return Result{Name: name, Status: StatusPass, Message: message}
}

// Fail creates a failing check result.
func Fail(name, message string) Result {
	return Result{Name: name, Status: StatusFail, Message: message}
}

// Warn creates a warning check result. Warnings do not cause a
// non-zero exit.
func Warn(name, message string) Result {
	return Result{Name: name, Status: StatusWarn, Message: message}
}

// Skip creates a skipped check result, used when a prerequisite check
// failed.
func Skip(name, message string) Result {
	return Result{Name: name, Status: StatusSkip, Message: message}
}

// WithHint returns r with Hint set.
func (r Result) WithHint(hint string) Result {
	r.Hint = hint
	return r
}

// WithDetails returns r with Details set.
func (r Result) WithDetails(details ...string) Result {
	r.Details = details
	return r
}

// AnyFailed reports whether any result has StatusFail.
func AnyFailed(results []Result) bool {
	for _, result := range results {
		if result.Status == StatusFail {
			return true
		}
	}
	return false
}
