// Package contract checks internal invariants of the engine.
package contract

import (
	"fmt"
)

const (
	failMsg    = "A failure has occurred"
	assertMsg  = "An assertion has failed"
	requireMsg = "A precondition has failed for %v"
)

// Failf unconditionally abandons the current operation, formatting and logging the given message.
func Failf(msg string, args ...interface{}) {
	failfast(fmt.Sprintf("%v: %v", failMsg, fmt.Sprintf(msg, args...)))
}

// Assertf checks an invariant and fails if it is false.
func Assertf(cond bool, msg string, args ...interface{}) {
	if !cond {
		failfast(fmt.Sprintf("%v: %v", assertMsg, fmt.Sprintf(msg, args...)))
	}
}

// Requiref checks a precondition pertaining to a function parameter and fails if it is false.
func Requiref(cond bool, param string, msg string, args ...interface{}) {
	if !cond {
		failfast(fmt.Sprintf("%v: %v", fmt.Sprintf(requireMsg, param), fmt.Sprintf(msg, args...)))
	}
}
