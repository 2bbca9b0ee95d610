package contract

import (
	"github.com/golang/glog"
)

// failfast logs the message with the caller's location and panics.  Violations are programming errors in
// the engine itself, never problems with the input being rewritten.
func failfast(msg string) {
	glog.ErrorDepth(2, msg)
	panic(msg)
}
