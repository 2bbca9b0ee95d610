// Package logging configures glog for the reconstruct tool.
//
// Verbosity levels used across the code base:
//
//	3  per-file progress
//	5  each migrated service lookup
//	7  each skipped lookup and why
//	9  tree walk tracing
package logging

import (
	"flag"
	"strconv"

	"github.com/golang/glog"
)

var (
	LogToStderr = false // true if logging is being redirected to stderr.
	Verbose     = 0     // >0 if verbose logging is enabled at a particular level.
	LogFlow     = false // true to flow logging settings to child processes.
)

// InitLogging ensures the glog flags are set to the given values.  The flags live on the default flag set
// because glog registers them there; the CLI does not parse that set itself.
func InitLogging(logToStderr bool, verbose int, logFlow bool) {
	LogToStderr = logToStderr
	Verbose = verbose
	LogFlow = logFlow

	setFlag("logtostderr", strconv.FormatBool(logToStderr))
	setFlag("v", strconv.Itoa(verbose))
}

// Flags returns the glog flags a child process should inherit, or nil when LogFlow is off.
func Flags() []string {
	if !LogFlow {
		return nil
	}
	var flags []string
	if LogToStderr {
		flags = append(flags, "--logtostderr")
	}
	if Verbose > 0 {
		flags = append(flags, "-v="+strconv.Itoa(Verbose))
	}
	return flags
}

// V reports whether logging at the given level is enabled, in the style of glog.V.
func V(level glog.Level) glog.Verbose {
	return glog.V(level)
}

// Flush flushes any pending log output.
func Flush() {
	glog.Flush()
}

func setFlag(name, value string) {
	f := flag.Lookup(name)
	if f == nil {
		return
	}
	if err := f.Value.Set(value); err != nil {
		glog.Warningf("cannot set glog flag %s=%s: %v", name, value, err)
	}
}
