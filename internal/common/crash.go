// -----------------------------------------------------------------------
// Crash Protection - panic reports written next to the regular logs
// -----------------------------------------------------------------------

package common

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// crashDir is where crash reports are written. InstallCrashHandler points it
// at the log directory during startup.
var crashDir = "./logs"

// InstallCrashHandler sets the directory crash reports are written to and
// makes sure it exists.
func InstallCrashHandler(logDir string) {
	if logDir != "" {
		crashDir = logDir
	}
	if err := os.MkdirAll(crashDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "crash handler: cannot create %s: %v\n", crashDir, err)
	}
}

// WriteCrashFile dumps a panic report to a timestamped file and returns its
// path. Called from recovery handlers; must not panic itself, so failures
// fall back to stderr.
func WriteCrashFile(panicVal interface{}, stackTrace string) string {
	var report strings.Builder

	fmt.Fprintf(&report, "volare crash report\n")
	fmt.Fprintf(&report, "time:    %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&report, "version: %s\n\n", GetFullVersion())
	fmt.Fprintf(&report, "panic: %v\n\n", panicVal)
	fmt.Fprintf(&report, "goroutine stack:\n%s\n", stackTrace)
	fmt.Fprintf(&report, "all goroutines (%d):\n%s\n", runtime.NumGoroutine(), allStacks())

	path := filepath.Join(crashDir, fmt.Sprintf("crash-%s.log", time.Now().Format("2006-01-02T15-04-05")))
	if err := os.WriteFile(path, []byte(report.String()), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "crash handler: cannot write %s: %v\n%s", path, err, report.String())
		return ""
	}

	fmt.Fprintf(os.Stderr, "crash report written to %s (panic: %v)\n", path, panicVal)
	return path
}

// GetStackTrace returns the calling goroutine's stack.
func GetStackTrace() string {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// allStacks captures every goroutine's stack, growing the buffer until the
// dump fits.
func allStacks() string {
	buf := make([]byte, 64*1024)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			return string(buf[:n])
		}
		buf = make([]byte, len(buf)*2)
	}
}
