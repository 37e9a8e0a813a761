// Package log wires the process-wide logger used by every component of
// the receiver: a single leveled github.com/op/go-logging backend, with
// a syslog sink attempted first and a colorized stderr sink as fallback.
package log

import (
	stdlog "log"
	"log/syslog"
	"os"

	"github.com/op/go-logging"
)

// Log is the shared logger. Every package in this module logs through it
// rather than carrying its own *logging.Logger, matching the teacher's
// single-package-global convention.
var Log = logging.MustGetLogger("wthrcv")

var syslogFormat = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{level:.6s} ▶ %{message}`,
)

var stderrFormat = logging.MustStringFormatter(
	`%{color}waltham-receiver ▶ %{message}%{color:reset}`,
)

// Setup installs the backend and level for Log. trySyslog attempts a
// syslog backend first (as the daemon normally runs detached); on
// failure it falls back to a formatted stderr backend.
func Setup(defaultLevel logging.Level, trySyslog bool) *logging.Logger {
	var backend logging.Backend
	if trySyslog {
		var err error
		backend, err = logging.NewSyslogBackendPriority("wthrcv", syslog.LOG_NOTICE)
		if err == nil {
			logging.SetFormatter(syslogFormat)
			if syslogBackend, ok := backend.(*logging.SyslogBackend); ok {
				stdlog.SetOutput(syslogBackend.Writer)
			}
		} else {
			backend = nil
		}
	}
	if backend == nil {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
		logging.SetFormatter(stderrFormat)
	}

	leveled := logging.AddModuleLevel(backend)
	switch os.Getenv("WTH_LOG_LEVEL") {
	case "CRITICAL":
		leveled.SetLevel(logging.CRITICAL, "wthrcv")
	case "ERROR":
		leveled.SetLevel(logging.ERROR, "wthrcv")
	case "WARNING":
		leveled.SetLevel(logging.WARNING, "wthrcv")
	case "NOTICE":
		leveled.SetLevel(logging.NOTICE, "wthrcv")
	case "INFO":
		leveled.SetLevel(logging.INFO, "wthrcv")
	case "DEBUG":
		leveled.SetLevel(logging.DEBUG, "wthrcv")
	default:
		leveled.SetLevel(defaultLevel, "wthrcv")
	}

	logging.SetBackend(leveled)
	return Log
}

// RecoverToLog runs fn, logging and swallowing any panic instead of
// propagating it. Used to isolate a single client's dispatch handler so a
// bug in one object's handler cannot take down the event loop.
func RecoverToLog(fn func(), onPanic func(recovered interface{})) {
	defer func() {
		if r := recover(); r != nil {
			Log.Error("recovered panic: ", r)
			if onPanic != nil {
				onPanic(r)
			}
		}
	}()
	fn()
}
