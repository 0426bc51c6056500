package release

// debugLogger receives debug messages; nil disables them.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for range resolution.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}
