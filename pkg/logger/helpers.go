package logger

// LogRequest logs a completed HTTP request at a level matching its status
func LogRequest(l Logger, method, url string, statusCode int, durationMs int64) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	switch {
	case statusCode >= 500:
		l.ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		l.WarnWithFields("HTTP request client error", fields)
	default:
		l.DebugWithFields("HTTP request completed", fields)
	}
}

// LogDownload logs the outcome of a single guide PDF download
func LogDownload(l Logger, code, filename string, err error) {
	entry := l.WithFields(map[string]interface{}{
		"subject_code": code,
		"file":         filename,
	})

	if err != nil {
		entry.WithError(err).Error("Download failed")
		return
	}
	entry.Info("Download completed")
}

// LogComponentStart logs when a pipeline stage starts
func LogComponentStart(l Logger, component string, config map[string]interface{}) {
	entry := l.WithField("component", component)
	if len(config) > 0 {
		entry = entry.WithFields(config)
	}
	entry.Info("Component started")
}

// NewNopLogger creates a no-operation logger
func NewNopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (n nopLogger) Debug(string)                                   {}
func (n nopLogger) Info(string)                                    {}
func (n nopLogger) Warn(string)                                    {}
func (n nopLogger) Error(string)                                   {}
func (n nopLogger) WithField(string, interface{}) Logger           { return n }
func (n nopLogger) WithFields(map[string]interface{}) Logger       { return n }
func (n nopLogger) WithError(error) Logger                         { return n }
func (n nopLogger) DebugWithFields(string, map[string]interface{}) {}
func (n nopLogger) InfoWithFields(string, map[string]interface{})  {}
func (n nopLogger) WarnWithFields(string, map[string]interface{})  {}
func (n nopLogger) ErrorWithFields(string, map[string]interface{}) {}
