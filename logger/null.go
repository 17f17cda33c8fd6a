package logger

// NullLogger discards every message. It is the library default so the
// engine stays silent unless a caller wires a real logger.
type NullLogger struct{}

func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (l *NullLogger) Debug(msg string, fields ...Field) {}

func (l *NullLogger) Info(msg string, fields ...Field) {}

func (l *NullLogger) Warn(msg string, fields ...Field) {}

func (l *NullLogger) Error(msg string, fields ...Field) {}
