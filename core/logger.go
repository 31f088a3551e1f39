package core

// Logger is implemented by the log services.
// Args may hold errors, maps of extra data or domain values that the implementation knows how to report.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
