package core

// Logger is the app-wide logging contract. Trailing args may carry an error
// and the acting parent record; implementations that report to an external
// service use the latter to attribute the event (see services/logger).
// Fatal logs and then exits the process.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
