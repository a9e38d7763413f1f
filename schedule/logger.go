package schedule

// Logger receives the build trace. internal/logbook.Logbook satisfies it.
type Logger interface {
	Info(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any) {}
