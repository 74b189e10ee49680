package ulogger

import "sync"

// TestingT is the subset of testing.T used by ErrorTestLogger, so it can be
// fed a mock in its own tests.
type TestingT interface {
	Helper()
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// ErrorTestLogger discards everything below error level. Useful in tests that
// exercise noisy paths on purpose.
type ErrorTestLogger struct {
	mu sync.Mutex
	t  TestingT
}

func NewErrorTestLogger(t TestingT) *ErrorTestLogger {
	return &ErrorTestLogger{t: t}
}

func (l *ErrorTestLogger) LogLevel() int { return 3 }

func (l *ErrorTestLogger) SetLogLevel(_ string) {}

func (l *ErrorTestLogger) Debugf(_ string, _ ...interface{}) {}

func (l *ErrorTestLogger) Infof(_ string, _ ...interface{}) {}

func (l *ErrorTestLogger) Warnf(_ string, _ ...interface{}) {}

func (l *ErrorTestLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.t.Helper()
	l.t.Errorf("ERROR: "+format, args...)
}

func (l *ErrorTestLogger) Fatalf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.t.Helper()
	l.t.Fatalf("FATAL: "+format, args...)
}

func (l *ErrorTestLogger) New(_ string, _ ...Option) Logger {
	return l
}

func (l *ErrorTestLogger) Duplicate(_ ...Option) Logger {
	return l
}
