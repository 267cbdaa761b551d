// Package logging adapts logrus to the key/value Logger used by the
// acquisition pipeline and the config loader.
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Logger writes key/value messages through a logrus logger.
type Logger struct {
	entry *logrus.Entry
}

// New creates a text logger writing to out at the named level ("debug",
// "info", "warn", "error"). An empty level means info.
func New(out io.Writer, level string) (*Logger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableQuote:     true,
	})
	return &Logger{entry: logrus.NewEntry(l)}, nil
}

// With returns a logger that adds the given pairs to every message.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(fields(keysAndValues))}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Info(msg)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Warn(msg)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Error(msg)
}

// fields pairs up keysAndValues. A trailing key without a value is kept
// under "!BADKEY" so it still shows up in the output.
func fields(keysAndValues []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			f["!BADKEY"] = keysAndValues[i]
			break
		}
		f[key] = keysAndValues[i+1]
	}
	return f
}
