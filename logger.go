package imagetransform

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// LogLevelEnv enables stderr logging at the named level
// (debug, info, warn, error) without any code changes.
const LogLevelEnv = "IMAGE_TRANSFORM_LOG_LEVEL"

var loggerPtr atomic.Pointer[logrus.Logger]

func init() {
	loggerPtr.Store(newDefaultLogger())
}

// newDefaultLogger discards everything unless LogLevelEnv names a level.
func newDefaultLogger() *logrus.Logger {
	l := logrus.New()
	level, err := logrus.ParseLevel(strings.TrimSpace(os.Getenv(LogLevelEnv)))
	if err != nil || os.Getenv(LogLevelEnv) == "" {
		l.SetOutput(io.Discard)
		return l
	}
	l.SetOutput(os.Stderr)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// SetLogger installs the logger new pipelines use. Pass nil to restore the
// default, which is silent unless IMAGE_TRANSFORM_LOG_LEVEL is set.
//
// SetLogger is safe for concurrent use.
func SetLogger(l *logrus.Logger) {
	if l == nil {
		l = newDefaultLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the logger new pipelines use.
func Logger() *logrus.Logger {
	return loggerPtr.Load()
}
