package async

import (
	"fmt"
	"log"
	"os"
)

// simpleLogger is a minimal logger interface to keep this package free of
// dependencies on the rest of the module
type simpleLogger interface {
	Errorf(format string, args ...any)
}

type defaultSimpleLogger struct {
	logger *log.Logger
}

func newDefaultSimpleLogger() simpleLogger {
	return &defaultSimpleLogger{
		logger: log.New(os.Stderr, "[ERROR] ", log.LstdFlags|log.Lshortfile),
	}
}

func (l *defaultSimpleLogger) Errorf(format string, args ...any) {
	l.logger.Output(3, fmt.Sprintf(format, args...))
}
