package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

func Init() {
	logger = logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)
}

// SetLevel applies a textual level such as "debug"; unknown values keep info.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		Get().WithField("level", level).Warn("Unknown log level, keeping info")
		return
	}
	Get().SetLevel(lvl)
}

// SetOutput redirects log lines, e.g. away from the interactive terminal.
func SetOutput(w io.Writer) {
	Get().SetOutput(w)
}

// OpenFile appends log lines to path, creating its directory. The returned
// file must be closed by the caller; "stderr" or "" leaves output unchanged.
func OpenFile(path string) (io.Closer, error) {
	if path == "" || path == "stderr" {
		return io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	Get().SetOutput(f)
	return f, nil
}

func Get() *logrus.Logger {
	once.Do(func() {
		if logger == nil {
			Init()
		}
	})
	return logger
}
