package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// FileLogger builds a logrus logger writing JSON lines to the given file and
// plain text to stdout. The returned file must be closed on shutdown.
func FileLogger(level logrus.Level, logPath string) (*os.File, *logrus.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(io.Discard)
	logger.AddHook(&writerHook{
		writer:    f,
		formatter: &logrus.JSONFormatter{},
	})
	logger.AddHook(&writerHook{
		writer:    os.Stdout,
		formatter: &logrus.TextFormatter{FullTimestamp: true},
	})
	return f, logger, nil
}

type writerHook struct {
	writer    io.Writer
	formatter logrus.Formatter
}

func (h *writerHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(line)
	return err
}

func (h *writerHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// ConsoleLogger returns a stdout-only logger, mainly for tests and tools.
func ConsoleLogger(level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}
