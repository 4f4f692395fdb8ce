// Package logging provides the named loggers used across the library.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var logger = newLogger()

// DefaultFieldHook stamps every entry with the component it came from.
type DefaultFieldHook struct {
	Component string
}

func (hook *DefaultFieldHook) Fire(entry *logrus.Entry) error {
	entry.Data["component"] = hook.Component
	return nil
}

func (hook *DefaultFieldHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{
		ForceQuote:      true,
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	l.AddHook(&DefaultFieldHook{Component: "reqresp"})
	return l
}

// GetLogger returns an entry tagged with logName
func GetLogger(name string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"logName": name,
	})
}

// Configure sets the level and formatter ("text" or "json") of all loggers
func Configure(level, format string) error {
	level = strings.TrimSpace(level)
	if level == "" {
		level = "warn"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{
			ForceQuote:      true,
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
		})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}

// SetOutput redirects all loggers
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}
