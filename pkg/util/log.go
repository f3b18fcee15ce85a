package util

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is shared by every package that does I/O. The validators and the
// RIB diff never log.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.InfoLevel)
	Logger.SetFormatter(textFormatter())
}

func textFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}
}

// Configure applies the CLI logging flags: warn level unless verbose, text
// or JSON records on stderr.
func Configure(verbose, jsonFormat bool) {
	level := logrus.WarnLevel
	if verbose {
		level = logrus.DebugLevel
	}
	Logger.SetLevel(level)
	if jsonFormat {
		SetJSONFormat()
	} else {
		Logger.SetFormatter(textFormatter())
	}
}

// SetLogLevel sets the logging level by name.
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	return nil
}

func SetLogOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// SetJSONFormat switches to one JSON object per record.
func SetJSONFormat() {
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
}

// WithConfig scopes a record to an IXP configuration document.
func WithConfig(name string) *logrus.Entry {
	return Logger.WithField("config", name)
}

// WithRouteServer scopes a record to a route server host.
func WithRouteServer(host string) *logrus.Entry {
	return Logger.WithField("route_server", host)
}

// WithSource scopes a record to a RIB source locator (file:, ssh:, redis:).
func WithSource(src fmt.Stringer) *logrus.Entry {
	return Logger.WithField("source", src.String())
}

func WithOperation(operation string) *logrus.Entry {
	return Logger.WithField("operation", operation)
}

func Debugf(format string, args ...interface{}) {
	Logger.Debugf(format, args...)
}

func Warnf(format string, args ...interface{}) {
	Logger.Warnf(format, args...)
}
