package logger

import (
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var (
	logFormatter = &prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		ForceFormatting: true,
	}
)

// Init configures the standard logger. Results (duplicate listing, digest
// list) go to stdout, so all logging goes to stderr plus a rotating file.
func Init(logLevel int, logFilePath string) error {
	// set formatter
	logrus.SetFormatter(logFormatter)

	// set level
	switch logLevel {
	case 0:
		logrus.SetLevel(logrus.InfoLevel)
	case 1:
		logrus.SetLevel(logrus.DebugLevel)
	default:
		logrus.SetLevel(logrus.TraceLevel)
	}

	// set output(s)
	if logFilePath != "" {
		fileLogger := &lumberjack.Logger{
			Filename:   logFilePath,
			MaxSize:    5,
			MaxAge:     14,
			MaxBackups: 5,
		}

		logrus.SetOutput(io.MultiWriter(os.Stderr, fileLogger))
	} else {
		logrus.SetOutput(os.Stderr)
	}

	return nil
}

// GetLogger returns a component scoped log entry.
func GetLogger(prefix string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{"prefix": prefix})
}
