package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a structured log entry tagged with the service name and
// hostname. Log lines are JSON so they can be shipped as-is.
func New(service string) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})

	host, _ := os.Hostname()
	return l.WithFields(logrus.Fields{
		"service":  service,
		"hostname": host,
	})
}
