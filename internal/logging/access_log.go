package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewGinWriter returns a writer that turns each line gin prints into a
// logrus JSON entry at the given level. It backs gin.DefaultWriter and
// gin.DefaultErrorWriter so gin's own output (route table, recovered
// panics) shares the format of the structured application log. Requests
// are logged by middleware.RequestLogger, not by gin.
func NewGinWriter(out io.Writer, logLevel string, level logrus.Level) *io.PipeWriter {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(ParseLogrusLevel(logLevel))
	return l.WithField("component", "gin").WriterLevel(level)
}
