package service

import (
	"time"

	"github.com/sirupsen/logrus"
)

// logOperation emits a start log line and returns a closure that logs the
// outcome with elapsed time. Every service operation wraps itself in it, so
// the log stream shows operation, arguments, duration and result without any
// interception machinery.
func logOperation(log *logrus.Logger, op string, fields logrus.Fields) func(err error) {
	start := time.Now()
	entry := log.WithFields(fields).WithField("operation", op)
	entry.Debug("executing operation")
	return func(err error) {
		done := entry.WithField("elapsed_ms", time.Since(start).Milliseconds())
		if err != nil {
			done.WithError(err).Warn("operation failed")
			return
		}
		done.Info("operation completed")
	}
}
