// Package logging configures the process-wide diagnostic logger used by
// teardown paths that must report a failure without aborting cleanup.
package logging

import "github.com/sirupsen/logrus"

// Log is the shared logger. Teardown code (Close, EndScan) writes to it at
// Warn level rather than returning every error it accumulates, per the
// layer's "errors during close are reported but do not abort the other
// steps" policy.
var Log = logrus.New()

func init() {
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// WarnErr logs err under op if non-nil. It is a no-op otherwise, so callers
// can write `logging.WarnErr("close.unpin", err)` unconditionally.
func WarnErr(op string, err error) {
	if err == nil {
		return
	}
	Log.WithField("op", op).Warn(err)
}
