package console

import "github.com/goliatone/go-logger/glog"

// NewDefaultLogger builds the console's standard logger. Components accept
// any Logger; this is the one wired by default in application binaries.
func NewDefaultLogger(name string) Logger {
	return glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName(name),
	)
}
