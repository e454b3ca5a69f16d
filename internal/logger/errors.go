package logger

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrAppNameIsEmpty is returned if Log.AppName is not set.
	ErrAppNameIsEmpty = errors.New("log.AppName is required")

	// ErrServiceNameIsEmpty is returned if Log.ServiceName is not set.
	ErrServiceNameIsEmpty = errors.New("log.ServiceName is required")
)

// ErrorHandler reports events zerolog failed to write. The logger itself can not be used here.
func ErrorHandler(err error) {
	_, _ = fmt.Fprintln(os.Stderr, "zhongyue-admin: dropped log event:", err)
}
