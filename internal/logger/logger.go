// Package logger provides the zerolog logger used by all TechTive processes.
package logger

import (
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

// New returns a logger tagged with the service name. Call sites use .Stack()
// on error events to include stack traces.
func New(service string) zerolog.Logger {
	// Wire zerolog to github.com/pkg/errors so stacks render even for std
	// errors when .Stack() is requested.
	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		type stackTracer interface{ StackTrace() pkgerrors.StackTrace }
		if _, ok := err.(stackTracer); !ok {
			err = pkgerrors.WithStack(err)
		}
		return zpkgerrors.MarshalStack(err)
	}

	return zerolog.New(os.Stdout).With().
		Str("service", service).
		Timestamp().
		Logger()
}
