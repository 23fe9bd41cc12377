package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/amlscreen/amlreport/pkg/archive"
	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/model"
	"github.com/amlscreen/amlreport/pkg/theme"
)

// errHelp is returned after -h printed flag usage.
var errHelp = flag.ErrHelp

// usageError marks invalid arguments.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	var ue *usageError
	switch {
	case err == nil, errors.Is(err, errHelp):
		return defaults.ExitSuccess
	case errors.As(err, &ue), errors.Is(err, theme.ErrInvalidConfig), errors.Is(err, archive.ErrNotFound):
		return defaults.ExitUserError
	case errors.Is(err, model.ErrInputShape):
		return defaults.ExitInputError
	}
	return defaults.ExitInternalError
}
