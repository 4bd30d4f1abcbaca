package scheduling

import (
	errors2 "github.com/solutions/hire-cube/internal/protodef/errors"
)

func errValidation(summary string) error {
	return errors2.New(errors2.ServerErrorValidation, summary)
}

func errInvalidState(summary string) error {
	return errors2.New(errors2.ServerErrorInvalidState, summary)
}

func errConflict(code int, summary string) error {
	return errors2.New(code, summary)
}

func errNoPermission(summary string) error {
	return errors2.New(errors2.ServerErrorNoPermission, summary)
}
