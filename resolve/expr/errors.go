package expr

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"errors"
	"fmt"
)

// ErrSyntax is returned for expressions which cannot be parsed.
var ErrSyntax = errors.New("expression syntax error")

// ErrUndefined is returned for references to unknown variables.
var ErrUndefined = errors.New("undefined variable")

// ErrType is returned for operations on operands of unsuitable types.
var ErrType = errors.New("type error")

func syntaxError(pos int, msg string) error {
	return fmt.Errorf("%w at %d: %s", ErrSyntax, pos, msg)
}

func typeError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrType, fmt.Sprintf(format, args...))
}
