/*
 * GraphGen
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package schema

import (
	"errors"
	"fmt"
)

/*
Error is a schema related error. All schema validation failures are
reported as a single Error whose detail lists every violation.
*/
type Error struct {
	Type   error  // Error type (to be used for equal checks)
	Detail string // Details of this error
}

/*
Error returns a human-readable string representation of this error.
*/
func (se *Error) Error() string {
	if se.Detail != "" {
		return fmt.Sprintf("SchemaError: %v (%v)", se.Type, se.Detail)
	}

	return fmt.Sprintf("SchemaError: %v", se.Type)
}

/*
Schema related error types
*/
var (
	ErrInvalidDocument = errors.New("Invalid schema document")
	ErrInvalidProperty = errors.New("Invalid property declaration")
	ErrInvalidDegree   = errors.New("Invalid degree declaration")
	ErrInvalidShares   = errors.New("Invalid vertex type shares")
	ErrUnknownType     = errors.New("Unknown type reference")
)
