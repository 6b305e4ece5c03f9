package sd2

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error codes. These are a stable external contract (spec §6): callers
// may match on Code without depending on Message wording.
const (
	E1000 = "E1000" // generic syntax error
	E1001 = "E1001" // body '{' not on same line as header
	E1002 = "E1002" // qualifier continuation '|' not in column 1
	E1004 = "E1004" // '|' outside of qualifier continuation
	E1005 = "E1005" // '(' of tuple constructor not on same line as name
	E2003 = "E2003" // duplicate map key
	E2101 = "E2101" // qualifier without arguments
	E3001 = "E3001" // temporal value shape/range error
	E3002 = "E3002" // empty duration/period
	E3003 = "E3003" // fractional seconds precision exceeded
	E3004 = "E3004" // illegal calendar component in duration
	E3005 = "E3005" // illegal time component in period
	E4001 = "E4001" // unterminated single-delimited foreign block
	E4002 = "E4002" // bad delimiter after '@'
	E4003 = "E4003" // whitespace between constructor name and '@'
	E4004 = "E4004" // reserved word used as foreign-code constructor
	E5001 = "E5001" // unknown constructor / missing '>' in type expr
	E6002 = "E6002" // newline inside backtick identifier
	E7001 = "E7001" // signed hex/binary literal
)

// ErrorRecord is the structured error the parser, lexer and
// constructor handlers all raise through: a stable code, a
// human-readable message, and the location the error occurred at.
type ErrorRecord struct {
	Code    string
	Message string
	Loc     Location
}

// Error implements the error interface.
func (e *ErrorRecord) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Code, e.Loc, e.Message)
}

// newError builds an ErrorRecord, wrapped with a stack trace via
// pkg/errors so callers further up the stack can still inspect the
// original site with errors.Cause/errors.As.
func newError(code string, loc Location, format string, args ...interface{}) error {
	rec := &ErrorRecord{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Loc:     loc,
	}
	return errors.WithStack(rec)
}

// AsErrorRecord unwraps err looking for the *ErrorRecord that produced
// it, following the cause chain built by newError.
func AsErrorRecord(err error) (*ErrorRecord, bool) {
	type causer interface{ Cause() error }

	for err != nil {
		if rec, ok := err.(*ErrorRecord); ok {
			return rec, true
		}
		c, ok := err.(causer)
		if !ok {
			return nil, false
		}
		err = c.Cause()
	}
	return nil, false
}
