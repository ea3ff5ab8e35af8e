package mission

import (
	"errors"
	"fmt"
	"strings"
)

// Error categories. Every typed error below unwraps to one of these so
// callers can classify failures with errors.Is.
var (
	ErrFormat         = errors.New("format error")
	ErrParse          = errors.New("parse error")
	ErrAction         = errors.New("invalid action")
	ErrInvalidMission = errors.New("invalid mission")
)

// RecordLengthError reports a record with the wrong number of fields.
type RecordLengthError struct {
	Got, Want int
}

func (e *RecordLengthError) Error() string {
	return fmt.Sprintf("incorrect record length: got %d fields, expected %d", e.Got, e.Want)
}

func (e *RecordLengthError) Unwrap() error { return ErrFormat }

// EnumError reports an integer code outside an enumeration's range.
type EnumError struct {
	Enum  string
	Value int64
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("cannot convert %d to %s", e.Value, e.Enum)
}

func (e *EnumError) Unwrap() error { return ErrFormat }

// ParseError reports a malformed numeric field.
type ParseError struct {
	Field int
	Name  string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("field #%d (%s): cannot parse %q: %v", e.Field, e.Name, e.Value, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// ActionTypeError reports an action slot whose type code is not known.
type ActionTypeError struct {
	Slot int
	Type int32
}

func (e *ActionTypeError) Error() string {
	return fmt.Sprintf("action slot %d: invalid action type %d", e.Slot, e.Type)
}

func (e *ActionTypeError) Unwrap() error { return ErrAction }

// InvalidMissionError lists every referential problem found by New.
type InvalidMissionError struct {
	Problems []string
}

func (e *InvalidMissionError) Error() string {
	if len(e.Problems) == 0 {
		return ErrInvalidMission.Error()
	}
	return ErrInvalidMission.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *InvalidMissionError) Unwrap() error { return ErrInvalidMission }

// RowError attaches the zero-based data row number to an ingestion error.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }
