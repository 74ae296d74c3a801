package argbind

import (
	"fmt"
	"strings"
)

// ErrorCode identifies the kind of a binding failure.
type ErrorCode string

const (
	CodeReservedName       ErrorCode = "ReservedNameError"
	CodeUndefinedVariable  ErrorCode = "UndefinedVariableError"
	CodeUnexpectedArgument ErrorCode = "UnexpectedArgumentError"
	CodeMissingArguments   ErrorCode = "MissingArgumentsError"
	CodeMissingSeparator   ErrorCode = "MissingSeparatorError"
	CodeTypeMismatch       ErrorCode = "TypeMismatchError"
	CodeInvalidInteger     ErrorCode = "InvalidIntegerError"
	CodeMissingKeysFlag    ErrorCode = "MissingDictionaryKeysFlag"
	CodeMissingValuesFlag  ErrorCode = "MissingDictionaryValuesFlag"
	CodeUnbalancedKeyValue ErrorCode = "UnbalancedKeyValueError"
	CodeIncompatibleSlot   ErrorCode = "IncompatibleSlotError"
)

// Sentinels for errors.Is.
var (
	ErrReservedName       = &Error{Code: CodeReservedName}
	ErrUndefinedVariable  = &Error{Code: CodeUndefinedVariable}
	ErrUnexpectedArgument = &Error{Code: CodeUnexpectedArgument}
	ErrMissingArguments   = &Error{Code: CodeMissingArguments}
	ErrMissingSeparator   = &Error{Code: CodeMissingSeparator}
	ErrTypeMismatch       = &Error{Code: CodeTypeMismatch}
	ErrInvalidInteger     = &Error{Code: CodeInvalidInteger}
	ErrMissingKeysFlag    = &Error{Code: CodeMissingKeysFlag}
	ErrMissingValuesFlag  = &Error{Code: CodeMissingValuesFlag}
	ErrUnbalancedKeyValue = &Error{Code: CodeUnbalancedKeyValue}
	ErrIncompatibleSlot   = &Error{Code: CodeIncompatibleSlot}
)

// Error is returned for every binding failure.
type Error struct {
	Code     ErrorCode
	CallSite string

	// Index is the position of the failing declaration or value,
	// or -1 when the failure is not tied to one.
	Index int

	// Token is the offending token, if any.
	Token string

	// Expected is set for TypeMismatchError.
	Expected Type

	// Keys and Values are set for UnbalancedKeyValueError.
	Keys   []string
	Values []string

	Message string
}

func (e *Error) Error() string {
	if e.CallSite == "" {
		return e.Message
	}
	return e.CallSite + ": " + e.Message
}

// Is matches sentinels by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Code == e.Code
}

func newError(code ErrorCode, index int, token string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Index:   index,
		Token:   token,
		Message: fmt.Sprintf(format, args...),
	}
}

func reservedName(index int, name string) *Error {
	return newError(CodeReservedName, index, name, "variable name %q is reserved", name)
}

func undefinedVariable(index int, name string) *Error {
	return newError(CodeUndefinedVariable, index, name, "variable %q is not defined", name)
}

func incompatibleSlot(index int, name string, t Type) *Error {
	err := newError(CodeIncompatibleSlot, index, name, "variable %q cannot hold %s values", name, t)
	err.Expected = t
	return err
}

func unexpectedDeclaration(index int, token string) *Error {
	return newError(CodeUnexpectedArgument, index, token, "unexpected argument %q", token)
}

func unexpectedValue(index int, token string) *Error {
	return newError(CodeUnexpectedArgument, index, token,
		"unexpected argument %q: only %d arguments declared", token, index)
}

func missingSeparator(index int) *Error {
	return newError(CodeMissingSeparator, index, "", "declarations are not terminated by %q", Separator)
}

func noValues() *Error {
	return newError(CodeMissingArguments, -1, "", "no values supplied")
}

func missingValue(index int, t Type) *Error {
	return newError(CodeMissingArguments, index, "", "missing value for %s argument %d", t, index)
}

func typeMismatch(index int, expected Type, tag string) *Error {
	err := newError(CodeTypeMismatch, index, tag, "expected %s for argument %d, got %s", expected, index, tag)
	err.Expected = expected
	return err
}

func invalidInteger(index int, token string) *Error {
	return newError(CodeInvalidInteger, index, token, "invalid integer %q for argument %d", token, index)
}

func missingKeysFlag(index int, token string, eof bool) *Error {
	if eof {
		return newError(CodeMissingKeysFlag, index, "", "expected -k or --keys for dictionary argument %d, got end of arguments", index)
	}
	return newError(CodeMissingKeysFlag, index, token, "expected -k or --keys for dictionary argument %d, got %s", index, token)
}

func missingValuesFlag(index int, token string, eof bool) *Error {
	if eof {
		return newError(CodeMissingValuesFlag, index, "", "expected -v or --values for dictionary argument %d, got end of arguments", index)
	}
	return newError(CodeMissingValuesFlag, index, token, "expected -v or --values for dictionary argument %d, got %s", index, token)
}

func unbalanced(index int, keys, values []string) *Error {
	err := newError(CodeUnbalancedKeyValue, index, "",
		"dictionary argument %d has %d keys (%s) but %d values (%s)",
		index, len(keys), strings.Join(keys, " "), len(values), strings.Join(values, " "))
	err.Keys = keys
	err.Values = values
	return err
}
