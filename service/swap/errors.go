package swapsvc

import "errors"

// errors used by controllers

type ErrCode string

const (
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrInvalidTransition ErrCode = "INVALID_TRANSITION"
	ErrConflict          ErrCode = "CONFLICT"
	ErrOwnershipMismatch ErrCode = "OWNERSHIP_MISMATCH"
	ErrValidation        ErrCode = "VALIDATION_ERROR"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string {
	if e.msg == "" {
		return string(e.code)
	}
	return string(e.code) + ": " + e.msg
}
func (e codedError) Code() ErrCode { return e.code }

func makeErr(c ErrCode, msg string) error { return codedError{code: c, msg: msg} }

// Code extracts the error code, or "" for uncoded errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}
