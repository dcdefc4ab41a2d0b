package errs

import (
	"errors"
	"strconv"
	"strings"
)

// CodeError carries a stable numeric code alongside the message so gin
// handlers can map failures to HTTP statuses without string matching.
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

func (e *CodeError) clone() *CodeError {
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: e.Detail}
}

// WithDetail returns a copy carrying extra context; the sentinel itself is
// never mutated so errors.Is keeps working.
func (e *CodeError) WithDetail(detail string) *CodeError {
	out := e.clone()
	if out.Detail == "" {
		out.Detail = detail
	} else {
		out.Detail += ", " + detail
	}
	return out
}

func (e *CodeError) Is(err error) bool {
	var ce *CodeError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == e.Code
}

// IsCode reports whether err (or anything it wraps) is a CodeError with the
// same code as target.
func IsCode(err error, target *CodeError) bool {
	if err == nil || target == nil {
		return false
	}
	var ce *CodeError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == target.Code
}
