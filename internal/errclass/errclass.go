//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/rbmk-project/rbmk/blob/v0.17.0/pkg/common/errclass/errclass.go
//

// Package errclass classifies Go errors into short, stable string labels
// suitable for structured logging and for the "internal unexpected" error
// category in the HTTP control surface (see the Error Handling section of
// the specification this module implements).
package errclass

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
)

// EOF labels an [io.EOF] error.
const EOF = "EOF"

// ETIMEDOUT labels a deadline-exceeded or syscall timeout.
const ETIMEDOUT = "ETIMEDOUT"

// ECANCELED labels a context-canceled error.
const ECANCELED = "ECANCELED"

// EGENERIC labels any error that does not match a more specific class.
const EGENERIC = "EGENERIC"

// New maps err to a short classification string.
//
// A nil error classifies to the empty string, matching [DefaultErrClassifier]'s
// contract in the root package. Classification order: context errors first
// (deadline/cancel), then io.EOF, then OS-level syscall errors, then generic
// net.Error timeouts, then a catch-all.
func New(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ETIMEDOUT
	case errors.Is(err, context.Canceled):
		return ECANCELED
	case errors.Is(err, io.EOF):
		return EOF
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		if s, ok := classifyErrno(errno); ok {
			return s
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ETIMEDOUT
	}
	return EGENERIC
}

// classifyErrno maps an OS-specific syscall.Errno to a classification
// string using the platform error tables in unix.go / windows.go.
func classifyErrno(errno syscall.Errno) (string, bool) {
	switch errno {
	case errEADDRNOTAVAIL:
		return "EADDRNOTAVAIL", true
	case errEADDRINUSE:
		return "EADDRINUSE", true
	case errECONNABORTED:
		return "ECONNABORTED", true
	case errECONNREFUSED:
		return "ECONNREFUSED", true
	case errECONNRESET:
		return "ECONNRESET", true
	case errEHOSTUNREACH:
		return "EHOSTUNREACH", true
	case errEINVAL:
		return "EINVAL", true
	case errEINTR:
		return "EINTR", true
	case errENETDOWN:
		return "ENETDOWN", true
	case errENETUNREACH:
		return "ENETUNREACH", true
	case errENOBUFS:
		return "ENOBUFS", true
	case errENOTCONN:
		return "ENOTCONN", true
	case errEPROTONOSUPPORT:
		return "EPROTONOSUPPORT", true
	case errETIMEDOUT:
		return ETIMEDOUT, true
	default:
		return "", false
	}
}
