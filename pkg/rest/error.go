package rest

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

var (
	errUnsupportedScheme = errors.New("unsupported URL scheme")
	errMissingHost       = errors.New("missing host")
)

// Error is the error type produced by the request pipeline. Status-derived
// errors additionally carry the HTTP status code and any response body the
// appliance returned alongside it.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Status is the HTTP status code for status-derived kinds, 0 otherwise.
	Status int

	// Body is the response body returned with an error status, if any.
	Body []byte

	// Seq is the pipeline sequence number of the exchange that failed.
	Seq uint64

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("request failed: %s (HTTP %d)", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("request failed: %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("request failed: %s", e.Kind)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts a pipeline *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var pipelineErr *Error
	if errors.As(err, &pipelineErr) {
		return pipelineErr, true
	}
	return nil, false
}

// IsKind reports whether err carries the given pipeline Kind.
func IsKind(err error, kind Kind) bool {
	pipelineErr, ok := AsError(err)
	return ok && pipelineErr.Kind == kind
}

// classifyTransport maps a transport-level error onto the Kind taxonomy.
// It reports false when no specific mapping applies, in which case the
// caller falls back to the Request's FallbackKind.
func classifyTransport(err error) (Kind, bool) {
	if err == nil {
		return KindUnknown, false
	}

	// Deadline errors also satisfy net.Error, so check them first.
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout, true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout, true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindUnknownHost, true
	}

	var certVerifyErr *tls.CertificateVerificationError
	if errors.As(err, &certVerifyErr) {
		return KindInvalidCertificate, true
	}
	var unknownAuthorityErr x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthorityErr) {
		return KindInvalidCertificate, true
	}
	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return KindInvalidCertificate, true
	}
	var recordHeaderErr tls.RecordHeaderError
	if errors.As(err, &recordHeaderErr) {
		return KindTLSFailure, true
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.EHOSTDOWN):
		return KindUnreachable, true
	case errors.Is(err, syscall.ENETUNREACH),
		errors.Is(err, syscall.ENETDOWN):
		return KindNoNetwork, true
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE):
		return KindConnectionLost, true
	case errors.Is(err, syscall.ETIMEDOUT):
		return KindTimeout, true
	}

	// A connection torn down between request and response surfaces as EOF.
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return KindConnectionLost, true
	}

	return KindUnknown, false
}
