package ghclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/ghusers/internal/model"
)

// ErrRateLimited is returned by the transport when the GitHub API rate limit
// is known to be exhausted and a request is refused without hitting the network.
var ErrRateLimited = errors.New("rate limited")

// Kind is the category of a client error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindDecoding
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindValidation
	KindRateLimited
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindDecoding:
		return "decoding"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindRateLimited:
		return "rate_limited"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is the single error type surfaced by the client and data source.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return "not found"
	case KindUnauthorized:
		if e.Message != "" {
			return "network error: " + e.Message
		}
		return "unauthorized access"
	case KindServer:
		return fmt.Sprintf("server error: %d", e.StatusCode)
	case KindDecoding:
		return "decoding error: " + e.Message
	case KindNetwork, KindForbidden, KindValidation, KindRateLimited:
		return "network error: " + e.Message
	default:
		if e.Message != "" {
			return "unknown error: " + e.Message
		}
		return "unknown error occurred"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsRateLimited reports whether err is a rate limit refusal.
func IsRateLimited(err error) bool {
	return KindOf(err) == KindRateLimited || errors.Is(err, ErrRateLimited)
}

// IsNetwork reports whether err belongs to the network family. Forbidden,
// validation and rate limit errors are folded into it.
func IsNetwork(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindForbidden, KindValidation, KindRateLimited:
		return true
	}
	return false
}

func networkError(msg string, err error) *Error {
	return &Error{Kind: KindNetwork, Message: msg, Err: err}
}

const rateLimitMessage = "Rate limit exceeded. Please try again later."

// statusError maps a non-2xx status and the server's message to an *Error.
func statusError(status int, message string, err error) *Error {
	switch {
	case status == http.StatusNotFound:
		return &Error{Kind: KindNotFound, StatusCode: status, Err: err}
	case status == http.StatusUnauthorized:
		e := &Error{Kind: KindUnauthorized, StatusCode: status, Err: err}
		if message != "" {
			e.Message = "Unauthorized: " + message
		}
		return e
	case status == http.StatusForbidden:
		if strings.Contains(strings.ToLower(message), "rate limit") {
			return &Error{Kind: KindRateLimited, StatusCode: status, Message: rateLimitMessage, Err: err}
		}
		if message == "" {
			return &Error{Kind: KindForbidden, StatusCode: status, Message: "Forbidden: Check User-Agent header and request format", Err: err}
		}
		return &Error{Kind: KindForbidden, StatusCode: status, Message: "Forbidden: " + message, Err: err}
	case status == http.StatusUnprocessableEntity:
		msg := "Validation failed"
		if message != "" {
			msg += ": " + message
		}
		return &Error{Kind: KindValidation, StatusCode: status, Message: msg, Err: err}
	case status == http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, StatusCode: status, Message: rateLimitMessage, Err: err}
	default:
		return &Error{Kind: KindServer, StatusCode: status, Message: message, Err: err}
	}
}

// classify turns anything returned by go-github, net/http or encoding/json
// into an *Error. It never returns nil for a non-nil input.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var clientErr *Error
	if errors.As(err, &clientErr) {
		return clientErr
	}

	if errors.Is(err, ErrRateLimited) {
		return &Error{Kind: KindRateLimited, Message: rateLimitMessage, Err: err}
	}

	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		status := http.StatusForbidden
		if rateErr.Response != nil {
			status = rateErr.Response.StatusCode
		}
		return &Error{Kind: KindRateLimited, StatusCode: status, Message: rateLimitMessage, Err: err}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		status := http.StatusForbidden
		if abuseErr.Response != nil {
			status = abuseErr.Response.StatusCode
		}
		return &Error{Kind: KindRateLimited, StatusCode: status, Message: rateLimitMessage, Err: err}
	}

	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return statusError(respErr.Response.StatusCode, respErr.Message, err)
	}

	var acceptedErr *gh.AcceptedError
	if errors.As(err, &acceptedErr) {
		return networkError("Request accepted but results are not ready yet", err)
	}

	if decodeErr := decodeError(err); decodeErr != nil {
		return &Error{Kind: KindDecoding, Message: decodeErr.Error(), Err: decodeErr}
	}

	if errors.Is(err, context.Canceled) {
		return networkError("Request cancelled", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return networkError("Request timed out", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return networkError("Request timed out", err)
	}
	if isOffline(err) {
		return networkError("No internet connection", err)
	}

	return networkError(err.Error(), err)
}

func isOffline(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// DecodeErrorKind describes why a response body could not be decoded.
type DecodeErrorKind string

const (
	DecodeTypeMismatch  DecodeErrorKind = "type mismatch"
	DecodeKeyNotFound   DecodeErrorKind = "key not found"
	DecodeValueNotFound DecodeErrorKind = "value not found"
	DecodeDataCorrupted DecodeErrorKind = "data corrupted"
)

// DecodeError names the offending field path of a failed decode.
type DecodeError struct {
	Kind   DecodeErrorKind
	Path   string
	Detail string
	Err    error
}

func (e *DecodeError) Error() string {
	path := e.Path
	if path == "" {
		path = "<root>"
	}
	msg := fmt.Sprintf("%s at path: %s", e.Kind, path)
	if e.Detail != "" {
		msg += " - " + e.Detail
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeError(err error) *DecodeError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &DecodeError{
			Kind:   DecodeTypeMismatch,
			Path:   typeErr.Field,
			Detail: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			Err:    err,
		}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &DecodeError{
			Kind:   DecodeDataCorrupted,
			Detail: fmt.Sprintf("%v (offset %d)", syntaxErr, syntaxErr.Offset),
			Err:    err,
		}
	}

	var missing *model.MissingKeyError
	if errors.As(err, &missing) {
		return &DecodeError{Kind: DecodeKeyNotFound, Path: missing.Path, Err: err}
	}

	if errors.Is(err, errEmptyBody) {
		return &DecodeError{Kind: DecodeValueNotFound, Detail: "empty response body", Err: err}
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		return &DecodeError{Kind: DecodeDataCorrupted, Detail: "unexpected end of JSON input", Err: err}
	}

	return nil
}

var errEmptyBody = errors.New("empty response body")
