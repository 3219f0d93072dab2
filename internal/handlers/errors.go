package handlers

import (
	"errors"
	"io"

	"github.com/oremus-labs/webhook-receiver/internal/analyzer"
)

// BodyReadError reports a transport failure while reading the request body.
type BodyReadError struct {
	Err error
}

func (e *BodyReadError) Error() string { return e.Err.Error() }

func (e *BodyReadError) Unwrap() error { return e.Err }

// ParseError reports a request body that is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// readBody accumulates the whole body in memory.
func readBody(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, &BodyReadError{Err: err}
	}
	return body, nil
}

func parsePayload(body []byte) (interface{}, error) {
	payload, err := analyzer.Decode(body)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return payload, nil
}

// isClientError reports whether err should be answered with 400.
func isClientError(err error) bool {
	var readErr *BodyReadError
	var parseErr *ParseError
	return errors.As(err, &readErr) || errors.As(err, &parseErr)
}
