package predictor

import (
	"errors"
	"fmt"

	"github.com/kartoza/wine-quality/internal/quality"
)

// TransportError reports a network failure or a non-2xx status from the
// prediction endpoint. The response body is never parsed in that case.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func newStatusError(url string, code int, status string) *TransportError {
	if status == "" {
		status = fmt.Sprintf("%d", code)
	}
	return &TransportError{
		URL:        url,
		StatusCode: code,
		Err:        fmt.Errorf("%s for url: %s", status, url),
	}
}

// UnexpectedError reports anything that went wrong after a successful HTTP
// exchange, such as a malformed body or unexpected field types
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return e.Err.Error()
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// Kind tells which branch of an Outcome is populated
type Kind int

const (
	KindOK Kind = iota
	KindTransport
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindTransport:
		return "transport"
	case KindUnexpected:
		return "unexpected"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the result of one submission: either a display state or one of
// the two error kinds, never both
type Outcome struct {
	Kind    Kind
	Inputs  quality.Inputs
	Display *quality.DisplayState
	Err     error
}

func success(in quality.Inputs, d quality.DisplayState) Outcome {
	return Outcome{Kind: KindOK, Inputs: in, Display: &d}
}

// failure classifies err into a transport or unexpected outcome
func failure(in quality.Inputs, err error) Outcome {
	var te *TransportError
	if errors.As(err, &te) {
		return Outcome{Kind: KindTransport, Inputs: in, Err: err}
	}
	var ue *UnexpectedError
	if !errors.As(err, &ue) {
		err = &UnexpectedError{Err: err}
	}
	return Outcome{Kind: KindUnexpected, Inputs: in, Err: err}
}

// Message is the user-facing banner text for a failed outcome
func (o Outcome) Message() string {
	switch o.Kind {
	case KindTransport:
		return fmt.Sprintf("Error calling the API: %v", o.Err)
	case KindUnexpected:
		return fmt.Sprintf("Unexpected error: %v", o.Err)
	default:
		return ""
	}
}
