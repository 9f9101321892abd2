package rpc

import (
	"errors"
	"fmt"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
)

// ErrCircuitOpen marks an endpoint skipped because its breaker is open.
var ErrCircuitOpen = errors.New("circuit open")

// EndpointError is the last error observed on one endpoint during a call.
type EndpointError struct {
	Endpoint string
	Err      error
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("endpoint %s: %v", e.Endpoint, e.Err)
}

func (e *EndpointError) Unwrap() error {
	return e.Err
}

// ExhaustedError is returned when no endpoint of a chain produced a result.
type ExhaustedError struct {
	Chain     model.Chain
	Operation string
	Cause     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s %s: all endpoints failed: %v", e.Chain, e.Operation, e.Cause)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Cause
}
