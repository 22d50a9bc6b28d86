package openaq

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned before any network call when no key is configured.
var ErrMissingAPIKey = errors.New("API Key is missing!")

type Op string

const (
	OpSensors      Op = "sensors"
	OpMeasurements Op = "measurements"
)

// StatusError reports a non-200 answer from the upstream API. Body holds the
// raw response text.
type StatusError struct {
	Op         Op
	SensorID   int64
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Op == OpMeasurements {
		return fmt.Sprintf("Failed to retrieve measurements for sensor %d. Status: %d, %s", e.SensorID, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("Failed to retrieve sensors. Status: %d, %s", e.StatusCode, e.Body)
}

// FetchError wraps a transport or decoding fault for a request that never
// produced a usable status.
type FetchError struct {
	Op       Op
	SensorID int64
	Err      error
}

func (e *FetchError) Error() string {
	if e.Op == OpMeasurements {
		return fmt.Sprintf("Failed to retrieve measurements for sensor %d: %v", e.SensorID, e.Err)
	}
	return fmt.Sprintf("Failed to retrieve sensors: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
