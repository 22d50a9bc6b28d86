package types

import (
	"encoding/json"
	"time"
)

// Measurement is one daily observation reported by a sensor.
type Measurement struct {
	SensorID  int64   `json:"sensor_id"`
	Date      string  `json:"date"`
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
}

// ErrorBody is the wire form of every error value.
type ErrorBody struct {
	Error string `json:"error"`
}

// Entry is one element of the flattened result: either a measurement or the
// error recorded for a sensor whose fetch failed. Exactly one of Measurement
// and Err is set.
type Entry struct {
	SensorID    int64
	Measurement *Measurement
	Err         error
}

func MeasurementEntry(m Measurement) Entry {
	return Entry{SensorID: m.SensorID, Measurement: &m}
}

func ErrorEntry(sensorID int64, err error) Entry {
	return Entry{SensorID: sensorID, Err: err}
}

func (e Entry) IsError() bool {
	return e.Err != nil
}

// MarshalJSON writes the bare measurement object or the bare {"error": ...}
// object, so clients see the flat list the API has always returned.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Err != nil {
		return json.Marshal(ErrorBody{Error: e.Err.Error()})
	}
	if e.Measurement == nil {
		return []byte("null"), nil
	}
	return json.Marshal(e.Measurement)
}

// Result is the outcome of one successful ingestion run.
type Result struct {
	LocationID int64
	From       time.Time
	To         time.Time
	Entries    []Entry
}

// Measurements returns the measurement entries in order, skipping errors.
func (r Result) Measurements() []Measurement {
	out := make([]Measurement, 0, len(r.Entries))
	for _, e := range r.Entries {
		if e.Measurement != nil {
			out = append(out, *e.Measurement)
		}
	}
	return out
}

func (r Result) Failures() int {
	n := 0
	for _, e := range r.Entries {
		if e.IsError() {
			n++
		}
	}
	return n
}

// Batch is the payload published to the message broker after each run.
type Batch struct {
	LocationID   int64         `json:"location_id"`
	From         time.Time     `json:"datetime_from"`
	To           time.Time     `json:"datetime_to"`
	FetchedAt    time.Time     `json:"fetched_at"`
	Measurements []Measurement `json:"measurements"`
}
