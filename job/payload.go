package job

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xraph/resque/id"
)

// ErrMalformedPayload is returned by DecodePayload for bytes that are not
// a valid payload.
var ErrMalformedPayload = errors.New("job: malformed payload")

// Payload is the unit stored in a queue.
type Payload struct {
	HandlerName string   `json:"handlerName"`
	Args        Args     `json:"args"`
	JobID       id.JobID `json:"jobId"`
}

// Encode serializes p to JSON.
func (p *Payload) Encode() ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("job: encode payload: %w", err)
	}
	return b, nil
}

// DecodePayload parses b. It fails with ErrMalformedPayload when b is not
// a JSON object, names no handler, carries non-object args, or holds an
// unparsable job id.
func DecodePayload(b []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if p.HandlerName == "" {
		return nil, fmt.Errorf("%w: missing handlerName", ErrMalformedPayload)
	}
	return &p, nil
}

// Job is a payload together with the queue it was taken from.
type Job struct {
	Queue string
	Payload
}
