package failure

import (
	"errors"
	"fmt"
	"time"

	"github.com/xraph/resque/id"
	"github.com/xraph/resque/job"
)

// Info describes why a job failed.
type Info struct {
	// Exception is the error class, e.g. "*net.OpError".
	Exception string `json:"exception"`
	// Error is the error message.
	Error string `json:"error"`
	// Backtrace lists the wrapped causes, outermost first.
	Backtrace []string `json:"backtrace"`
}

// Failure is one recorded failure. Records are never mutated.
type Failure struct {
	ID       id.FailureID `json:"id"`
	Queue    string       `json:"queue"`
	Payload  job.Payload  `json:"payload"`
	Worker   string       `json:"worker"`
	FailedAt time.Time    `json:"failed_at"`
	Info
}

// New builds a Failure with a fresh id and the current time.
func New(queue string, p *job.Payload, info Info, workerID string) *Failure {
	f := &Failure{
		ID:       id.NewFailureID(),
		Queue:    queue,
		Worker:   workerID,
		FailedAt: time.Now().UTC(),
		Info:     info,
	}
	if p != nil {
		f.Payload = *p
	}
	return f
}

// FromError describes err. The class is err's dynamic type and the
// backtrace is the chain of wrapped errors, joined errors included.
func FromError(err error) Info {
	if err == nil {
		return Info{}
	}
	return Info{
		Exception: fmt.Sprintf("%T", err),
		Error:     err.Error(),
		Backtrace: chain(err),
	}
}

func chain(err error) []string {
	var out []string
	var walk func(error)
	walk = func(e error) {
		for e != nil {
			out = append(out, fmt.Sprintf("%T: %s", e, e.Error()))
			if j, ok := e.(interface{ Unwrap() []error }); ok {
				for _, inner := range j.Unwrap() {
					walk(inner)
				}
				return
			}
			e = errors.Unwrap(e)
		}
	}
	walk(err)
	return out
}
