package tasks

import (
	"fmt"

	"github.com/google/uuid"
)

// Job is a unit of background work. Run executes on a worker and must only read the
// immutable snapshot it closes over. Done and Failed execute on the coordinator during Drain.
type Job struct {
	ID     uuid.UUID
	Name   string
	Run    func() (any, error)
	Done   func(result any)
	Failed func(err error)
}

// NewJob adapts typed run and completion functions to a Job.
func NewJob[T any](name string, run func() (T, error), done func(T)) Job {
	return Job{
		ID:   uuid.New(),
		Name: name,
		Run: func() (any, error) {
			return run()
		},
		Done: func(result any) {
			if done == nil {
				return
			}
			typed, _ := result.(T)
			done(typed)
		},
	}
}

// WithFailure returns a copy of job that calls failed on the coordinator when Run fails.
func (job Job) WithFailure(failed func(err error)) Job {
	job.Failed = failed
	return job
}

// runProtected converts a panic in Run into an error.
func runProtected(job Job) (result any, runError error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = nil
			runError = fmt.Errorf(errorJobPanicFormat, job.Name, recovered)
		}
	}()
	if job.Run == nil {
		return nil, nil
	}
	return job.Run()
}
