package tasks

import (
	"sync/atomic"
	"time"
)

// Status is the outcome of the most recent ingestion run. Error is set only
// when the run itself failed, never for individual feeds.
type Status struct {
	At         *time.Time `json:"at"`
	DurationMs *int64     `json:"durationMs"`
	TotalNew   int        `json:"totalNew"`
	Error      *string    `json:"error"`
}

// StatusCell holds the latest Status. Each run replaces it as a whole.
type StatusCell struct {
	current atomic.Pointer[Status]
}

func NewStatusCell() *StatusCell {
	return &StatusCell{}
}

func (c *StatusCell) Load() Status {
	if s := c.current.Load(); s != nil {
		return *s
	}
	return Status{}
}

func (c *StatusCell) Store(s Status) {
	c.current.Store(&s)
}
