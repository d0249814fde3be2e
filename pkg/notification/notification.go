package notification

import (
	"time"
)

type Sender interface {
	CanSend() bool
	Send(title string, description string, runTime time.Duration, fields []Field, dryRun bool) error
	Name() string
}

// Field is one name/value pair of the summary embed.
type Field struct {
	Name   string
	Value  string
	Inline bool
}
