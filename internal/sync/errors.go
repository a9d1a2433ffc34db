package sync

import (
	"fmt"
	"strings"
)

// ValidationError is a malformed feed record or participant.
type ValidationError struct {
	ShortName string
	Username  string
	Reason    string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation: ")
	if e.ShortName != "" {
		fmt.Fprintf(&b, "course %q: ", e.ShortName)
	}
	if e.Username != "" {
		fmt.Fprintf(&b, "participant %q: ", e.Username)
	}
	b.WriteString(e.Reason)
	return b.String()
}

// ConfigurationError is fatal for the course it names: a missing category or
// a course without manual enrolment.
type ConfigurationError struct {
	ShortName string
	Reason    string
	Err       error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration: course %q: %s", e.ShortName, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// IntegrationError is a failure of a collaborator: the feed or the platform store.
type IntegrationError struct {
	Op  string
	Err error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("integration: %s: %v", e.Op, e.Err)
}

func (e *IntegrationError) Unwrap() error { return e.Err }

// BatchError stops a pass. Report holds what was done before the failure.
type BatchError struct {
	// Phase is the phase the pass was in when it failed.
	Phase     Phase
	ShortName string
	Err       error
	Report    *Report
}

func (e *BatchError) Error() string {
	if e.ShortName != "" {
		return fmt.Sprintf("sync %s: course %q: %v", e.Phase, e.ShortName, e.Err)
	}
	return fmt.Sprintf("sync %s: %v", e.Phase, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }
