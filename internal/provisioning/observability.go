package provisioning

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-logr/logr"
)

// Logger is the minimal printf-style logging surface.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Observer defines the interface for structured observability during
// orchestration. Credentials never pass through an Observer.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured orchestration event.
type Event struct {
	Type      EventType         // Type of event
	Kind      string            // Resource kind ("cluster", "job", "instance-pool")
	Message   string            // Human-readable message
	Resource  string            // Resource name/ID if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of orchestration event.
type EventType string

const (
	// EventResourceCreating indicates a create call is being issued.
	EventResourceCreating EventType = "resource.creating"
	// EventResourceCreated indicates the create call succeeded.
	EventResourceCreated EventType = "resource.created"
	// EventResourceExists indicates the idempotency lookup found the
	// resource already present.
	EventResourceExists EventType = "resource.exists"
	// EventResourceFailed indicates the resource reached a failed state.
	EventResourceFailed EventType = "resource.failed"
	// EventResourceDeleting indicates a delete call is being issued.
	EventResourceDeleting EventType = "resource.deleting"
	// EventResourceDeleted indicates the delete completed.
	EventResourceDeleted EventType = "resource.deleted"

	// EventRetryWaiting indicates a backoff delay before re-attempting a
	// failed call.
	EventRetryWaiting EventType = "retry.waiting"
	// EventPollChecking indicates one status check and its observed state.
	EventPollChecking EventType = "poll.checking"
	// EventPollTimedOut indicates the poller gave up before a terminal state.
	EventPollTimedOut EventType = "poll.timedout"

	// EventOperationCompleted indicates a lifecycle operation finished.
	EventOperationCompleted EventType = "operation.completed"
)

// ConsoleObserver implements Observer using the standard log package.
type ConsoleObserver struct {
	contextFields map[string]string
}

// NewConsoleObserver creates a new console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{
		contextFields: make(map[string]string),
	}
}

// Printf implements the Logger interface.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Event implements Observer interface.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if event.Fields == nil {
		event.Fields = make(map[string]string)
	}
	for k, v := range o.contextFields {
		if _, exists := event.Fields[k]; !exists {
			event.Fields[k] = v
		}
	}

	log.Print(formatEvent(event))
}

// WithFields implements Observer interface.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	newFields := make(map[string]string)
	for k, v := range o.contextFields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &ConsoleObserver{
		contextFields: newFields,
	}
}

// formatEvent formats an event for console output.
func formatEvent(event Event) string {
	var parts []string

	parts = append(parts, string(event.Type))

	if event.Kind != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Kind))
	}
	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}

	parts = append(parts, event.Message)

	if len(event.Fields) > 0 {
		var fieldParts []string
		for k, v := range event.Fields {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%s", k, v))
		}
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(fieldParts, ", ")))
	}

	return strings.Join(parts, " ")
}

// LogrObserver adapts a logr.Logger into an Observer, for embedding the
// client where a structured logging sink already exists.
type LogrObserver struct {
	logger logr.Logger
}

// NewLogrObserver wraps the given logger.
func NewLogrObserver(logger logr.Logger) *LogrObserver {
	return &LogrObserver{logger: logger}
}

// Printf implements the Logger interface.
func (o *LogrObserver) Printf(format string, v ...interface{}) {
	o.logger.Info(fmt.Sprintf(format, v...))
}

// Event implements Observer interface.
func (o *LogrObserver) Event(event Event) {
	kv := []interface{}{"type", string(event.Type)}
	if event.Kind != "" {
		kv = append(kv, "kind", event.Kind)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	for k, v := range event.Fields {
		kv = append(kv, k, v)
	}
	o.logger.Info(event.Message, kv...)
}

// WithFields implements Observer interface.
func (o *LogrObserver) WithFields(fields map[string]string) Observer {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return &LogrObserver{logger: o.logger.WithValues(kv...)}
}
