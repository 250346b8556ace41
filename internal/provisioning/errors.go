package provisioning

import "fmt"

// CreateError reports that the create call failed or did not yield a
// resource identifier. It is permanent for the orchestration run.
type CreateError struct {
	Kind string
	Err  error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("failed to create %s: %v", e.Kind, e.Err)
}

func (e *CreateError) Unwrap() error {
	return e.Err
}

// ExtractionError reports that a required field could not be derived from
// an otherwise successful response. It is never retried: the response was
// delivered, the payload is just not what the kind expects.
type ExtractionError struct {
	What string // "resource id", "state", "run id"
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s: %v", e.What, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
