package reconcile

import "fmt"

// DataIntegrityError means an external identifier arrived (via webhook or
// refresh) with no matching internal record: the record was never created or
// was deleted out of band. It is logged and acknowledged, never retried, and
// never auto-creates a record — automatic creation would mask the underlying
// bug.
type DataIntegrityError struct {
	Kind       string
	ExternalID string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("no internal %s record for external identifier %s", e.Kind, e.ExternalID)
}
