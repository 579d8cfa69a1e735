package batch

import (
	"fmt"

	"github.com/iota-uz/taskpool/modules/crowd/domain/tabular"
)

// ValidationFailedError is returned when an uploaded file parsed fine but
// does not match the template schema. The batch is not persisted.
type ValidationFailedError struct {
	Issues []tabular.Issue
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("uploaded file failed validation with %d issue(s)", len(e.Issues))
}
