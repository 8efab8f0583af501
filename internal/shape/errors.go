package shape

import (
	"fmt"
	"reflect"
)

// ResolutionError reports that the shape of a type cannot be determined.
// Callers treat it as fatal for that type.
type ResolutionError struct {
	Type   reflect.Type
	Reason string
}

func (e *ResolutionError) Error() string {
	if e.Type == nil {
		return fmt.Sprintf("cannot resolve shape: %s", e.Reason)
	}
	return fmt.Sprintf("cannot resolve shape of %s: %s", TypeName(e.Type), e.Reason)
}
