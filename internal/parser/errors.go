package parser

import "fmt"

// MalformedDescriptorError reports a descriptor violating the
// free/virtual/member classification invariant.
type MalformedDescriptorError struct {
	Method string
	Reason string
}

func (e *MalformedDescriptorError) Error() string {
	return fmt.Sprintf("malformed descriptor %q: %s", e.Method, e.Reason)
}
