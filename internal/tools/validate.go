package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationError reports why a tool call's arguments were rejected. Field
// names the offending argument when the failure is localized; it is empty for
// document-level failures such as a missing "at least one filter" rule.
type ValidationError struct {
	Tool  Name
	Field string
	Cause string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: argument %q: %s", e.Tool, e.Field, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Tool, e.Cause)
}

// Validate checks args against the tool's compiled schema. Empty or absent
// arguments validate as the empty object, which matters for tools with no
// required parameters. Validation happens before any executor runs; an
// invalid call never reaches the store.
func (r *Registry) Validate(name Name, args json.RawMessage) error {
	i, ok := r.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	if len(args) == 0 {
		args = []byte("{}")
	}

	var doc any
	if err := json.Unmarshal(args, &doc); err != nil {
		return &ValidationError{Tool: name, Cause: "arguments are not valid JSON"}
	}

	if err := r.specs[i].compiled.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			leaf := leafCause(ve)
			return &ValidationError{
				Tool:  name,
				Field: fieldFromPointer(leaf.InstanceLocation),
				Cause: leaf.Message,
			}
		}
		return &ValidationError{Tool: name, Cause: err.Error()}
	}
	return nil
}

// leafCause walks to the deepest cause of a validation failure, which carries
// the most specific message the model (and the logs) can act on.
func leafCause(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

// fieldFromPointer turns a JSON pointer like "/startDate" into a field name.
func fieldFromPointer(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if i := strings.IndexByte(ptr, '/'); i >= 0 {
		ptr = ptr[:i]
	}
	return ptr
}
