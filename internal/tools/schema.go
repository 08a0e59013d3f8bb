package tools

import (
	"encoding/json"

	invopopSchema "github.com/invopop/jsonschema"
)

// marshalFunc is the JSON marshaler used by GenerateSchema. Package-level so
// tests can inject a failing marshaler to cover the error return path.
var marshalFunc = func(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// SchemaOption post-processes a generated schema document. Options express
// the cross-field rules struct reflection cannot: "at least one of" and
// "present only together with".
type SchemaOption func(map[string]any)

// RequireAnyOf adds the rule that at least one of the named fields must be
// present. Rendered as anyOf over single-field required clauses, which is
// what the validator enforces and what the model sees.
func RequireAnyOf(fields ...string) SchemaOption {
	return func(m map[string]any) {
		clauses := make([]any, len(fields))
		for i, f := range fields {
			clauses[i] = map[string]any{"required": []any{f}}
		}
		m["anyOf"] = clauses
	}
}

// RequireWith adds a dependentRequired rule: whenever field is present, the
// listed fields must be present too.
func RequireWith(field string, requires ...string) SchemaOption {
	return func(m map[string]any) {
		deps, ok := m["dependentRequired"].(map[string]any)
		if !ok {
			deps = make(map[string]any)
			m["dependentRequired"] = deps
		}
		reqs := make([]any, len(requires))
		for i, r := range requires {
			reqs[i] = r
		}
		deps[field] = reqs
	}
}

// GenerateSchema generates a JSON Schema string from a Go struct using
// invopop/jsonschema reflection, then applies any cross-field options.
// Additional properties are always rejected: the model may not invent
// argument names.
func GenerateSchema(input interface{}, opts ...SchemaOption) string {
	reflector := invopopSchema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(input)

	raw, err := marshalFunc(schema)
	if err != nil {
		return ""
	}
	if len(opts) == 0 {
		return string(raw)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return string(raw)
	}
	for _, opt := range opts {
		opt(m)
	}
	out, err := marshalFunc(m)
	if err != nil {
		return string(raw)
	}
	return string(out)
}
