package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// validators holds compiled schemas keyed by Schema.Name. Callers declare
// their schemas once as package values, so the name is a stable key.
var validators sync.Map // string -> *jsonschema.Schema

// validateResponse checks a structured answer against its schema. Every
// failure is an *ErrInvalidResponse, which the retry decorator gives one
// more attempt.
func validateResponse(schema *Schema, raw []byte) error {
	if schema == nil {
		return nil
	}
	invalid := func(err error) error {
		return &ErrInvalidResponse{Raw: string(raw), Err: err}
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return invalid(fmt.Errorf("answer is not JSON: %w", err))
	}
	v, err := validator(schema)
	if err != nil {
		return invalid(err)
	}
	if err := v.Validate(doc); err != nil {
		return invalid(fmt.Errorf("answer does not match %s: %w", schema.Name, err))
	}
	return nil
}

func validator(s *Schema) (*jsonschema.Schema, error) {
	if v, ok := validators.Load(s.Name); ok {
		return v.(*jsonschema.Schema), nil
	}

	def, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("encode schema %s: %w", s.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", s.Name, err)
	}

	url := "mem://schemas/" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("load schema %s: %w", s.Name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", s.Name, err)
	}

	actual, _ := validators.LoadOrStore(s.Name, compiled)
	return actual.(*jsonschema.Schema), nil
}
