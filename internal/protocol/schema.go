package protocol

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/intent.schema.json
var intentSchemaJSON []byte

const intentSchemaURL = "https://gridrealm.ai/schemas/intent.schema.json"

var (
	intentOnce   sync.Once
	intentSchema *jsonschema.Schema
	intentErr    error
)

func compiledIntentSchema() (*jsonschema.Schema, error) {
	intentOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft7
		if err := c.AddResource(intentSchemaURL, bytes.NewReader(intentSchemaJSON)); err != nil {
			intentErr = err
			return
		}
		intentSchema, intentErr = c.Compile(intentSchemaURL)
	})
	return intentSchema, intentErr
}

// DecodeIntent validates raw against the intent schema and decodes it.
func DecodeIntent(raw []byte) (IntentMsg, error) {
	var msg IntentMsg
	s, err := compiledIntentSchema()
	if err != nil {
		return msg, fmt.Errorf("intent schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return msg, fmt.Errorf("bad json: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return msg, fmt.Errorf("invalid intent: %w", err)
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return msg, fmt.Errorf("bad intent: %w", err)
	}
	return msg, nil
}
