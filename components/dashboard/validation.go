package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// widgetDefinitionSchema constrains manifest-provided widget definitions.
const widgetDefinitionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["code", "name", "source", "endpoint", "chart"],
  "properties": {
    "code": {"type": "string", "pattern": "^[a-z][a-z0-9_.-]*$"},
    "name": {"type": "string", "minLength": 1},
    "source": {"enum": ["survey", "counter"]},
    "endpoint": {"type": "string", "pattern": "^[A-Za-z0-9_-]+$"},
    "fill": {"enum": ["empty", "zeros"]},
    "span": {"type": "integer", "minimum": 0, "maximum": 4},
    "categories": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["key", "label"],
        "properties": {
          "key": {"type": "string", "minLength": 1},
          "label": {"type": "string"}
        }
      }
    },
    "chart": {
      "type": "object",
      "required": ["kind"],
      "properties": {
        "kind": {"enum": ["line", "bar", "pie", "polar-area", "counter"]},
        "layout": {"enum": ["per-category", "comparison", "aggregate"]},
        "legend": {"enum": ["bottom", "none"]},
        "tooltip": {"enum": ["item", "axis", "none"]},
        "label_formatter": {"enum": ["percent", "value"]},
        "labels": {"type": ["array", "null"], "items": {"type": "string"}},
        "colors": {"type": ["array", "null"], "items": {"type": "string"}},
        "point_colors": {"type": ["array", "null"], "items": {"type": "string"}}
      }
    }
  }
}`

// DefinitionValidator checks widget definitions against the definition schema.
type DefinitionValidator struct {
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

// NewDefinitionValidator builds a validator backed by jsonschema v5.
func NewDefinitionValidator() *DefinitionValidator {
	return &DefinitionValidator{}
}

// Validate ensures the definition is well formed.
func (v *DefinitionValidator) Validate(def WidgetDefinition) error {
	schema, err := v.compiled()
	if err != nil {
		return err
	}
	data, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("dashboard: marshal definition %s: %w", def.Code, err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("dashboard: normalize definition %s: %w", def.Code, err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("dashboard: definition %s failed validation: %w", def.Code, err)
	}
	if def.Chart.Kind == ChartCounter && def.Source != SourceCounter {
		return fmt.Errorf("dashboard: definition %s: counter charts require the counter source", def.Code)
	}
	return nil
}

func (v *DefinitionValidator) compiled() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		const name = "widget-definition.json"
		if err := compiler.AddResource(name, strings.NewReader(widgetDefinitionSchema)); err != nil {
			v.err = fmt.Errorf("dashboard: load definition schema: %w", err)
			return
		}
		v.schema, v.err = compiler.Compile(name)
		if v.err != nil {
			v.err = fmt.Errorf("dashboard: compile definition schema: %w", v.err)
		}
	})
	return v.schema, v.err
}
