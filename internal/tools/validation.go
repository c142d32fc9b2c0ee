package tools

import (
	"fmt"

	"swarm/internal/agent/ports"
)

// ValidateArguments checks a call's arguments against the tool's parameter
// schema before dispatch: required keys must be present and provided values
// must match their declared primitive type. Unknown keys are tolerated.
func ValidateArguments(schema ports.ParameterSchema, args map[string]any) error {
	for _, key := range schema.Required {
		if _, ok := args[key]; !ok {
			return fmt.Errorf("missing required argument %q", key)
		}
	}

	for key, value := range args {
		prop, ok := schema.Properties[key]
		if !ok {
			continue
		}
		if value == nil {
			return fmt.Errorf("argument %q is null", key)
		}
		if !matchesType(prop.Type, value) {
			return fmt.Errorf("argument %q: expected %s, got %T", key, prop.Type, value)
		}
	}
	return nil
}

// matchesType accepts the Go representations json.Unmarshal produces for each
// JSON Schema primitive. Numbers always decode as float64, so "integer"
// additionally requires a whole value.
func matchesType(schemaType string, value any) bool {
	switch schemaType {
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "number":
		return isNumeric(value)
	case "integer":
		switch v := value.(type) {
		case float64:
			return v == float64(int64(v))
		case int, int64:
			return true
		}
		return false
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	case "":
		return true
	}
	return true
}

func isNumeric(value any) bool {
	switch value.(type) {
	case float64, int, int64:
		return true
	}
	return false
}
