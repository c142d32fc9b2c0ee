package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"swarm/internal/agent/ports"
)

func schemaWith(props map[string]ports.Property, required ...string) ports.ParameterSchema {
	return ports.ParameterSchema{Type: "object", Properties: props, Required: required}
}

func TestValidateArgumentsRequired(t *testing.T) {
	schema := schemaWith(map[string]ports.Property{
		"path": {Type: "string"},
	}, "path")

	assert.Error(t, ValidateArguments(schema, map[string]any{}))
	assert.NoError(t, ValidateArguments(schema, map[string]any{"path": "a.txt"}))
}

func TestValidateArgumentsTypes(t *testing.T) {
	schema := schemaWith(map[string]ports.Property{
		"path":    {Type: "string"},
		"depth":   {Type: "integer"},
		"timeout": {Type: "number"},
		"force":   {Type: "boolean"},
	})

	assert.NoError(t, ValidateArguments(schema, map[string]any{
		"path": "a.txt", "depth": 2.0, "timeout": 1.5, "force": true,
	}))

	assert.Error(t, ValidateArguments(schema, map[string]any{"path": 1.0}))
	assert.Error(t, ValidateArguments(schema, map[string]any{"depth": 2.5}), "integer must be whole")
	assert.Error(t, ValidateArguments(schema, map[string]any{"force": "yes"}))
	assert.Error(t, ValidateArguments(schema, map[string]any{"path": nil}))
}

func TestValidateArgumentsUnknownKeysTolerated(t *testing.T) {
	schema := schemaWith(map[string]ports.Property{
		"path": {Type: "string"},
	})
	assert.NoError(t, ValidateArguments(schema, map[string]any{"path": "x", "extra": 99.0}))
}
