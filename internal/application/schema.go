package application

import "teamhood-mcp-server/internal/domain"

// Schema fragments shared across the tool catalog. Tool argument
// schemas are plain JSON Schema objects; these helpers keep the
// ListTools declarations readable.

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func integerProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

func numberProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": description,
	}
}

func booleanProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": description,
	}
}

func stringArrayProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string"},
		"description": description,
	}
}

// dependencyArrayProp describes a blocking or waiting edge list. Each
// edge names a peer item and one of the four precedence relations.
func dependencyArrayProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"itemId": stringProp("ID of the related item"),
				"type": map[string]interface{}{
					"type":        "string",
					"description": "Precedence relation between the two items",
					"enum":        domain.DependencyTypes,
				},
			},
			"required": []string{"itemId", "type"},
		},
		"description": description,
	}
}

// objectSchema assembles a tool input schema from its properties and
// required argument names.
func objectSchema(properties map[string]interface{}, required ...string) domain.JSONSchema {
	return domain.JSONSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}
