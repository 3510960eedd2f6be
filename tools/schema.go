package tools

// Schema helpers for building JSON Schema definitions.

// ObjectSchema creates an object schema with the given properties.
func ObjectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// StringProperty creates a string property.
func StringProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// StringEnumProperty creates a string property with allowed values.
func StringEnumProperty(description string, values ...string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
		"enum":        values,
	}
}

// IntegerProperty creates an integer property, optionally bounded.
// Pass lo > hi to leave it unbounded.
func IntegerProperty(description string, lo, hi int) map[string]interface{} {
	p := map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
	if lo <= hi {
		p["minimum"] = lo
		p["maximum"] = hi
	}
	return p
}

// WithThought returns a copy of schema with an optional "thought" property
// for the model's reasoning. It is logged, never executed.
func WithThought(schema map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(schema))
	for k, v := range schema {
		result[k] = v
	}

	props := map[string]interface{}{}
	if existing, ok := schema["properties"].(map[string]interface{}); ok {
		for k, v := range existing {
			props[k] = v
		}
	}
	props["thought"] = StringProperty("Why you are calling this tool and what you expect to find.")
	result["properties"] = props
	return result
}

// BuildSchema creates an object schema with thought support in one call.
func BuildSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	return WithThought(ObjectSchema(properties, required...))
}

// Required returns the schema's required list, or nil.
func Required(schema map[string]interface{}) []string {
	r, _ := schema["required"].([]string)
	return r
}

// Properties returns the schema's property map, or nil.
func Properties(schema map[string]interface{}) map[string]interface{} {
	p, _ := schema["properties"].(map[string]interface{})
	return p
}
