package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	docs "predictkit/internal/services/api/docs"
)

// docReader is a seam so tests can serve a broken document
var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }

// errorExamples are the error envelopes added to operations that do not document them
var errorExamples = map[string]map[string]any{
	"400": {"status_code": 400, "status": "Bad Request", "error": "missing columns: income", "request_id": "host/abc-000001"},
	"500": {"status_code": 500, "status": "Internal Server Error", "error": "panic recovered", "request_id": "host/abc-000001"},
}

// serveDocJSON serves the OpenAPI document in the shape the swagger UI understands
func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}
		normalize(spec, "/api/v1")

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// normalize pins the document to OAS 3.0.3 (the UI cannot render 3.1), sets a default
// server and documents the error envelope on every operation
func normalize(spec map[string]any, server string) {
	delete(spec, "swagger")
	if v, _ := spec["openapi"].(string); !strings.HasPrefix(v, "3.0") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": server}}
	}

	schemas := child(child(spec, "components"), "schemas")
	if _, ok := schemas["ErrorResponse"]; !ok {
		schemas["ErrorResponse"] = map[string]any{
			"type":        "object",
			"description": "Standard error response",
			"properties": map[string]any{
				"status_code": map[string]any{"type": "integer", "format": "int32"},
				"status":      map[string]any{"type": "string"},
				"code":        map[string]any{"type": "integer", "format": "int32"},
				"error":       map[string]any{"type": "string"},
				"request_id":  map[string]any{"type": "string"},
			},
			"required": []any{"status_code", "status"},
		}
	}

	paths, _ := spec["paths"].(map[string]any)
	for _, p := range paths {
		ops, _ := p.(map[string]any)
		for _, o := range ops {
			op, ok := o.(map[string]any)
			if !ok {
				continue
			}
			responses := child(op, "responses")
			for status, example := range errorExamples {
				if _, ok := responses[status]; ok {
					continue
				}
				responses[status] = map[string]any{
					"description": http.StatusText(example["status_code"].(int)),
					"content": map[string]any{"application/json": map[string]any{
						"schema":  map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
						"example": example,
					}},
				}
			}
		}
	}
}

// child returns m[key] as an object, creating it when missing
func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}
