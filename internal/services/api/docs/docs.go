// Package docs holds the OpenAPI document served under /api/docs.
// Regenerate with: swag init --v3.1 -g cmd/predictkit-api/main.go -o internal/services/api/docs --instanceName api
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.1.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "servers": [{"url": "/api/v1"}],
    "paths": {
        "/tasks": {
            "get": {"tags": ["Tasks"], "summary": "List tasks with their required columns and trained models",
                "responses": {"200": {"description": "ok"}}}
        },
        "/tasks/{task}": {
            "get": {"tags": ["Tasks"], "summary": "Describe one task",
                "parameters": [{"name": "task", "in": "path", "required": true, "schema": {"type": "string"}}],
                "responses": {"200": {"description": "ok"}, "404": {"description": "unknown task"}}}
        },
        "/tasks/{task}/predict": {
            "post": {"tags": ["Tasks"], "summary": "Score an uploaded CSV batch",
                "parameters": [
                    {"name": "task", "in": "path", "required": true, "schema": {"type": "string"}},
                    {"name": "model", "in": "query", "schema": {"type": "string"}},
                    {"name": "format", "in": "query", "schema": {"type": "string", "enum": ["json", "csv"]}}
                ],
                "requestBody": {"content": {
                    "text/csv": {"schema": {"type": "string"}},
                    "multipart/form-data": {"schema": {"type": "object", "properties": {"file": {"type": "string", "format": "binary"}}}}
                }},
                "responses": {"200": {"description": "ok"}, "400": {"description": "schema mismatch"}, "404": {"description": "no trained model"}}}
        },
        "/tasks/{task}/score": {
            "post": {"tags": ["Tasks"], "summary": "Score JSON records",
                "parameters": [{"name": "task", "in": "path", "required": true, "schema": {"type": "string"}}],
                "responses": {"200": {"description": "ok"}, "400": {"description": "schema mismatch"}}}
        },
        "/meta/health": {"get": {"tags": ["Meta"], "summary": "Liveness probe", "responses": {"200": {"description": "ok"}}}},
        "/meta/ready": {"get": {"tags": ["Meta"], "summary": "Readiness probe with dependency checks", "responses": {"200": {"description": "ok"}}}},
        "/meta/version": {"get": {"tags": ["Meta"], "summary": "Build and artifact format version", "responses": {"200": {"description": "ok"}}}},
        "/meta/service": {"get": {"tags": ["Meta"], "summary": "Service name and uptime", "responses": {"200": {"description": "ok"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Title:            "predictkit API",
	Description:      "Batch scoring for trained binary classifiers",
	InfoInstanceName: "api",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
