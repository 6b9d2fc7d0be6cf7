// Package docs serves the RentFlow OpenAPI document.
//
// Regenerate with: swag init -g cmd/server/main.go -o docs --v3.1
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.1.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "servers": [{"url": "{{.BasePath}}"}],
    "components": {
        "securitySchemes": {
            "BearerAuth": {
                "type": "apiKey",
                "in": "header",
                "name": "Authorization",
                "description": "Bearer token authentication. Format: \"Bearer {token}\""
            }
        },
        "schemas": {
            "ErrorInfo": {
                "type": "object",
                "properties": {
                    "code": {"type": "string"},
                    "message": {"type": "string"},
                    "request_id": {"type": "string"}
                }
            },
            "Response": {
                "type": "object",
                "properties": {
                    "success": {"type": "boolean"},
                    "data": {},
                    "error": {"$ref": "#/components/schemas/ErrorInfo"}
                }
            }
        }
    },
    "paths": {
        "/ping": {"get": {"tags": ["system"], "summary": "Liveness probe", "responses": {"200": {"description": "pong"}}}},
        "/system/info": {"get": {"tags": ["system"], "summary": "Service name and version", "responses": {"200": {"description": "OK"}}}},
        "/auth/signup": {"post": {"tags": ["auth"], "summary": "Create an owner account", "responses": {"201": {"description": "Created"}, "409": {"description": "Email in use"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Sign in with email and password", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}}},
        "/auth/refresh": {"post": {"tags": ["auth"], "summary": "Exchange a refresh token", "responses": {"200": {"description": "OK"}}}},
        "/auth/logout": {"post": {"tags": ["auth"], "summary": "Revoke the current session", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/workspace": {"get": {"tags": ["workspace"], "summary": "Resolve the session and load the role workspace", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/dashboard": {"get": {"tags": ["workspace"], "summary": "Owner financial dashboard", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/properties": {"get": {"tags": ["properties"], "summary": "List owned properties", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/tenancies": {"get": {"tags": ["tenancies"], "summary": "List tenancies", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/expenses": {"get": {"tags": ["expenses"], "summary": "List expenses", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/invoices": {"get": {"tags": ["invoices"], "summary": "List invoices", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/invoices/generate": {"post": {"tags": ["invoices"], "summary": "Generate monthly invoices", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}},
        "/payments/payable": {"get": {"tags": ["payments"], "summary": "Invoices the tenant can pay", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/payments": {"post": {"tags": ["payments"], "summary": "Submit a payment proof", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate submission"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "RentFlow API",
	Description:      "Property management backend: owners, tenancies, monthly invoices and payment verification.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
