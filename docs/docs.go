// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {"produces": ["application/json"], "tags": ["system"], "summary": "Health check",
                "responses": {"200": {"description": "OK"}}}
        },
        "/auth/sign-up": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["auth"], "summary": "Create an API account",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}],
                "responses": {"201": {"description": "id"}, "400": {"description": "Bad Request"}, "409": {"description": "username taken"}, "500": {"description": "Internal Server Error"}}}
        },
        "/auth/sign-in": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["auth"], "summary": "Obtain a JWT",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}],
                "responses": {"200": {"description": "token"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/timer/start": {
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["timer"], "summary": "Start countdown",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SecondsRequest"}}],
                "responses": {"200": {"description": "status, state"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/timer/pause": {
            "post": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["timer"], "summary": "Pause countdown",
                "responses": {"200": {"description": "OK"}, "400": {"description": "not running"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/timer/resume": {
            "post": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["timer"], "summary": "Resume countdown",
                "responses": {"200": {"description": "OK"}, "400": {"description": "not paused"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/timer/toggle": {
            "post": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["timer"], "summary": "Toggle pause",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/timer/add": {
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["timer"], "summary": "Add time",
                "parameters": [{"in": "body", "name": "body", "schema": {"$ref": "#/definitions/handlers.SecondsRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/timer/reset": {
            "post": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["timer"], "summary": "Reset countdown",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/timer/state": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["timer"], "summary": "Get timer state",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TimerState"}}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/timer/presets": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["timer"], "summary": "Quick-start presets",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/service.Presets"}}}}
        },
        "/api/v1/alarm/dismiss": {
            "post": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["alarm"], "summary": "Dismiss alarm",
                "responses": {"200": {"description": "status, dismissed, state"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/sets/select": {
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["sets"], "summary": "Select set",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SetRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/logs": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["logs"], "summary": "List timer history",
                "parameters": [
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"enum": ["START", "PAUSE", "RESUME", "ADD_TIME", "RESET", "COMPLETE", "ALARM_START", "ALARM_STOP", "SET_SELECT"], "type": "string", "name": "type", "in": "query"}
                ],
                "responses": {"200": {"description": "count, events"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}
        },
        "/ws": {
            "get": {"tags": ["stream"], "summary": "Event stream",
                "parameters": [
                    {"type": "string", "name": "token", "in": "query"},
                    {"type": "string", "name": "interval", "in": "query"},
                    {"type": "integer", "name": "interval_ms", "in": "query"}
                ],
                "responses": {"101": {"description": "Switching Protocols"}, "401": {"description": "Unauthorized"}}}
        }
    },
    "definitions": {
        "handlers.authCredentials": {
            "type": "object", "required": ["password", "username"],
            "properties": {"password": {"type": "string"}, "username": {"type": "string"}}
        },
        "handlers.SecondsRequest": {
            "type": "object",
            "properties": {"seconds": {"type": "integer", "example": 90}}
        },
        "handlers.SetRequest": {
            "type": "object",
            "properties": {"set": {"type": "integer", "example": 3}}
        },
        "service.Presets": {
            "type": "object",
            "properties": {"add_step": {"type": "integer"}, "durations": {"type": "array", "items": {"type": "integer"}}}
        },
        "models.TimerState": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "status": {"type": "string", "enum": ["IDLE", "RUNNING", "PAUSED", "COMPLETED"]},
                "remaining_seconds": {"type": "integer"},
                "display": {"type": "string"},
                "alarm_ringing": {"type": "boolean"},
                "alarm_id": {"type": "string"},
                "current_set": {"type": "integer"},
                "updated_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Gym Timer API",
	Description:      "Interval countdown with alarm, set counter and history.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
