package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ANKR Event Calendar API",
        "description": "DJ event listings, month calendars with public holidays, view preferences and year-end receipts",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Events", "description": "Current, past and this-week listings"},
        {"name": "Calendar", "description": "Whole-week month grids"},
        {"name": "Holidays", "description": "Public holiday cache"},
        {"name": "Settings", "description": "Per-client view preferences"},
        {"name": "Receipts", "description": "Year-end attendance receipts"},
        {"name": "Admin", "description": "Operator login and cache maintenance"}
    ],
    "paths": {
        "/events": {
            "get": {
                "tags": ["Events"],
                "summary": "Event listings",
                "parameters": [
                    {"name": "genres", "in": "query", "type": "string", "description": "Comma separated genres"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/events/search": {
            "get": {
                "tags": ["Events"],
                "summary": "Search confirmed events",
                "parameters": [{"name": "q", "in": "query", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/events/{id}": {
            "get": {
                "tags": ["Events"],
                "summary": "Event detail",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events.ics": {
            "get": {
                "tags": ["Events"],
                "summary": "Confirmed events as iCalendar",
                "produces": ["text/calendar"],
                "parameters": [{"name": "genres", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/calendar": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Month calendar grid",
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "month", "in": "query", "type": "integer"},
                    {"name": "nav", "in": "query", "type": "string", "enum": ["prev", "next"]},
                    {"name": "selected", "in": "query", "type": "string", "format": "date"},
                    {"name": "genres", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/calendar/day": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Events of one day",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "format": "date", "required": true},
                    {"name": "genres", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/holidays": {
            "get": {
                "tags": ["Holidays"],
                "summary": "Public holidays of a date",
                "parameters": [{"name": "date", "in": "query", "type": "string", "format": "date", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/holidays/{year}": {
            "get": {
                "tags": ["Holidays"],
                "summary": "Public holidays of a year keyed by MMDD",
                "parameters": [{"name": "year", "in": "path", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Stored view preferences",
                "parameters": [{"name": "X-Client-ID", "in": "header", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Update view preferences",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSettingsRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Settings"],
                "summary": "Forget stored preferences",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/settings/genres/toggle": {
            "post": {
                "tags": ["Settings"],
                "summary": "Toggle one genre in the selection",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"genre": {"type": "string"}}}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/receipts/candidates": {
            "get": {
                "tags": ["Receipts"],
                "summary": "Events offered for a receipt",
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "quarter", "in": "query", "type": "string", "enum": ["all", "Q1", "Q2", "Q3", "Q4"]},
                    {"name": "q", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/receipts": {
            "post": {
                "tags": ["Receipts"],
                "summary": "Render a receipt",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateReceiptRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/receipts/download": {
            "get": {
                "tags": ["Receipts"],
                "summary": "Download a rendered receipt",
                "produces": ["application/pdf", "text/csv"],
                "parameters": [{"name": "token", "in": "query", "type": "string", "required": true}],
                "responses": {"200": {"description": "File"}, "401": {"description": "Invalid or expired link"}}
            }
        },
        "/admin/login": {
            "post": {
                "tags": ["Admin"],
                "summary": "Authenticate operator",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"username": {"type": "string"}, "password": {"type": "string"}}}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/admin/holidays/cache/clear": {
            "post": {
                "tags": ["Admin"],
                "summary": "Drop every cached holiday year",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/holidays/prefetch": {
            "post": {
                "tags": ["Admin"],
                "summary": "Queue a holiday warm-up",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "years", "in": "query", "type": "string"}],
                "responses": {"202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/maintenance/cleanup": {
            "post": {
                "tags": ["Admin"],
                "summary": "Queue receipt cleanup and snapshot pruning",
                "security": [{"BearerAuth": []}],
                "responses": {"202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/metrics": {
            "get": {
                "tags": ["Admin"],
                "summary": "Operational summary",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/events/pending": {
            "get": {
                "tags": ["Admin"],
                "summary": "Unconfirmed event listings",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "genres", "in": "query", "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "UpdateSettingsRequest": {
            "type": "object",
            "properties": {
                "selected_genres": {"type": "array", "items": {"type": "string"}},
                "view_mode": {"type": "string", "enum": ["calendar", "table"]}
            }
        },
        "CreateReceiptRequest": {
            "type": "object",
            "required": ["event_ids", "name", "format"],
            "properties": {
                "year": {"type": "integer"},
                "event_ids": {"type": "array", "items": {"type": "string"}},
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["Listener", "Otagei", "DJ", "VJ", "Organizer"]},
                "format": {"type": "string", "enum": ["pdf", "csv"]}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
