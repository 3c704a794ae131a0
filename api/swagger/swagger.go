package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Deck Tracker API",
        "description": "Answer-sheet deck lifecycle, inventory and analytics",
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
        {"name": "Auth", "description": "Login and session"},
        {"name": "Decks", "description": "Deck lifecycle and inventory"},
        {"name": "Analytics", "description": "Cached deck statistics"},
        {"name": "Settings", "description": "Mail templates, SMTP and schools"},
        {"name": "Users", "description": "Staff accounts"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange credentials for a token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/decks": {
            "get": {
                "tags": ["Decks"],
                "summary": "List decks",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["PENDING", "PICKED_UP", "DROPPED"]},
                    {"name": "examName", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Decks"],
                "summary": "Create deck",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Deck"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Decks"],
                "summary": "Delete every deck",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/decks/assigned": {
            "get": {
                "tags": ["Decks"],
                "summary": "Decks assigned to the caller",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/decks/status": {
            "post": {
                "tags": ["Decks"],
                "summary": "Pick up or drop a deck by QR code",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "action", "in": "query", "required": true, "type": "string", "enum": ["pickup", "drop"]},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransitionDeckRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/decks/status/bulk": {
            "post": {
                "tags": ["Decks"],
                "summary": "Apply one action to many decks",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkTransitionRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/decks/count": {
            "post": {
                "tags": ["Decks"],
                "summary": "Record the answer-sheet count of a picked-up deck",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AnswerSheetCountRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/decks/upload": {
            "post": {
                "tags": ["Decks"],
                "summary": "Bulk import decks from CSV",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/decks/qr/{qr}": {
            "get": {
                "tags": ["Decks"],
                "summary": "Find deck by QR code",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "qr", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/decks/pamphlets": {
            "get": {
                "tags": ["Decks"],
                "summary": "Render QR labels for pending decks",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf", "application/json"],
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "examName", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["pdf", "json"]}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/decks/{id}": {
            "patch": {
                "tags": ["Decks"],
                "summary": "Update deck metadata",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Decks"],
                "summary": "Delete deck",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/decks/reminders": {
            "post": {
                "tags": ["Decks"],
                "summary": "Send overdue reminders now",
                "security": [{"BearerAuth": []}],
                "responses": {"202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/decks/assignment-email": {
            "post": {
                "tags": ["Decks"],
                "summary": "Mail evaluators their assigned decks",
                "security": [{"BearerAuth": []}],
                "responses": {"202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/static/{token}": {
            "get": {
                "tags": ["Decks"],
                "summary": "Download a generated file",
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Expired or unknown link"}}
            }
        },
        "/analytics/deck-counts": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Deck counts by status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "startDate", "in": "query", "type": "string", "format": "date"},
                    {"name": "endDate", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/analytics/dashboard-stats": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Dashboard totals and recent activity",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/analytics/daily-trends": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Pickups and drops per day",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "days", "in": "query", "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/analytics/evaluator-stats": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Per-evaluator throughput",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "limit", "in": "query", "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/email-templates": {
            "get": {
                "tags": ["Settings"],
                "summary": "List email templates",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Settings"],
                "summary": "Create or replace the template for a category",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EmailTemplate"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/smtp": {
            "get": {
                "tags": ["Settings"],
                "summary": "Current SMTP settings",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Replace SMTP settings",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/schools": {
            "get": {
                "tags": ["Settings"],
                "summary": "List schools",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Settings"],
                "summary": "Create school",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSchoolRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate school", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "role", "in": "query", "type": "string", "enum": ["ADMIN", "MODERATOR", "FACULTY"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "TransitionDeckRequest": {
            "type": "object",
            "properties": {"qrCodeString": {"type": "string"}},
            "required": ["qrCodeString"]
        },
        "BulkTransitionRequest": {
            "type": "object",
            "properties": {
                "deckIds": {"type": "array", "items": {"type": "string"}},
                "action": {"type": "string", "enum": ["pickup", "drop"]}
            },
            "required": ["deckIds", "action"]
        },
        "AnswerSheetCountRequest": {
            "type": "object",
            "properties": {
                "qrCodeString": {"type": "string"},
                "numberOfAnswerSheets": {"type": "integer"}
            },
            "required": ["qrCodeString", "numberOfAnswerSheets"]
        },
        "CreateSchoolRequest": {
            "type": "object",
            "properties": {"schoolName": {"type": "string"}},
            "required": ["schoolName"]
        },
        "EmailTemplate": {
            "type": "object",
            "properties": {
                "templateName": {"type": "string"},
                "templateFor": {"type": "string", "enum": ["REMINDER", "ASSIGNED"]},
                "subject": {"type": "string"},
                "html": {"type": "string"}
            }
        },
        "Deck": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "examDate": {"type": "integer"},
                "programName": {"type": "string"},
                "courseCode": {"type": "string"},
                "courseName": {"type": "string"},
                "school": {"type": "string"},
                "semester": {"type": "string"},
                "roomNumber": {"type": "string"},
                "packetNumber": {"type": "string"},
                "rackNumber": {"type": "string"},
                "studentCount": {"type": "integer"},
                "cohort": {"type": "string"},
                "shiftOfExam": {"type": "string", "enum": ["MORNING", "EVENING"]},
                "evaluatorId": {"type": "string"},
                "numberOfAnswerSheets": {"type": "integer"},
                "statusOfDeck": {"type": "string", "enum": ["PENDING", "PICKED_UP", "DROPPED"]},
                "qrCodeString": {"type": "string"},
                "pickUpTimestamp": {"type": "integer"},
                "dropTimestamp": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
