package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "GymOps Scheduling API",
        "description": "Coach-to-class scheduling and availability resolution service",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Operator authentication"},
        {"name": "Coaches", "description": "Team roster (read-only)"},
        {"name": "Scheduler", "description": "Weekly schedule generation and manual edits"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate an operator account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/coaches": {
            "get": {
                "tags": ["Coaches"],
                "summary": "List coaches",
                "parameters": [
                    {"name": "teamId", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/coaches/{id}": {
            "get": {
                "tags": ["Coaches"],
                "summary": "Get coach",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/schedules/generate": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Generate a weekly class schedule from a template",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Schedule already exists for this team, location and week"}
                }
            }
        },
        "/schedules": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "List generated schedules",
                "parameters": [
                    {"name": "teamId", "in": "query", "required": true, "type": "string"},
                    {"name": "locationId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{id}/slots": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "Get slots for a generated schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/schedules/{id}/publish": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Publish a draft schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Schedule is not a draft"}
                }
            }
        },
        "/schedules/{id}": {
            "delete": {
                "tags": ["Scheduler"],
                "summary": "Delete a draft schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Schedule is not a draft"}
                }
            }
        },
        "/schedules/{id}/export": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "Export a schedule's staffing sheet",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered staffing sheet"}
                }
            }
        },
        "/slots/{id}/availability": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "List coach availability for a class slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/slots/{id}/assignee": {
            "patch": {
                "tags": ["Scheduler"],
                "summary": "Set or clear a class slot's assigned coach",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReassignSlotRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot version is stale"}
                }
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
        "GenerateScheduleRequest": {
            "type": "object",
            "properties": {
                "templateId": {"type": "string"},
                "teamId": {"type": "string"},
                "locationId": {"type": "string"},
                "weekStart": {"type": "string", "description": "YYYY-MM-DD, normalised to the week's Sunday"}
            },
            "required": ["templateId", "teamId", "locationId", "weekStart"]
        },
        "ReassignSlotRequest": {
            "type": "object",
            "properties": {
                "coachId": {"type": "string", "description": "Omit or null to clear the seat"},
                "version": {"type": "integer"}
            },
            "required": ["version"]
        },
        "ClassSlotView": {
            "type": "object",
            "properties": {
                "slotId": {"type": "string"},
                "classCatalogId": {"type": "string"},
                "className": {"type": "string"},
                "locationId": {"type": "string"},
                "startsAt": {"type": "string"},
                "endsAt": {"type": "string"},
                "seatIndex": {"type": "integer"},
                "assigneeCoachId": {"type": "string"},
                "version": {"type": "integer"}
            }
        },
        "Verdict": {
            "type": "object",
            "properties": {
                "coachId": {"type": "string"},
                "name": {"type": "string"},
                "available": {"type": "boolean"},
                "reason": {"type": "string"}
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
