package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "QC Admin API",
        "description": "Administration backend for manufacturing quality control",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Session login and identity"},
        {"name": "SamplingReasons", "description": "Sampling reason catalog"},
        {"name": "InspectionStations", "description": "Inspection station catalog"},
        {"name": "CustomerSites", "description": "Customer sites and their customer links"},
        {"name": "Settings", "description": "System settings and connectivity diagnostics"},
        {"name": "Users", "description": "Account management"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and open a session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Session opened", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Destroy the current session",
                "responses": {
                    "200": {"description": "Logged out"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current session user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "No session"}
                }
            }
        },
        "/sampling-reasons": {
            "get": {
                "tags": ["SamplingReasons"],
                "summary": "List sampling reasons",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "sortBy", "in": "query", "type": "string"},
                    {"name": "sortOrder", "in": "query", "type": "string"},
                    {"name": "isActive", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["SamplingReasons"],
                "summary": "Create sampling reason",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRecordRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation or duplicate name"}
                }
            }
        },
        "/sampling-reasons/{id}": {
            "get": {
                "tags": ["SamplingReasons"],
                "summary": "Get sampling reason",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["SamplingReasons"],
                "summary": "Update sampling reason",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateRecordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["SamplingReasons"],
                "summary": "Delete sampling reason",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Deleted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/sampling-reasons/{id}/status": {
            "patch": {
                "tags": ["SamplingReasons"],
                "summary": "Toggle active status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/sampling-reasons/search/name": {
            "get": {
                "tags": ["SamplingReasons"],
                "summary": "Search by name",
                "parameters": [
                    {"name": "name", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sampling-reasons/search/pattern": {
            "get": {
                "tags": ["SamplingReasons"],
                "summary": "Search by pattern across searchable fields",
                "parameters": [
                    {"name": "pattern", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sampling-reasons/filter/status": {
            "get": {
                "tags": ["SamplingReasons"],
                "summary": "Filter by active status",
                "parameters": [
                    {"name": "status", "in": "query", "required": true, "type": "string", "enum": ["active", "inactive"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sampling-reasons/statistics": {
            "get": {
                "tags": ["SamplingReasons"],
                "summary": "Aggregate counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/EntityStats"}}
                }
            }
        },
        "/sampling-reasons/export": {
            "get": {
                "tags": ["SamplingReasons"],
                "summary": "Export filtered list",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File attachment"}
                }
            }
        },
        "/sampling-reasons/health": {
            "get": {
                "tags": ["SamplingReasons"],
                "summary": "Table health probe",
                "responses": {
                    "200": {"description": "Healthy or warning", "schema": {"$ref": "#/definitions/EntityHealth"}},
                    "503": {"description": "Unhealthy"}
                }
            }
        },
        "/inspection-stations": {
            "get": {
                "tags": ["InspectionStations"],
                "summary": "List inspection stations (same route table as sampling reasons)",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["InspectionStations"],
                "summary": "Create inspection station",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRecordRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/customer-sites": {
            "get": {
                "tags": ["CustomerSites"],
                "summary": "List customer sites",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["CustomerSites"],
                "summary": "Create customer site with customer links",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSiteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/customer-sites/{id}": {
            "get": {
                "tags": ["CustomerSites"],
                "summary": "Get customer site with links",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["CustomerSites"],
                "summary": "Update customer site, optionally replacing links",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSiteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/settings/by-name/{name}": {
            "get": {
                "tags": ["Settings"],
                "summary": "Get setting by exact name",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/settings/diagnostics/smtp": {
            "get": {
                "tags": ["Settings"],
                "summary": "Check SMTP relay reachability",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DiagnosticResult"}}
                }
            }
        },
        "/settings/diagnostics/database": {
            "get": {
                "tags": ["Settings"],
                "summary": "Check secondary database reachability",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DiagnosticResult"}}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List accounts",
                "parameters": [
                    {"name": "role", "in": "query", "type": "string", "enum": ["admin", "manager", "user", "viewer"]},
                    {"name": "isActive", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Privileged role grant requires admin"}
                }
            }
        },
        "/users/{id}/password": {
            "put": {
                "tags": ["Users"],
                "summary": "Change account password",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "Password updated"},
                    "403": {"description": "Not the account owner or an admin"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "remember_me": {"type": "boolean"}
            },
            "required": ["username", "password"]
        },
        "CreateRecordRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "maxLength": 100},
                "description": {"type": "string"},
                "is_active": {"type": "boolean"}
            },
            "required": ["name"]
        },
        "UpdateRecordRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "maxLength": 100},
                "description": {"type": "string"},
                "is_active": {"type": "boolean"}
            }
        },
        "CreateSiteRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "maxLength": 100},
                "description": {"type": "string"},
                "is_active": {"type": "boolean"},
                "customer_codes": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["name"]
        },
        "UpdateSiteRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "maxLength": 100},
                "description": {"type": "string"},
                "is_active": {"type": "boolean"},
                "customer_codes": {"type": "array", "items": {"type": "string"}}
            }
        },
        "CreateUserRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string", "minLength": 3, "maxLength": 50},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8},
                "name": {"type": "string", "maxLength": 100},
                "description": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "manager", "user", "viewer"]},
                "position": {"type": "string"},
                "is_active": {"type": "boolean"}
            },
            "required": ["username", "email", "password", "name", "role"]
        },
        "ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "old_password": {"type": "string"},
                "new_password": {"type": "string", "minLength": 8}
            },
            "required": ["new_password"]
        },
        "EntityHealth": {
            "type": "object",
            "properties": {
                "entity": {"type": "string"},
                "status": {"type": "string", "enum": ["healthy", "warning", "unhealthy"]},
                "total": {"type": "integer"},
                "active": {"type": "integer"},
                "checked_at": {"type": "string"}
            }
        },
        "EntityStats": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "active": {"type": "integer"},
                "inactive": {"type": "integer"},
                "created_last_30_days": {"type": "integer"},
                "updated_last_30_days": {"type": "integer"},
                "with_description": {"type": "integer"},
                "without_description": {"type": "integer"}
            }
        },
        "DiagnosticResult": {
            "type": "object",
            "properties": {
                "check": {"type": "string"},
                "ok": {"type": "boolean"},
                "detail": {"type": "string"},
                "duration": {"type": "string"},
                "checked_at": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "object"},
                "message": {"type": "string"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"}
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
