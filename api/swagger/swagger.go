package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "École Mobile API",
        "description": "Mobile gateway for the student app (v2 legacy contract)",
        "version": "2.0.0"
    },
    "basePath": "/api/mobile/v2",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Student", "description": "Login and profile"},
        {"name": "Dashboard", "description": "Aggregated student dashboard"},
        {"name": "Formations", "description": "Enrolled formations"},
        {"name": "Payments", "description": "Payment history and balance"},
        {"name": "OCR", "description": "Identity document extraction"},
        {"name": "Statements", "description": "Payment statement exports"}
    ],
    "paths": {
        "/student/login": {
            "post": {
                "tags": ["Student"],
                "summary": "Resolve a student by ID, email or phone",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing identifier"},
                    "404": {"description": "Unknown student"}
                }
            }
        },
        "/student/profile": {
            "get": {
                "tags": ["Student"],
                "summary": "Student profile",
                "parameters": [
                    {"name": "student_id", "in": "query", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student/profile/update": {
            "post": {
                "tags": ["Student"],
                "summary": "Overwrite whitelisted profile fields",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProfileUpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Student dashboard summary",
                "parameters": [
                    {"name": "student_id", "in": "query", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student/formations": {
            "get": {
                "tags": ["Formations"],
                "summary": "Enrolled formations with balance and progress",
                "parameters": [
                    {"name": "student_id", "in": "query", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student/payments": {
            "get": {
                "tags": ["Payments"],
                "summary": "Payment history with balance summary",
                "parameters": [
                    {"name": "student_id", "in": "query", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/ocr/extract-nin": {
            "post": {
                "tags": ["OCR"],
                "summary": "Extract identity fields from a document image",
                "description": "Accepts a multipart image file or a JSON body with a base64 image field.",
                "consumes": ["multipart/form-data", "application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Model output unparseable"},
                    "503": {"description": "Models exhausted or key missing"}
                }
            }
        },
        "/student/statements": {
            "post": {
                "tags": ["Statements"],
                "summary": "Queue a payment statement export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StatementRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student/statements/{id}": {
            "get": {
                "tags": ["Statements"],
                "summary": "Statement export job status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown job"}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Statements"],
                "summary": "Download a rendered statement",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid, expired or mismatched token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "ProfileUpdateRequest": {
            "type": "object",
            "required": ["student_id"],
            "properties": {
                "student_id": {"type": "string"},
                "telephone": {"type": "string"},
                "mobile": {"type": "string"},
                "email": {"type": "string"},
                "adresse": {"type": "string"},
                "niveau_etude": {"type": "string"},
                "situation_professionnelle": {"type": "string"},
                "nin": {"type": "string"},
                "lieu_naissance": {"type": "string"},
                "nationalite": {"type": "string"},
                "date_naissance": {"type": "string", "description": "YYYY-MM-DD; unparseable values are ignored"}
            }
        },
        "StatementRequest": {
            "type": "object",
            "required": ["student_id"],
            "properties": {
                "student_id": {"type": "string"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
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
