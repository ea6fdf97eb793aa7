package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SAAE Discount API",
        "description": "Sibling-group tuition discount pipeline and registry",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Operator login"},
        {"name": "Pipeline", "description": "Discount pipeline runs"},
        {"name": "Prompts", "description": "Operator prompts for suspended runs"},
        {"name": "Registry", "description": "Committed discount requests"},
        {"name": "Catalog", "description": "Career tariffs and discount tiers"},
        {"name": "Reports", "description": "Registry exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate operator",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current operator claims",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/pipeline/individual": {
            "post": {
                "tags": ["Pipeline"],
                "summary": "Run the pipeline for a manually selected group",
                "description": "Blocks while operator prompts are pending. All-or-nothing: any failure aborts the submission.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/IndividualRunRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Batch cancelled by operator"},
                    "422": {"description": "Upstream data problem"}
                }
            }
        },
        "/pipeline/bulk": {
            "post": {
                "tags": ["Pipeline"],
                "summary": "Run the pipeline for spreadsheet-derived groups",
                "description": "Groups fail independently; an operator cancel aborts the whole batch with nothing committed.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkRunRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-group outcomes", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Batch cancelled by operator"}
                }
            }
        },
        "/pipeline/reorder": {
            "post": {
                "tags": ["Pipeline"],
                "summary": "Swap tied adjacent students and re-allocate",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReorderRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/prompts": {
            "get": {
                "tags": ["Prompts"],
                "summary": "List pending operator prompts",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/prompts/{id}/payment": {
            "post": {
                "tags": ["Prompts"],
                "summary": "Answer a manual-payment prompt",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResolvePaymentRequest"}}
                ],
                "responses": {
                    "204": {"description": "Resolved"},
                    "404": {"description": "Prompt no longer pending"}
                }
            }
        },
        "/prompts/{id}/career": {
            "post": {
                "tags": ["Prompts"],
                "summary": "Answer a career prompt",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResolveCareerRequest"}}
                ],
                "responses": {
                    "204": {"description": "Resolved"},
                    "404": {"description": "Prompt no longer pending"}
                }
            }
        },
        "/prompts/{id}": {
            "delete": {
                "tags": ["Prompts"],
                "summary": "Cancel a prompt and abort its batch",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Cancelled"},
                    "404": {"description": "Prompt no longer pending"}
                }
            }
        },
        "/registry/requests": {
            "get": {
                "tags": ["Registry"],
                "summary": "List committed discount requests",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "mode", "in": "query", "type": "string"},
                    {"name": "term", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registry/requests/{id}": {
            "get": {
                "tags": ["Registry"],
                "summary": "Get one committed request with derived totals",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/catalog/careers": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List catalog careers with tariffs",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Catalog"],
                "summary": "Create or update a catalog career (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertCareerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalog/tiers": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List the discount tier scale",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Catalog"],
                "summary": "Create or update a discount tier (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertTierRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Enqueue a registry export",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Get export job status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/reports/download/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished export by signed token",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "IndividualRunRequest": {
            "type": "object",
            "required": ["target_term", "students"],
            "properties": {
                "target_term": {"type": "string"},
                "students": {"type": "array", "items": {"$ref": "#/definitions/StudentSeed"}}
            }
        },
        "BulkRunRequest": {
            "type": "object",
            "required": ["target_terms", "groups"],
            "properties": {
                "target_terms": {"type": "array", "items": {"type": "string"}},
                "groups": {"type": "array", "items": {"type": "array", "items": {"type": "string"}}}
            }
        },
        "ReorderRequest": {
            "type": "object",
            "required": ["records", "position"],
            "properties": {
                "records": {"type": "array", "items": {"type": "object"}},
                "position": {"type": "integer"}
            }
        },
        "StudentSeed": {
            "type": "object",
            "required": ["external_id", "document", "full_name"],
            "properties": {
                "external_id": {"type": "string"},
                "document": {"type": "string"},
                "full_name": {"type": "string"}
            }
        },
        "ResolvePaymentRequest": {
            "type": "object",
            "properties": {
                "reference": {"type": "string"},
                "plan": {"type": "string", "enum": ["PLAN ESTANDAR", "PLAN PLUS"]},
                "amount": {"type": "number"}
            }
        },
        "ResolveCareerRequest": {
            "type": "object",
            "required": ["career_id"],
            "properties": {
                "career_id": {"type": "string"}
            }
        },
        "UpsertCareerRequest": {
            "type": "object",
            "required": ["name", "credit_value"],
            "properties": {
                "name": {"type": "string"},
                "credit_value": {"type": "number"},
                "includes_technology": {"type": "boolean"}
            }
        },
        "UpsertTierRequest": {
            "type": "object",
            "required": ["position", "percentage"],
            "properties": {
                "position": {"type": "integer"},
                "percentage": {"type": "number", "minimum": 0, "maximum": 1}
            }
        },
        "ReportRequest": {
            "type": "object",
            "required": ["request_id", "format"],
            "properties": {
                "request_id": {"type": "string"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_items": {"type": "integer"},
                "total_pages": {"type": "integer"}
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
