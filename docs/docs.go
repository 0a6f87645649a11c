// Package docs holds the Swagger description served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "description": "Verifies the admin credentials and issues an http-only session cookie valid for 24h.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Admin login",
                "parameters": [
                    {
                        "description": "Admin credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Admin logout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SuccessResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/auth/check": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Check admin session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AuthStatusResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.AuthStatusResponse"}}
                }
            }
        },
        "/skills": {
            "get": {
                "description": "Returns the skill categories. A never-written document is returned empty.",
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "Get skills",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/domain.SkillsDocument"},
                        "headers": {"ETag": {"type": "string", "description": "Document revision"}}
                    },
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Replaces the whole skills document. Send If-Match with the ETag from GET to reject concurrent edits.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "Replace skills",
                "parameters": [
                    {
                        "description": "Skills document",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/domain.SkillsDocument"}
                    },
                    {"type": "string", "description": "Expected revision ETag", "name": "If-Match", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "412": {"description": "Precondition Failed", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/projects": {
            "get": {
                "description": "Returns the projects in display order. A never-written list is returned empty.",
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "Get projects",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Project"}},
                        "headers": {"ETag": {"type": "string", "description": "Document revision"}}
                    },
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Replaces the whole project list. Send If-Match with the ETag from GET to reject concurrent edits.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["content"],
                "summary": "Replace projects",
                "parameters": [
                    {
                        "description": "Project list",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Project"}}
                    },
                    {"type": "string", "description": "Expected revision ETag", "name": "If-Match", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "412": {"description": "Precondition Failed", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/contact": {
            "get": {
                "produces": ["application/json"],
                "tags": ["contact"],
                "summary": "Contact endpoint status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.StatusResponse"}}
                }
            },
            "post": {
                "description": "Validates the message and emails it to the site owner. Without an email provider the message is only logged.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["contact"],
                "summary": "Send a contact message",
                "parameters": [
                    {
                        "description": "Contact message",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.ContactRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ContactResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Project": {
            "type": "object",
            "required": ["id", "title", "imageFit"],
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "image": {"type": "string"},
                "imageFit": {"type": "string", "enum": ["contain", "cover"]},
                "imageBg": {"type": "string"},
                "technologies": {"type": "array", "items": {"type": "string"}},
                "demoLink": {"type": "string"},
                "codeLink": {"type": "string"}
            }
        },
        "domain.Skill": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "icon": {"type": "string"}
            }
        },
        "domain.SkillCategory": {
            "type": "object",
            "required": ["id", "label"],
            "properties": {
                "id": {"type": "string"},
                "label": {"type": "string"},
                "skills": {"type": "array", "items": {"$ref": "#/definitions/domain.Skill"}}
            }
        },
        "domain.SkillsDocument": {
            "type": "object",
            "properties": {
                "categories": {"type": "array", "items": {"$ref": "#/definitions/domain.SkillCategory"}}
            }
        },
        "dto.AuthStatusResponse": {
            "type": "object",
            "properties": {"authenticated": {"type": "boolean"}}
        },
        "dto.ContactRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "subject": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "dto.ContactResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "id": {"type": "string"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "dto.LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "dto.StatusResponse": {
            "type": "object",
            "properties": {"status": {"type": "string"}}
        },
        "dto.SuccessResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Folio Admin API",
	Description:      "Portfolio content API with a single-admin session guard and a contact relay.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
