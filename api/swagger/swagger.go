package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Notice Board API",
        "description": "Notices with attachments, view counting and a most-viewed ranking",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Notices", "description": "Notice board"}
    ],
    "paths": {
        "/notices": {
            "get": {
                "tags": ["Notices"],
                "summary": "List notices",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer", "description": "Zero-based page"},
                    {"name": "size", "in": "query", "type": "integer", "description": "Page size (default 10, max 100)"},
                    {"name": "sort", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "field,direction"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/NoticePage"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "post": {
                "tags": ["Notices"],
                "summary": "Create notice",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "title", "in": "formData", "type": "string", "required": true},
                    {"name": "content", "in": "formData", "type": "string", "required": true},
                    {"name": "startDateTime", "in": "formData", "type": "string", "format": "date-time", "required": true},
                    {"name": "endDateTime", "in": "formData", "type": "string", "format": "date-time", "required": true},
                    {"name": "files", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/NoticeDetail"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/notices/top": {
            "get": {
                "tags": ["Notices"],
                "summary": "Most viewed notices",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/NoticeSummary"}}}
                }
            }
        },
        "/notices/{id}": {
            "get": {
                "tags": ["Notices"],
                "summary": "Get notice",
                "description": "Returns the notice and counts the view.",
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/NoticeDetail"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "put": {
                "tags": ["Notices"],
                "summary": "Update notice",
                "description": "Replaces title, content, display window and the attachment set.",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "title", "in": "formData", "type": "string", "required": true},
                    {"name": "content", "in": "formData", "type": "string", "required": true},
                    {"name": "startDateTime", "in": "formData", "type": "string", "format": "date-time", "required": true},
                    {"name": "endDateTime", "in": "formData", "type": "string", "format": "date-time", "required": true},
                    {"name": "files", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/NoticeDetail"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "delete": {
                "tags": ["Notices"],
                "summary": "Delete notice",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "NoticeDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "format": "int64"},
                "title": {"type": "string"},
                "content": {"type": "string"},
                "startDateTime": {"type": "string", "format": "date-time"},
                "endDateTime": {"type": "string", "format": "date-time"},
                "attachmentPaths": {"type": "array", "items": {"type": "string"}},
                "createdDate": {"type": "string", "format": "date-time"},
                "viewCount": {"type": "integer"},
                "author": {"type": "string"}
            }
        },
        "NoticeSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "format": "int64"},
                "title": {"type": "string"},
                "content": {"type": "string"},
                "createdDate": {"type": "string", "format": "date-time"},
                "viewCount": {"type": "integer"},
                "author": {"type": "string"}
            }
        },
        "NoticePage": {
            "type": "object",
            "properties": {
                "content": {"type": "array", "items": {"$ref": "#/definitions/NoticeSummary"}},
                "page": {"type": "integer"},
                "size": {"type": "integer"},
                "totalElements": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "Violation": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "errorCode": {"type": "string"},
                "message": {"type": "string"},
                "timestamp": {"type": "string", "format": "date-time"},
                "violations": {"type": "array", "items": {"$ref": "#/definitions/Violation"}}
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
