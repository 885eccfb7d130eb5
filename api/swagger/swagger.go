package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CardNest API",
        "description": "Multi-tenant ID card management for schools, colleges and companies",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, logout and session info"},
        {"name": "Students", "description": "Student roster management"},
        {"name": "Employees", "description": "Employee roster management"},
        {"name": "ChangeRequests", "description": "Student field-change approval workflow"},
        {"name": "Institutions", "description": "Super-admin tenant management"},
        {"name": "CardDesigns", "description": "Curated catalog and custom card designs"},
        {"name": "Dashboard", "description": "Institution aggregates"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unavailable"}
                }
            }
        },
        "/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate a principal and set the session cookie",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Clear the session cookie",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current principal info",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "No valid session", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/change-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change own password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {
                    "204": {"description": "Changed"},
                    "401": {"description": "Wrong current password", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/student/profile": {
            "get": {
                "tags": ["Students"],
                "summary": "Own student record",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student/change-requests": {
            "get": {
                "tags": ["ChangeRequests"],
                "summary": "List own change requests",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["ChangeRequests"],
                "summary": "Submit change requests for own record",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitChangeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Field not editable", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "403": {"description": "Not your record", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/employee/profile": {
            "get": {
                "tags": ["Employees"],
                "summary": "Own employee record",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/institute/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Institution aggregates",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/institute/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "rollNo", "in": "query", "type": "string"},
                    {"name": "branch", "in": "query", "type": "string"},
                    {"name": "batchStart", "in": "query", "type": "integer"},
                    {"name": "paymentStatus", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Register a student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Roll number taken", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/institute/students/import": {
            "post": {
                "tags": ["Students"],
                "summary": "Bulk import students from an xlsx workbook",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "Import summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/institute/students/export": {
            "get": {
                "tags": ["Students"],
                "summary": "Export roster as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV file"}
                }
            }
        },
        "/institute/students/cards": {
            "get": {
                "tags": ["Students"],
                "summary": "Export roster as printable ID-card PDF",
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF file"}
                }
            }
        },
        "/institute/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Student detail",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update a student",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/institute/change-requests": {
            "get": {
                "tags": ["ChangeRequests"],
                "summary": "List institution change requests",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "description": "pending, admin_approved or rejected; defaults to pending"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/institute/change-requests/review": {
            "post": {
                "tags": ["ChangeRequests"],
                "summary": "Approve or reject a change request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewChangeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Reviewed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown request", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "409": {"description": "Already reviewed", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/admin/institutions": {
            "get": {
                "tags": ["Institutions"],
                "summary": "List institutions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Institutions"],
                "summary": "Register an institution",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateInstitutionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Code already in use", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/admin/institute-admins": {
            "get": {
                "tags": ["Institutions"],
                "summary": "List institute admins",
                "parameters": [
                    {"name": "institutionId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Institutions"],
                "summary": "Register an institute admin",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateInstituteAdminRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/card-designs": {
            "get": {
                "tags": ["CardDesigns"],
                "summary": "List the curated catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["CardDesigns"],
                "summary": "Add a curated design",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCardDesignRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["role", "login_id", "password"],
            "properties": {
                "role": {"type": "string", "enum": ["STUDENT", "EMPLOYEE", "INSTITUTE_ADMIN", "SUPER_ADMIN"]},
                "login_id": {"type": "string"},
                "password": {"type": "string"},
                "remember_me": {"type": "boolean"}
            }
        },
        "ChangePasswordRequest": {
            "type": "object",
            "required": ["old_password", "new_password"],
            "properties": {
                "old_password": {"type": "string"},
                "new_password": {"type": "string"}
            }
        },
        "SubmitChangeRequest": {
            "type": "object",
            "required": ["institution_id", "roll_no", "section", "class", "changes"],
            "properties": {
                "institution_id": {"type": "string"},
                "roll_no": {"type": "string"},
                "section": {"type": "string"},
                "class": {"type": "string"},
                "changes": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/FieldChange"}
                }
            }
        },
        "FieldChange": {
            "type": "object",
            "properties": {
                "field_name": {"type": "string"},
                "old_value": {"type": "string"},
                "new_value": {"type": "string"}
            }
        },
        "ReviewChangeRequest": {
            "type": "object",
            "required": ["request_id", "decision"],
            "properties": {
                "request_id": {"type": "string"},
                "decision": {"type": "string", "enum": ["approve", "reject"]}
            }
        },
        "CreateStudentRequest": {
            "type": "object",
            "required": ["roll_no", "section", "class", "full_name", "mobile", "password"],
            "properties": {
                "roll_no": {"type": "string"},
                "section": {"type": "string"},
                "class": {"type": "string"},
                "branch": {"type": "string"},
                "batch_start": {"type": "integer"},
                "batch_end": {"type": "integer"},
                "full_name": {"type": "string"},
                "mobile": {"type": "string"},
                "email": {"type": "string"},
                "address": {"type": "string"},
                "blood_group": {"type": "string"},
                "guardian_name": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "UpdateStudentRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "mobile": {"type": "string"},
                "email": {"type": "string"},
                "address": {"type": "string"},
                "blood_group": {"type": "string"},
                "guardian_name": {"type": "string"},
                "branch": {"type": "string"}
            }
        },
        "CreateInstitutionRequest": {
            "type": "object",
            "required": ["name", "code", "type"],
            "properties": {
                "name": {"type": "string"},
                "code": {"type": "string"},
                "type": {"type": "string", "enum": ["school", "college", "company"]},
                "address": {"type": "string"},
                "phone": {"type": "string"},
                "email": {"type": "string"},
                "logo": {"type": "string", "description": "base64 encoded image"}
            }
        },
        "CreateInstituteAdminRequest": {
            "type": "object",
            "required": ["institution_id", "email", "full_name", "password"],
            "properties": {
                "institution_id": {"type": "string"},
                "email": {"type": "string"},
                "full_name": {"type": "string"},
                "department": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateCardDesignRequest": {
            "type": "object",
            "required": ["name", "front_image", "back_image"],
            "properties": {
                "name": {"type": "string"},
                "front_image": {"type": "string", "description": "base64 encoded image"},
                "back_image": {"type": "string", "description": "base64 encoded image"}
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
        "ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "message": {"type": "string"},
                "error": {"type": "string"},
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
