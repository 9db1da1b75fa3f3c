package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Events API",
        "description": "Participation lifecycle engine for campus events",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Student accounts and tokens"},
        {"name": "Events", "description": "Event catalogue with derived status"},
        {"name": "Registrations", "description": "Individual and team registration lifecycle"},
        {"name": "Attendance", "description": "Attendance marking during the event window"},
        {"name": "Feedback", "description": "Post-event feedback"},
        {"name": "Certificates", "description": "Certificate issuance and download"},
        {"name": "Teams", "description": "Team roster management"},
        {"name": "Students", "description": "Student-centric views"},
        {"name": "Reconciliation", "description": "Dual-document drift audit and repair"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/signup": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Create student account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Enrollment already exists"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Get current student claims",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events": {
            "get": {
                "tags": ["Events"],
                "summary": "List events",
                "parameters": [
                    {"name": "phase", "in": "query", "type": "string", "description": "status or sub_status filter"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Events"],
                "summary": "Create event (admin)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/{event_id}": {
            "get": {
                "tags": ["Events"],
                "summary": "Get event with derived status",
                "parameters": [
                    {"name": "event_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/events/{event_id}/register": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Register for an individual event (idempotent)",
                "parameters": [
                    {"name": "event_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Registered", "schema": {"$ref": "#/definitions/Outcome"}},
                    "409": {"description": "Phase closed"},
                    "422": {"description": "Capacity violated"}
                }
            }
        },
        "/events/{event_id}/register/team": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Register a team (leader plus participants)",
                "parameters": [
                    {"name": "event_id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeamRegisterPayload"}}
                ],
                "responses": {
                    "201": {"description": "Registered", "schema": {"$ref": "#/definitions/Outcome"}},
                    "409": {"description": "Members already registered"},
                    "422": {"description": "Team size out of bounds"}
                }
            }
        },
        "/events/{event_id}/registration": {
            "delete": {
                "tags": ["Registrations"],
                "summary": "Cancel registration (leader cancels whole team)",
                "parameters": [
                    {"name": "event_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Cancelled", "schema": {"$ref": "#/definitions/Outcome"}},
                    "403": {"description": "Team participants cannot cancel"},
                    "409": {"description": "Phase closed"}
                }
            }
        },
        "/events/{event_id}/payment": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Complete a pending payment",
                "parameters": [
                    {"name": "event_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Completed", "schema": {"$ref": "#/definitions/Outcome"}}
                }
            }
        },
        "/events/{event_id}/attendance": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark attendance (admin)",
                "parameters": [
                    {"name": "event_id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AttendancePayload"}}
                ],
                "responses": {
                    "201": {"description": "Marked", "schema": {"$ref": "#/definitions/Outcome"}},
                    "409": {"description": "Already marked or phase closed"}
                }
            }
        },
        "/events/{event_id}/feedback": {
            "post": {
                "tags": ["Feedback"],
                "summary": "Submit feedback",
                "parameters": [
                    {"name": "event_id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FeedbackPayload"}}
                ],
                "responses": {
                    "201": {"description": "Submitted", "schema": {"$ref": "#/definitions/Outcome"}},
                    "412": {"description": "Attendance missing"}
                }
            }
        },
        "/events/{event_id}/certificate": {
            "post": {
                "tags": ["Certificates"],
                "summary": "Issue certificate",
                "parameters": [
                    {"name": "event_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Issued", "schema": {"$ref": "#/definitions/Outcome"}},
                    "412": {"description": "Chain prerequisite missing"}
                }
            },
            "get": {
                "tags": ["Certificates"],
                "summary": "Download certificate PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "event_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF bytes"},
                    "404": {"description": "No certificate issued"}
                }
            }
        },
        "/events/{event_id}/teams/{team_id}": {
            "get": {
                "tags": ["Teams"],
                "summary": "Get team roster",
                "parameters": [
                    {"name": "event_id", "in": "path", "required": true, "type": "string"},
                    {"name": "team_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/{event_id}/teams/{team_id}/participants": {
            "post": {
                "tags": ["Teams"],
                "summary": "Add team member (leader only)",
                "parameters": [
                    {"name": "event_id", "in": "path", "required": true, "type": "string"},
                    {"name": "team_id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MemberPayload"}}
                ],
                "responses": {
                    "201": {"description": "Added", "schema": {"$ref": "#/definitions/Outcome"}},
                    "422": {"description": "Team at maximum size"}
                }
            }
        },
        "/events/{event_id}/teams/{team_id}/participants/{enrollment_no}": {
            "delete": {
                "tags": ["Teams"],
                "summary": "Remove team member (leader only)",
                "parameters": [
                    {"name": "event_id", "in": "path", "required": true, "type": "string"},
                    {"name": "team_id", "in": "path", "required": true, "type": "string"},
                    {"name": "enrollment_no", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Removed", "schema": {"$ref": "#/definitions/Outcome"}},
                    "422": {"description": "Team at minimum size"}
                }
            },
            "patch": {
                "tags": ["Teams"],
                "summary": "Update member contact details (leader only)",
                "parameters": [
                    {"name": "event_id", "in": "path", "required": true, "type": "string"},
                    {"name": "team_id", "in": "path", "required": true, "type": "string"},
                    {"name": "enrollment_no", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ContactPayload"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/Outcome"}},
                    "404": {"description": "Not a team member"}
                }
            }
        },
        "/students/me": {
            "get": {
                "tags": ["Students"],
                "summary": "Get own profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/me/participations": {
            "get": {
                "tags": ["Students"],
                "summary": "List own participations with chain progress",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/reconcile": {
            "get": {
                "tags": ["Reconciliation"],
                "summary": "Audit all events for document drift (admin)",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/reconcile/{event_id}": {
            "get": {
                "tags": ["Reconciliation"],
                "summary": "Audit one event (admin)",
                "parameters": [
                    {"name": "event_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/reconcile/{event_id}/repair": {
            "post": {
                "tags": ["Reconciliation"],
                "summary": "Rebuild event indexes from student documents (admin)",
                "parameters": [
                    {"name": "event_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Repaired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["enrollment_no", "password"],
            "properties": {
                "enrollment_no": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "SignupRequest": {
            "type": "object",
            "required": ["enrollment_no", "full_name", "email", "password"],
            "properties": {
                "enrollment_no": {"type": "string"},
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "mobile_no": {"type": "string"},
                "department": {"type": "string"},
                "semester": {"type": "string"},
                "gender": {"type": "string"},
                "date_of_birth": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateEventRequest": {
            "type": "object",
            "required": ["event_name", "registration_mode", "registration_type"],
            "properties": {
                "event_name": {"type": "string"},
                "description": {"type": "string"},
                "venue": {"type": "string"},
                "organizer": {"type": "string"},
                "registration_start_date": {"type": "string"},
                "registration_start_time": {"type": "string"},
                "registration_end_date": {"type": "string"},
                "registration_end_time": {"type": "string"},
                "start_date": {"type": "string"},
                "start_time": {"type": "string"},
                "end_date": {"type": "string"},
                "end_time": {"type": "string"},
                "certificate_end_date": {"type": "string"},
                "certificate_end_time": {"type": "string"},
                "registration_mode": {"type": "string", "enum": ["individual", "team"]},
                "registration_type": {"type": "string", "enum": ["free", "paid"]},
                "registration_fee": {"type": "number"},
                "team_size_min": {"type": "integer"},
                "team_size_max": {"type": "integer"},
                "max_participants": {"type": "integer"}
            }
        },
        "TeamRegisterPayload": {
            "type": "object",
            "required": ["team_name"],
            "properties": {
                "team_name": {"type": "string"},
                "participants": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ContactPayload": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "mobile_no": {"type": "string"}
            }
        },
        "AttendancePayload": {
            "type": "object",
            "required": ["enrollment_no", "status"],
            "properties": {
                "enrollment_no": {"type": "string"},
                "status": {"type": "string", "enum": ["present", "absent"]}
            }
        },
        "FeedbackPayload": {
            "type": "object",
            "required": ["rating"],
            "properties": {
                "rating": {"type": "integer", "minimum": 1, "maximum": 5},
                "comments": {"type": "string"}
            }
        },
        "MemberPayload": {
            "type": "object",
            "required": ["enrollment_no"],
            "properties": {
                "enrollment_no": {"type": "string"}
            }
        },
        "Outcome": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "id": {"type": "string"},
                "code": {"type": "string"},
                "message": {"type": "string"}
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
