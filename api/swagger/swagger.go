package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Intervention Insights API",
        "description": "Behaviour tracking, goal progress and intervention effectiveness analytics",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Analytics", "description": "Intervention effectiveness, comparison matrix and significance"},
        {"name": "Settings", "description": "Analytics settings document"},
        {"name": "Behaviors", "description": "Behaviour definitions and observed events"},
        {"name": "Goals", "description": "Behaviour goals and their progress"},
        {"name": "Reports", "description": "Asynchronous CSV and PDF exports"}
    ],
    "paths": {
        "/analytics/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Get analytics settings",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Update analytics settings",
                "description": "Requires ADMIN or SUPERADMIN.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAnalyticsSettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid settings", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/interventions": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Intervention samples and student progress for the current settings",
                "parameters": [
                    {"$ref": "#/parameters/timeRange"},
                    {"$ref": "#/parameters/fallback"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Intervention data unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/interventions/overview": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Full analytics pipeline result",
                "parameters": [
                    {"$ref": "#/parameters/timeRange"},
                    {"$ref": "#/parameters/groupBy"},
                    {"$ref": "#/parameters/fallback"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/analytics/interventions/matrix": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Intervention by learning profile effectiveness matrix",
                "description": "Cells without data are null.",
                "parameters": [
                    {"$ref": "#/parameters/timeRange"},
                    {"$ref": "#/parameters/fallback"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/analytics/interventions/significant": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Statistically significant interventions ranked by effectiveness",
                "parameters": [
                    {"$ref": "#/parameters/timeRange"},
                    {"$ref": "#/parameters/fallback"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/analytics/interventions/top": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Most effective interventions",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer", "default": 5},
                    {"$ref": "#/parameters/timeRange"},
                    {"$ref": "#/parameters/fallback"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/analytics/system": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Cache, database and pipeline instrumentation snapshot",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/analytics/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a report",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReportRequest"}}
                ],
                "responses": {"202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/analytics/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished report",
                "security": [],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Report file"},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/behaviors": {
            "get": {
                "tags": ["Behaviors"],
                "summary": "List behaviours of an account",
                "parameters": [
                    {"name": "account_id", "in": "query", "required": true, "type": "string"},
                    {"name": "category", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Behaviors"],
                "summary": "Create behaviour",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBehaviorRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/behaviors/{id}": {
            "get": {
                "tags": ["Behaviors"],
                "summary": "Get behaviour",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/behaviors/events": {
            "get": {
                "tags": ["Behaviors"],
                "summary": "List behaviour events",
                "parameters": [
                    {"name": "behavior_id", "in": "query", "type": "string"},
                    {"name": "student_id", "in": "query", "type": "string"},
                    {"name": "since", "in": "query", "type": "string"},
                    {"name": "until", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Behaviors"],
                "summary": "Record behaviour event",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordBehaviorEventRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/goals": {
            "get": {
                "tags": ["Goals"],
                "summary": "List goals",
                "parameters": [
                    {"name": "student_id", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Goals"],
                "summary": "Create goal",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateGoalRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/goals/{id}": {
            "get": {
                "tags": ["Goals"],
                "summary": "Get goal",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/goals/{id}/progress": {
            "get": {
                "tags": ["Goals"],
                "summary": "Goal progress within its timeframe",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/goals/{id}/evaluate": {
            "post": {
                "tags": ["Goals"],
                "summary": "Evaluate goal and mark it completed when the target is met",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/goals/{id}/pause": {
            "post": {
                "tags": ["Goals"],
                "summary": "Pause goal",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/goals/{id}/resume": {
            "post": {
                "tags": ["Goals"],
                "summary": "Resume goal",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "parameters": {
        "timeRange": {"name": "timeRange", "in": "query", "type": "string", "enum": ["week", "month", "term", "year", "all"]},
        "groupBy": {"name": "groupBy", "in": "query", "type": "string", "enum": ["intervention", "student", "learningProfile", "none"]},
        "fallback": {"name": "fallback", "in": "query", "type": "string", "enum": ["demo"], "description": "Serve demonstration data when the store is unavailable"}
    },
    "definitions": {
        "UpdateAnalyticsSettingsRequest": {
            "type": "object",
            "properties": {
                "enabled": {"type": "boolean"},
                "dataSource": {"type": "string", "enum": ["all", "current", "selected"]},
                "timeRange": {"type": "string", "enum": ["week", "month", "term", "year", "all"]},
                "groupBy": {"type": "string", "enum": ["intervention", "student", "learningProfile", "none"]},
                "comparisonEnabled": {"type": "boolean"},
                "significanceThreshold": {"type": "number", "minimum": 0.01, "maximum": 0.1},
                "automaticReports": {"type": "boolean"},
                "selectedInterventions": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ReportRequest": {
            "type": "object",
            "required": ["type", "format"],
            "properties": {
                "type": {"type": "string", "enum": ["effectiveness", "comparison", "significance"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "timeRange": {"type": "string", "enum": ["week", "month", "term", "year", "all"]},
                "demo": {"type": "boolean"}
            }
        },
        "CreateBehaviorRequest": {
            "type": "object",
            "required": ["account_id", "name", "category", "tracking_method"],
            "properties": {
                "account_id": {"type": "string"},
                "name": {"type": "string"},
                "category": {"type": "string", "enum": ["positive", "challenge", "neutral"]},
                "tracking_method": {"type": "string", "enum": ["frequency", "duration", "binary"]},
                "point_value": {"type": "integer"}
            }
        },
        "RecordBehaviorEventRequest": {
            "type": "object",
            "required": ["behavior_id", "count"],
            "properties": {
                "behavior_id": {"type": "string"},
                "student_id": {"type": "string"},
                "timestamp": {"type": "string", "format": "date-time"},
                "count": {"type": "integer", "minimum": 1},
                "context": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "CreateGoalRequest": {
            "type": "object",
            "required": ["target_behavior_id", "target_value", "timeframe"],
            "properties": {
                "target_behavior_id": {"type": "string"},
                "target_value": {"type": "integer", "minimum": 1},
                "timeframe": {"type": "string", "enum": ["daily", "weekly", "monthly", "term"]},
                "student_id": {"type": "string"},
                "reward_id": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"},
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
