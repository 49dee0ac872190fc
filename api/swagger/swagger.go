package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "PACS Worklist API",
        "description": "Session-scoped study worklist with filtering, sorting and rolling-window pagination",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"Bearer": []}],
    "tags": [
        {"name": "Worklist", "description": "Study list state of one session"},
        {"name": "Studies", "description": "Series and viewer links of a study"},
        {"name": "Commands", "description": "Measurement commands and report downloads"},
        {"name": "Measurements", "description": "Forwarding measurements downstream"},
        {"name": "DICOM", "description": "Uploading Part 10 files to the archive"},
        {"name": "Feedback", "description": "Reader feedback forms"}
    ],
    "paths": {
        "/worklist/config": {
            "get": {
                "tags": ["Worklist"],
                "summary": "Describe the worklist engine",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/worklist/studies": {
            "get": {
                "tags": ["Worklist"],
                "summary": "Render the current worklist page",
                "description": "Query parameters override the stored session filters key by key. Keys are case-insensitive.",
                "parameters": [
                    {"$ref": "#/parameters/Session"},
                    {"name": "patientname", "in": "query", "type": "string"},
                    {"name": "mrn", "in": "query", "type": "string"},
                    {"name": "startdate", "in": "query", "type": "string", "description": "YYYYMMDD"},
                    {"name": "enddate", "in": "query", "type": "string", "description": "YYYYMMDD"},
                    {"name": "description", "in": "query", "type": "string"},
                    {"name": "modalities", "in": "query", "type": "string", "description": "Comma separated"},
                    {"name": "accession", "in": "query", "type": "string"},
                    {"name": "sortby", "in": "query", "type": "string"},
                    {"name": "sortdirection", "in": "query", "type": "string", "enum": ["ascending", "descending", "none"]},
                    {"name": "pagenumber", "in": "query", "type": "integer"},
                    {"name": "resultsperpage", "in": "query", "type": "integer"},
                    {"name": "datasources", "in": "query", "type": "string"},
                    {"name": "configurl", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/worklist/filters": {
            "put": {
                "tags": ["Worklist"],
                "summary": "Replace the session filters",
                "parameters": [
                    {"$ref": "#/parameters/Session"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FilterState"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Worklist"],
                "summary": "Reset the session filters to defaults",
                "parameters": [{"$ref": "#/parameters/Session"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/worklist/page": {
            "put": {
                "tags": ["Worklist"],
                "summary": "Move to another page",
                "parameters": [
                    {"$ref": "#/parameters/Session"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"page_number": {"type": "integer"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Page outside the fetched window", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/worklist/results-per-page": {
            "put": {
                "tags": ["Worklist"],
                "summary": "Change the number of rows per page",
                "parameters": [
                    {"$ref": "#/parameters/Session"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"results_per_page": {"type": "integer", "minimum": 1}}}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/worklist/rows/{index}/toggle": {
            "post": {
                "tags": ["Worklist"],
                "summary": "Expand or collapse a study row",
                "parameters": [
                    {"$ref": "#/parameters/Session"},
                    {"name": "index", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Row out of range", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/worklist/notifications": {
            "get": {
                "tags": ["Worklist"],
                "summary": "Drain pending session notifications",
                "parameters": [{"$ref": "#/parameters/Session"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/worklist/session": {
            "delete": {
                "tags": ["Worklist"],
                "summary": "Discard the session and its stored filters",
                "parameters": [{"$ref": "#/parameters/Session"}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/studies/{uid}/series": {
            "get": {
                "tags": ["Studies"],
                "summary": "List the series of a study",
                "parameters": [{"name": "uid", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Data source failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/studies/{uid}/launch": {
            "get": {
                "tags": ["Studies"],
                "summary": "Viewer links for a study",
                "parameters": [{"name": "uid", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/studies/{uid}/feedback": {
            "get": {
                "tags": ["Feedback"],
                "summary": "List study feedback",
                "parameters": [{"name": "uid", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Feedback"],
                "summary": "Submit study feedback",
                "parameters": [
                    {"name": "uid", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/display-sets/{uid}/feedback": {
            "post": {
                "tags": ["Feedback"],
                "summary": "Submit display set feedback",
                "parameters": [
                    {"name": "uid", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/commands": {
            "get": {
                "tags": ["Commands"],
                "summary": "List available commands",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/commands/{name}": {
            "post": {
                "tags": ["Commands"],
                "summary": "Run a command",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string", "enum": ["downloadCSVMeasurementsReport", "downloadPDFMeasurementsReport", "clearMeasurements"]},
                    {"name": "payload", "in": "body", "required": false, "schema": {"type": "object", "properties": {"args": {"type": "object"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown command", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{token}": {
            "get": {
                "tags": ["Commands"],
                "summary": "Download a generated report",
                "security": [],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Report file", "schema": {"type": "file"}},
                    "403": {"description": "Link expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/measurements/upload": {
            "post": {
                "tags": ["Measurements"],
                "summary": "Send measurements to the measurement service",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "Notification describing the outcome", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/dicom/upload": {
            "post": {
                "tags": ["DICOM"],
                "summary": "Upload DICOM files",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"$ref": "#/parameters/Session"},
                    {"name": "files", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Uploads disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "parameters": {
        "Session": {"name": "X-Worklist-Session", "in": "header", "type": "string", "description": "Session id returned by a previous response"}
    },
    "definitions": {
        "FilterState": {
            "type": "object",
            "properties": {
                "patient_name": {"type": "string"},
                "mrn": {"type": "string"},
                "study_date": {"type": "object", "properties": {"start_date": {"type": "string"}, "end_date": {"type": "string"}}},
                "description": {"type": "string"},
                "modalities": {"type": "array", "items": {"type": "string"}},
                "accession": {"type": "string"},
                "sort_by": {"type": "string"},
                "sort_direction": {"type": "string", "enum": ["ascending", "descending", "none"]},
                "page_number": {"type": "integer"},
                "results_per_page": {"type": "integer"},
                "datasources": {"type": "string"},
                "config_url": {"type": "string"}
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
