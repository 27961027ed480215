package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "PNF Horarios API",
        "description": "Weekly section timetable editor: slot candidates, class creation and moves, commit and export.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Horarios", "description": "Section timetable editing sessions"},
        {"name": "Catalogo", "description": "Professors, classrooms, curricular units and weekly schedules"},
        {"name": "Probes", "description": "Liveness, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {"tags": ["Probes"], "summary": "Liveness check", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {"tags": ["Probes"], "summary": "Readiness check", "responses": {"200": {"description": "Ready"}, "503": {"description": "Degraded"}}}
        },
        "/metrics": {
            "get": {"tags": ["Probes"], "summary": "Prometheus metrics", "produces": ["text/plain"], "responses": {"200": {"description": "Metrics"}}}
        },
        "/api/v1/horarios/sesiones": {
            "post": {
                "tags": ["Horarios"], "summary": "Open an editing session for a section timetable",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/OpenSessionRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Section not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/horarios/sesiones/{id}": {
            "get": {
                "tags": ["Horarios"], "summary": "Get an editing session",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/SessionID"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Session expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Horarios"], "summary": "Close an editing session without saving",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/SessionID"}],
                "responses": {"204": {"description": "Discarded"}}
            }
        },
        "/api/v1/horarios/sesiones/{id}/unidades": {
            "get": {
                "tags": ["Horarios"], "summary": "List curricular units with hours derived from the session grid",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/SessionID"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/horarios/sesiones/{id}/candidatos": {
            "post": {
                "tags": ["Horarios"], "summary": "List the slots a class could take",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/SessionID"}, {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CandidateRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/horarios/sesiones/{id}/crear": {
            "post": {
                "tags": ["Horarios"], "summary": "Run the creation sequence of a curricular unit",
                "description": "An empty body resumes a sequence that was waiting on a move.",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/SessionID"}, {"in": "body", "name": "payload", "required": false, "schema": {"$ref": "#/definitions/CreateClassesRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "412": {"description": "Nothing to resume or sequence already running", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/horarios/sesiones/{id}/mover": {
            "post": {
                "tags": ["Horarios"], "summary": "Select a class to move and list its destinations",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/SessionID"}, {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SelectMoveRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Horarios"], "summary": "Cancel the current move selection",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/SessionID"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/horarios/sesiones/{id}/mover/confirmar": {
            "post": {
                "tags": ["Horarios"], "summary": "Move the selected class to one of its destinations",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/SessionID"}, {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CommitMoveRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Slot unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "412": {"description": "No class selected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/horarios/sesiones/{id}/clases/{claseId}": {
            "delete": {
                "tags": ["Horarios"], "summary": "Delete a class from the session grid",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/SessionID"}, {"in": "path", "name": "claseId", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/horarios/sesiones/{id}/guardar": {
            "post": {
                "tags": ["Horarios"], "summary": "Persist the session changes",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/SessionID"}],
                "responses": {"200": {"description": "Commit report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/horarios/sesiones/{id}/restablecer": {
            "post": {
                "tags": ["Horarios"], "summary": "Discard local changes and return to the last saved grid",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/SessionID"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/horarios/sesiones/{id}/exportar": {
            "get": {
                "tags": ["Horarios"], "summary": "Export the session grid",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [{"$ref": "#/parameters/SessionID"}, {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf", "xlsx"]}],
                "responses": {"200": {"description": "File", "schema": {"type": "file"}}}
            }
        },
        "/api/v1/profesores/to/seccion/{id}": {
            "post": {
                "tags": ["Catalogo"], "summary": "Search professors available for a section",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}, {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ProfessorSearchRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/aulas/to/seccion/{id}": {
            "post": {
                "tags": ["Catalogo"], "summary": "Search classrooms available for a section",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}, {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ClassroomSearchRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/horarios/profesor/{id}": {
            "get": {
                "tags": ["Catalogo"], "summary": "Weekly schedule of a professor",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/horarios/aula/{id}": {
            "get": {
                "tags": ["Catalogo"], "summary": "Weekly schedule of a classroom",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/trayectos/{id}/unidades-curriculares": {
            "get": {
                "tags": ["Catalogo"], "summary": "List the curricular units of a trayecto",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "parameters": {
        "SessionID": {"in": "path", "name": "id", "type": "string", "required": true, "description": "Editing session ID"}
    },
    "definitions": {
        "OpenSessionRequest": {
            "type": "object",
            "required": ["id_seccion"],
            "properties": {"id_seccion": {"type": "integer"}}
        },
        "ProfessorRef": {
            "description": "Professor id, digit-only string, or an object with id_profesor.",
            "type": "object",
            "properties": {"id_profesor": {"type": "integer"}, "nombres": {"type": "string"}, "apellidos": {"type": "string"}}
        },
        "CandidateRequest": {
            "type": "object",
            "properties": {
                "profesor": {"$ref": "#/definitions/ProfessorRef"},
                "id_aula": {"type": "integer"},
                "id_unidad_curricular": {"type": "integer"},
                "horas_bloques": {"type": "integer"}
            }
        },
        "CreateClassesRequest": {
            "type": "object",
            "properties": {
                "profesor": {"$ref": "#/definitions/ProfessorRef"},
                "id_aula": {"type": "integer"},
                "id_unidad_curricular": {"type": "integer"}
            }
        },
        "SelectMoveRequest": {
            "type": "object",
            "properties": {"id": {"type": "integer", "description": "Class id; negative for unsaved classes"}}
        },
        "CommitMoveRequest": {
            "type": "object",
            "properties": {"dia_index": {"type": "integer"}, "hora_inicio": {"type": "integer", "example": 845}}
        },
        "ProfessorSearchRequest": {
            "type": "object",
            "properties": {
                "horas_necesarias": {"type": "integer"},
                "id_unidad_curricular": {"type": "integer"},
                "modo": {"type": "string", "enum": ["general", "nueva_asignacion", "completar_horas"]},
                "search": {"type": "string"}
            }
        },
        "ClassroomSearchRequest": {
            "type": "object",
            "properties": {
                "id_profesor": {"type": "integer"},
                "horas_necesarias": {"type": "integer"},
                "id_unidad_curricular": {"type": "integer"},
                "busqueda_aula": {"type": "string"}
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
