// Package docs registra a especificação Swagger da API do Stockroom.
// Mantida junto das anotações @Summary/@Router dos handlers em internal/api.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Autentica o administrador e retorna um JWT",
                "parameters": [
                    {"description": "Senha administrativa", "name": "login", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token JWT emitido", "schema": {"$ref": "#/definitions/domain.LoginResponse"}},
                    "400": {"description": "Payload inválido", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "401": {"description": "Credenciais inválidas", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/components": {
            "get": {
                "produces": ["application/json"],
                "tags": ["components"],
                "summary": "Lista componentes",
                "parameters": [
                    {"type": "string", "description": "Trecho do nome", "name": "name", "in": "query"},
                    {"type": "string", "description": "Categoria exata", "name": "category", "in": "query"},
                    {"type": "boolean", "description": "Apenas estoque baixo", "name": "low_stock", "in": "query"},
                    {"type": "integer", "description": "Máximo de itens", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Deslocamento", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Lista de componentes", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Component"}}},
                    "400": {"description": "Parâmetros inválidos", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["components"],
                "summary": "Cadastra um componente",
                "parameters": [
                    {"description": "Dados do componente", "name": "component", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.ComponentInput"}}
                ],
                "responses": {
                    "201": {"description": "Componente criado", "schema": {"$ref": "#/definitions/domain.Component"}},
                    "400": {"description": "Payload inválido", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/components/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["components"],
                "summary": "Obtém um componente por ID",
                "parameters": [{"type": "string", "description": "ID do componente", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Componente encontrado", "schema": {"$ref": "#/definitions/domain.Component"}},
                    "404": {"description": "Componente não encontrado", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["components"],
                "summary": "Atualiza os metadados de um componente",
                "parameters": [
                    {"type": "string", "description": "ID do componente", "name": "id", "in": "path", "required": true},
                    {"description": "Novos metadados", "name": "component", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.ComponentInput"}}
                ],
                "responses": {
                    "200": {"description": "Componente atualizado", "schema": {"$ref": "#/definitions/domain.Component"}},
                    "409": {"description": "Componente alterado concorrentemente", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["components"],
                "summary": "Remove um componente",
                "parameters": [{"type": "string", "description": "ID do componente", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "Componente removido"},
                    "409": {"description": "Componente referenciado por requisições", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/components/{id}/adjust": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["components"],
                "summary": "Ajusta o estoque manualmente",
                "parameters": [
                    {"type": "string", "description": "ID do componente", "name": "id", "in": "path", "required": true},
                    {"description": "Delta e causa", "name": "adjustment", "in": "body", "required": true, "schema": {"$ref": "#/definitions/component.AdjustRequest"}}
                ],
                "responses": {
                    "200": {"description": "Componente com a nova quantidade", "schema": {"$ref": "#/definitions/domain.Component"}},
                    "400": {"description": "Estoque insuficiente ou payload inválido", "schema": {"$ref": "#/definitions/response.StockErrorResponse"}}
                }
            }
        },
        "/requests": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "Lista requisições",
                "parameters": [
                    {"type": "string", "description": "PENDING, APPROVED ou RETURNED", "name": "status", "in": "query"},
                    {"type": "integer", "description": "Máximo de itens", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Deslocamento", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Lista de requisições", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Request"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "Abre uma requisição de componentes",
                "parameters": [
                    {"description": "Colaborador e itens", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.RequestDraft"}}
                ],
                "responses": {
                    "201": {"description": "Requisição criada", "schema": {"$ref": "#/definitions/domain.Request"}},
                    "400": {"description": "Payload inválido ou estoque insuficiente", "schema": {"$ref": "#/definitions/response.StockErrorResponse"}}
                }
            }
        },
        "/requests/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "Obtém uma requisição com seus itens",
                "parameters": [{"type": "string", "description": "ID da requisição", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Requisição encontrada", "schema": {"$ref": "#/definitions/domain.Request"}},
                    "404": {"description": "Requisição não encontrada", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "Edita uma requisição pendente",
                "parameters": [
                    {"type": "string", "description": "ID da requisição", "name": "id", "in": "path", "required": true},
                    {"description": "Colaborador e itens", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.RequestDraft"}}
                ],
                "responses": {
                    "200": {"description": "Requisição atualizada", "schema": {"$ref": "#/definitions/domain.Request"}},
                    "409": {"description": "Requisição não está PENDING", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/requests/{id}/status": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "Muda o status de uma requisição",
                "parameters": [
                    {"type": "string", "description": "ID da requisição", "name": "id", "in": "path", "required": true},
                    {"description": "Status de destino", "name": "status", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.StatusChange"}}
                ],
                "responses": {
                    "200": {"description": "Requisição no novo status", "schema": {"$ref": "#/definitions/domain.Request"}},
                    "400": {"description": "Status inválido ou estoque insuficiente", "schema": {"$ref": "#/definitions/response.StockErrorResponse"}},
                    "409": {"description": "Transição não permitida", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/usage": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["usage"],
                "summary": "Lista o histórico de uso",
                "parameters": [
                    {"type": "string", "description": "Filtra por componente", "name": "component_id", "in": "query"},
                    {"type": "integer", "description": "Máximo de itens", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Deslocamento", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Registros de uso", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.UsageRecord"}}}
                }
            }
        },
        "/usage/export": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["usage"],
                "summary": "Exporta o histórico de uso em XLSX",
                "parameters": [{"type": "string", "description": "Filtra por componente", "name": "component_id", "in": "query"}],
                "responses": {
                    "200": {"description": "Planilha do histórico", "schema": {"type": "file"}}
                }
            }
        }
    },
    "definitions": {
        "component.AdjustRequest": {
            "type": "object",
            "properties": {
                "delta": {"type": "integer", "example": -3},
                "notes": {"type": "string"},
                "project": {"type": "string"}
            }
        },
        "domain.Component": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "quantity": {"type": "integer"},
                "unit": {"type": "string"},
                "min_stock": {"type": "integer"},
                "location": {"type": "string"},
                "supplier": {"type": "string"},
                "image_ref": {"type": "string"},
                "category_name": {"type": "string"},
                "consumable": {"type": "boolean"},
                "version": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "domain.ComponentInput": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "quantity": {"type": "integer"},
                "unit": {"type": "string"},
                "min_stock": {"type": "integer"},
                "location": {"type": "string"},
                "supplier": {"type": "string"},
                "image_ref": {"type": "string"},
                "category_name": {"type": "string"},
                "consumable": {"type": "boolean"}
            }
        },
        "domain.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "category": {"type": "string", "example": "INSUFFICIENT_STOCK"},
                "message": {"type": "string"}
            }
        },
        "domain.LoginRequest": {
            "type": "object",
            "properties": {"password": {"type": "string"}}
        },
        "domain.LoginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expires_in": {"type": "integer"}
            }
        },
        "domain.Request": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "personnel_name": {"type": "string"},
                "personnel_email": {"type": "string"},
                "status": {"type": "string", "enum": ["PENDING", "APPROVED", "RETURNED"]},
                "face_image_ref": {"type": "string"},
                "requested_at": {"type": "string"},
                "approved_at": {"type": "string"},
                "returned_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/domain.RequestItem"}}
            }
        },
        "domain.RequestDraft": {
            "type": "object",
            "properties": {
                "personnel_name": {"type": "string"},
                "personnel_email": {"type": "string"},
                "face_image_ref": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/domain.RequestItemInput"}}
            }
        },
        "domain.RequestItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "request_id": {"type": "string"},
                "component_id": {"type": "string"},
                "component_name": {"type": "string"},
                "quantity": {"type": "integer"},
                "description": {"type": "string"},
                "consumable": {"type": "boolean"}
            }
        },
        "domain.RequestItemInput": {
            "type": "object",
            "properties": {
                "component_id": {"type": "string"},
                "quantity": {"type": "integer"},
                "description": {"type": "string"}
            }
        },
        "domain.StatusChange": {
            "type": "object",
            "properties": {"status": {"type": "string", "example": "APPROVED"}}
        },
        "domain.UsageRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "component_id": {"type": "string"},
                "component_name": {"type": "string"},
                "request_id": {"type": "string"},
                "quantity": {"type": "integer"},
                "type": {"type": "string", "enum": ["add", "remove"]},
                "project": {"type": "string"},
                "notes": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "response.StockErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "category": {"type": "string", "example": "INSUFFICIENT_STOCK"},
                "message": {"type": "string"},
                "component_id": {"type": "string"},
                "available": {"type": "integer", "example": 0}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo contém as informações exportadas da especificação.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Stockroom API",
	Description:      "Almoxarifado de componentes: cadastro, requisições com ciclo de vida e histórico de uso.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
