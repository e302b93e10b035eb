// Package docs registra la especificación OpenAPI del servicio.
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
        "/tags/info/{tagId}": {
            "get": {
                "summary": "Proyección tri-estado de una chapita",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "tagId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "chapita inexistente"}
                }
            }
        },
        "/tags/activate/{tagId}": {
            "post": {
                "summary": "Activa una chapita vinculándola a una mascota elegible",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "tagId", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"petId": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "chapita activada"},
                    "400": {"description": "combinación mascota/chapita no elegible"},
                    "401": {"description": "requiere login"},
                    "409": {"description": "conflicto de activación"}
                }
            }
        },
        "/pets": {
            "get": {
                "summary": "Mascotas del dueño",
                "parameters": [
                    {"name": "ownerId", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "summary": "Registra una mascota",
                "responses": {"201": {"description": "creada"}}
            }
        },
        "/pets/lost": {
            "get": {
                "summary": "Colección pública de mascotas perdidas",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pets/{petId}/lost": {
            "patch": {
                "summary": "Togglea el estado de perdida con ubicación",
                "parameters": [
                    {"name": "petId", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"isLost": {"type": "boolean"}, "lostLocation": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "falta ubicación"}
                }
            }
        },
        "/locations/provinces": {
            "get": {
                "summary": "Provincias del dataset georef",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/locations/localities": {
            "get": {
                "summary": "Localidades de una provincia (dedup, tope de 200 filtradas)",
                "parameters": [
                    {"name": "provincia", "in": "query", "required": true, "type": "string"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Pet Tag Registry API",
	Description:      "Registro de chapitas: vinculación chapita-mascota y ciclo de perdida.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
