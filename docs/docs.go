// Package docs registers the OpenAPI description served under /swagger.
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
                "description": "Exchanges credentials for a session token. Any earlier session of the user ends.",
                "consumes": ["application/x-www-form-urlencoded", "application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "description": "Password", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.LoginResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.StatusResponse"}}
                }
            }
        },
        "/logout": {
            "post": {
                "description": "Ends the session carried by the request.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log out",
                "parameters": [
                    {"type": "string", "description": "Session token", "name": "auth", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.StatusResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.StatusResponse"}}
                }
            }
        },
        "/logout/": {
            "post": {
                "description": "Ends the session carried by the request. Same as /logout.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log out",
                "parameters": [
                    {"type": "string", "description": "Session token", "name": "auth", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.StatusResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.StatusResponse"}}
                }
            }
        },
        "/server/find": {
            "get": {
                "description": "Lists the lobbies of a game mode that are still alive.",
                "produces": ["application/json"],
                "tags": ["server"],
                "summary": "Find lobbies",
                "parameters": [
                    {"type": "string", "description": "Session token", "name": "auth", "in": "query", "required": true},
                    {"type": "string", "description": "Game mode", "name": "game_mode", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ServerListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.StatusResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.StatusResponse"}}
                }
            }
        },
        "/server/host": {
            "post": {
                "description": "Registers a lobby hosted by the caller.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["server"],
                "summary": "Host a lobby",
                "parameters": [
                    {"type": "string", "description": "Session token", "name": "auth", "in": "formData", "required": true},
                    {"type": "string", "description": "Host network GUID", "name": "guid", "in": "formData", "required": true},
                    {"type": "string", "description": "Game mode", "name": "game_mode", "in": "formData", "required": true},
                    {"type": "integer", "description": "Player capacity", "name": "max_players", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.HostResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.StatusResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.StatusResponse"}}
                }
            }
        },
        "/server/renew": {
            "post": {
                "description": "Keeps a lobby hosted by the caller alive for another expiry window.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["server"],
                "summary": "Renew a lobby",
                "parameters": [
                    {"type": "string", "description": "Session token", "name": "auth", "in": "formData", "required": true},
                    {"type": "string", "description": "Lobby id", "name": "id", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "success is false when the lobby is gone or hosted by someone else", "schema": {"$ref": "#/definitions/handler.StatusResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.StatusResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.StatusResponse"}}
                }
            }
        },
        "/server/remove": {
            "post": {
                "description": "Removes a lobby hosted by the caller.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["server"],
                "summary": "Remove a lobby",
                "parameters": [
                    {"type": "string", "description": "Session token", "name": "auth", "in": "formData", "required": true},
                    {"type": "string", "description": "Lobby id", "name": "id", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "success is false when the lobby is gone or hosted by someone else", "schema": {"$ref": "#/definitions/handler.StatusResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.StatusResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.StatusResponse"}}
                }
            }
        },
        "/server/migrate": {
            "get": {
                "description": "Hands a lobby to the caller at a new host GUID and renews it.",
                "produces": ["application/json"],
                "tags": ["server"],
                "summary": "Migrate a lobby",
                "parameters": [
                    {"type": "string", "description": "Session token", "name": "auth", "in": "query", "required": true},
                    {"type": "string", "description": "Lobby id", "name": "id", "in": "query", "required": true},
                    {"type": "string", "description": "New host network GUID", "name": "guid", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.StatusResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.StatusResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.StatusResponse"}}
                }
            },
            "post": {
                "description": "Hands a lobby to the caller at a new host GUID and renews it.",
                "produces": ["application/json"],
                "tags": ["server"],
                "summary": "Migrate a lobby",
                "parameters": [
                    {"type": "string", "description": "Session token", "name": "auth", "in": "query", "required": true},
                    {"type": "string", "description": "Lobby id", "name": "id", "in": "query", "required": true},
                    {"type": "string", "description": "New host network GUID", "name": "guid", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.StatusResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.StatusResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.StatusResponse"}}
                }
            }
        },
        "/server/watch": {
            "get": {
                "description": "Streams hosted, renewed, migrated and removed events for a game mode as server-sent events.",
                "produces": ["text/event-stream"],
                "tags": ["server"],
                "summary": "Watch lobbies",
                "parameters": [
                    {"type": "string", "description": "Session token", "name": "auth", "in": "query", "required": true},
                    {"type": "string", "description": "Game mode", "name": "game_mode", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/hub.Event"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.StatusResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.StatusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.HostResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "handler.LoginResponse": {
            "type": "object",
            "properties": {
                "access_code": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "handler.ServerEntry": {
            "type": "object",
            "properties": {
                "game-mode": {"type": "string", "example": "deathmatch"},
                "host-GUID": {"type": "string"},
                "id": {"type": "string", "example": "9f1c2a7be3d54c0a8e6b1f2d3c4b5a69"},
                "max-players": {"type": "integer", "example": 8}
            }
        },
        "handler.ServerListResponse": {
            "type": "object",
            "properties": {
                "server-count": {"type": "integer"},
                "server-list": {"type": "array", "items": {"$ref": "#/definitions/handler.ServerEntry"}},
                "success": {"type": "boolean"}
            }
        },
        "handler.StatusResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Lobby not found"},
                "success": {"type": "boolean", "example": false}
            }
        },
        "hub.Event": {
            "type": "object",
            "properties": {
                "payload": {},
                "type": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Transcendent Matchmaking API",
	Description:      "Session and lobby registry for game clients.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
