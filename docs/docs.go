// Package docs holds the OpenAPI description served at /swagger.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/stats": {
            "get": {
                "security": [{"BasicAuth": []}],
                "description": "Lists the most recently cached city names, newest first. Requires HTTP Basic credentials.",
                "produces": ["application/json", "text/html"],
                "tags": ["stats"],
                "summary": "Recently searched cities",
                "parameters": [
                    {"type": "string", "description": "json for a JSON body, html otherwise", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatsDisplay"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "string"}},
                    "500": {"description": "Something went wrong: <error>", "schema": {"type": "string"}}
                }
            }
        },
        "/weather": {
            "get": {
                "description": "Resolves the city name through the coordinate cache and returns the hourly temperature forecast",
                "produces": ["application/json", "text/html"],
                "tags": ["weather"],
                "summary": "Hourly forecast for a city",
                "parameters": [
                    {"type": "string", "description": "City name, used verbatim", "name": "city", "in": "query", "required": true},
                    {"type": "string", "description": "json for a JSON body, html otherwise", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.WeatherDisplay"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Something went wrong: <error>", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "types.Coordinate": {
            "type": "object",
            "properties": {
                "latitude": {"type": "number", "example": 48.8566},
                "longitude": {"type": "number", "example": 2.3522}
            }
        },
        "types.Forecast": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2024-05-01T13:00"},
                "temperature": {"type": "number", "example": 18.4}
            }
        },
        "types.StatsDisplay": {
            "type": "object",
            "properties": {
                "cities": {"type": "array", "items": {"type": "string"}, "example": ["Paris", "Berlin"]},
                "limit": {"type": "integer", "example": 10}
            }
        },
        "types.WeatherDisplay": {
            "type": "object",
            "properties": {
                "city": {"type": "string", "example": "Paris"},
                "coordinate": {"$ref": "#/definitions/types.Coordinate"},
                "forecasts": {"type": "array", "items": {"$ref": "#/definitions/types.Forecast"}},
                "timezone": {"type": "string", "example": "GMT"}
            }
        }
    },
    "securityDefinitions": {
        "BasicAuth": {"type": "basic"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "City Forecast API",
	Description:      "Hourly temperature forecasts for cities, with a persistent geocode cache.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
