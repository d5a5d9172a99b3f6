// Package docs sirve la especificación OpenAPI en /swagger. Sigue el formato
// de swag y se regenera desde las anotaciones de los handlers con
// `swag init -g cmd/api/main.go -o docs`.
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
        "/adopters": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "adopters"
                ],
                "summary": "Listar mis adoptantes",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Cursor opaco",
                        "name": "cursor",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/adopters.adopterListResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "adopters"
                ],
                "summary": "Registrar un adoptante",
                "parameters": [
                    {
                        "description": "Adoptante",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/adopters.adopterRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/adopters.adopterResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "415": {
                        "description": "Unsupported Media Type",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/adopters/{adopterID}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "adopters"
                ],
                "summary": "Ver un adoptante",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del adoptante",
                        "name": "adopterID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/adopters.adopterResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "PATCH acepta un subconjunto; PUT exige todos los atributos. El nombre nuevo se copia a la ubicación de sus mascotas.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "adopters"
                ],
                "summary": "Editar un adoptante",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del adoptante",
                        "name": "adopterID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Atributos",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/adopters.adopterRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/adopters.adopterResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Sus mascotas quedan sin ubicación.",
                "tags": [
                    "adopters"
                ],
                "summary": "Borrar un adoptante",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del adoptante",
                        "name": "adopterID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "patch": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "PATCH acepta un subconjunto; PUT exige todos los atributos. El nombre nuevo se copia a la ubicación de sus mascotas.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "adopters"
                ],
                "summary": "Editar un adoptante",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del adoptante",
                        "name": "adopterID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Atributos",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/adopters.adopterRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/adopters.adopterResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/adopters/{adopterID}/animals/{animalID}": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Si el animal estaba en un refugio, sale de ese refugio en la misma operación.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "adopters"
                ],
                "summary": "Dar un animal en adopción",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del adoptante",
                        "name": "adopterID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "ID del animal",
                        "name": "animalID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/adopters.adopterResponse"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "tags": [
                    "adopters"
                ],
                "summary": "Devolver un animal",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del adoptante",
                        "name": "adopterID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "ID del animal",
                        "name": "animalID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/animals": {
            "get": {
                "description": "Paginado de a 5. Usar el link next para la página siguiente.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "animals"
                ],
                "summary": "Listar animales",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Cursor opaco",
                        "name": "cursor",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/animals.animalListResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "406": {
                        "description": "Not Acceptable",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "post": {
                "description": "Crea un animal sin ubicación. Todos los atributos son obligatorios.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "animals"
                ],
                "summary": "Registrar un animal",
                "parameters": [
                    {
                        "description": "Animal",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/animals.animalRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/animals.animalResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "415": {
                        "description": "Unsupported Media Type",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/animals/{animalID}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "animals"
                ],
                "summary": "Ver un animal",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del animal",
                        "name": "animalID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/animals.animalResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "406": {
                        "description": "Not Acceptable",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "put": {
                "description": "PATCH acepta un subconjunto; PUT exige todos los atributos. location no se puede enviar.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "animals"
                ],
                "summary": "Editar un animal",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del animal",
                        "name": "animalID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Atributos",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/animals.animalRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/animals.animalResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "delete": {
                "description": "Lo saca antes del refugio o adoptante donde esté.",
                "tags": [
                    "animals"
                ],
                "summary": "Borrar un animal",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del animal",
                        "name": "animalID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "patch": {
                "description": "PATCH acepta un subconjunto; PUT exige todos los atributos. location no se puede enviar.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "animals"
                ],
                "summary": "Editar un animal",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del animal",
                        "name": "animalID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Atributos",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/animals.animalRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/animals.animalResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/animals/{animalID}/adopters/{adopterID}": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Asigna el animal a un refugio o adoptante del caller. Devuelve el animal actualizado.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "animals"
                ],
                "summary": "Ubicar un animal",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del animal",
                        "name": "animalID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "ID del adoptante",
                        "name": "adopterID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/animals.animalResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "tags": [
                    "animals"
                ],
                "summary": "Quitar la ubicación de un animal",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del animal",
                        "name": "animalID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "ID del adoptante",
                        "name": "adopterID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "El animal no está ahí",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/animals/{animalID}/shelters/{shelterID}": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Asigna el animal a un refugio o adoptante del caller. Devuelve el animal actualizado.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "animals"
                ],
                "summary": "Ubicar un animal",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del animal",
                        "name": "animalID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "ID del refugio",
                        "name": "shelterID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/animals.animalResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "tags": [
                    "animals"
                ],
                "summary": "Quitar la ubicación de un animal",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del animal",
                        "name": "animalID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "ID del refugio",
                        "name": "shelterID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "El animal no está ahí",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/shelters": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "shelters"
                ],
                "summary": "Listar mis refugios",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Cursor opaco",
                        "name": "cursor",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/shelters.shelterListResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "El refugio queda a nombre del caller. El nombre debe ser único.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "shelters"
                ],
                "summary": "Crear un refugio",
                "parameters": [
                    {
                        "description": "Refugio",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/shelters.shelterRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/shelters.shelterResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "403": {
                        "description": "Nombre ya usado",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/shelters/{shelterID}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "shelters"
                ],
                "summary": "Ver un refugio",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del refugio",
                        "name": "shelterID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/shelters.shelterResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "PATCH acepta un subconjunto; PUT exige name, address y contact. Renombrar actualiza la ubicación de sus animales.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "shelters"
                ],
                "summary": "Editar un refugio",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del refugio",
                        "name": "shelterID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Atributos",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/shelters.shelterRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/shelters.shelterResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "403": {
                        "description": "Ajeno o nombre ya usado",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Sus animales quedan sin ubicación.",
                "tags": [
                    "shelters"
                ],
                "summary": "Borrar un refugio",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del refugio",
                        "name": "shelterID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "patch": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "PATCH acepta un subconjunto; PUT exige name, address y contact. Renombrar actualiza la ubicación de sus animales.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "shelters"
                ],
                "summary": "Editar un refugio",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del refugio",
                        "name": "shelterID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Atributos",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/shelters.shelterRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/shelters.shelterResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "403": {
                        "description": "Ajeno o nombre ya usado",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/shelters/{shelterID}/animals/{animalID}": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "tags": [
                    "shelters"
                ],
                "summary": "Agregar o quitar un animal del refugio",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del refugio",
                        "name": "shelterID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "ID del animal",
                        "name": "animalID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "tags": [
                    "shelters"
                ],
                "summary": "Agregar o quitar un animal del refugio",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del refugio",
                        "name": "shelterID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "ID del animal",
                        "name": "animalID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/users": {
            "get": {
                "description": "Los usuarios se crean solos la primera vez que llegan con un JWT válido.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Listar usuarios",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Cursor opaco",
                        "name": "cursor",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/users.userListResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/users/{userID}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Ver un usuario",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID del usuario",
                        "name": "userID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/users.userResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "adopters.adopterListResponse": {
            "type": "object",
            "properties": {
                "adopters": {"type": "array", "items": {"$ref": "#/definitions/adopters.adopterResponse"}},
                "next": {"type": "string"},
                "previous": {"type": "string"},
                "total_items": {"type": "integer"}
            }
        },
        "adopters.adopterRequest": {
            "type": "object",
            "required": ["email", "name", "phone_number"],
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "phone_number": {"type": "string"}
            }
        },
        "adopters.adopterResponse": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "pets": {"type": "array", "items": {"$ref": "#/definitions/adopters.petResponse"}},
                "phone_number": {"type": "string"},
                "self": {"type": "string"},
                "user": {"type": "string"}
            }
        },
        "adopters.petResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "self": {"type": "string"},
                "species": {"type": "string"}
            }
        },
        "animals.animalListResponse": {
            "type": "object",
            "properties": {
                "animals": {"type": "array", "items": {"$ref": "#/definitions/animals.animalResponse"}},
                "next": {"type": "string"},
                "previous": {"type": "string"},
                "total_items": {"type": "integer"}
            }
        },
        "animals.animalRequest": {
            "type": "object",
            "required": ["adoptable", "age", "breed", "colors", "gender", "microchipped", "name", "species"],
            "properties": {
                "adoptable": {"type": "boolean"},
                "age": {"type": "integer", "minimum": 0},
                "breed": {"type": "string"},
                "colors": {"type": "array", "minItems": 1, "items": {"type": "string"}},
                "gender": {"type": "string"},
                "microchipped": {"type": "boolean"},
                "name": {"type": "string"},
                "species": {"type": "string"}
            }
        },
        "animals.animalResponse": {
            "type": "object",
            "properties": {
                "adoptable": {"type": "boolean"},
                "age": {"type": "integer"},
                "breed": {"type": "string"},
                "colors": {"type": "array", "items": {"type": "string"}},
                "gender": {"type": "string"},
                "id": {"type": "integer"},
                "location": {"$ref": "#/definitions/animals.locationResponse"},
                "microchipped": {"type": "boolean"},
                "name": {"type": "string"},
                "self": {"type": "string"},
                "species": {"type": "string"}
            }
        },
        "animals.locationResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "self": {"type": "string"},
                "type": {"type": "string", "enum": ["shelter", "adopter"]}
            }
        },
        "shelters.Contact": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "shelters.animalSummaryResponse": {
            "type": "object",
            "properties": {
                "adoptable": {"type": "boolean"},
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "self": {"type": "string"},
                "species": {"type": "string"}
            }
        },
        "shelters.shelterListResponse": {
            "type": "object",
            "properties": {
                "next": {"type": "string"},
                "previous": {"type": "string"},
                "shelters": {"type": "array", "items": {"$ref": "#/definitions/shelters.shelterResponse"}},
                "total_items": {"type": "integer"}
            }
        },
        "shelters.shelterRequest": {
            "type": "object",
            "required": ["address", "contact", "name"],
            "properties": {
                "address": {"type": "string"},
                "contact": {"$ref": "#/definitions/shelters.Contact"},
                "name": {"type": "string"},
                "website": {"type": "string"}
            }
        },
        "shelters.shelterResponse": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "animals": {"type": "array", "items": {"$ref": "#/definitions/shelters.animalSummaryResponse"}},
                "contact": {"$ref": "#/definitions/shelters.Contact"},
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "self": {"type": "string"},
                "user": {"type": "string"},
                "website": {"type": "string"}
            }
        },
        "users.ownedResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "self": {"type": "string"}
            }
        },
        "users.userListResponse": {
            "type": "object",
            "properties": {
                "next": {"type": "string"},
                "previous": {"type": "string"},
                "total_items": {"type": "integer"},
                "users": {"type": "array", "items": {"$ref": "#/definitions/users.userResponse"}}
            }
        },
        "users.userResponse": {
            "type": "object",
            "properties": {
                "adopters": {"type": "array", "items": {"$ref": "#/definitions/users.ownedResponse"}},
                "email": {"type": "string"},
                "id": {"type": "integer"},
                "self": {"type": "string"},
                "shelters": {"type": "array", "items": {"$ref": "#/definitions/users.ownedResponse"}},
                "user_id": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Animal Shelter API",
	Description:      "Animales, refugios y adoptantes. La ubicación de un animal se mantiene sincronizada con su refugio o adoptante.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
