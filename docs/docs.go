// Package docs is generated by swag from the handler annotations. Regenerate with `swag init`.
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
        "/financial-institutions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reference"],
                "summary": "List financial institutions",
                "parameters": [
                    {"type": "integer", "description": "Rows to skip", "name": "skip", "in": "query"},
                    {"type": "integer", "description": "Maximum rows (1-1000)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.FinancialInstitution"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/isa-account-details/upload/{account_id}": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["holdings"],
                "summary": "Upload holdings from a spreadsheet",
                "parameters": [
                    {"type": "integer", "description": "Account ID", "name": "account_id", "in": "path", "required": true},
                    {"type": "file", "description": "Holdings spreadsheet", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.UploadResult"}},
                    "207": {"description": "Multi-Status", "schema": {"$ref": "#/definitions/models.UploadResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.UploadResult"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/isa-account-sales": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sales"],
                "summary": "Record an ISA sale",
                "description": "profit_loss and return_rate are computed from the quantities and prices",
                "parameters": [
                    {"description": "Sale", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.SaleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Sale"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "models.FinancialInstitution": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "id": {"type": "integer"},
                "name": {"type": "string"}
            }
        },
        "models.UploadResult": {
            "type": "object",
            "properties": {
                "create_count": {"type": "integer"},
                "error_count": {"type": "integer"},
                "errors": {"type": "array", "items": {"type": "string"}},
                "success_count": {"type": "integer"},
                "update_count": {"type": "integer"}
            }
        },
        "models.SaleRequest": {
            "type": "object",
            "required": ["account_id", "stock_code", "year_month"],
            "properties": {
                "account_id": {"type": "integer"},
                "purchase_price": {"type": "number"},
                "sale_price": {"type": "number"},
                "sale_quantity": {"type": "number"},
                "stock_code": {"type": "string"},
                "transaction_fee": {"type": "number"},
                "year_month": {"type": "string"}
            }
        },
        "models.Sale": {
            "type": "object",
            "properties": {
                "account_id": {"type": "integer"},
                "id": {"type": "integer"},
                "profit_loss": {"type": "number"},
                "purchase_price": {"type": "number"},
                "return_rate": {"type": "number"},
                "sale_price": {"type": "number"},
                "sale_quantity": {"type": "number"},
                "stock_code": {"type": "string"},
                "stock_name": {"type": "string"},
                "transaction_fee": {"type": "number"},
                "year_month": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Fintrack API",
	Description:      "Personal finance backend: accounts, holdings, planning and ETF market data.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
