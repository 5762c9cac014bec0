package router

import (
	"fmt"
	"net/http"
)

func registerSwaggerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})

	mux.HandleFunc("GET /swagger/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, swaggerHTML, "/swagger/openapi.json")
	})

	mux.HandleFunc("GET /swagger/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(openAPI))
	})
}

const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Multi-currency Account API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: "%s",
        dom_id: "#swagger-ui"
      });
    };
  </script>
</body>
</html>`

const openAPI = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Multi-currency Account API",
    "version": "1.0.0"
  },
  "paths": {
    "/api/accounts": {
      "post": {
        "summary": "Registers a new account",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["owner"],
                "properties": {
                  "owner": {"$ref": "#/components/schemas/Owner"},
                  "initialDeposit": {"type": "number", "example": 1000.00}
                }
              }
            }
          }
        },
        "responses": {
          "201": {"description": "Account registered"},
          "400": {"description": "Validation error"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/api/accounts/{pesel}": {
      "get": {
        "summary": "Returns owner data and the balance of every sub-account",
        "parameters": [{"$ref": "#/components/parameters/Pesel"}],
        "responses": {
          "200": {"description": "Account fetched"},
          "400": {"description": "Invalid pesel"},
          "404": {"description": "Account not found"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/api/accounts/{pesel}/transactions": {
      "get": {
        "summary": "Returns all transactions performed on the account, newest first",
        "parameters": [{"$ref": "#/components/parameters/Pesel"}],
        "responses": {
          "200": {"description": "Transactions fetched"},
          "400": {"description": "Invalid pesel"},
          "404": {"description": "Account not found"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/api/accounts/{pesel}/transactions/currency-exchanges": {
      "post": {
        "summary": "Exchanges money between PLN and a foreign currency",
        "parameters": [{"$ref": "#/components/parameters/Pesel"}],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["amount", "sourceCurrency", "targetCurrency"],
                "properties": {
                  "amount": {"type": "number", "example": 100.00},
                  "sourceCurrency": {"$ref": "#/components/schemas/Currency"},
                  "targetCurrency": {"$ref": "#/components/schemas/Currency"}
                }
              }
            }
          }
        },
        "responses": {
          "200": {"description": "Currency exchanged"},
          "400": {"description": "Validation error or insufficient funds"},
          "404": {"description": "Account not found"},
          "503": {"description": "Exchange rate unavailable"},
          "500": {"description": "Server error"}
        }
      }
    },
    "/api/rates": {
      "get": {
        "summary": "Returns bid and ask quotes of every foreign currency in PLN",
        "responses": {
          "200": {"description": "Rates fetched"},
          "503": {"description": "Exchange rate unavailable"},
          "500": {"description": "Server error"}
        }
      }
    }
  },
  "components": {
    "parameters": {
      "Pesel": {
        "name": "pesel",
        "in": "path",
        "required": true,
        "schema": {"type": "string", "pattern": "^[0-9]{11}$", "example": "64102278587"}
      }
    },
    "schemas": {
      "Currency": {"type": "string", "enum": ["PLN", "USD", "EUR", "GBP", "CHF"]},
      "Owner": {
        "type": "object",
        "required": ["pesel", "firstName", "lastName"],
        "properties": {
          "pesel": {"type": "string", "example": "64102278587"},
          "firstName": {"type": "string", "example": "Jan"},
          "lastName": {"type": "string", "example": "Kowalski"}
        }
      }
    }
  }
}`
