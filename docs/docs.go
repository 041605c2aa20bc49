// Package docs registra la definición Swagger de la API (servida por /docs).
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var swaggerJSON string

// SwaggerInfo metadatos de la definición registrada.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "GELP API",
	Description:      "Registro de ventas y libro de stock.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  swaggerJSON,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
