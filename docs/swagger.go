package docs

import "github.com/swaggo/swag"

// @title Food Marketplace API
// @version 1.0
// @description Marketplace backend: orders, delivery tracking, restaurants, promos
// @host localhost:8080
// @BasePath /api/v1
var SwaggerInfo = &swag.Spec{
	Version:     "1.0",
	Host:        "localhost:8080",
	BasePath:    "/api/v1",
	Title:       "Food Marketplace API",
	Description: "Marketplace backend: orders, delivery tracking, restaurants, promos",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
