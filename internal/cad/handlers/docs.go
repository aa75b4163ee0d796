package handlers

import (
	"sync"

	"github.com/gofiber/fiber/v3"
	"gopkg.in/yaml.v3"

	"cad-editor/internal/cad/tools"
)

// ============================================================
// Swagger Handlers
// ============================================================

var (
	docOnce sync.Once
	docYAML []byte
	docErr  error
)

// OpenAPI отдаёт OpenAPI YAML, собранный из каталога инструментов.
func OpenAPI(c fiber.Ctx) error {
	docOnce.Do(func() {
		docYAML, docErr = yaml.Marshal(openAPIDocument())
	})
	if docErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "openapi document not available"})
	}
	c.Type("yaml")
	return c.Send(docYAML)
}

// SwaggerUI отдаёт страницу Swagger UI, читающую документ из /docs/openapi.yaml.
func SwaggerUI(c fiber.Ctx) error {
	page := `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>CAD Service Swagger</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({
      url: '/docs/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
    });
  };
</script>
</body>
</html>`

	c.Type("html")
	return c.SendString(page)
}

type node = map[string]any

var sourceProperties = map[string]tools.Property{
	"location": {Type: "string", Description: "Document location: a file path, sql:<name> or redis:<name>"},
	"session":  {Type: "string", Description: "Session token; takes precedence over location"},
}

// openAPIDocument describes every tool as POST /tools/{name}.
func openAPIDocument() node {
	paths := node{}
	for _, t := range tools.Catalogue {
		schema := t.InputSchema
		props := make(map[string]tools.Property, len(schema.Properties)+len(sourceProperties))
		for k, v := range sourceProperties {
			props[k] = v
		}
		for k, v := range schema.Properties {
			props[k] = v
		}
		schema.Properties = props

		paths["/tools/"+t.Name] = node{
			"post": node{
				"operationId": t.Name,
				"summary":     t.Description,
				"tags":        []string{"tools"},
				"requestBody": node{
					"content": node{"application/json": node{"schema": schema}},
				},
				"responses": node{
					"200": node{"description": "Tool result, or {\"error\": message}"},
				},
			},
		}
	}

	locationParam := []node{{
		"name": "location", "in": "query", "required": true,
		"schema": node{"type": "string"},
	}}
	paths["/documents/summary"] = node{"get": node{
		"summary":    "Full document summary",
		"parameters": append(locationParam, node{"name": "paperspace", "in": "query", "schema": node{"type": "boolean"}}),
		"responses":  node{"200": node{"description": "Summary JSON"}},
	}}
	paths["/documents/brief"] = node{"get": node{
		"summary":    "Plain-text drawing overview",
		"parameters": locationParam,
		"responses":  node{"200": node{"description": "Overview text"}},
	}}
	paths["/documents/svg"] = node{"get": node{
		"summary":    "SVG preview",
		"parameters": locationParam,
		"responses":  node{"200": node{"description": "SVG image"}},
	}}
	paths["/sessions"] = node{"post": node{
		"summary":   "Open an in-memory editing session",
		"responses": node{"201": node{"description": "Session token"}},
	}}
	paths["/sessions/{id}"] = node{"delete": node{
		"summary":    "Close a session",
		"parameters": []node{{"name": "id", "in": "path", "required": true, "schema": node{"type": "string"}}},
		"responses":  node{"204": node{"description": "Closed"}, "404": node{"description": "Unknown session"}},
	}}

	return node{
		"openapi": "3.0.3",
		"info":    node{"title": "CAD Service", "version": "1.0.0"},
		"paths":   paths,
	}
}
