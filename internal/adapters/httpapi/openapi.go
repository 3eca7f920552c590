package httpapi

import (
	"net/http"

	"github.com/himanshusaroha648/lastanime-backend/internal/httpjson"
)

// handleOpenAPI renvoie la spec OpenAPI de la surface d'administration.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	jsonOK := func(schemaRef string) map[string]any {
		return map[string]any{
			"description": "OK",
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"$ref": schemaRef},
				},
			},
		}
	}

	jsonErr := map[string]any{
		"description": "Error",
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/Error"},
			},
		},
	}

	spec := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "lastanime admin API",
			"version": "v1",
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"OpenAPIDocument": map[string]any{
					"type":                 "object",
					"additionalProperties": true,
				},
				"Error": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"error": map[string]any{"type": "string"},
					},
					"required": []any{"error"},
				},
				"ScraperStatus": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"state":          map[string]any{"type": "string", "enum": []any{"idle", "running", "stopping"}},
						"seenCount":      map[string]any{"type": "integer"},
						"ingested":       map[string]any{"type": "integer"},
						"lastCycleAt":    map[string]any{"type": "string", "format": "date-time"},
						"lastCycleCards": map[string]any{"type": "integer"},
					},
					"required":             []any{"state", "seenCount", "ingested"},
					"additionalProperties": false,
				},
				"LatestEntry": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"seriesSlug":   map[string]any{"type": "string"},
						"seriesTitle":  map[string]any{"type": "string"},
						"season":       map[string]any{"type": "integer"},
						"episode":      map[string]any{"type": "integer"},
						"episodeTitle": map[string]any{"type": "string"},
						"thumbnail":    map[string]any{"type": "string"},
						"addedAt":      map[string]any{"type": "string", "format": "date-time"},
					},
					"required":             []any{"seriesSlug", "season", "episode", "addedAt"},
					"additionalProperties": false,
				},
				"LatestList": map[string]any{
					"type":  "array",
					"items": map[string]any{"$ref": "#/components/schemas/LatestEntry"},
				},
			},
		},
		"paths": map[string]any{
			"/api/v1/health": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/api/v1/version": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/api/v1/openapi.json": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/OpenAPIDocument")}},
			},
			"/api/v1/events": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "SSE"}}},
			},
			"/api/v1/latest": map[string]any{
				"get": map[string]any{
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/LatestList"),
						"500": jsonErr,
					},
				},
			},
			"/api/v1/scraper": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/ScraperStatus")}},
			},
			"/api/v1/scraper/start": map[string]any{
				"post": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/ScraperStatus")}},
			},
			"/api/v1/scraper/stop": map[string]any{
				"post": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/ScraperStatus")}},
			},
			"/api/v1/scraper/run": map[string]any{
				"post": map[string]any{
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/ScraperStatus"),
						"409": jsonErr,
						"500": jsonErr,
					},
				},
			},
		},
	}

	httpjson.Write(w, http.StatusOK, spec)
}
