package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/secureproxy/validation-gateway/internal/api/middleware"
	"github.com/secureproxy/validation-gateway/internal/cache"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check with rule engine self-test").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/validate").
			To(handler.Validate).
			Doc("Validate text or base64 file content").
			Metadata(restfulspec.KeyOpenAPITags, []string{"validate"}).
			Reads(ValidateRequest{}).
			Writes(ValidateResponse{}).
			Returns(200, "OK", ValidateResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/stats").
			To(handler.Stats).
			Doc("Validation and cache counters").
			Metadata(restfulspec.KeyOpenAPITags, []string{"stats"}).
			Writes(StatsResponse{}).
			Returns(200, "OK", StatsResponse{}))

	ws.
		Route(ws.GET("/cache/info").
			To(handler.CacheInfo).
			Doc("Cache connectivity and key counts").
			Metadata(restfulspec.KeyOpenAPITags, []string{"cache"}).
			Writes(cache.Info{}).
			Returns(200, "OK", cache.Info{}))

	ws.
		Route(ws.DELETE("/cache").
			To(handler.ClearCache).
			Doc("Clear cached verdicts; pass all=true to also reset counters").
			Metadata(restfulspec.KeyOpenAPITags, []string{"cache"}).
			Param(ws.QueryParameter("all", "Also drop counters").DataType("boolean").Required(false)).
			Writes(ClearCacheResponse{}).
			Returns(200, "OK", ClearCacheResponse{}).
			Returns(503, "Cache Unavailable", middleware.ErrorResponse{}))

	container.Add(ws)
}
