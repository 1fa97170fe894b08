package api

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// RegisterRoutes wires the handler into h.
func RegisterRoutes(h *server.Hertz, handler *Handler) {
	h.GET("/", handler.Index)

	api := h.Group("/api", CORS())
	api.OPTIONS("/*path", func(_ context.Context, c *app.RequestContext) {
		c.AbortWithStatus(consts.StatusNoContent)
	})
	api.GET("/health", handler.Health)
	api.POST("/upload", handler.Upload)
	api.POST("/autofill", handler.Autofill)
	api.POST("/answer-hr", handler.AnswerHR)
	api.GET("/resume-data", handler.ResumeData)
	api.POST("/multi-entry", handler.MultiEntry)
}

// CORS lets the browser extension call the API from any page.
func CORS() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Next(ctx)
	}
}
