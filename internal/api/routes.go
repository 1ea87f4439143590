package api

import (
	"vending-machine/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterHandlers(router *gin.Engine, h *Handlers, jwtSecret string) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.POST("/auth", h.PostApiAuth)
	api.GET("/products", h.GetApiProducts)
	api.GET("/machine", h.GetApiMachine)
	api.POST("/insert", h.PostApiInsert)
	api.POST("/buy/:id", h.PostApiBuy)
	api.POST("/return", h.PostApiReturn)
	api.POST("/change", h.PostApiChange)

	admin := api.Group("/admin", middleware.JWTAuthMiddleware(jwtSecret, h.Logger))
	admin.GET("/inventory", h.GetApiAdminInventory)
	admin.GET("/sales", h.GetApiAdminSales)
	admin.POST("/restock/money", h.PostApiAdminRestockMoney)
	admin.POST("/restock/product", h.PostApiAdminRestockProduct)
}
