package server

import (
	"net/http"

	"order-service/internal/database"
	"order-service/internal/metrics"
	"order-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Items   service.ItemService
	Orders  service.OrderService
	Health  database.Service
	Metrics *metrics.ServerMetrics
	Origins []string
}

func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Auth())
	if deps.Metrics != nil {
		router.Use(Metrics(deps.Metrics))
	}

	corsCfg := cors.DefaultConfig()
	if len(deps.Origins) == 1 && deps.Origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = deps.Origins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-Role", "X-User-Email", "X-Request-Id")
	router.Use(cors.New(corsCfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.Health.Health())
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	items := &itemHandler{items: deps.Items}
	router.GET("/items/:id", items.getById)
	router.GET("/items", items.getAll)
	router.POST("/items", items.create)
	router.DELETE("/items/:id", items.delete)

	orders := &orderHandler{orders: deps.Orders}
	api := router.Group("/api/orders")
	api.GET("/:id", orders.getById)
	api.GET("/batch", orders.getByIds)
	api.GET("/statuses", orders.getByStatuses)
	api.POST("/admin", orders.createForUser)
	api.POST("", orders.create)
	api.PUT("/:id/status", orders.updateStatus)
	api.DELETE("/:id", orders.delete)

	return router
}
