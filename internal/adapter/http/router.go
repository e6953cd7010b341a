package http

import (
	"log/slog"

	"github.com/aq2208/storefront-api/internal/adapter/http/middleware"
	"github.com/aq2208/storefront-api/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(ch *CartHandler, co *CheckoutHandler, cat *CatalogHandler, hm *middleware.HTTPMetrics, l *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), hm.Handler())
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		logging.From(c).Debug("health check")
		c.JSON(200, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/catalog", cat.List)

		cart := v1.Group("/cart", Session())
		cart.GET("", ch.GetCart)
		cart.DELETE("", ch.ClearCart)
		cart.PUT("/items/:id", ch.SetItem)
		cart.POST("/items/:id/increment", ch.Increment)
		cart.POST("/items/:id/decrement", ch.Decrement)

		checkout := v1.Group("/checkout", Session())
		checkout.POST("", co.Open)
		checkout.GET("", co.Get)
		checkout.PATCH("", co.Update)
		checkout.DELETE("", co.Close)
		checkout.DELETE("/notice", co.DismissNotice)
	}

	return r
}
