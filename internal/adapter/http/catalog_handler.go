package http

import (
	"net/http"

	domain "github.com/aq2208/storefront-api/internal/entity"
	"github.com/aq2208/storefront-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	front usecase.Storefront
}

func NewCatalogHandler(front usecase.Storefront) *CatalogHandler {
	return &CatalogHandler{front: front}
}

type productResp struct {
	domain.Product
	PriceText string `json:"price_text"`
}

// List handles GET /v1/catalog?q=
func (h *CatalogHandler) List(c *gin.Context) {
	products := h.front.Catalog.Filter(c.Query("q"))
	out := make([]productResp, 0, len(products))
	for _, p := range products {
		out = append(out, productResp{Product: p, PriceText: h.front.Builder.Money.Group(p.Price)})
	}
	c.JSON(http.StatusOK, gin.H{"products": out, "count": len(out)})
}
