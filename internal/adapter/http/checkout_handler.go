package http

import (
	"context"
	"net/http"
	"time"

	domain "github.com/aq2208/storefront-api/internal/entity"
	"github.com/aq2208/storefront-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	checkouts *usecase.Checkouts
}

func NewCheckoutHandler(checkouts *usecase.Checkouts) *CheckoutHandler {
	return &CheckoutHandler{checkouts: checkouts}
}

type updateCheckoutReq struct {
	Mode     *string `json:"mode"`
	Location *string `json:"location"`
}

type lineResp struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
}

type fulfillmentResp struct {
	Eligible   bool        `json:"eligible"`
	Mode       domain.Mode `json:"mode"`
	Downgraded bool        `json:"downgraded"`
	Note       string      `json:"note"`
	Location   string      `json:"location"`
}

type checkoutResp struct {
	Totals      domain.Totals   `json:"totals"`
	Fulfillment fulfillmentResp `json:"fulfillment"`
	Notice      string          `json:"notice,omitempty"`
	Message     struct {
		Text  string     `json:"text"`
		HTML  string     `json:"html"`
		Lines []lineResp `json:"lines"`
	} `json:"message"`
	Links struct {
		Chat  string `json:"chat"`
		Email string `json:"email"`
	} `json:"links"`
}

// Open handles POST /v1/checkout. An empty cart is refused with 409.
func (h *CheckoutHandler) Open(c *gin.Context) {
	h.with(c, func(co *usecase.Checkout) (bool, error) {
		if !co.Open() {
			c.JSON(http.StatusConflict, gin.H{"error": "cart_empty"})
			return false, nil
		}
		return true, nil
	})
}

func (h *CheckoutHandler) Get(c *gin.Context) {
	h.with(c, func(*usecase.Checkout) (bool, error) { return true, nil })
}

// Update handles PATCH /v1/checkout with optional mode and location.
func (h *CheckoutHandler) Update(c *gin.Context) {
	var req updateCheckoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	h.with(c, func(co *usecase.Checkout) (bool, error) {
		if req.Mode != nil {
			mode, err := domain.ParseMode(*req.Mode)
			if err != nil {
				return false, err
			}
			if err := co.SelectMode(mode); err != nil {
				return false, err
			}
		}
		if req.Location != nil {
			if err := co.SetLocation(*req.Location); err != nil {
				return false, err
			}
		}
		return true, nil
	})
}

func (h *CheckoutHandler) DismissNotice(c *gin.Context) {
	h.with(c, func(co *usecase.Checkout) (bool, error) {
		co.DismissNotice()
		return true, nil
	})
}

func (h *CheckoutHandler) Close(c *gin.Context) {
	h.with(c, func(co *usecase.Checkout) (bool, error) {
		co.Close()
		c.Status(http.StatusNoContent)
		return false, nil
	})
}

// with runs fn on the session's checkout and renders the view when fn asks for it.
func (h *CheckoutHandler) with(c *gin.Context, fn func(co *usecase.Checkout) (render bool, err error)) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	co, err := h.checkouts.Get(ctx, sessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	render, err := fn(co)
	if err != nil {
		writeError(c, err)
		return
	}
	if !render {
		return
	}
	v, err := co.View()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCheckoutResp(v))
}

func toCheckoutResp(v usecase.CheckoutView) checkoutResp {
	var out checkoutResp
	out.Totals = v.Totals
	out.Fulfillment = fulfillmentResp{
		Eligible:   v.Decision.Eligible,
		Mode:       v.Decision.Mode,
		Downgraded: v.Decision.Downgraded,
		Note:       v.Note,
		Location:   v.Location,
	}
	out.Notice = v.Notice
	out.Message.Text = v.Text
	out.Message.HTML = v.HTML
	out.Message.Lines = make([]lineResp, 0, len(v.Message.Lines))
	for _, l := range v.Message.Lines {
		out.Message.Lines = append(out.Message.Lines, lineResp{Kind: l.Kind.String(), Text: l.Text})
	}
	out.Links.Chat = v.ChatURL
	out.Links.Email = v.EmailURL
	return out
}
