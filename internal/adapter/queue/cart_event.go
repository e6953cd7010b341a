package queue

import (
	"sort"
	"time"

	"github.com/aq2208/storefront-api/internal/usecase"
)

// CartChangedMsg is published after every cart mutation so other surfaces
// showing the same session can refresh.
type CartChangedMsg struct {
	Type      string        `json:"type"`
	Session   string        `json:"session"`
	Seq       uint64        `json:"seq"` // per-session, consumers drop lower values
	ProductID string        `json:"productId,omitempty"`
	Quantity  int           `json:"quantity"`
	Cleared   bool          `json:"cleared"`
	Items     []CartItemMsg `json:"items"`
	At        time.Time     `json:"at"`
}

type CartItemMsg struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

const cartChangedType = "CartChangedV1"

func NewCartChangedMsg(ev usecase.CartEvent, at time.Time) CartChangedMsg {
	items := make([]CartItemMsg, 0, len(ev.Items))
	for id, q := range ev.Items {
		items = append(items, CartItemMsg{ProductID: id, Quantity: q})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	return CartChangedMsg{
		Type:      cartChangedType,
		Session:   ev.Session,
		Seq:       ev.Seq,
		ProductID: ev.ProductID,
		Quantity:  ev.Quantity,
		Cleared:   ev.Cleared,
		Items:     items,
		At:        at.UTC(),
	}
}
