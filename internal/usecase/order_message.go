package usecase

import (
	"fmt"
	"strings"

	domain "github.com/aq2208/storefront-api/internal/entity"
)

const (
	locationMissing  = "(not provided)"
	closingLine      = "Include more details in your message e.g., specific choices, preferred time"
	defaultShopTitle = "Order"
)

// MessageBuilder produces the order summary. It holds configuration only,
// so Build can be called on every keystroke.
type MessageBuilder struct {
	Shop   string
	Money  Money
	Policy Policy
}

func (b MessageBuilder) title() string {
	if b.Shop == "" {
		return defaultShopTitle
	}
	return b.Shop + " Order"
}

// Build renders the cart as a line model. Fulfillment is resolved against the
// message's own subtotal; location is only emitted for an eligible delivery.
func (b MessageBuilder) Build(catalog *domain.Catalog, cart QuantityReader, sel domain.Selection) domain.Message {
	var (
		m        domain.Message
		subtotal int64
	)
	emph := func(s string) { m.Lines = append(m.Lines, domain.Line{Kind: domain.LineEmphasis, Text: s}) }
	plain := func(s string) { m.Lines = append(m.Lines, domain.Line{Kind: domain.LinePlain, Text: s}) }
	sep := func() { m.Lines = append(m.Lines, domain.Line{Kind: domain.LineSeparator}) }

	emph(b.title())
	sep()

	catalog.Each(func(p domain.Product) {
		q := cart.Quantity(p.ID)
		if q <= 0 {
			return
		}
		amount := lineTotal(p.Price, q)
		subtotal = addAmount(subtotal, amount)
		plain(fmt.Sprintf("%s  x%d  = %s", p.Name, q, b.Money.Format(amount)))
	})

	sep()
	emph("Subtotal: " + b.Money.Format(subtotal))
	emph("TOTAL: " + b.Money.Format(subtotal))
	sep()

	d := b.Policy.Evaluate(subtotal, sel.Requested)
	if d.Mode == domain.ModeDelivery && d.Eligible {
		plain("Fulfillment: DELIVERY")
		loc := strings.TrimSpace(sel.Location)
		if loc == "" {
			loc = locationMissing
		}
		plain("Location: " + loc)
	} else {
		plain("Fulfillment: PICKUP")
	}

	sep()
	plain(closingLine)

	m.Subtotal = subtotal
	return m
}
