package usecase

import (
	domain "github.com/aq2208/storefront-api/internal/entity"
)

const DefaultDeliveryThreshold int64 = 50000

// Policy gates delivery on the order subtotal.
type Policy struct {
	Threshold int64
}

// Eligible reports whether subtotal strictly exceeds the threshold.
func (p Policy) Eligible(subtotal int64) bool {
	return subtotal > p.Threshold
}

// Evaluate resolves the requested mode. Delivery on an ineligible subtotal
// resolves to pickup and is flagged as downgraded.
func (p Policy) Evaluate(subtotal int64, requested domain.Mode) domain.Decision {
	d := domain.Decision{Eligible: p.Eligible(subtotal), Mode: requested}
	if requested != domain.ModeDelivery {
		d.Mode = domain.ModePickup
		return d
	}
	if !d.Eligible {
		d.Mode = domain.ModePickup
		d.Downgraded = true
	}
	return d
}

// Note is the availability hint shown next to the delivery option.
func (p Policy) Note(subtotal int64, m Money) string {
	if p.Eligible(subtotal) {
		return "Delivery is available for orders above " + m.Format(p.Threshold) + "."
	}
	return "Delivery is available only when your shopping is above " + m.Format(p.Threshold) + "."
}
