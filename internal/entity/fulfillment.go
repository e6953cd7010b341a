package domain

import (
	"errors"
	"strings"
)

type Mode string

const (
	ModePickup   Mode = "PICKUP"
	ModeDelivery Mode = "DELIVERY"
)

var ErrInvalidMode = errors.New("invalid fulfillment mode")

// ParseMode accepts pickup/delivery in any case.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModePickup:
		return ModePickup, nil
	case ModeDelivery:
		return ModeDelivery, nil
	}
	return "", ErrInvalidMode
}

// Selection is the ephemeral fulfillment choice made at checkout.
type Selection struct {
	Requested Mode
	Location  string
}

func DefaultSelection() Selection {
	return Selection{Requested: ModePickup}
}

// Decision is the result of applying the delivery policy to a subtotal.
type Decision struct {
	Eligible   bool `json:"eligible"`
	Mode       Mode `json:"mode"`
	Downgraded bool `json:"downgraded"` // delivery was asked for but not allowed
}
