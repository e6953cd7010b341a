package observ

import (
	"github.com/aq2208/storefront-api/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports storefront counters. It implements usecase.Metrics.
type Metrics struct {
	cartMutations      prometheus.Counter
	cartClears         prometheus.Counter
	checkouts          *prometheus.CounterVec
	deliveryDowngrades prometheus.Counter
	messagesBuilt      prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		cartMutations: f.NewCounter(prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Quantity changes applied to carts",
		}),
		cartClears: f.NewCounter(prometheus.CounterOpts{
			Name: "storefront_cart_clears_total",
			Help: "Carts reset to empty",
		}),
		checkouts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_checkout_open_total",
			Help: "Checkout open attempts by result",
		}, []string{"result"}),
		deliveryDowngrades: f.NewCounter(prometheus.CounterOpts{
			Name: "storefront_delivery_downgrades_total",
			Help: "Delivery selections forced back to pickup",
		}),
		messagesBuilt: f.NewCounter(prometheus.CounterOpts{
			Name: "storefront_order_messages_built_total",
			Help: "Order messages rendered for preview and hand-off",
		}),
	}
}

func (m *Metrics) CartMutated()        { m.cartMutations.Inc() }
func (m *Metrics) CartCleared()        { m.cartClears.Inc() }
func (m *Metrics) CheckoutOpened()     { m.checkouts.WithLabelValues("opened").Inc() }
func (m *Metrics) CheckoutRefused()    { m.checkouts.WithLabelValues("refused").Inc() }
func (m *Metrics) DeliveryDowngraded() { m.deliveryDowngrades.Inc() }
func (m *Metrics) MessageBuilt()       { m.messagesBuilt.Inc() }

var _ usecase.Metrics = (*Metrics)(nil)
