package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
)

const RejectionReasonUnknown = "unknown"

// BillingMetrics tracks checkouts and the held bill queue.
type BillingMetrics struct {
	invoicesIssued     *prometheus.CounterVec
	invoiceAmount      prometheus.Counter
	heldBills          prometheus.Gauge
	checkoutRejections *prometheus.CounterVec
}

var (
	billingMetricsOnce sync.Once
	billingMetrics     *BillingMetrics
)

// Billing returns the process-wide billing metrics registered on the default
// registerer.
func Billing() *BillingMetrics {
	billingMetricsOnce.Do(func() {
		billingMetrics = NewBillingMetrics(prometheus.DefaultRegisterer)
	})
	return billingMetrics
}

// NewBillingMetrics registers a fresh set of collectors on registerer.
func NewBillingMetrics(registerer prometheus.Registerer) *BillingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &BillingMetrics{
		invoicesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "billing_invoices_issued_total",
			Help: "Invoices appended to the ledger by payment method.",
		}, []string{"payment_method"}),
		invoiceAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "billing_invoice_amount_total",
			Help: "Sum of invoice grand totals in whole currency units.",
		}),
		heldBills: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "billing_held_bills",
			Help: "Bills currently parked in the held bill store.",
		}),
		checkoutRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "billing_checkout_rejections_total",
			Help: "Checkouts refused before an invoice number was assigned.",
		}, []string{"reason"}),
	}

	registerer.MustRegister(m.invoicesIssued, m.invoiceAmount, m.heldBills, m.checkoutRejections)
	return m
}

func (m *BillingMetrics) ObserveInvoice(paymentMethod string, total int64) {
	if m == nil {
		return
	}
	m.invoicesIssued.WithLabelValues(paymentMethod).Inc()
	m.invoiceAmount.Add(float64(total))
}

func (m *BillingMetrics) SetHeldBills(n int) {
	if m == nil {
		return
	}
	m.heldBills.Set(float64(n))
}

// ObserveCheckoutRejection counts a refused checkout under the error's reason.
func (m *BillingMetrics) ObserveCheckoutRejection(err error) {
	if m == nil || err == nil {
		return
	}
	m.checkoutRejections.WithLabelValues(RejectionReason(err)).Inc()
}

// RejectionReason maps err to a low-cardinality label.
func RejectionReason(err error) string {
	if appErr := apperror.GetAppError(err); appErr.Reason != "" {
		return appErr.Reason
	}
	return RejectionReasonUnknown
}
