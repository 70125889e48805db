package models

// PaymentResult is the outcome of a purchase flow. The set of variants is
// closed: PaymentSuccess, PaymentCancelled, PaymentFailure and
// InvalidPaymentState.
type PaymentResult interface {
	paymentResult()
}

type PaymentSuccess struct {
	OrderID           *string `json:"orderId,omitempty"`
	PurchaseID        string  `json:"purchaseId"`
	ProductID         string  `json:"productId"`
	InvoiceID         string  `json:"invoiceId"`
	SubscriptionToken *string `json:"subscriptionToken,omitempty"`
}

type PaymentCancelled struct {
	PurchaseID string `json:"purchaseId"`
}

type PaymentFailure struct {
	PurchaseID *string `json:"purchaseId,omitempty"`
	InvoiceID  *string `json:"invoiceId,omitempty"`
	OrderID    *string `json:"orderId,omitempty"`
	Quantity   *int    `json:"quantity,omitempty"`
	ProductID  *string `json:"productId,omitempty"`
	ErrorCode  *int    `json:"errorCode,omitempty"`
}

type InvalidPaymentState struct{}

func (PaymentSuccess) paymentResult()      {}
func (PaymentCancelled) paymentResult()    {}
func (PaymentFailure) paymentResult()      {}
func (InvalidPaymentState) paymentResult() {}

// FeatureAvailability is either FeatureAvailable or FeatureUnavailable.
type FeatureAvailability interface {
	featureAvailability()
}

type FeatureAvailable struct{}

type FeatureUnavailable struct {
	Cause error
}

func (FeatureAvailable) featureAvailability()   {}
func (FeatureUnavailable) featureAvailability() {}
