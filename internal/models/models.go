package models

import "time"

type Period struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

type Subscription struct {
	SubscriptionPeriod      *Period `json:"subscriptionPeriod,omitempty"`
	FreeTrialPeriod         *Period `json:"freeTrialPeriod,omitempty"`
	GracePeriod             *Period `json:"gracePeriod,omitempty"`
	IntroductoryPrice       *string `json:"introductoryPrice,omitempty"`
	IntroductoryPriceAmount *string `json:"introductoryPriceAmount,omitempty"`
	IntroductoryPricePeriod *Period `json:"introductoryPricePeriod,omitempty"`
}

// Product is a catalog entry as reported by the billing provider. Optional
// fields are pointers so that absent values are omitted from JSON rather
// than encoded as null or zero.
type Product struct {
	ProductID     string        `json:"productId"`
	ProductType   *ProductType  `json:"productType,omitempty"`
	ProductStatus ProductStatus `json:"productStatus"`
	PriceLabel    *string       `json:"priceLabel,omitempty"`
	Price         *int          `json:"price,omitempty"`
	Currency      *string       `json:"currency,omitempty"`
	Language      *string       `json:"language,omitempty"`
	Title         *string       `json:"title,omitempty"`
	Description   *string       `json:"description,omitempty"`
	ImageURL      *string       `json:"imageUrl,omitempty"`
	PromoImageURL *string       `json:"promoImageUrl,omitempty"`
	Subscription  *Subscription `json:"subscription,omitempty"`
}

type Purchase struct {
	PurchaseID        *string        `json:"purchaseId,omitempty"`
	ProductID         string         `json:"productId"`
	ProductType       *ProductType   `json:"productType,omitempty"`
	InvoiceID         *string        `json:"invoiceId,omitempty"`
	Description       *string        `json:"description,omitempty"`
	Language          *string        `json:"language,omitempty"`
	PurchaseTime      *time.Time     `json:"purchaseTime,omitempty"`
	OrderID           *string        `json:"orderId,omitempty"`
	AmountLabel       *string        `json:"amountLabel,omitempty"`
	Amount            *int           `json:"amount,omitempty"`
	Currency          *string        `json:"currency,omitempty"`
	Quantity          *int           `json:"quantity,omitempty"`
	PurchaseState     *PurchaseState `json:"purchaseState,omitempty"`
	DeveloperPayload  *string        `json:"developerPayload,omitempty"`
	SubscriptionToken *string        `json:"subscriptionToken,omitempty"`
}

// ID returns the purchase id or "" when the provider did not assign one.
func (p Purchase) ID() string {
	if p.PurchaseID == nil {
		return ""
	}
	return *p.PurchaseID
}

// Intent is a platform intent delivered to the host application, typically
// a deep link redirect back from an external payment page.
type Intent struct {
	Action string            `json:"action,omitempty"`
	Data   string            `json:"data,omitempty"`
	Extras map[string]string `json:"extras,omitempty"`
}

// ReviewToken is the short-lived handle returned by the review provider.
// It must be handed back to the same provider to show the review form.
type ReviewToken struct {
	Handle    string
	ExpiresAt time.Time
}

type PurchaseRequest struct {
	ProductID        string
	OrderID          *string
	Quantity         int
	DeveloperPayload *string
}

func Ptr[T any](v T) *T {
	return &v
}
