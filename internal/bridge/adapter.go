package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arko-chat/storebridge/internal/models"
	"github.com/arko-chat/storebridge/internal/provider"
	"github.com/arko-chat/storebridge/internal/service"
)

const reviewTokenTTL = 5 * time.Minute

var (
	_ provider.ReviewProvider   = (*ReviewAdapter)(nil)
	_ provider.BillingFactory   = (*BillingFactoryAdapter)(nil)
	_ provider.BillingProvider  = (*billingAdapter)(nil)
	_ provider.PurchasesUseCase = (*billingAdapter)(nil)
	_ service.Callback          = CallbackAdapter{}
)

type ReviewAdapter struct {
	native NativeReview
	now    func() time.Time
}

func NewReviewAdapter(native NativeReview) *ReviewAdapter {
	return &ReviewAdapter{native: native, now: time.Now}
}

func (a *ReviewAdapter) RequestReviewFlow(ctx context.Context) (models.ReviewToken, error) {
	if err := ctx.Err(); err != nil {
		return models.ReviewToken{}, err
	}
	handle, err := a.native.RequestReviewFlow()
	if err != nil {
		return models.ReviewToken{}, err
	}
	return models.ReviewToken{Handle: handle, ExpiresAt: a.now().Add(reviewTokenTTL)}, nil
}

func (a *ReviewAdapter) LaunchReviewFlow(ctx context.Context, token models.ReviewToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.native.LaunchReviewFlow(token.Handle)
}

type BillingFactoryAdapter struct {
	native NativeBillingFactory
}

func NewBillingFactoryAdapter(native NativeBillingFactory) *BillingFactoryAdapter {
	return &BillingFactoryAdapter{native: native}
}

func (a *BillingFactoryAdapter) NewBillingClient(consoleApplicationID, deeplinkScheme string) (provider.BillingProvider, error) {
	client, err := a.native.Create(consoleApplicationID, deeplinkScheme)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, errors.New("native billing factory returned no client")
	}
	return &billingAdapter{native: client}, nil
}

type billingAdapter struct {
	native NativeBilling
}

func (a *billingAdapter) Purchases() provider.PurchasesUseCase { return a }
func (a *billingAdapter) Products() provider.ProductsUseCase   { return productsAdapter{a.native} }

func (a *billingAdapter) OnNewIntent(intent models.Intent) {
	raw, err := json.Marshal(intent)
	if err != nil {
		return
	}
	a.native.OnNewIntent(string(raw))
}

type nativeAvailability struct {
	Available bool   `json:"available"`
	Cause     string `json:"cause,omitempty"`
}

func (a *billingAdapter) CheckPurchasesAvailability(ctx context.Context) (models.FeatureAvailability, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := a.native.CheckPurchasesAvailability()
	if err != nil {
		return nil, err
	}
	var out nativeAvailability
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode availability: %w", err)
	}
	if out.Available {
		return models.FeatureAvailable{}, nil
	}
	var cause error
	if out.Cause != "" {
		cause = errors.New(out.Cause)
	}
	return models.FeatureUnavailable{Cause: cause}, nil
}

func (a *billingAdapter) GetPurchases(ctx context.Context) ([]models.Purchase, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := a.native.GetPurchases()
	if err != nil {
		return nil, err
	}
	var out []models.Purchase
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode purchases: %w", err)
	}
	return out, nil
}

type nativePaymentResult struct {
	Type              string  `json:"type"`
	OrderID           *string `json:"orderId"`
	PurchaseID        *string `json:"purchaseId"`
	ProductID         *string `json:"productId"`
	InvoiceID         *string `json:"invoiceId"`
	SubscriptionToken *string `json:"subscriptionToken"`
	Quantity          *int    `json:"quantity"`
	ErrorCode         *int    `json:"errorCode"`
}

func (a *billingAdapter) PurchaseProduct(ctx context.Context, req models.PurchaseRequest) (models.PaymentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := a.native.PurchaseProduct(
		req.ProductID,
		deref(req.OrderID),
		req.Quantity,
		deref(req.DeveloperPayload),
	)
	if err != nil {
		return nil, err
	}
	return decodePaymentResult(raw)
}

func decodePaymentResult(raw string) (models.PaymentResult, error) {
	var res nativePaymentResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, fmt.Errorf("decode payment result: %w", err)
	}

	switch res.Type {
	case "success":
		if res.PurchaseID == nil || res.ProductID == nil {
			return nil, errors.New("decode payment result: success without purchaseId or productId")
		}
		return models.PaymentSuccess{
			OrderID:           res.OrderID,
			PurchaseID:        *res.PurchaseID,
			ProductID:         *res.ProductID,
			InvoiceID:         deref(res.InvoiceID),
			SubscriptionToken: res.SubscriptionToken,
		}, nil
	case "cancelled":
		if res.PurchaseID == nil {
			return nil, errors.New("decode payment result: cancelled without purchaseId")
		}
		return models.PaymentCancelled{PurchaseID: *res.PurchaseID}, nil
	case "failure":
		return models.PaymentFailure{
			PurchaseID: res.PurchaseID,
			InvoiceID:  res.InvoiceID,
			OrderID:    res.OrderID,
			Quantity:   res.Quantity,
			ProductID:  res.ProductID,
			ErrorCode:  res.ErrorCode,
		}, nil
	case "invalid_payment_state":
		return models.InvalidPaymentState{}, nil
	}
	return nil, fmt.Errorf("decode payment result: unknown type %q", res.Type)
}

func (a *billingAdapter) ConfirmPurchase(ctx context.Context, purchaseID string, developerPayload *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.native.ConfirmPurchase(purchaseID, deref(developerPayload))
}

func (a *billingAdapter) DeletePurchase(ctx context.Context, purchaseID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.native.DeletePurchase(purchaseID)
}

type productsAdapter struct {
	native NativeBilling
}

func (a productsAdapter) GetProducts(ctx context.Context, productIDs []string) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids, err := json.Marshal(productIDs)
	if err != nil {
		return nil, err
	}
	raw, err := a.native.GetProducts(string(ids))
	if err != nil {
		return nil, err
	}
	var out []models.Product
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return out, nil
}

// CallbackAdapter delivers command results to a native callback, encoding
// payloads as JSON. An empty success is delivered as "".
type CallbackAdapter struct {
	Native NativeCallback
}

func (c CallbackAdapter) Success(payload any) {
	if payload == nil {
		c.Native.Success("")
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		c.Native.Error(fmt.Sprintf("encode result: %v", err))
		return
	}
	c.Native.Success(string(raw))
}

func (c CallbackAdapter) Error(message string) {
	c.Native.Error(message)
}

// DecodeIntent parses the JSON intent form used by NativeBilling.OnNewIntent.
// A bare URI is accepted as the intent data.
func DecodeIntent(raw string) (models.Intent, error) {
	var intent models.Intent
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal([]byte(raw), &intent); err != nil {
			return models.Intent{}, fmt.Errorf("decode intent: %w", err)
		}
		return intent, nil
	}
	intent.Data = raw
	return intent, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
