// Package provider declares the vendor capabilities the store bridge drives:
// the review flow and the billing client. Implementations live on the
// native side (see internal/bridge) or in internal/sandbox for desktop runs.
package provider

import (
	"context"

	"github.com/arko-chat/storebridge/internal/models"
)

type ReviewProvider interface {
	// RequestReviewFlow prepares the review form and returns the token that
	// LaunchReviewFlow needs. The token is valid for about five minutes.
	RequestReviewFlow(ctx context.Context) (models.ReviewToken, error)

	// LaunchReviewFlow shows the review form. The store decides whether the
	// form is actually displayed, so frequent calls may be no-ops.
	LaunchReviewFlow(ctx context.Context, token models.ReviewToken) error
}

type BillingFactory interface {
	NewBillingClient(consoleApplicationID, deeplinkScheme string) (BillingProvider, error)
}

// BillingFactoryFunc adapts a plain function to BillingFactory.
type BillingFactoryFunc func(consoleApplicationID, deeplinkScheme string) (BillingProvider, error)

func (f BillingFactoryFunc) NewBillingClient(consoleApplicationID, deeplinkScheme string) (BillingProvider, error) {
	return f(consoleApplicationID, deeplinkScheme)
}

type BillingProvider interface {
	Purchases() PurchasesUseCase
	Products() ProductsUseCase

	// OnNewIntent hands a platform intent to the client so it can finish
	// payment flows that were redirected outside the application.
	OnNewIntent(intent models.Intent)
}

type PurchasesUseCase interface {
	CheckPurchasesAvailability(ctx context.Context) (models.FeatureAvailability, error)
	GetPurchases(ctx context.Context) ([]models.Purchase, error)
	PurchaseProduct(ctx context.Context, req models.PurchaseRequest) (models.PaymentResult, error)
	ConfirmPurchase(ctx context.Context, purchaseID string, developerPayload *string) error
	DeletePurchase(ctx context.Context, purchaseID string) error
}

type ProductsUseCase interface {
	GetProducts(ctx context.Context, productIDs []string) ([]models.Product, error)
}
