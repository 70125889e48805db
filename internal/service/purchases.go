package service

import (
	"context"
	"fmt"

	"github.com/arko-chat/storebridge/internal/models"
	"github.com/arko-chat/storebridge/internal/provider"
)

const (
	msgAvailable        = "Purchases availability check: Available"
	msgUnavailable      = "Purchases availability check: Unavailable"
	msgPurchaseCanceled = "Purchase was cancelled"
	msgPurchaseFailed   = "Purchase failed"
)

type InitArgs struct {
	ConsoleApplicationID string `json:"consoleApplicationId"`
	DeeplinkScheme       string `json:"deeplinkScheme"`
}

type PurchaseArgs struct {
	ProductID        string  `json:"productId"`
	OrderID          *string `json:"orderId,omitempty"`
	Quantity         *int    `json:"quantity,omitempty"`
	DeveloperPayload *string `json:"developerPayload,omitempty"`
}

type PurchaseResponse struct {
	OrderID           *string `json:"orderId,omitempty"`
	PurchaseID        string  `json:"purchaseId"`
	ProductID         string  `json:"productId"`
	SubscriptionToken *string `json:"subscriptionToken,omitempty"`
}

// InitPurchases creates the billing client and replaces any previous one.
// The old client is dropped without teardown.
func (b *StoreBridge) InitPurchases(ctx context.Context, args InitArgs, cb Callback) {
	cb = Once(cb, CmdInitPurchases, b.logger)

	client, err := b.factory.NewBillingClient(args.ConsoleApplicationID, args.DeeplinkScheme)
	if err != nil {
		b.fail(cb, CmdInitPurchases, providerErr("Failed to initialize the billing client!", err))
		return
	}

	prev := b.session.Swap(&billingSession{
		client:               client,
		consoleApplicationID: args.ConsoleApplicationID,
		deeplinkScheme:       args.DeeplinkScheme,
	})
	b.logger.Info("billing client initialized",
		"console_application_id", args.ConsoleApplicationID,
		"deeplink_scheme", args.DeeplinkScheme,
		"replaced", prev != nil,
	)
	cb.Success(nil)
}

func (b *StoreBridge) CheckPurchasesAvailability(ctx context.Context, cb Callback) {
	cb = Once(cb, CmdCheckPurchasesAvailability, b.logger)

	client, err := b.billing()
	if err != nil {
		b.fail(cb, CmdCheckPurchasesAvailability, err)
		return
	}

	result, err := client.Purchases().CheckPurchasesAvailability(ctx)
	if err != nil {
		b.fail(cb, CmdCheckPurchasesAvailability, providerErr("Purchases availability check failed!", err))
		return
	}

	switch r := result.(type) {
	case models.FeatureAvailable:
		cb.Success(msgAvailable)
	case models.FeatureUnavailable:
		b.logger.Info("purchases unavailable", "cause", r.Cause)
		cb.Error(msgUnavailable)
	default:
		b.fail(cb, CmdCheckPurchasesAvailability,
			providerErr("Purchases availability check failed!", fmt.Errorf("unexpected result %T", result)))
	}
}

func (b *StoreBridge) GetProducts(ctx context.Context, productIDs []string, cb Callback) {
	cb = Once(cb, CmdGetProducts, b.logger)

	client, err := b.billing()
	if err != nil {
		b.fail(cb, CmdGetProducts, err)
		return
	}

	if len(productIDs) == 0 {
		cb.Success([]models.Product{})
		return
	}

	products, err := client.Products().GetProducts(ctx, productIDs)
	if err != nil {
		b.fail(cb, CmdGetProducts, providerErr("Failed to get the products!", err))
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	cb.Success(products)
}

// GetPurchases lists purchases and reconciles each one before reporting it:
// abandoned attempts are deleted and paid purchases are confirmed. The
// reported values are the ones read before reconciliation.
func (b *StoreBridge) GetPurchases(ctx context.Context, cb Callback) {
	cb = Once(cb, CmdGetPurchases, b.logger)

	client, err := b.billing()
	if err != nil {
		b.fail(cb, CmdGetPurchases, err)
		return
	}

	purchases, err := client.Purchases().GetPurchases(ctx)
	if err != nil {
		b.fail(cb, CmdGetPurchases, providerErr("Failed to get the purchases!", err))
		return
	}

	out := make([]models.Purchase, 0, len(purchases))
	for _, p := range purchases {
		b.reconcile(ctx, client, p)
		out = append(out, p)
	}
	cb.Success(out)
}

func (b *StoreBridge) reconcile(ctx context.Context, client provider.BillingProvider, p models.Purchase) {
	id := p.ID()
	if id == "" || p.PurchaseState == nil {
		return
	}

	state := *p.PurchaseState
	var err error
	switch {
	case state.Stale():
		err = client.Purchases().DeletePurchase(ctx, id)
	case state == models.StatePaid:
		err = client.Purchases().ConfirmPurchase(ctx, id, nil)
	default:
		return
	}
	if err != nil {
		b.logger.Warn("purchase reconciliation failed",
			"purchase_id", id,
			"state", state.String(),
			"err", err,
		)
	}
}

func (b *StoreBridge) PurchaseProduct(ctx context.Context, args PurchaseArgs, cb Callback) {
	cb = Once(cb, CmdPurchaseProduct, b.logger)

	client, err := b.billing()
	if err != nil {
		b.fail(cb, CmdPurchaseProduct, err)
		return
	}

	if args.ProductID == "" {
		b.fail(cb, CmdPurchaseProduct, validationErr("productId", "Empty product ID provided!"))
		if !b.opts.ContinueOnValidationError {
			return
		}
	}

	quantity := 1
	if args.Quantity != nil {
		quantity = *args.Quantity
	}

	result, err := client.Purchases().PurchaseProduct(ctx, models.PurchaseRequest{
		ProductID:        args.ProductID,
		OrderID:          args.OrderID,
		Quantity:         quantity,
		DeveloperPayload: args.DeveloperPayload,
	})
	if err != nil {
		b.fail(cb, CmdPurchaseProduct, providerErr("Failed to purchase the product!", err))
		return
	}

	switch r := result.(type) {
	case models.PaymentSuccess:
		cb.Success(PurchaseResponse{
			OrderID:           r.OrderID,
			PurchaseID:        r.PurchaseID,
			ProductID:         r.ProductID,
			SubscriptionToken: r.SubscriptionToken,
		})
	case models.PaymentCancelled:
		b.discard(ctx, client, r.PurchaseID)
		if b.opts.ReportAbandonedPayments {
			cb.Error(msgPurchaseCanceled)
		}
	case models.PaymentFailure:
		if r.PurchaseID != nil {
			b.discard(ctx, client, *r.PurchaseID)
		}
		if b.opts.ReportAbandonedPayments {
			cb.Error(msgPurchaseFailed)
		}
	case models.InvalidPaymentState:
		b.fail(cb, CmdPurchaseProduct, providerErr(
			"Failed to purchase the product - No payment state received during the payment process!", nil))
	default:
		b.fail(cb, CmdPurchaseProduct,
			providerErr("Failed to purchase the product!", fmt.Errorf("unexpected payment result %T", result)))
	}
}

func (b *StoreBridge) discard(ctx context.Context, client provider.BillingProvider, purchaseID string) {
	if err := client.Purchases().DeletePurchase(ctx, purchaseID); err != nil {
		b.logger.Warn("failed to delete abandoned purchase",
			"purchase_id", purchaseID,
			"err", err,
		)
	}
}

func (b *StoreBridge) ConfirmPurchase(
	ctx context.Context,
	purchaseID string,
	developerPayload *string,
	cb Callback,
) {
	cb = Once(cb, CmdConfirmPurchase, b.logger)

	client, err := b.billing()
	if err != nil {
		b.fail(cb, CmdConfirmPurchase, err)
		return
	}

	if purchaseID == "" {
		b.fail(cb, CmdConfirmPurchase, validationErr("purchaseId", "Empty purchase ID provided!"))
		if !b.opts.ContinueOnValidationError {
			return
		}
	}

	if err := client.Purchases().ConfirmPurchase(ctx, purchaseID, developerPayload); err != nil {
		b.fail(cb, CmdConfirmPurchase, providerErr("Failed to confirm/consume the purchase!", err))
		return
	}
	cb.Success(nil)
}

func (b *StoreBridge) DeletePurchase(ctx context.Context, purchaseID string, cb Callback) {
	cb = Once(cb, CmdDeletePurchase, b.logger)

	client, err := b.billing()
	if err != nil {
		b.fail(cb, CmdDeletePurchase, err)
		return
	}

	if purchaseID == "" {
		b.fail(cb, CmdDeletePurchase, validationErr("purchaseId", "Empty purchase ID provided!"))
		if !b.opts.ContinueOnValidationError {
			return
		}
	}

	if err := client.Purchases().DeletePurchase(ctx, purchaseID); err != nil {
		b.fail(cb, CmdDeletePurchase, providerErr("Failed to delete/cancel the purchase!", err))
		return
	}
	cb.Success(nil)
}
