package sandbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arko-chat/storebridge/internal/models"
	"github.com/arko-chat/storebridge/internal/provider"
)

var (
	_ provider.BillingProvider  = (*Client)(nil)
	_ provider.PurchasesUseCase = (*Client)(nil)
	_ provider.BillingFactory   = (*Sandbox)(nil)
)

// Client is a billing client bound to one console application and deep
// link scheme.
type Client struct {
	sb     *Sandbox
	appID  string
	scheme string
}

func (c *Client) Purchases() provider.PurchasesUseCase { return c }
func (c *Client) Products() provider.ProductsUseCase   { return products{c.sb.catalog} }

func (c *Client) OnNewIntent(intent models.Intent) {
	c.sb.resolve(c.scheme, intent)
}

func (c *Client) CheckPurchasesAvailability(ctx context.Context) (models.FeatureAvailability, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want := c.sb.cfg.ConsoleApplicationID
	if want != "" && want != c.appID {
		return models.FeatureUnavailable{
			Cause: fmt.Errorf("application %q is not registered in the sandbox", c.appID),
		}, nil
	}
	return models.FeatureAvailable{}, nil
}

func (c *Client) GetPurchases(ctx context.Context) ([]models.Purchase, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records := c.sb.index.ForApp(c.appID)
	out := make([]models.Purchase, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Purchase)
	}
	return out, nil
}

func (c *Client) PurchaseProduct(ctx context.Context, req models.PurchaseRequest) (models.PaymentResult, error) {
	product, err := c.sb.catalog.Get(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", req.ProductID, err)
	}
	if product.ProductStatus != models.ProductActive {
		return nil, fmt.Errorf("product %s is %s", req.ProductID, product.ProductStatus)
	}
	if req.Quantity < 1 {
		return nil, fmt.Errorf("invalid quantity %d", req.Quantity)
	}

	now := c.sb.now().UTC()
	rec := PurchaseRecord{
		AppID: c.appID,
		Purchase: models.Purchase{
			PurchaseID:       models.Ptr(uuid.NewString()),
			ProductID:        product.ProductID,
			ProductType:      product.ProductType,
			InvoiceID:        models.Ptr(uuid.NewString()),
			Description:      product.Title,
			Language:         product.Language,
			PurchaseTime:     &now,
			OrderID:          req.OrderID,
			AmountLabel:      product.PriceLabel,
			Currency:         product.Currency,
			Quantity:         models.Ptr(req.Quantity),
			PurchaseState:    models.Ptr(models.StateInvoiceCreated),
			DeveloperPayload: req.DeveloperPayload,
		},
	}
	if product.Price != nil {
		rec.Amount = models.Ptr(*product.Price * req.Quantity)
	}

	c.sb.mu.Lock()
	err = c.sb.savePurchase(rec)
	c.sb.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("save purchase: %w", err)
	}

	id := rec.ID()
	token, err := c.sb.signer.encode(ticketPayment, paymentTicket{
		PurchaseID: id,
		AppID:      c.appID,
		Scheme:     c.scheme,
	})
	if err != nil {
		return nil, fmt.Errorf("sign payment link: %w", err)
	}

	ch := make(chan Outcome, 1)
	c.sb.flows.Store(id, ch)
	defer c.sb.flows.Delete(id)

	if err := c.sb.opener.Open(c.sb.PaymentURL(token)); err != nil {
		return nil, fmt.Errorf("open payment page: %w", err)
	}
	c.sb.logger.Info("payment flow started", "purchase_id", id, "product_id", product.ProductID)

	timer := time.NewTimer(c.sb.cfg.PaymentTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		c.sb.logger.Warn("payment flow timed out", "purchase_id", id)
		return models.InvalidPaymentState{}, nil
	case outcome := <-ch:
		return c.settle(id, outcome)
	}
}

func (c *Client) settle(id string, outcome Outcome) (models.PaymentResult, error) {
	c.sb.mu.Lock()
	defer c.sb.mu.Unlock()

	rec, err := c.sb.store.GetPurchase(id)
	if err != nil {
		return nil, err
	}
	c.sb.logger.Info("payment flow finished", "purchase_id", id, "outcome", outcome)

	switch outcome {
	case OutcomePaid:
		rec.PurchaseState = models.Ptr(models.StatePaid)
		if rec.ProductType != nil && *rec.ProductType == models.ProductSubscription {
			rec.SubscriptionToken = models.Ptr(uuid.NewString())
		}
		if err := c.sb.savePurchase(rec); err != nil {
			return nil, fmt.Errorf("save purchase: %w", err)
		}
		var invoiceID string
		if rec.InvoiceID != nil {
			invoiceID = *rec.InvoiceID
		}
		return models.PaymentSuccess{
			OrderID:           rec.OrderID,
			PurchaseID:        id,
			ProductID:         rec.ProductID,
			InvoiceID:         invoiceID,
			SubscriptionToken: rec.SubscriptionToken,
		}, nil
	case OutcomeCancelled:
		return models.PaymentCancelled{PurchaseID: id}, nil
	default:
		return models.PaymentFailure{
			PurchaseID: models.Ptr(id),
			InvoiceID:  rec.InvoiceID,
			OrderID:    rec.OrderID,
			Quantity:   rec.Quantity,
			ProductID:  models.Ptr(rec.ProductID),
		}, nil
	}
}

func (c *Client) lookup(id string) (PurchaseRecord, error) {
	rec, err := c.sb.store.GetPurchase(id)
	if err != nil {
		return PurchaseRecord{}, err
	}
	if rec.AppID != c.appID {
		return PurchaseRecord{}, ErrPurchaseNotFound
	}
	return rec, nil
}

func (c *Client) ConfirmPurchase(ctx context.Context, purchaseID string, developerPayload *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sb.mu.Lock()
	defer c.sb.mu.Unlock()

	rec, err := c.lookup(purchaseID)
	if err != nil {
		return err
	}
	if rec.PurchaseState == nil || *rec.PurchaseState != models.StatePaid {
		return fmt.Errorf("%w: purchase %s is %s, expected PAID", ErrInvalidState, purchaseID, stateOf(rec))
	}

	next := models.StateConfirmed
	if rec.ProductType != nil && *rec.ProductType == models.ProductConsumable {
		next = models.StateConsumed
	}
	rec.PurchaseState = models.Ptr(next)
	if developerPayload != nil {
		rec.DeveloperPayload = developerPayload
	}
	return c.sb.savePurchase(rec)
}

func (c *Client) DeletePurchase(ctx context.Context, purchaseID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sb.mu.Lock()
	defer c.sb.mu.Unlock()

	rec, err := c.lookup(purchaseID)
	if err != nil {
		return err
	}
	if rec.PurchaseState == nil || !rec.PurchaseState.Stale() {
		return fmt.Errorf("%w: purchase %s is %s and cannot be deleted", ErrInvalidState, purchaseID, stateOf(rec))
	}
	return c.sb.removePurchase(rec)
}

func stateOf(rec PurchaseRecord) string {
	if rec.PurchaseState == nil {
		return "unknown"
	}
	return rec.PurchaseState.String()
}

type products struct {
	catalog *Catalog
}

// GetProducts returns the known products among ids; unknown ids are skipped.
func (p products) GetProducts(ctx context.Context, ids []string) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		product, err := p.catalog.Get(id)
		if errors.Is(err, ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, product)
	}
	return out, nil
}
