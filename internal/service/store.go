package service

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/arko-chat/storebridge/internal/models"
	"github.com/arko-chat/storebridge/internal/provider"
)

const (
	CmdOpenReviewForm             = "openReviewForm"
	CmdInitPurchases              = "initPurchases"
	CmdCheckPurchasesAvailability = "checkPurchasesAvailability"
	CmdGetProducts                = "getProducts"
	CmdGetPurchases               = "getPurchases"
	CmdPurchaseProduct            = "purchaseProduct"
	CmdConfirmPurchase            = "confirmPurchase"
	CmdDeletePurchase             = "deletePurchase"
)

type Options struct {
	// ContinueOnValidationError keeps calling the provider after an empty
	// id has been reported, as older shells expect. The provider outcome is
	// then dropped because the callback has already fired.
	ContinueOnValidationError bool `json:"continue_on_validation_error"`

	// ReportAbandonedPayments delivers an error for cancelled and failed
	// payment flows instead of leaving the caller pending.
	ReportAbandonedPayments bool `json:"report_abandoned_payments"`
}

type billingSession struct {
	client               provider.BillingProvider
	consoleApplicationID string
	deeplinkScheme       string
}

// StoreBridge translates shell commands into review and billing provider
// calls. Each command reports through exactly one callback delivery.
type StoreBridge struct {
	review  provider.ReviewProvider
	factory provider.BillingFactory
	session atomic.Pointer[billingSession]
	opts    Options
	logger  *slog.Logger
}

func NewStoreBridge(
	review provider.ReviewProvider,
	factory provider.BillingFactory,
	opts Options,
	logger *slog.Logger,
) *StoreBridge {
	return &StoreBridge{
		review:  review,
		factory: factory,
		opts:    opts,
		logger:  logger,
	}
}

func (b *StoreBridge) HasSession() bool {
	return b.session.Load() != nil
}

func (b *StoreBridge) billing() (provider.BillingProvider, error) {
	sess := b.session.Load()
	if sess == nil {
		return nil, ErrNotInitialized
	}
	return sess.client, nil
}

// OnNewIntent forwards a platform intent to the active billing client. It is
// a no-op before initPurchases.
func (b *StoreBridge) OnNewIntent(intent models.Intent) {
	sess := b.session.Load()
	if sess == nil {
		b.logger.Debug("intent ignored, no billing client", "action", intent.Action)
		return
	}
	sess.client.OnNewIntent(intent)
}

func (b *StoreBridge) fail(cb Callback, action string, err error) {
	b.logger.Error("store command failed", "action", action, "err", err)
	cb.Error(err.Error())
}

func (b *StoreBridge) OpenReviewForm(ctx context.Context, cb Callback) {
	cb = Once(cb, CmdOpenReviewForm, b.logger)

	token, err := b.review.RequestReviewFlow(ctx)
	if err != nil {
		b.fail(cb, CmdOpenReviewForm, providerErr("Failed to open the review form!", err))
		return
	}

	if err := b.review.LaunchReviewFlow(ctx, token); err != nil {
		b.fail(cb, CmdOpenReviewForm, providerErr("Failed to open the review form!", err))
		return
	}
	cb.Success(nil)
}
