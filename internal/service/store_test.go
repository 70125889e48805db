package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arko-chat/storebridge/internal/models"
	"github.com/arko-chat/storebridge/internal/provider"
)

func TestBillingCommandsRequireSession(t *testing.T) {
	billing := &billingStub{}
	b := newTestBridge(&reviewStub{}, billing, Options{})
	ctx := context.Background()

	commands := map[string]func(cb Callback){
		CmdCheckPurchasesAvailability: func(cb Callback) { b.CheckPurchasesAvailability(ctx, cb) },
		CmdGetProducts:                func(cb Callback) { b.GetProducts(ctx, []string{"gems_100"}, cb) },
		CmdGetPurchases:               func(cb Callback) { b.GetPurchases(ctx, cb) },
		CmdPurchaseProduct:            func(cb Callback) { b.PurchaseProduct(ctx, PurchaseArgs{ProductID: "gems_100"}, cb) },
		CmdConfirmPurchase:            func(cb Callback) { b.ConfirmPurchase(ctx, "p-1", nil, cb) },
		CmdDeletePurchase:             func(cb Callback) { b.DeletePurchase(ctx, "p-1", cb) },
	}

	for name, run := range commands {
		t.Run(name, func(t *testing.T) {
			rec := newRecorder()
			run(rec)
			require.Equal(t, []string{"billingClient is not initialized"}, rec.errors)
			require.Empty(t, rec.payloads)
		})
	}
	require.Zero(t, billing.calls)
}

func TestInitPurchasesReplacesSession(t *testing.T) {
	var created []string
	first, second := &billingStub{}, &billingStub{}
	factory := provider.BillingFactoryFunc(func(appID, scheme string) (provider.BillingProvider, error) {
		created = append(created, appID+"|"+scheme)
		if len(created) == 1 {
			return first, nil
		}
		return second, nil
	})
	b := NewStoreBridge(&reviewStub{}, factory, Options{}, testLogger())

	rec := newRecorder()
	b.InitPurchases(context.Background(), InitArgs{ConsoleApplicationID: "1", DeeplinkScheme: "a"}, rec)
	require.Equal(t, []any{nil}, rec.payloads)

	b.InitPurchases(context.Background(), InitArgs{ConsoleApplicationID: "2", DeeplinkScheme: "b"}, CallbackFuncs{})
	require.Equal(t, []string{"1|a", "2|b"}, created)

	b.CheckPurchasesAvailability(context.Background(), CallbackFuncs{})
	require.Zero(t, first.calls)
	require.Equal(t, 1, second.calls)
}

func TestInitPurchasesFactoryFailure(t *testing.T) {
	factory := provider.BillingFactoryFunc(func(string, string) (provider.BillingProvider, error) {
		return nil, errors.New("no store app")
	})
	b := NewStoreBridge(&reviewStub{}, factory, Options{}, testLogger())

	rec := newRecorder()
	b.InitPurchases(context.Background(), InitArgs{ConsoleApplicationID: "1", DeeplinkScheme: "a"}, rec)
	require.Equal(t, []string{"Failed to initialize the billing client! (no store app)"}, rec.errors)
	require.False(t, b.HasSession())
}

func TestOpenReviewForm(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		review := &reviewStub{}
		b := newTestBridge(review, &billingStub{}, Options{})
		rec := newRecorder()
		b.OpenReviewForm(context.Background(), rec)
		require.Equal(t, []any{nil}, rec.payloads)
		require.Len(t, review.launched, 1)
		require.Equal(t, "review-1", review.launched[0].Handle)
	})

	t.Run("request failure skips launch", func(t *testing.T) {
		review := &reviewStub{requestErr: errors.New("boom")}
		b := newTestBridge(review, &billingStub{}, Options{})
		rec := newRecorder()
		b.OpenReviewForm(context.Background(), rec)
		require.Equal(t, []string{"Failed to open the review form! (boom)"}, rec.errors)
		require.Empty(t, review.launched)
	})

	t.Run("launch failure", func(t *testing.T) {
		review := &reviewStub{launchErr: errors.New("closed")}
		b := newTestBridge(review, &billingStub{}, Options{})
		rec := newRecorder()
		b.OpenReviewForm(context.Background(), rec)
		require.Equal(t, []string{"Failed to open the review form! (closed)"}, rec.errors)
	})
}

func TestCheckPurchasesAvailability(t *testing.T) {
	billing := &billingStub{}
	b := newTestBridge(&reviewStub{}, billing, Options{})
	initialized(t, b)

	rec := newRecorder()
	b.CheckPurchasesAvailability(context.Background(), rec)
	require.Equal(t, []any{"Purchases availability check: Available"}, rec.payloads)

	billing.availability = models.FeatureUnavailable{Cause: errors.New("user not authorized")}
	rec = newRecorder()
	b.CheckPurchasesAvailability(context.Background(), rec)
	require.Equal(t, []string{"Purchases availability check: Unavailable"}, rec.errors)

	billing.availabilityErr = errors.New("no network")
	rec = newRecorder()
	b.CheckPurchasesAvailability(context.Background(), rec)
	require.Equal(t, []string{"Purchases availability check failed! (no network)"}, rec.errors)
}

func TestGetProductsEmptyList(t *testing.T) {
	billing := &billingStub{}
	b := newTestBridge(&reviewStub{}, billing, Options{})
	initialized(t, b)

	rec := newRecorder()
	b.GetProducts(context.Background(), nil, rec)
	require.Len(t, rec.payloads, 1)

	out, err := json.Marshal(rec.payloads[0])
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(out))
}

func TestGetProductsProjection(t *testing.T) {
	consumable := models.ProductConsumable
	billing := &billingStub{products: []models.Product{{
		ProductID:     "gems_100",
		ProductType:   &consumable,
		ProductStatus: models.ProductActive,
		Price:         models.Ptr(9900),
		Currency:      models.Ptr("RUB"),
	}}}
	b := newTestBridge(&reviewStub{}, billing, Options{})
	initialized(t, b)

	rec := newRecorder()
	b.GetProducts(context.Background(), []string{"gems_100", "missing"}, rec)
	require.Len(t, rec.payloads, 1)
	require.Equal(t, [][]string{{"gems_100", "missing"}}, billing.productQueries)

	out, err := json.Marshal(rec.payloads[0])
	require.NoError(t, err)
	require.JSONEq(t, `[{
		"productId": "gems_100",
		"productType": "CONSUMABLE",
		"productStatus": "ACTIVE",
		"price": 9900,
		"currency": "RUB"
	}]`, string(out))

	billing.productsErr = errors.New("timeout")
	rec = newRecorder()
	b.GetProducts(context.Background(), []string{"gems_100"}, rec)
	require.Equal(t, []string{"Failed to get the products! (timeout)"}, rec.errors)
}

func TestGetPurchasesReconciliation(t *testing.T) {
	tests := []struct {
		state     models.PurchaseState
		deleted   []string
		confirmed []string
	}{
		{state: models.StateCreated, deleted: []string{"p-1"}},
		{state: models.StateInvoiceCreated, deleted: []string{"p-1"}},
		{state: models.StatePaid, confirmed: []string{"p-1"}},
		{state: models.StateConfirmed},
		{state: models.StateCancelled},
		{state: models.StateConsumed},
		{state: models.StateClosed},
		{state: models.StateTerminated},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			original := purchaseIn("p-1", tt.state)
			billing := &billingStub{purchases: []models.Purchase{original}}
			b := newTestBridge(&reviewStub{}, billing, Options{})
			initialized(t, b)

			rec := newRecorder()
			b.GetPurchases(context.Background(), rec)

			require.Empty(t, rec.errors)
			require.Equal(t, []any{[]models.Purchase{original}}, rec.payloads)
			require.Equal(t, tt.deleted, billing.deleted)
			require.Equal(t, tt.confirmed, billing.confirmed)
		})
	}
}

func TestGetPurchasesReconciliationFailureStillReported(t *testing.T) {
	stale := purchaseIn("p-1", models.StateCreated)
	paid := purchaseIn("p-2", models.StatePaid)
	billing := &billingStub{
		purchases:  []models.Purchase{stale, paid},
		deleteErr:  errors.New("gone"),
		confirmErr: errors.New("denied"),
	}
	b := newTestBridge(&reviewStub{}, billing, Options{})
	initialized(t, b)

	rec := newRecorder()
	b.GetPurchases(context.Background(), rec)
	require.Empty(t, rec.errors)
	require.Equal(t, []any{[]models.Purchase{stale, paid}}, rec.payloads)
	require.Nil(t, billing.confirmPayload[0])
}

func TestGetPurchasesSkipsPurchasesWithoutID(t *testing.T) {
	noID := models.Purchase{ProductID: "gems_100", PurchaseState: models.Ptr(models.StateCreated)}
	billing := &billingStub{purchases: []models.Purchase{noID}}
	b := newTestBridge(&reviewStub{}, billing, Options{})
	initialized(t, b)

	rec := newRecorder()
	b.GetPurchases(context.Background(), rec)
	require.Empty(t, billing.deleted)
	require.Len(t, rec.payloads, 1)
}

func TestPurchaseProductSuccess(t *testing.T) {
	billing := &billingStub{paymentResult: models.PaymentSuccess{
		OrderID:    models.Ptr("order-1"),
		PurchaseID: "p-1",
		ProductID:  "gems_100",
		InvoiceID:  "inv-1",
	}}
	b := newTestBridge(&reviewStub{}, billing, Options{})
	initialized(t, b)

	rec := newRecorder()
	b.PurchaseProduct(context.Background(), PurchaseArgs{ProductID: "gems_100"}, rec)
	require.Len(t, rec.payloads, 1)
	require.Equal(t, 1, billing.requests[0].Quantity)

	out, err := json.Marshal(rec.payloads[0])
	require.NoError(t, err)
	require.JSONEq(t, `{"orderId":"order-1","purchaseId":"p-1","productId":"gems_100"}`, string(out))

	billing.paymentResult = models.PaymentSuccess{
		PurchaseID:        "p-2",
		ProductID:         "premium",
		SubscriptionToken: models.Ptr("sub-token"),
	}
	rec = newRecorder()
	b.PurchaseProduct(context.Background(), PurchaseArgs{ProductID: "premium", Quantity: models.Ptr(3)}, rec)
	out, err = json.Marshal(rec.payloads[0])
	require.NoError(t, err)
	require.JSONEq(t, `{"purchaseId":"p-2","productId":"premium","subscriptionToken":"sub-token"}`, string(out))
	require.Equal(t, 3, billing.requests[1].Quantity)
}

func TestPurchaseProductCancelledDeletesWithoutCallback(t *testing.T) {
	billing := &billingStub{paymentResult: models.PaymentCancelled{PurchaseID: "p-9"}}
	b := newTestBridge(&reviewStub{}, billing, Options{})
	initialized(t, b)

	rec := newRecorder()
	b.PurchaseProduct(context.Background(), PurchaseArgs{ProductID: "gems_100"}, rec)
	require.Equal(t, []string{"p-9"}, billing.deleted)
	require.Zero(t, rec.deliveries())
}

func TestPurchaseProductAbandonedReported(t *testing.T) {
	billing := &billingStub{paymentResult: models.PaymentCancelled{PurchaseID: "p-9"}}
	b := newTestBridge(&reviewStub{}, billing, Options{ReportAbandonedPayments: true})
	initialized(t, b)

	rec := newRecorder()
	b.PurchaseProduct(context.Background(), PurchaseArgs{ProductID: "gems_100"}, rec)
	require.Equal(t, []string{"Purchase was cancelled"}, rec.errors)

	billing.paymentResult = models.PaymentFailure{}
	rec = newRecorder()
	b.PurchaseProduct(context.Background(), PurchaseArgs{ProductID: "gems_100"}, rec)
	require.Equal(t, []string{"Purchase failed"}, rec.errors)
	require.Equal(t, []string{"p-9"}, billing.deleted)
}

func TestPurchaseProductFailureDeletesKnownPurchase(t *testing.T) {
	billing := &billingStub{paymentResult: models.PaymentFailure{PurchaseID: models.Ptr("p-3")}}
	b := newTestBridge(&reviewStub{}, billing, Options{})
	initialized(t, b)

	rec := newRecorder()
	b.PurchaseProduct(context.Background(), PurchaseArgs{ProductID: "gems_100"}, rec)
	require.Equal(t, []string{"p-3"}, billing.deleted)
	require.Zero(t, rec.deliveries())
}

func TestPurchaseProductErrors(t *testing.T) {
	billing := &billingStub{paymentResult: models.InvalidPaymentState{}}
	b := newTestBridge(&reviewStub{}, billing, Options{})
	initialized(t, b)

	rec := newRecorder()
	b.PurchaseProduct(context.Background(), PurchaseArgs{ProductID: "gems_100"}, rec)
	require.Equal(t, []string{
		"Failed to purchase the product - No payment state received during the payment process!",
	}, rec.errors)

	billing.paymentErr = errors.New("declined")
	rec = newRecorder()
	b.PurchaseProduct(context.Background(), PurchaseArgs{ProductID: "gems_100"}, rec)
	require.Equal(t, []string{"Failed to purchase the product! (declined)"}, rec.errors)
}

func TestEmptyIDShortCircuitsByDefault(t *testing.T) {
	billing := &billingStub{}
	b := newTestBridge(&reviewStub{}, billing, Options{})
	initialized(t, b)
	ctx := context.Background()

	rec := newRecorder()
	b.PurchaseProduct(ctx, PurchaseArgs{}, rec)
	require.Equal(t, []string{"Empty product ID provided!"}, rec.errors)

	rec = newRecorder()
	b.ConfirmPurchase(ctx, "", nil, rec)
	require.Equal(t, []string{"Empty purchase ID provided!"}, rec.errors)

	rec = newRecorder()
	b.DeletePurchase(ctx, "", rec)
	require.Equal(t, []string{"Empty purchase ID provided!"}, rec.errors)

	require.Zero(t, billing.calls)
}

func TestEmptyIDContinuesWhenConfigured(t *testing.T) {
	billing := &billingStub{}
	b := newTestBridge(&reviewStub{}, billing, Options{ContinueOnValidationError: true})
	initialized(t, b)
	ctx := context.Background()

	rec := newRecorder()
	b.ConfirmPurchase(ctx, "", nil, rec)
	require.Equal(t, []string{"Empty purchase ID provided!"}, rec.errors)
	require.Empty(t, rec.payloads)
	require.Equal(t, []string{""}, billing.confirmed)

	rec = newRecorder()
	b.DeletePurchase(ctx, "", rec)
	require.Equal(t, 1, rec.deliveries())
	require.Equal(t, []string{""}, billing.deleted)
}

func TestEmptyProductIDContinuesWhenConfigured(t *testing.T) {
	billing := &billingStub{paymentResult: models.PaymentSuccess{PurchaseID: "p-1", InvoiceID: "inv-1"}}
	b := newTestBridge(&reviewStub{}, billing, Options{ContinueOnValidationError: true})
	initialized(t, b)

	rec := newRecorder()
	b.PurchaseProduct(context.Background(), PurchaseArgs{}, rec)
	require.Equal(t, []string{"Empty product ID provided!"}, rec.errors)
	require.Empty(t, rec.payloads)
	require.Equal(t, 1, rec.deliveries())
	require.Len(t, billing.requests, 1)
	require.Empty(t, billing.requests[0].ProductID)
}

func TestConfirmAndDeletePurchase(t *testing.T) {
	billing := &billingStub{}
	b := newTestBridge(&reviewStub{}, billing, Options{})
	initialized(t, b)
	ctx := context.Background()

	rec := newRecorder()
	b.ConfirmPurchase(ctx, "p-1", models.Ptr("payload"), rec)
	require.Equal(t, []any{nil}, rec.payloads)
	require.Equal(t, "payload", *billing.confirmPayload[0])

	billing.deleteErr = errors.New("not found")
	rec = newRecorder()
	b.DeletePurchase(ctx, "p-1", rec)
	require.Equal(t, []string{"Failed to delete/cancel the purchase! (not found)"}, rec.errors)

	billing.confirmErr = errors.New("already consumed")
	rec = newRecorder()
	b.ConfirmPurchase(ctx, "p-1", nil, rec)
	require.Equal(t, []string{"Failed to confirm/consume the purchase! (already consumed)"}, rec.errors)
}

func TestOnNewIntent(t *testing.T) {
	billing := &billingStub{}
	b := newTestBridge(&reviewStub{}, billing, Options{})

	b.OnNewIntent(models.Intent{Data: "storebridge://payment"})
	require.Empty(t, billing.intents)

	initialized(t, b)
	b.OnNewIntent(models.Intent{Data: "storebridge://payment"})
	require.Equal(t, []models.Intent{{Data: "storebridge://payment"}}, billing.intents)
}
