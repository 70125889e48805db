package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arko-chat/storebridge/internal/models"
)

func TestExecuteUnknownAction(t *testing.T) {
	b := newTestBridge(&reviewStub{}, &billingStub{}, Options{})
	rec := newRecorder()
	require.False(t, b.Execute(context.Background(), "restorePurchases", nil, rec))
	require.Zero(t, rec.deliveries())
}

func TestExecuteDeliversAsynchronously(t *testing.T) {
	b := newTestBridge(&reviewStub{}, &billingStub{}, Options{})
	rec := newRecorder()

	require.True(t, b.Execute(context.Background(), CmdInitPurchases,
		json.RawMessage(`[{"consoleApplicationId":"42","deeplinkScheme":"app"}]`), rec))

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("initPurchases never completed")
	}
	require.True(t, b.HasSession())
}

func TestRunDecodesPositionalArgs(t *testing.T) {
	billing := &billingStub{paymentResult: models.PaymentSuccess{PurchaseID: "p-1", ProductID: "gems_100"}}
	b := newTestBridge(&reviewStub{}, billing, Options{})
	ctx := context.Background()

	rec := newRecorder()
	b.Run(ctx, CmdInitPurchases, json.RawMessage(`[{"consoleApplicationId":"42","deeplinkScheme":"app"}]`), rec)
	require.Equal(t, []any{nil}, rec.payloads)

	rec = newRecorder()
	b.Run(ctx, CmdGetProducts, json.RawMessage(`[["gems_100","premium"]]`), rec)
	require.Equal(t, [][]string{{"gems_100", "premium"}}, billing.productQueries)

	rec = newRecorder()
	b.Run(ctx, CmdPurchaseProduct,
		json.RawMessage(`[{"productId":"gems_100","orderId":"o-1","quantity":2,"developerPayload":"dp"}]`), rec)
	require.Len(t, rec.payloads, 1)
	req := billing.requests[0]
	require.Equal(t, "gems_100", req.ProductID)
	require.Equal(t, "o-1", *req.OrderID)
	require.Equal(t, 2, req.Quantity)
	require.Equal(t, "dp", *req.DeveloperPayload)

	rec = newRecorder()
	b.Run(ctx, CmdConfirmPurchase, json.RawMessage(`["p-1", null]`), rec)
	require.Equal(t, []string{"p-1"}, billing.confirmed)
	require.Nil(t, billing.confirmPayload[0])

	rec = newRecorder()
	b.Run(ctx, CmdConfirmPurchase, json.RawMessage(`["p-2","payload"]`), rec)
	require.Equal(t, "payload", *billing.confirmPayload[1])

	rec = newRecorder()
	b.Run(ctx, CmdDeletePurchase, json.RawMessage(`["p-3"]`), rec)
	require.Equal(t, []string{"p-3"}, billing.deleted)
}

func TestRunRejectsMalformedArgs(t *testing.T) {
	billing := &billingStub{}
	b := newTestBridge(&reviewStub{}, billing, Options{})
	initialized(t, b)
	ctx := context.Background()

	cases := map[string]string{
		CmdInitPurchases:   `[{"consoleApplicationId":"42"}]`,
		CmdGetProducts:     `["gems_100"]`,
		CmdPurchaseProduct: `[{"quantity":1}]`,
		CmdDeletePurchase:  `[]`,
		CmdConfirmPurchase: `{"purchaseId":"p-1"}`,
	}
	for action, args := range cases {
		t.Run(action, func(t *testing.T) {
			rec := newRecorder()
			b.Run(ctx, action, json.RawMessage(args), rec)
			require.Len(t, rec.errors, 1)
			require.Contains(t, rec.errors[0], "Invalid arguments for "+action)
		})
	}
	require.Zero(t, billing.calls)
}
