package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEnumTokens(t *testing.T) {
	types := map[ProductType]string{
		ProductConsumable:    "CONSUMABLE",
		ProductNonConsumable: "NON-CONSUMABLE",
		ProductSubscription:  "SUBSCRIPTION",
	}
	for v, tok := range types {
		b, err := v.MarshalText()
		require.NoError(t, err)
		require.Equal(t, tok, string(b))
	}

	statuses := map[ProductStatus]string{
		ProductActive:   "ACTIVE",
		ProductInactive: "INACTIVE",
	}
	for v, tok := range statuses {
		b, err := v.MarshalText()
		require.NoError(t, err)
		require.Equal(t, tok, string(b))
	}

	want := []string{
		"CREATED", "INVOICE CREATED", "CONFIRMED", "PAID",
		"CANCELLED", "CONSUMED", "CLOSED", "TERMINATED",
	}
	seen := make(map[string]bool)
	for i, s := range PurchaseStates() {
		b, err := s.MarshalText()
		require.NoError(t, err)
		require.Equal(t, want[i], string(b))
		require.False(t, seen[string(b)], "duplicate token %s", b)
		seen[string(b)] = true

		var back PurchaseState
		require.NoError(t, back.UnmarshalText(b))
		require.Equal(t, s, back)
	}
}

func TestEnumsAcceptNativeSpellings(t *testing.T) {
	var pt ProductType
	require.NoError(t, pt.UnmarshalText([]byte("NON_CONSUMABLE")))
	require.Equal(t, ProductNonConsumable, pt)

	var ps PurchaseState
	require.NoError(t, ps.UnmarshalText([]byte("INVOICE_CREATED")))
	require.Equal(t, StateInvoiceCreated, ps)

	require.Error(t, ps.UnmarshalText([]byte("REFUNDED")))

	_, err := ProductType(0).MarshalText()
	require.Error(t, err)
}

func TestAbsentFieldsOmitted(t *testing.T) {
	out, err := json.Marshal(Product{ProductID: "gems_100", ProductStatus: ProductInactive})
	require.NoError(t, err)
	require.JSONEq(t, `{"productId":"gems_100","productStatus":"INACTIVE"}`, string(out))

	out, err = json.Marshal(Purchase{ProductID: "gems_100"})
	require.NoError(t, err)
	require.JSONEq(t, `{"productId":"gems_100"}`, string(out))

	out, err = json.Marshal(Subscription{GracePeriod: &Period{Days: 3}})
	require.NoError(t, err)
	require.JSONEq(t, `{"gracePeriod":{"years":0,"months":0,"days":3}}`, string(out))
}

func TestPurchaseProjection(t *testing.T) {
	at := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	p := Purchase{
		PurchaseID:    Ptr("p-1"),
		ProductID:     "premium",
		ProductType:   Ptr(ProductSubscription),
		PurchaseTime:  &at,
		Quantity:      Ptr(1),
		PurchaseState: Ptr(StateInvoiceCreated),
	}
	out, err := json.Marshal(p)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"purchaseId": "p-1",
		"productId": "premium",
		"productType": "SUBSCRIPTION",
		"purchaseTime": "2026-10-16T09:30:00Z",
		"quantity": 1,
		"purchaseState": "INVOICE CREATED"
	}`, string(out))
	require.Equal(t, "p-1", p.ID())
	require.Empty(t, Purchase{}.ID())
}
