package models

import "fmt"

type ProductType int

const (
	ProductConsumable ProductType = iota + 1
	ProductNonConsumable
	ProductSubscription
)

func (t ProductType) String() string {
	switch t {
	case ProductConsumable:
		return "CONSUMABLE"
	case ProductNonConsumable:
		return "NON-CONSUMABLE"
	case ProductSubscription:
		return "SUBSCRIPTION"
	}
	return fmt.Sprintf("ProductType(%d)", int(t))
}

func (t ProductType) MarshalText() ([]byte, error) {
	switch t {
	case ProductConsumable, ProductNonConsumable, ProductSubscription:
		return []byte(t.String()), nil
	}
	return nil, fmt.Errorf("unknown product type %d", int(t))
}

func (t *ProductType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "CONSUMABLE":
		*t = ProductConsumable
	case "NON-CONSUMABLE", "NON_CONSUMABLE":
		*t = ProductNonConsumable
	case "SUBSCRIPTION":
		*t = ProductSubscription
	default:
		return fmt.Errorf("unknown product type %q", b)
	}
	return nil
}

type ProductStatus int

const (
	ProductActive ProductStatus = iota + 1
	ProductInactive
)

func (s ProductStatus) String() string {
	switch s {
	case ProductActive:
		return "ACTIVE"
	case ProductInactive:
		return "INACTIVE"
	}
	return fmt.Sprintf("ProductStatus(%d)", int(s))
}

func (s ProductStatus) MarshalText() ([]byte, error) {
	switch s {
	case ProductActive, ProductInactive:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("unknown product status %d", int(s))
}

func (s *ProductStatus) UnmarshalText(b []byte) error {
	switch string(b) {
	case "ACTIVE":
		*s = ProductActive
	case "INACTIVE":
		*s = ProductInactive
	default:
		return fmt.Errorf("unknown product status %q", b)
	}
	return nil
}

type PurchaseState int

const (
	StateCreated PurchaseState = iota + 1
	StateInvoiceCreated
	StateConfirmed
	StatePaid
	StateCancelled
	StateConsumed
	StateClosed
	StateTerminated
)

var purchaseStateTokens = map[PurchaseState]string{
	StateCreated:        "CREATED",
	StateInvoiceCreated: "INVOICE CREATED",
	StateConfirmed:      "CONFIRMED",
	StatePaid:           "PAID",
	StateCancelled:      "CANCELLED",
	StateConsumed:       "CONSUMED",
	StateClosed:         "CLOSED",
	StateTerminated:     "TERMINATED",
}

// PurchaseStates lists every state in lifecycle order.
func PurchaseStates() []PurchaseState {
	return []PurchaseState{
		StateCreated,
		StateInvoiceCreated,
		StateConfirmed,
		StatePaid,
		StateCancelled,
		StateConsumed,
		StateClosed,
		StateTerminated,
	}
}

func (s PurchaseState) String() string {
	if tok, ok := purchaseStateTokens[s]; ok {
		return tok
	}
	return fmt.Sprintf("PurchaseState(%d)", int(s))
}

func (s PurchaseState) MarshalText() ([]byte, error) {
	tok, ok := purchaseStateTokens[s]
	if !ok {
		return nil, fmt.Errorf("unknown purchase state %d", int(s))
	}
	return []byte(tok), nil
}

func (s *PurchaseState) UnmarshalText(b []byte) error {
	in := string(b)
	if in == "INVOICE_CREATED" {
		*s = StateInvoiceCreated
		return nil
	}
	for state, tok := range purchaseStateTokens {
		if tok == in {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown purchase state %q", in)
}

// Stale reports whether the purchase is an abandoned attempt that should be
// deleted before it is reported.
func (s PurchaseState) Stale() bool {
	return s == StateCreated || s == StateInvoiceCreated
}
