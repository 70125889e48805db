package bridge

// The interfaces below are implemented by the native side (Kotlin/Swift)
// on top of the vendor review and billing SDKs. gomobile exposes them as
// interfaces that native code can satisfy.
//
// Rules for gomobile compatibility:
//   - methods may only use primitive types, strings, []byte, or other
//     gomobile-bound types as parameters and return values
//   - no variadic parameters
//   - errors are returned as a second return value
//   - optional strings are passed as "" when absent
//   - structured values travel as JSON strings
//
// All methods may block; Go calls them from a command goroutine, never from
// the UI thread.

// NativeReview wraps the vendor review manager.
type NativeReview interface {
	// RequestReviewFlow returns an opaque review info handle.
	RequestReviewFlow() (string, error)

	// LaunchReviewFlow shows the review form for a handle returned by
	// RequestReviewFlow.
	LaunchReviewFlow(handle string) error
}

// NativeBillingFactory builds a billing client for one console application.
type NativeBillingFactory interface {
	Create(consoleApplicationID string, deeplinkScheme string) (NativeBilling, error)
}

// NativeBilling wraps one vendor billing client.
type NativeBilling interface {
	// CheckPurchasesAvailability returns {"available":bool,"cause":string}.
	CheckPurchasesAvailability() (string, error)

	// GetProducts takes a JSON array of product ids and returns a JSON
	// array of products.
	GetProducts(productIDsJSON string) (string, error)

	// GetPurchases returns a JSON array of purchases.
	GetPurchases() (string, error)

	// PurchaseProduct returns a payment result object tagged by "type"
	// (success, cancelled, failure, invalid_payment_state).
	PurchaseProduct(productID string, orderID string, quantity int, developerPayload string) (string, error)

	ConfirmPurchase(purchaseID string, developerPayload string) error

	DeletePurchase(purchaseID string) error

	// OnNewIntent receives {"action":..,"data":..,"extras":{..}}.
	OnNewIntent(intentJSON string)
}

// NativeCallback delivers a command result back to the shell. Exactly one
// of the two methods is called per command.
type NativeCallback interface {
	Success(payloadJSON string)
	Error(message string)
}
