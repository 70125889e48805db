package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/arko-chat/storebridge/internal/models"
	"github.com/arko-chat/storebridge/internal/provider"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type reviewStub struct {
	requestErr error
	launchErr  error
	launched   []models.ReviewToken
}

func (r *reviewStub) RequestReviewFlow(context.Context) (models.ReviewToken, error) {
	if r.requestErr != nil {
		return models.ReviewToken{}, r.requestErr
	}
	return models.ReviewToken{Handle: "review-1"}, nil
}

func (r *reviewStub) LaunchReviewFlow(_ context.Context, token models.ReviewToken) error {
	r.launched = append(r.launched, token)
	return r.launchErr
}

type billingStub struct {
	mu sync.Mutex

	availability    models.FeatureAvailability
	availabilityErr error
	products        []models.Product
	productsErr     error
	purchases       []models.Purchase
	purchasesErr    error
	paymentResult   models.PaymentResult
	paymentErr      error
	confirmErr      error
	deleteErr       error

	calls          int
	deleted        []string
	confirmed      []string
	confirmPayload []*string
	requests       []models.PurchaseRequest
	productQueries [][]string
	intents        []models.Intent
}

func (s *billingStub) Purchases() provider.PurchasesUseCase { return s }
func (s *billingStub) Products() provider.ProductsUseCase   { return productsStub{s} }

func (s *billingStub) OnNewIntent(intent models.Intent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents = append(s.intents, intent)
}

func (s *billingStub) CheckPurchasesAvailability(context.Context) (models.FeatureAvailability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.availabilityErr != nil {
		return nil, s.availabilityErr
	}
	if s.availability == nil {
		return models.FeatureAvailable{}, nil
	}
	return s.availability, nil
}

func (s *billingStub) GetPurchases(context.Context) ([]models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.purchases, s.purchasesErr
}

func (s *billingStub) PurchaseProduct(_ context.Context, req models.PurchaseRequest) (models.PaymentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.requests = append(s.requests, req)
	return s.paymentResult, s.paymentErr
}

func (s *billingStub) ConfirmPurchase(_ context.Context, purchaseID string, payload *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.confirmed = append(s.confirmed, purchaseID)
	s.confirmPayload = append(s.confirmPayload, payload)
	return s.confirmErr
}

func (s *billingStub) DeletePurchase(_ context.Context, purchaseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.deleted = append(s.deleted, purchaseID)
	return s.deleteErr
}

type productsStub struct{ s *billingStub }

func (p productsStub) GetProducts(_ context.Context, ids []string) ([]models.Product, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.calls++
	p.s.productQueries = append(p.s.productQueries, ids)
	return p.s.products, p.s.productsErr
}

type recorder struct {
	mu       sync.Mutex
	payloads []any
	errors   []string
	done     chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{}, 8)}
}

func (r *recorder) Success(payload any) {
	r.mu.Lock()
	r.payloads = append(r.payloads, payload)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *recorder) Error(message string) {
	r.mu.Lock()
	r.errors = append(r.errors, message)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *recorder) deliveries() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads) + len(r.errors)
}

func newTestBridge(review *reviewStub, billing *billingStub, opts Options) *StoreBridge {
	factory := provider.BillingFactoryFunc(func(string, string) (provider.BillingProvider, error) {
		return billing, nil
	})
	return NewStoreBridge(review, factory, opts, testLogger())
}

func initialized(t interface{ Helper() }, b *StoreBridge) {
	t.Helper()
	b.InitPurchases(context.Background(), InitArgs{
		ConsoleApplicationID: "123456",
		DeeplinkScheme:       "storebridge",
	}, CallbackFuncs{})
}

func purchaseIn(id string, state models.PurchaseState) models.Purchase {
	return models.Purchase{
		PurchaseID:    models.Ptr(id),
		ProductID:     "gems_100",
		PurchaseState: models.Ptr(state),
		Amount:        models.Ptr(9900),
	}
}
