// Package sandbox emulates the store's billing and review SDKs for desktop
// runs of the shell. Purchases are persisted in badger and payment flows are
// completed on a local web page that redirects back through a deep link.
package sandbox

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arko-chat/storebridge/internal/models"
	"github.com/arko-chat/storebridge/internal/provider"
)

var ErrPaymentExpired = errors.New("sandbox: payment session expired")

const (
	DefaultPaymentTimeout = 10 * time.Minute
	intentActionView      = "android.intent.action.VIEW"
	deeplinkHostPayment   = "payment"
)

type Config struct {
	// ConsoleApplicationID restricts purchases to one application. Empty
	// accepts any id.
	ConsoleApplicationID string
	PaymentTimeout       time.Duration
	ReviewCooldown       time.Duration
	LinkSecret           []byte
}

type Sandbox struct {
	mu      sync.Mutex
	store   *Store
	catalog *Catalog
	index   *purchaseIndex
	signer  *signer
	opener  Opener
	flows   *xsync.Map[string, chan Outcome]
	baseURL atomic.Pointer[string]
	reviews *ReviewManager
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time
}

func New(store *Store, opener Opener, cfg Config, logger *slog.Logger) (*Sandbox, error) {
	if len(cfg.LinkSecret) == 0 {
		return nil, errors.New("sandbox: link secret is required")
	}
	if cfg.PaymentTimeout <= 0 {
		cfg.PaymentTimeout = DefaultPaymentTimeout
	}

	s := &Sandbox{
		store:   store,
		catalog: NewCatalog(store),
		index:   newPurchaseIndex(),
		signer:  newSigner(cfg.LinkSecret, cfg.PaymentTimeout),
		opener:  opener,
		flows:   xsync.NewMap[string, chan Outcome](),
		cfg:     cfg,
		logger:  logger.With("component", "sandbox"),
		now:     time.Now,
	}
	s.reviews = newReviewManager(s)

	records, err := store.ListPurchases()
	if err != nil {
		return nil, fmt.Errorf("load purchases: %w", err)
	}
	for _, rec := range records {
		s.index.Set(rec)
	}
	s.logger.Debug("sandbox ready", "purchases", s.index.Len())
	return s, nil
}

func (s *Sandbox) SetBaseURL(u string) {
	u = strings.TrimRight(u, "/")
	s.baseURL.Store(&u)
}

func (s *Sandbox) BaseURL() string {
	if u := s.baseURL.Load(); u != nil {
		return *u
	}
	return ""
}

func (s *Sandbox) Catalog() *Catalog {
	return s.catalog
}

func (s *Sandbox) Reviews() *ReviewManager {
	return s.reviews
}

// NewBillingClient implements provider.BillingFactory.
func (s *Sandbox) NewBillingClient(consoleApplicationID, deeplinkScheme string) (provider.BillingProvider, error) {
	if deeplinkScheme == "" {
		return nil, errors.New("deeplink scheme is required")
	}
	return &Client{
		sb:     s,
		appID:  consoleApplicationID,
		scheme: strings.ToLower(deeplinkScheme),
	}, nil
}

func (s *Sandbox) savePurchase(rec PurchaseRecord) error {
	if err := s.store.PutPurchase(rec); err != nil {
		return err
	}
	s.index.Set(rec)
	return nil
}

func (s *Sandbox) removePurchase(rec PurchaseRecord) error {
	if err := s.store.DeletePurchase(rec.ID()); err != nil {
		return err
	}
	s.index.Delete(rec)
	return nil
}

func (s *Sandbox) PaymentURL(token string) string {
	return s.BaseURL() + "/sandbox/pay/" + url.PathEscape(token)
}

type PaymentView struct {
	Token    string
	Purchase PurchaseRecord
	Product  models.Product
	PageURL  string
}

func (s *Sandbox) readTicket(token string) (paymentTicket, PurchaseRecord, error) {
	var t paymentTicket
	if err := s.signer.decode(ticketPayment, token, &t); err != nil {
		return paymentTicket{}, PurchaseRecord{}, fmt.Errorf("%w: %v", ErrPaymentExpired, err)
	}
	rec, err := s.store.GetPurchase(t.PurchaseID)
	if err != nil {
		return paymentTicket{}, PurchaseRecord{}, err
	}
	if rec.PurchaseState == nil || *rec.PurchaseState != models.StateInvoiceCreated {
		return paymentTicket{}, PurchaseRecord{}, fmt.Errorf("%w: purchase %s is not awaiting payment", ErrInvalidState, t.PurchaseID)
	}
	return t, rec, nil
}

// PaymentView resolves a payment page token.
func (s *Sandbox) PaymentView(token string) (PaymentView, error) {
	_, rec, err := s.readTicket(token)
	if err != nil {
		return PaymentView{}, err
	}
	product, err := s.catalog.Get(rec.ProductID)
	if err != nil {
		return PaymentView{}, err
	}
	return PaymentView{
		Token:    token,
		Purchase: rec,
		Product:  product,
		PageURL:  s.PaymentURL(token),
	}, nil
}

// CompletePayment records the user's choice on the payment page and returns
// the deep-link intent that hands the result back to the application.
func (s *Sandbox) CompletePayment(token string, outcome Outcome) (models.Intent, error) {
	if !outcome.Valid() {
		return models.Intent{}, fmt.Errorf("unknown payment outcome %q", outcome)
	}
	t, _, err := s.readTicket(token)
	if err != nil {
		return models.Intent{}, err
	}
	if _, ok := s.flows.Load(t.PurchaseID); !ok {
		return models.Intent{}, ErrPaymentExpired
	}

	result, err := s.signer.encode(ticketResult, resultTicket{PurchaseID: t.PurchaseID, Outcome: outcome})
	if err != nil {
		return models.Intent{}, fmt.Errorf("sign payment result: %w", err)
	}

	link := url.URL{
		Scheme:   t.Scheme,
		Host:     deeplinkHostPayment,
		RawQuery: url.Values{"result": {result}}.Encode(),
	}
	return models.Intent{Action: intentActionView, Data: link.String()}, nil
}

func (s *Sandbox) resolve(scheme string, intent models.Intent) bool {
	u, err := url.Parse(intent.Data)
	if err != nil || !strings.EqualFold(u.Scheme, scheme) || u.Host != deeplinkHostPayment {
		return false
	}

	var res resultTicket
	if err := s.signer.decode(ticketResult, u.Query().Get("result"), &res); err != nil {
		s.logger.Warn("rejected payment deep link", "err", err)
		return false
	}

	ch, ok := s.flows.LoadAndDelete(res.PurchaseID)
	if !ok {
		s.logger.Debug("no payment flow waiting", "purchase_id", res.PurchaseID)
		return false
	}
	ch <- res.Outcome
	return true
}
