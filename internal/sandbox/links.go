package sandbox

import (
	"time"

	"github.com/gorilla/securecookie"
)

const (
	ticketPayment = "payment"
	ticketResult  = "result"
)

type Outcome string

const (
	OutcomePaid      Outcome = "paid"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomePaid, OutcomeCancelled, OutcomeFailed:
		return true
	}
	return false
}

// paymentTicket authorizes access to one payment page.
type paymentTicket struct {
	PurchaseID string `json:"pid"`
	AppID      string `json:"app"`
	Scheme     string `json:"scheme"`
}

// resultTicket is carried by the deep link that returns to the app.
type resultTicket struct {
	PurchaseID string  `json:"pid"`
	Outcome    Outcome `json:"outcome"`
}

// signer produces tamper-proof tokens for payment pages and deep links.
type signer struct {
	sc *securecookie.SecureCookie
}

func newSigner(secret []byte, maxAge time.Duration) *signer {
	sc := securecookie.New(secret, nil)
	sc.MaxAge(int(maxAge.Seconds()))
	sc.SetSerializer(securecookie.JSONEncoder{})
	return &signer{sc: sc}
}

func (s *signer) encode(name string, v any) (string, error) {
	return s.sc.Encode(name, v)
}

func (s *signer) decode(name, token string, v any) error {
	return s.sc.Decode(name, token, v)
}
