package sandbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/arko-chat/storebridge/internal/logger"
	"github.com/arko-chat/storebridge/internal/models"
)

var (
	ErrProductNotFound    = errors.New("sandbox: product not found")
	ErrPurchaseNotFound   = errors.New("sandbox: purchase not found")
	ErrInvalidState       = errors.New("sandbox: invalid purchase state")
	ErrUnknownReviewToken = errors.New("sandbox: unknown or expired review token")
)

const (
	prefixProduct  = "product:"
	prefixPurchase = "purchase:"
	prefixReview   = "review:"
)

// PurchaseRecord is a purchase as persisted by the sandbox, scoped to the
// console application that created it.
type PurchaseRecord struct {
	models.Purchase
	AppID string `json:"appId"`
}

type ReviewRecord struct {
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store struct {
	db *badger.DB
}

// OpenStore opens the sandbox database in dir, or in memory when dir is "".
func OpenStore(dir string, log *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(logger.NewBadgerLogger(log))
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open sandbox store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
}

func (s *Store) get(key string, v any, notFound error) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return notFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(raw []byte) error {
			return json.Unmarshal(raw, v)
		})
	})
}

func (s *Store) PutProduct(p models.Product) error {
	return s.put(prefixProduct+p.ProductID, p)
}

func (s *Store) GetProduct(id string) (models.Product, error) {
	var p models.Product
	if err := s.get(prefixProduct+id, &p, ErrProductNotFound); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (s *Store) PutPurchase(rec PurchaseRecord) error {
	return s.put(prefixPurchase+rec.ID(), rec)
}

func (s *Store) GetPurchase(id string) (PurchaseRecord, error) {
	var rec PurchaseRecord
	if err := s.get(prefixPurchase+id, &rec, ErrPurchaseNotFound); err != nil {
		return PurchaseRecord{}, err
	}
	return rec, nil
}

func (s *Store) DeletePurchase(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(prefixPurchase + id))
	})
}

func (s *Store) ListPurchases() ([]PurchaseRecord, error) {
	var out []PurchaseRecord
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixPurchase)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec PurchaseRecord
			err := it.Item().Value(func(raw []byte) error {
				return json.Unmarshal(raw, &rec)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

func (s *Store) PutReview(r ReviewRecord) error {
	key := fmt.Sprintf("%s%020d", prefixReview, r.CreatedAt.UnixNano())
	return s.put(key, r)
}

func (s *Store) ListReviews() ([]ReviewRecord, error) {
	var out []ReviewRecord
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixReview)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var r ReviewRecord
			if err := it.Item().Value(func(raw []byte) error {
				return json.Unmarshal(raw, &r)
			}); err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	return out, err
}
