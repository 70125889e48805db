package sandbox

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/arko-chat/storebridge/internal/cache"
	"github.com/arko-chat/storebridge/internal/models"
)

const catalogTTL = 10 * time.Second

// Catalog serves products from the store through a short-lived cache.
type Catalog struct {
	store  *Store
	loader *cache.Loader[models.Product]
}

func NewCatalog(store *Store) *Catalog {
	return &Catalog{
		store:  store,
		loader: cache.New[models.Product](catalogTTL),
	}
}

func (c *Catalog) Get(productID string) (models.Product, error) {
	return c.loader.Get(productID, func() (models.Product, error) {
		return c.store.GetProduct(productID)
	})
}

func (c *Catalog) Seed(products []models.Product) error {
	for _, p := range products {
		if p.ProductID == "" {
			return fmt.Errorf("seed catalog: product without productId")
		}
		if p.ProductStatus == 0 {
			p.ProductStatus = models.ProductActive
		}
		if err := c.store.PutProduct(p); err != nil {
			return fmt.Errorf("seed catalog %s: %w", p.ProductID, err)
		}
		c.loader.Invalidate(p.ProductID)
	}
	return nil
}

// LoadCatalogFile reads a JSON array of products in the same shape the
// bridge reports them.
func LoadCatalogFile(path string) ([]models.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return products, nil
}

// DefaultCatalog is seeded when no catalog file is configured.
func DefaultCatalog() []models.Product {
	return []models.Product{
		{
			ProductID:     "gems_100",
			ProductType:   models.Ptr(models.ProductConsumable),
			ProductStatus: models.ProductActive,
			PriceLabel:    models.Ptr("99 ₽"),
			Price:         models.Ptr(9900),
			Currency:      models.Ptr("RUB"),
			Language:      models.Ptr("ru-RU"),
			Title:         models.Ptr("100 gems"),
			Description:   models.Ptr("A handful of gems"),
		},
		{
			ProductID:     "no_ads",
			ProductType:   models.Ptr(models.ProductNonConsumable),
			ProductStatus: models.ProductActive,
			PriceLabel:    models.Ptr("199 ₽"),
			Price:         models.Ptr(19900),
			Currency:      models.Ptr("RUB"),
			Language:      models.Ptr("ru-RU"),
			Title:         models.Ptr("Remove ads"),
		},
		{
			ProductID:     "premium_monthly",
			ProductType:   models.Ptr(models.ProductSubscription),
			ProductStatus: models.ProductActive,
			PriceLabel:    models.Ptr("299 ₽"),
			Price:         models.Ptr(29900),
			Currency:      models.Ptr("RUB"),
			Language:      models.Ptr("ru-RU"),
			Title:         models.Ptr("Premium"),
			Subscription: &models.Subscription{
				SubscriptionPeriod: &models.Period{Months: 1},
				FreeTrialPeriod:    &models.Period{Days: 7},
				GracePeriod:        &models.Period{Days: 3},
			},
		},
		{
			ProductID:     "legacy_pack",
			ProductType:   models.Ptr(models.ProductConsumable),
			ProductStatus: models.ProductInactive,
			Title:         models.Ptr("Retired pack"),
		},
	}
}
