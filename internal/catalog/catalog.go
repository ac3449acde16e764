package catalog

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/storefront/internal/domain/models"
)

const dateLayout = "2006-01-02"

// Catalog holds the products on sale in insertion order, keyed by name.
type Catalog struct {
	mu       sync.RWMutex
	products []*models.Product
	byName   map[string]*models.Product
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{byName: make(map[string]*models.Product)}
}

// Add registers a product. Names must be unique within a catalog.
func (c *Catalog) Add(product *models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byName[product.Name()]; exists {
		return fmt.Errorf("product %q already in catalog", product.Name())
	}
	c.products = append(c.products, product)
	c.byName[product.Name()] = product
	return nil
}

// Lookup returns the shared product instance for name.
func (c *Catalog) Lookup(name string) (*models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	product, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrProductNotFound, name)
	}
	return product, nil
}

// All returns every product in insertion order.
func (c *Catalog) All() []*models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// SeedEntry describes a product before its traits are resolved. ExpiresOn uses
// the 2006-01-02 layout and is left empty for goods that never expire; WeightKg
// is zero for goods that are not shipped.
type SeedEntry struct {
	Name      string  `csv:"name"`
	Price     string  `csv:"price"`
	Quantity  int     `csv:"quantity"`
	ExpiresOn string  `csv:"expires_on"`
	WeightKg  float64 `csv:"weight_kg"`
}

// LoadSeed reads seed entries from CSV with the header
// name,price,quantity,expires_on,weight_kg.
func LoadSeed(r io.Reader) ([]SeedEntry, error) {
	var entries []SeedEntry
	if err := gocsv.Unmarshal(r, &entries); err != nil {
		return nil, fmt.Errorf("decode catalog csv: %w", err)
	}
	return entries, nil
}

// Seed resolves the entries into products. An expiry date is midnight at the
// start of that day in loc, so the product can no longer be sold on that day.
// A zero weight means the product is not shipped.
func Seed(entries []SeedEntry, loc *time.Location) (*Catalog, error) {
	if loc == nil {
		loc = time.UTC
	}

	c := New()
	for _, entry := range entries {
		price, err := decimal.NewFromString(entry.Price)
		if err != nil {
			return nil, fmt.Errorf("parse price of %s: %w", entry.Name, err)
		}

		perishability := models.NeverExpires()
		if entry.ExpiresOn != "" {
			day, err := time.ParseInLocation(dateLayout, entry.ExpiresOn, loc)
			if err != nil {
				return nil, fmt.Errorf("parse expiry of %s: %w", entry.Name, err)
			}
			perishability = models.ExpiresOn(day)
		}

		shippability := models.NotShippable()
		if entry.WeightKg != 0 {
			shippability = models.Shippable(entry.WeightKg)
		}

		product, err := models.NewProduct(entry.Name, price, entry.Quantity, perishability, shippability)
		if err != nil {
			return nil, err
		}
		if err := c.Add(product); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// DefaultSeed is the demo catalog: two perishable groceries, a television and
// a scratch card.
func DefaultSeed() []SeedEntry {
	return []SeedEntry{
		{Name: "Cheese 200g", Price: "100", Quantity: 5, ExpiresOn: "2027-12-31", WeightKg: 0.2},
		{Name: "Biscuits 700g", Price: "150", Quantity: 3, ExpiresOn: "2027-12-31", WeightKg: 0.9},
		{Name: "TV", Price: "300", Quantity: 2, WeightKg: 10},
		{Name: "Mobile scratch card", Price: "50", Quantity: 10},
	}
}
