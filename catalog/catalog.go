// Package catalog describes the products the storefront shows. It is display
// data only: cart lines are never checked against it.
package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FallbackIcon is shown for products without an icon of their own.
const FallbackIcon = "📦"

//go:embed catalog.yaml
var defaultCatalog []byte

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Icon        string          `json:"icon"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

type Catalog struct {
	Currency string
	products []Product
	byID     map[string]int
}

type document struct {
	Currency string `yaml:"currency"`
	Products []struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Category    string `yaml:"category"`
		Icon        string `yaml:"icon"`
		Price       string `yaml:"price"`
		Description string `yaml:"description"`
	} `yaml:"products"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f)
}

func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		Currency: doc.Currency,
		byID:     make(map[string]int, len(doc.Products)),
	}
	if c.Currency == "" {
		c.Currency = "USD"
	}

	for i, p := range doc.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog product %d has no id", i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog product %q listed twice", p.ID)
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("catalog product %q: invalid price %q", p.ID, p.Price)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("catalog product %q: negative price", p.ID)
		}

		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, Product{
			ID:          p.ID,
			Name:        p.Name,
			Category:    p.Category,
			Icon:        p.Icon,
			Price:       price,
			Description: p.Description,
		})
	}
	return c, nil
}

// Products lists the catalog in file order. An empty category means all.
func (c *Catalog) Products(category string) []Product {
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) Get(id string) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Icon returns the product's icon, or FallbackIcon for unknown products.
func (c *Catalog) Icon(id string) string {
	if p, ok := c.Get(id); ok && p.Icon != "" {
		return p.Icon
	}
	return FallbackIcon
}

// Categories lists category names in order of first appearance.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}
