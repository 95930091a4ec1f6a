// internal/models/product.go
package models

import (
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Category struct {
	Main string `json:"main" gorm:"size:100;not null;index:idx_products_category"`
	Sub  string `json:"sub" gorm:"size:100;not null;index:idx_products_category"`
	Path string `json:"path" gorm:"size:201"`
}

type Pricing struct {
	Cost      float64 `json:"cost" gorm:"type:decimal(12,2);not null"`
	Retail    float64 `json:"retail" gorm:"type:decimal(12,2);not null"`
	Wholesale float64 `json:"wholesale" gorm:"type:decimal(12,2);default:0"`
	Currency  string  `json:"currency" gorm:"size:3;default:'USD'"`
}

type Specifications struct {
	Brand     string `json:"brand,omitempty" gorm:"size:100"`
	Model     string `json:"model,omitempty" gorm:"size:100"`
	Color     string `json:"color,omitempty" gorm:"size:50"`
	Storage   string `json:"storage,omitempty" gorm:"size:50"`
	Technical JSONB  `json:"technical,omitempty" gorm:"type:jsonb"`
}

type Product struct {
	BaseModel
	SKU            string         `json:"sku" gorm:"size:64;not null;uniqueIndex"`
	Name           string         `json:"name" gorm:"size:255;not null"`
	Description    string         `json:"description" gorm:"type:text"`
	Category       Category       `json:"category" gorm:"embedded;embeddedPrefix:category_"`
	Specifications Specifications `json:"specifications" gorm:"embedded;embeddedPrefix:spec_"`
	Pricing        Pricing        `json:"pricing" gorm:"embedded;embeddedPrefix:price_"`
	Tags           pq.StringArray `json:"tags" gorm:"type:text[]"`
	Status         ProductStatus  `json:"status" gorm:"type:varchar(20);default:'active';index"`
}

// NormalizeSKU trims and upper-cases a SKU.
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// Normalize applies the derived and defaulted fields of a product.
func (p *Product) Normalize() {
	p.SKU = NormalizeSKU(p.SKU)
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	if p.Category.Main != "" && p.Category.Sub != "" {
		p.Category.Path = p.Category.Main + "/" + p.Category.Sub
	}
	if p.Pricing.Currency == "" {
		p.Pricing.Currency = DefaultCurrency
	}
	if p.Status == "" {
		p.Status = ProductStatusActive
	}
}

func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.Normalize()
	return nil
}

// Clone returns a copy that shares no mutable state with p.
func (p *Product) Clone() *Product {
	c := *p
	if p.Tags != nil {
		c.Tags = append(pq.StringArray(nil), p.Tags...)
	}
	if p.Specifications.Technical != nil {
		c.Specifications.Technical = make(JSONB, len(p.Specifications.Technical))
		for k, v := range p.Specifications.Technical {
			c.Specifications.Technical[k] = v
		}
	}
	return &c
}
