// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/inventory-backend/internal/config"
	"github.com/javajoker/inventory-backend/internal/models"
	"github.com/javajoker/inventory-backend/internal/repository"
)

// ProductService owns the catalog and keeps every product paired with
// exactly one stock record.
type ProductService struct {
	store               repository.Store
	defaultReorderPoint int
	defaultMaxStock     int
}

type CategoryInput struct {
	Main string `json:"main" validate:"required,max=100"`
	Sub  string `json:"sub" validate:"required,max=100"`
}

type PricingInput struct {
	Cost      float64 `json:"cost" validate:"gte=0"`
	Retail    float64 `json:"retail" validate:"gte=0"`
	Wholesale float64 `json:"wholesale" validate:"gte=0"`
	Currency  string  `json:"currency,omitempty" validate:"omitempty,len=3"`
}

type CreateProductRequest struct {
	SKU            string                `json:"sku" validate:"required,sku"`
	Name           string                `json:"name" validate:"required,max=255"`
	Description    string                `json:"description,omitempty"`
	Category       CategoryInput         `json:"category"`
	Pricing        PricingInput          `json:"pricing"`
	Specifications models.Specifications `json:"specifications,omitempty"`
	Tags           []string              `json:"tags,omitempty"`
	Status         models.ProductStatus  `json:"status,omitempty" validate:"omitempty,oneof=active inactive discontinued"`
	ReorderPoint   *int                  `json:"reorder_point,omitempty" validate:"omitempty,gte=0"`
	MaxStock       *int                  `json:"max_stock,omitempty" validate:"omitempty,gte=0"`
}

type UpdateProductRequest struct {
	SKU            *string                `json:"sku,omitempty" validate:"omitempty,sku"`
	Name           *string                `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description    *string                `json:"description,omitempty"`
	Category       *CategoryInput         `json:"category,omitempty"`
	Pricing        *PricingInput          `json:"pricing,omitempty"`
	Specifications *models.Specifications `json:"specifications,omitempty"`
	Tags           []string               `json:"tags,omitempty"`
	Status         *models.ProductStatus  `json:"status,omitempty" validate:"omitempty,oneof=active inactive discontinued"`
}

type ProductListParams struct {
	Page     int
	Limit    int
	Category string
	Status   string
	Search   string
}

// ProductWithStock is a product together with its stock record.
type ProductWithStock struct {
	*models.Product
	Inventory *models.StockRecord `json:"inventory,omitempty"`
}

func NewProductService(store repository.Store, cfg config.InventoryConfig) *ProductService {
	return &ProductService{
		store:               store,
		defaultReorderPoint: cfg.DefaultReorderPoint,
		defaultMaxStock:     cfg.DefaultMaxStock,
	}
}

// CreateProduct stores the product and its empty stock record together.
func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductWithStock, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	product := &models.Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Category: models.Category{
			Main: strings.TrimSpace(req.Category.Main),
			Sub:  strings.TrimSpace(req.Category.Sub),
		},
		Pricing: models.Pricing{
			Cost:      req.Pricing.Cost,
			Retail:    req.Pricing.Retail,
			Wholesale: req.Pricing.Wholesale,
			Currency:  strings.ToUpper(req.Pricing.Currency),
		},
		Specifications: req.Specifications,
		Tags:           pq.StringArray(req.Tags),
		Status:         req.Status,
	}
	product.ID = uuid.New()
	product.Normalize()

	reorderPoint, maxStock := s.defaultReorderPoint, s.defaultMaxStock
	if req.ReorderPoint != nil {
		reorderPoint = *req.ReorderPoint
	}
	if req.MaxStock != nil {
		maxStock = *req.MaxStock
	}
	record := models.NewStockRecord(product, reorderPoint, maxStock)

	if err := s.store.CreateProductWithStock(ctx, product, record); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validationError("product with SKU %s already exists", product.SKU)
		}
		return nil, storeError(err, "product")
	}

	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"record_id":  record.ID,
		"sku":        product.SKU,
	}).Info("Product created")

	return &ProductWithStock{Product: product, Inventory: record}, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductWithStock, error) {
	product, err := s.store.LoadProduct(ctx, id)
	if err != nil {
		return nil, storeError(err, "product")
	}

	result := &ProductWithStock{Product: product}
	record, err := s.store.LoadStockRecordByProduct(ctx, id)
	switch {
	case err == nil:
		result.Inventory = record
	case errors.Is(err, repository.ErrNotFound):
		logrus.WithField("product_id", id).Warn("Product has no stock record")
	default:
		return nil, storeError(err, "inventory")
	}
	return result, nil
}

func (s *ProductService) ListProducts(ctx context.Context, params ProductListParams) ([]models.Product, int64, error) {
	status := models.ProductStatus(strings.TrimSpace(params.Status))
	if status != "" && !status.Valid() {
		return nil, 0, validationError("status must be one of: active inactive discontinued")
	}

	products, total, err := s.store.ListProducts(ctx, repository.ProductFilter{
		Page:     repository.Page{Page: params.Page, Limit: params.Limit},
		Category: strings.TrimSpace(params.Category),
		Status:   status,
		Search:   strings.TrimSpace(params.Search),
	})
	if err != nil {
		return nil, 0, storeError(err, "product")
	}
	return products, total, nil
}

// UpdateProduct applies a partial update. A SKU change is written to the
// paired stock record in the same unit of work.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*ProductWithStock, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	product, err := s.store.LoadProduct(ctx, id)
	if err != nil {
		return nil, storeError(err, "product")
	}

	if req.SKU != nil {
		product.SKU = *req.SKU
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Category != nil {
		product.Category = models.Category{
			Main: strings.TrimSpace(req.Category.Main),
			Sub:  strings.TrimSpace(req.Category.Sub),
		}
	}
	if req.Pricing != nil {
		product.Pricing = models.Pricing{
			Cost:      req.Pricing.Cost,
			Retail:    req.Pricing.Retail,
			Wholesale: req.Pricing.Wholesale,
			Currency:  strings.ToUpper(req.Pricing.Currency),
		}
	}
	if req.Specifications != nil {
		product.Specifications = *req.Specifications
	}
	if req.Tags != nil {
		product.Tags = pq.StringArray(req.Tags)
	}
	if req.Status != nil {
		product.Status = *req.Status
	}
	product.Normalize()

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validationError("product with SKU %s already exists", product.SKU)
		}
		return nil, storeError(err, "product")
	}

	return s.GetProduct(ctx, id)
}

func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteProductCascade(ctx, id); err != nil {
		return storeError(err, "product")
	}
	logrus.WithField("product_id", id).Info("Product deleted with its stock record")
	return nil
}
