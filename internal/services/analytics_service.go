// internal/services/analytics_service.go
package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/inventory-backend/internal/repository"
)

// Report names accepted by Archive.
const (
	ReportInventoryValueByCategory = "inventory-value-by-category"
	ReportTopProductsAnalysis      = "top-products-analysis"
	ReportWarehouseDashboard       = "warehouse-dashboard"
)

// AnalyticsService recomputes every report from a fresh snapshot on each call.
type AnalyticsService struct {
	store      repository.Store
	archiver   *ReportArchiver
	defaultTop int
}

type ReportParams struct {
	Category  string
	Warehouse string
	Limit     string
}

func NewAnalyticsService(store repository.Store, archiver *ReportArchiver, defaultTop int) *AnalyticsService {
	return &AnalyticsService{store: store, archiver: archiver, defaultTop: defaultTop}
}

func (s *AnalyticsService) InventoryValueByCategory(ctx context.Context, category string) ([]CategoryValue, error) {
	rows, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCategoryValueReport(rows, strings.TrimSpace(category)), nil
}

// TopProductsAnalysis returns the report and the limit that was applied.
func (s *AnalyticsService) TopProductsAnalysis(ctx context.Context, rawLimit, category string) ([]ProductPerformance, int, error) {
	limit, err := ParseReportLimit(rawLimit, s.defaultTop)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.snapshot(ctx)
	if err != nil {
		return nil, 0, err
	}
	return BuildTopProducts(rows, strings.TrimSpace(category), limit), limit, nil
}

func (s *AnalyticsService) WarehouseDashboard(ctx context.Context, warehouse string) (*WarehouseDashboard, error) {
	rows, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	dashboard := BuildWarehouseDashboard(rows, strings.TrimSpace(warehouse))
	return &dashboard, nil
}

// Archive computes the named report and stores it as a JSON document.
func (s *AnalyticsService) Archive(ctx context.Context, report string, params ReportParams) (*ArchiveResult, error) {
	var (
		payload interface{}
		err     error
	)
	switch report {
	case ReportInventoryValueByCategory:
		payload, err = s.InventoryValueByCategory(ctx, params.Category)
	case ReportTopProductsAnalysis:
		payload, _, err = s.TopProductsAnalysis(ctx, params.Limit, params.Category)
	case ReportWarehouseDashboard:
		payload, err = s.WarehouseDashboard(ctx, params.Warehouse)
	default:
		return nil, notFoundError("report %q not found", report)
	}
	if err != nil {
		return nil, err
	}

	result, err := s.archiver.Store(ctx, report, time.Now(), payload)
	if err != nil {
		return nil, &ServiceError{Kind: KindStorageUnavailable, Message: "failed to archive report", Err: err}
	}

	logrus.WithFields(logrus.Fields{
		"report": report,
		"key":    result.Key,
		"size":   result.Size,
	}).Info("Report archived")
	return result, nil
}

func (s *AnalyticsService) snapshot(ctx context.Context) ([]repository.StockRow, error) {
	rows, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, storeError(err, "inventory")
	}
	return rows, nil
}
