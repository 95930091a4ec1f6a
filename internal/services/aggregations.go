// internal/services/aggregations.go
package services

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/javajoker/inventory-backend/internal/models"
	"github.com/javajoker/inventory-backend/internal/repository"
	"github.com/javajoker/inventory-backend/internal/utils"
)

const topWarehouseProducts = 5

var (
	inventoryValueWeight = decimal.NewFromFloat(0.4)
	marginWeight         = decimal.NewFromFloat(0.3)
	efficiencyWeight     = decimal.NewFromFloat(0.3)
)

type CategoryKey struct {
	MainCategory string `json:"main_category"`
	SubCategory  string `json:"sub_category"`
}

type CategoryValue struct {
	Category               CategoryKey `json:"category"`
	TotalProducts          int         `json:"total_products"`
	TotalStock             int         `json:"total_stock"`
	TotalAvailable         int         `json:"total_available"`
	TotalValueCost         float64     `json:"total_value_cost"`
	TotalValueRetail       float64     `json:"total_value_retail"`
	PotentialProfit        float64     `json:"potential_profit"`
	AvgStockPerProduct     float64     `json:"avg_stock_per_product"`
	LowStockProducts       int         `json:"low_stock_products"`
	OutOfStockProducts     int         `json:"out_of_stock_products"`
	StockTurnoverPotential float64     `json:"stock_turnover_potential"`
}

type ProductPerformance struct {
	ProductID        string             `json:"product_id"`
	SKU              string             `json:"sku"`
	Name             string             `json:"name"`
	Category         models.Category    `json:"category"`
	Pricing          models.Pricing     `json:"pricing"`
	InventoryValue   float64            `json:"inventory_value"`
	ProfitMargin     float64            `json:"profit_margin"`
	StockEfficiency  float64            `json:"stock_efficiency"`
	TotalStock       int                `json:"total_stock"`
	TotalAvailable   int                `json:"total_available"`
	StockAlerts      models.StockAlerts `json:"stock_alerts"`
	PerformanceScore float64            `json:"performance_score"`
}

type WarehouseProduct struct {
	Category string  `json:"category"`
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Value    float64 `json:"value"`
}

type WarehouseSummary struct {
	WarehouseName    string             `json:"warehouse_name"`
	TotalProducts    int                `json:"total_products"`
	TotalQuantity    int                `json:"total_quantity"`
	TotalAvailable   int                `json:"total_available"`
	TotalReserved    int                `json:"total_reserved"`
	TotalValue       float64            `json:"total_value"`
	UtilizationRate  float64            `json:"utilization_rate"`
	CategoriesCount  int                `json:"categories_count"`
	Categories       []string           `json:"categories"`
	TopValueProducts []WarehouseProduct `json:"top_value_products"`
}

type AlertsSummary struct {
	TotalProducts   int `json:"total_products"`
	LowStockCount   int `json:"low_stock_count"`
	OutOfStockCount int `json:"out_of_stock_count"`
	OverstockCount  int `json:"overstock_count"`
}

type WarehouseDashboard struct {
	Warehouses    []WarehouseSummary `json:"warehouses"`
	AlertsSummary AlertsSummary      `json:"alerts_summary"`
}

// ParseReportLimit reads a top-N limit. Empty means def; anything that is
// not a positive integer is rejected.
func ParseReportLimit(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, validationError("limit must be a positive integer, got %q", raw)
	}
	return n, nil
}

// BuildCategoryValueReport groups joined rows by main and sub category.
// Rows without a product are skipped. An empty mainCategory keeps all groups.
func BuildCategoryValueReport(rows []repository.StockRow, mainCategory string) []CategoryValue {
	type acc struct {
		out    CategoryValue
		cost   decimal.Decimal
		retail decimal.Decimal
	}
	groups := make(map[CategoryKey]*acc)
	var order []CategoryKey

	for _, row := range rows {
		if row.Product == nil || !matchesCategory(row.Product, mainCategory) {
			continue
		}
		key := CategoryKey{MainCategory: row.Product.Category.Main, SubCategory: row.Product.Category.Sub}
		g, ok := groups[key]
		if !ok {
			g = &acc{out: CategoryValue{Category: key}}
			groups[key] = g
			order = append(order, key)
		}

		r := row.Record
		g.out.TotalProducts++
		g.out.TotalStock += r.TotalStock
		g.out.TotalAvailable += r.TotalAvailable
		g.cost = g.cost.Add(utils.Money(r.TotalStock, row.Product.Pricing.Cost))
		g.retail = g.retail.Add(utils.Money(r.TotalStock, row.Product.Pricing.Retail))
		if r.StockAlerts.LowStock {
			g.out.LowStockProducts++
		}
		if r.StockAlerts.OutOfStock {
			g.out.OutOfStockProducts++
		}
	}

	report := make([]CategoryValue, 0, len(order))
	for _, key := range order {
		g := groups[key]
		g.out.TotalValueCost = g.cost.RoundBank(2).InexactFloat64()
		g.out.TotalValueRetail = g.retail.RoundBank(2).InexactFloat64()
		g.out.PotentialProfit = g.retail.Sub(g.cost).RoundBank(2).InexactFloat64()
		g.out.AvgStockPerProduct = decimal.NewFromInt(int64(g.out.TotalStock)).
			Div(decimal.NewFromInt(int64(g.out.TotalProducts))).RoundBank(2).InexactFloat64()
		g.out.StockTurnoverPotential = utils.Ratio(float64(g.out.TotalStock), float64(g.out.TotalAvailable))
		report = append(report, g.out)
	}

	sort.SliceStable(report, func(i, j int) bool {
		return report[i].TotalValueRetail > report[j].TotalValueRetail
	})
	return report
}

// BuildTopProducts scores every joined product and keeps the best limit.
func BuildTopProducts(rows []repository.StockRow, mainCategory string, limit int) []ProductPerformance {
	type scored struct {
		out   ProductPerformance
		score decimal.Decimal
	}
	var all []scored

	for _, row := range rows {
		if row.Product == nil || !matchesCategory(row.Product, mainCategory) {
			continue
		}
		p, r := row.Product, row.Record

		value := utils.Money(r.TotalStock, p.Pricing.Retail)
		margin := decimal.Zero
		if p.Pricing.Retail != 0 {
			retail := decimal.NewFromFloat(p.Pricing.Retail)
			margin = retail.Sub(decimal.NewFromFloat(p.Pricing.Cost)).Div(retail).Mul(decimal.NewFromInt(100))
		}
		efficiency := decimal.NewFromFloat(utils.Percent(float64(r.TotalAvailable), float64(r.TotalStock)))

		score := value.Mul(inventoryValueWeight).
			Add(margin.Mul(marginWeight)).
			Add(efficiency.Mul(efficiencyWeight))

		all = append(all, scored{
			score: score,
			out: ProductPerformance{
				ProductID:        p.ID.String(),
				SKU:              p.SKU,
				Name:             p.Name,
				Category:         p.Category,
				Pricing:          p.Pricing,
				InventoryValue:   value.RoundBank(2).InexactFloat64(),
				ProfitMargin:     margin.RoundBank(2).InexactFloat64(),
				StockEfficiency:  efficiency.RoundBank(2).InexactFloat64(),
				TotalStock:       r.TotalStock,
				TotalAvailable:   r.TotalAvailable,
				StockAlerts:      r.StockAlerts,
				PerformanceScore: score.RoundBank(2).InexactFloat64(),
			},
		})
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].score.GreaterThan(all[j].score)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	report := make([]ProductPerformance, 0, len(all))
	for _, s := range all {
		report = append(report, s.out)
	}
	return report
}

// BuildWarehouseDashboard groups allocations by warehouse name. The alert
// summary counts every stock record, joined or not. An empty warehouse keeps
// all groups.
func BuildWarehouseDashboard(rows []repository.StockRow, warehouse string) WarehouseDashboard {
	type acc struct {
		out        WarehouseSummary
		value      decimal.Decimal
		categories map[string]struct{}
		products   []WarehouseProduct
		values     []decimal.Decimal
	}
	groups := make(map[string]*acc)
	var order []string
	var alerts AlertsSummary

	for _, row := range rows {
		r := row.Record
		alerts.TotalProducts++
		if r.StockAlerts.LowStock {
			alerts.LowStockCount++
		}
		if r.StockAlerts.OutOfStock {
			alerts.OutOfStockCount++
		}
		if r.StockAlerts.Overstock {
			alerts.OverstockCount++
		}

		if row.Product == nil {
			continue
		}
		for _, w := range r.Warehouses {
			if warehouse != "" && w.WarehouseName != warehouse {
				continue
			}
			g, ok := groups[w.WarehouseName]
			if !ok {
				g = &acc{
					out:        WarehouseSummary{WarehouseName: w.WarehouseName},
					categories: make(map[string]struct{}),
				}
				groups[w.WarehouseName] = g
				order = append(order, w.WarehouseName)
			}

			value := utils.Money(w.Quantity, row.Product.Pricing.Retail)
			g.out.TotalProducts++
			g.out.TotalQuantity += w.Quantity
			g.out.TotalAvailable += w.Available
			g.out.TotalReserved += w.Reserved
			g.value = g.value.Add(value)
			g.categories[row.Product.Category.Main] = struct{}{}
			g.products = append(g.products, WarehouseProduct{
				Category: row.Product.Category.Main,
				SKU:      row.Product.SKU,
				Name:     row.Product.Name,
				Quantity: w.Quantity,
				Value:    value.RoundBank(2).InexactFloat64(),
			})
			g.values = append(g.values, value)
		}
	}

	summaries := make([]WarehouseSummary, 0, len(order))
	values := make(map[string]decimal.Decimal, len(order))
	for _, name := range order {
		g := groups[name]
		g.out.TotalValue = g.value.RoundBank(2).InexactFloat64()
		g.out.UtilizationRate = utils.Round2(utils.Percent(float64(g.out.TotalReserved), float64(g.out.TotalQuantity)))

		g.out.Categories = make([]string, 0, len(g.categories))
		for c := range g.categories {
			g.out.Categories = append(g.out.Categories, c)
		}
		sort.Strings(g.out.Categories)
		g.out.CategoriesCount = len(g.out.Categories)

		g.out.TopValueProducts = topByValue(g.products, g.values, topWarehouseProducts)
		values[name] = g.value
		summaries = append(summaries, g.out)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return values[summaries[i].WarehouseName].GreaterThan(values[summaries[j].WarehouseName])
	})

	return WarehouseDashboard{Warehouses: summaries, AlertsSummary: alerts}
}

func topByValue(products []WarehouseProduct, values []decimal.Decimal, n int) []WarehouseProduct {
	idx := make([]int, len(products))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]].GreaterThan(values[idx[b]])
	})
	if len(idx) > n {
		idx = idx[:n]
	}

	top := make([]WarehouseProduct, 0, len(idx))
	for _, i := range idx {
		top = append(top, products[i])
	}
	return top
}

func matchesCategory(p *models.Product, mainCategory string) bool {
	return mainCategory == "" || strings.EqualFold(p.Category.Main, mainCategory)
}
