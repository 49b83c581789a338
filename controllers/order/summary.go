package orderControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/natrenakres/prostore/models"
	"gorm.io/gorm"
)

type SalesDatum struct {
	Month      string  `json:"month"`
	TotalSales float64 `json:"total_sales"`
}

type OrderSummary struct {
	OrdersCount   int64          `json:"orders_count"`
	ProductsCount int64          `json:"products_count"`
	UsersCount    int64          `json:"users_count"`
	TotalSales    float64        `json:"total_sales"`
	SalesData     []SalesDatum   `json:"sales_data"`
	LatestOrders  []models.Order `json:"latest_orders"`
}

// GetOrderSummary collects the counts and sales figures for the admin
// overview page.
func GetOrderSummary(db *gorm.DB) (*OrderSummary, error) {
	var summary OrderSummary

	if err := db.Model(&models.Order{}).Count(&summary.OrdersCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Product{}).Count(&summary.ProductsCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Count(&summary.UsersCount).Error; err != nil {
		return nil, err
	}

	var total struct{ Total float64 }
	if err := db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_price), 0) AS total").
		Scan(&total).Error; err != nil {
		return nil, err
	}
	summary.TotalSales = total.Total

	// Postgres only; the admin overview is not exercised by the sqlite tests.
	if err := db.Model(&models.Order{}).
		Select("to_char(created_at, 'MM/YY') AS month, SUM(total_price) AS total_sales").
		Group("month").
		Order("month").
		Scan(&summary.SalesData).Error; err != nil {
		return nil, err
	}

	if err := db.
		Preload("User").
		Order("created_at DESC").
		Limit(6).
		Find(&summary.LatestOrders).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

// GET /admin/overview
func GetOrderSummaryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := GetOrderSummary(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to build summary"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Summary fetched", "data": summary})
	}
}
