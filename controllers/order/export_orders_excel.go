package orderControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/natrenakres/prostore/models"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// GET /admin/orders/export-excel
func ExportOrdersToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.Preload("User").Order("created_at DESC").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch orders"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Orders")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create Excel sheet"})
			return
		}

		// Header row
		headers := []string{
			"OrderRef", "Buyer", "Email", "PaymentMethod",
			"ItemsPrice", "ShippingPrice", "TaxPrice", "TotalPrice",
			"Paid", "PaidAt", "Delivered", "DeliveredAt", "CreatedAt",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		// Data rows
		for _, o := range orders {
			row := sheet.AddRow()

			row.AddCell().SetValue(o.OrderRef)
			row.AddCell().SetValue(o.User.Name)
			row.AddCell().SetValue(o.User.Email)
			row.AddCell().SetValue(o.PaymentMethod)
			row.AddCell().SetValue(o.ItemsPrice)
			row.AddCell().SetValue(o.ShippingPrice)
			row.AddCell().SetValue(o.TaxPrice)
			row.AddCell().SetValue(o.TotalPrice)
			row.AddCell().SetValue(o.IsPaid)
			if o.PaidAt != nil {
				row.AddCell().SetValue(o.PaidAt.Format("2006-01-02 15:04:05"))
			} else {
				row.AddCell().SetValue("")
			}
			row.AddCell().SetValue(o.IsDelivered)
			if o.DeliveredAt != nil {
				row.AddCell().SetValue(o.DeliveredAt.Format("2006-01-02 15:04:05"))
			} else {
				row.AddCell().SetValue("")
			}
			row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		// Set response headers for download
		c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to write Excel file"})
			return
		}
	}
}
