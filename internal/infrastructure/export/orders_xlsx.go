// Package export renders admin reports as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/apparel/storefront/internal/domain/order"
	"github.com/tealeg/xlsx"
)

// ContentTypeXLSX is the media type of the workbook
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const timeLayout = "2006-01-02 15:04:05"

var orderHeaders = []string{
	"Order ID", "User ID", "Configuration ID", "Amount", "Currency",
	"Payment Method", "Payment Status", "Paid", "Status", "Tracking ID",
	"Ship To", "City", "Postal Code", "Country", "Phone", "Created At", "Paid At",
}

// OrderSheetWriter writes orders to an xlsx workbook
type OrderSheetWriter struct{}

// NewOrderSheetWriter creates a new OrderSheetWriter
func NewOrderSheetWriter() *OrderSheetWriter {
	return &OrderSheetWriter{}
}

// ContentType returns the media type of the output
func (OrderSheetWriter) ContentType() string {
	return ContentTypeXLSX
}

// WriteOrders writes one "Orders" sheet. Amounts are converted from minor
// to major currency units.
func (OrderSheetWriter) WriteOrders(w io.Writer, orders []order.Order) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("export: add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range orderHeaders {
		header.AddCell().SetString(h)
	}

	for i := range orders {
		o := &orders[i]
		row := sheet.AddRow()
		row.AddCell().SetString(o.ID.String())
		row.AddCell().SetString(o.UserID)
		row.AddCell().SetString(o.ConfigurationID.String())
		amount, _ := o.Amount.Shift(-2).Float64()
		row.AddCell().SetFloat(amount)
		row.AddCell().SetString(o.Currency)
		row.AddCell().SetString(string(o.PaymentMethod))
		row.AddCell().SetString(string(o.PaymentStatus))
		row.AddCell().SetBool(o.IsPaid)
		row.AddCell().SetString(string(o.Status))
		row.AddCell().SetString(o.TrackingID)

		var a order.Address
		if o.ShippingAddress != nil {
			a = *o.ShippingAddress
		}
		row.AddCell().SetString(a.Name)
		row.AddCell().SetString(a.City)
		row.AddCell().SetString(a.PostalCode)
		row.AddCell().SetString(a.Country)
		row.AddCell().SetString(a.PhoneNumber)

		row.AddCell().SetString(o.CreatedAt.Format(timeLayout))
		row.AddCell().SetString(formatTime(o.PaidAt))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}
