package presentation

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mamadbah2/storefront/internal/domain/models"
)

const separator = "----------------------"

// WriteShipmentNotice renders the grouped shipment summary.
func WriteShipmentNotice(w io.Writer, report models.ShipmentReport) error {
	var b strings.Builder
	b.WriteString("** Shipment notice **\n")
	for _, line := range report.Lines {
		fmt.Fprintf(&b, "%dx %s\n", line.Count, line.Name)
	}
	fmt.Fprintf(&b, "Total package weight %.1fkg\n", report.TotalWeightKg)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteReceipt renders the shipment notice, when there is one, followed by the receipt.
func WriteReceipt(w io.Writer, receipt models.Receipt) error {
	var b strings.Builder
	if receipt.Shipment != nil {
		if err := WriteShipmentNotice(&b, *receipt.Shipment); err != nil {
			return err
		}
		b.WriteString("\n")
	}

	b.WriteString("** Checkout receipt **\n")
	for _, line := range receipt.Lines {
		fmt.Fprintf(&b, "%dx %s %s\n", line.Quantity, line.Name, line.LineTotal.StringFixed(0))
	}
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "Subtotal %s\n", receipt.Subtotal.StringFixed(0))
	fmt.Fprintf(&b, "Shipping %s\n", receipt.ShippingFee.StringFixed(0))
	fmt.Fprintf(&b, "Amount %s\n", receipt.Total.StringFixed(0))
	fmt.Fprintf(&b, "Balance %s\n", receipt.Balance.StringFixed(0))
	b.WriteString("END.\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// Receipt returns the rendered receipt as a string.
func Receipt(receipt models.Receipt) string {
	var b strings.Builder
	_ = WriteReceipt(&b, receipt)
	return b.String()
}

// Rejection turns a failed add or checkout into a message for the shopper.
func Rejection(err error) string {
	var (
		shortage *models.StockShortageError
		expired  *models.ExpiredProductError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, models.ErrEmptyCart):
		return "Cart is empty. Add something first."
	case errors.As(err, &expired):
		return expired.Product + " is expired. Can't checkout."
	case errors.Is(err, models.ErrInsufficientFunds):
		return "Not enough balance to complete checkout."
	case errors.As(err, &shortage):
		return "Not enough stock for: " + shortage.Product
	default:
		return err.Error()
	}
}
