package order

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Customer is the account holder printed on an invoice.
type Customer struct {
	Name  string
	Email string
}

const invoiceDateLayout = "2 January 2006, 03:04 PM"

// WriteInvoice renders a plain-text invoice for o.
func WriteInvoice(w io.Writer, o Order, c Customer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "FreshMart Invoice")
	fmt.Fprintln(bw, "=================")
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "Order ID: %s\n", o.ID)
	fmt.Fprintf(bw, "Order Date: %s\n", o.CreatedAt.Format(invoiceDateLayout))
	if c.Name != "" {
		fmt.Fprintf(bw, "Customer: %s\n", c.Name)
	}
	if c.Email != "" {
		fmt.Fprintf(bw, "Email: %s\n", c.Email)
	}
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "Delivery Address:")
	fmt.Fprintln(bw, o.DeliveryAddress)
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "Items:")
	fmt.Fprintln(bw, "------")
	for _, it := range o.Items {
		fmt.Fprintf(bw, "%s x%d - ₹%s\n", it.Name, it.Quantity, it.LineTotal().StringFixed(2))
	}
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "Total Amount: ₹%s\n", o.TotalAmount.StringFixed(2))
	fmt.Fprintf(bw, "Payment Method: %s\n", strings.ToUpper(string(o.PaymentMethod)))
	fmt.Fprintf(bw, "Status: %s\n", strings.ToUpper(string(o.Status)))
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "Thank you for shopping with FreshMart!")

	return bw.Flush()
}

// InvoiceFilename is the download name used for an order's invoice.
func InvoiceFilename(o Order) string {
	return "FreshMart-Invoice-" + o.ID + ".txt"
}
