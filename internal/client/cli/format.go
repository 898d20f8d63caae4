package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/campusshop/internal/client/cart"
	"github.com/dmitrijs2005/campusshop/internal/client/checkout"
	"github.com/dmitrijs2005/campusshop/internal/client/models"
	"github.com/shopspring/decimal"
)

const currencySymbol = "₵"

// formatMoney renders d as cedis with two decimals and thousands separators,
// e.g. ₵1,234.50.
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(currencySymbol)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

func variantLabel(name string) string {
	if name == "" {
		return "-"
	}
	return name
}

func printCart(w io.Writer, st cart.State) {
	if st.Empty() {
		fmt.Fprintln(w, "Your cart is empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tPRODUCT\tVARIANT\tQTY\tPRICE\tTOTAL")
	for _, it := range st.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			it.ID, it.ProductName, variantLabel(it.VariantName), it.Quantity,
			formatMoney(it.Price), formatMoney(it.LineTotal()))
	}
	tw.Flush()
	fmt.Fprintf(w, "%d item(s), subtotal %s\n", st.ItemCount, formatMoney(st.Subtotal))
}

func printTotals(w io.Writer, t checkout.Totals) {
	fmt.Fprintf(w, "Subtotal:     %s\n", formatMoney(t.Subtotal))
	fmt.Fprintf(w, "Tax:          %s\n", formatMoney(t.Tax))
	fmt.Fprintf(w, "Shipping:     %s\n", formatMoney(t.Shipping))
	fmt.Fprintf(w, "Total:        %s\n", formatMoney(t.Total))
	fmt.Fprintf(w, "Platform fee: %s (paid by the seller)\n", formatMoney(t.PlatformFee))
}

func paymentLabel(m models.PaymentMethod) string {
	switch m {
	case models.PaymentGatewayCard:
		return "Card / mobile money (Paystack)"
	case models.PaymentBankTransfer:
		return "Bank transfer"
	case models.PaymentCashOnDelivery:
		return "Cash on delivery"
	}
	return string(m)
}

func statusLabel(o models.Order) string {
	if o.StatusDisplay != "" {
		return o.StatusDisplay
	}
	return string(o.Status)
}

func paidLabel(paid bool) string {
	if paid {
		return "paid"
	}
	return "unpaid"
}

func printOrders(w io.Writer, list []models.Order) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No orders found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tDATE\tSTATUS\tPAYMENT\tITEMS\tTOTAL")
	for _, o := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			o.OrderNumber, o.CreatedAt.Format("2006-01-02"), statusLabel(o),
			paidLabel(o.IsPaid), len(o.Items), formatMoney(o.Total))
	}
	tw.Flush()
}

func printOrder(w io.Writer, o *models.Order) {
	fmt.Fprintf(w, "Order %s (%s)\n", o.OrderNumber, statusLabel(*o))
	fmt.Fprintf(w, "Placed:   %s\n", o.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Payment:  %s, %s\n", paymentLabel(o.PaymentMethod), paidLabel(o.IsPaid))
	if o.ShippingAddressDisplay != "" {
		fmt.Fprintf(w, "Ship to:  %s\n", o.ShippingAddressDisplay)
	}
	if o.CustomerNote != "" {
		fmt.Fprintf(w, "Note:     %s\n", o.CustomerNote)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tVARIANT\tSTORE\tQTY\tPRICE\tTOTAL")
	for _, it := range o.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			it.ProductName, variantLabel(it.VariantName), it.StoreName, it.Quantity,
			formatMoney(it.Price), formatMoney(it.Total))
	}
	tw.Flush()

	fmt.Fprintf(w, "Subtotal %s, tax %s, shipping %s, total %s\n",
		formatMoney(o.Subtotal), formatMoney(o.TaxAmount), formatMoney(o.ShippingCost), formatMoney(o.Total))
	if o.Status.Cancellable() {
		fmt.Fprintln(w, "This order can still be cancelled.")
	}
}
