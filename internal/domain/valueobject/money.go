package valueobject

import "fmt"

// Ставки в базисных пунктах: 3% сбор за обработку и 8.25% налог.
const (
	ProcessingFeeBasisPoints int64 = 300
	TaxBasisPoints           int64 = 825
)

// Totals итог корзины в центах.
type Totals struct {
	Subtotal      int64 `json:"subtotal"`
	ProcessingFee int64 `json:"processing_fee"`
	Tax           int64 `json:"tax"`
	Total         int64 `json:"total"`
}

// CalculateTotals считает сумму корзины по ценам дел.
// Сбор и налог берутся от subtotal и округляются к ближайшему центу, половина вверх.
func CalculateTotals(prices []int64) Totals {
	var subtotal int64
	for _, p := range prices {
		subtotal += p
	}

	fee := applyBasisPoints(subtotal, ProcessingFeeBasisPoints)
	tax := applyBasisPoints(subtotal, TaxBasisPoints)

	return Totals{
		Subtotal:      subtotal,
		ProcessingFee: fee,
		Tax:           tax,
		Total:         subtotal + fee + tax,
	}
}

func applyBasisPoints(amount, bp int64) int64 {
	if amount <= 0 {
		return 0
	}
	return (amount*bp + 5000) / 10000
}

// FormatCents форматирует сумму в центах как доллары.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
