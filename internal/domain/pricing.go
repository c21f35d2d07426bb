package domain

// Fee rates applied on top of the nightly subtotal, in percent.
// Integer math on minor units keeps stored totals free of float rounding.
const (
	ServiceFeePct = 14
	TaxPct        = 12
)

// Quote is the price breakdown for a stay, all in minor units.
type Quote struct {
	Nights     int
	Subtotal   int64
	ServiceFee int64
	Taxes      int64
	Total      int64
}

// PriceStay quotes nights × nightlyPrice plus service fee and taxes.
func PriceStay(nightlyPrice int64, stay DateRange) Quote {
	nights := stay.Nights()
	subtotal := nightlyPrice * int64(nights)
	fee := subtotal * ServiceFeePct / 100
	taxes := subtotal * TaxPct / 100
	return Quote{
		Nights:     nights,
		Subtotal:   subtotal,
		ServiceFee: fee,
		Taxes:      taxes,
		Total:      subtotal + fee + taxes,
	}
}
