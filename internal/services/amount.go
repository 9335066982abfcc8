package services

import (
	"github.com/shopspring/decimal"
)

// MaxDonationMinorUnits - верхняя граница суммы в центах (лимит Stripe для usd: 999 999.99)
const MaxDonationMinorUnits int64 = 99_999_999

var maxDonation = decimal.NewFromInt(MaxDonationMinorUnits)

// ToMinorUnits переводит сумму в основных единицах в целые центы с округлением
// половины от нуля на третьем знаке: 12.345 -> 1235, 10 -> 1000.
// ok == false, если результат не положителен или больше MaxDonationMinorUnits;
// проверка идет до IntPart, поэтому переполнение int64 невозможно.
func ToMinorUnits(amount decimal.Decimal) (cents int64, ok bool) {
	rounded := amount.Shift(2).Round(0)
	if !rounded.IsPositive() || rounded.GreaterThan(maxDonation) {
		return 0, false
	}
	return rounded.IntPart(), true
}
