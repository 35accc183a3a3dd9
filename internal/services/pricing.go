package services

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/kaskroutek/internal/i18n"
	"github.com/example/kaskroutek/internal/models"
	"github.com/example/kaskroutek/internal/utils"
)

// ComputeItemPrice prices one sandwich: the bread (twice for double bread) plus every topping.
func ComputeItemPrice(bread models.Bread, isDoubleBread bool, toppings []models.Topping) decimal.Decimal {
	total := bread.Price
	if isDoubleBread {
		total = total.Mul(decimal.NewFromInt(2))
	}
	for _, topping := range toppings {
		total = total.Add(topping.Price)
	}
	return total.Round(2)
}

// DescribeSandwich renders "Bread + double pate with a, b" in the requested language.
func DescribeSandwich(breadName string, isDoubleBread bool, toppingNames []string, lang i18n.Language) string {
	var b strings.Builder
	b.WriteString(utils.LocalizedName(breadName, lang))
	if isDoubleBread {
		b.WriteString(" + double pate")
	}
	b.WriteString(" with ")

	names := make([]string, len(toppingNames))
	for i, name := range toppingNames {
		names[i] = utils.LocalizedName(name, lang)
	}
	b.WriteString(strings.Join(names, ", "))
	return b.String()
}
