package services

import (
	"testing"

	"github.com/example/kaskroutek/internal/i18n"
	"github.com/example/kaskroutek/internal/models"
)

func TestComputeItemPrice(t *testing.T) {
	bread := models.Bread{Price: dec("2.50")}
	toppings := []models.Topping{{Price: dec("0.75")}, {Price: dec("1.25")}}

	if got := ComputeItemPrice(bread, false, toppings); !got.Equal(dec("4.50")) {
		t.Fatalf("single bread: got %s", got)
	}
	if got := ComputeItemPrice(bread, true, toppings); !got.Equal(dec("7.00")) {
		t.Fatalf("double bread: got %s", got)
	}
	if got := ComputeItemPrice(bread, false, nil); !got.Equal(dec("2.50")) {
		t.Fatalf("no toppings: got %s", got)
	}
}

func TestDescribeSandwich(t *testing.T) {
	got := DescribeSandwich("White Bread, Pain Blanc", true, []string{"Tomato, Tomate", "Bacon"}, i18n.French)
	if want := "Pain Blanc + double pate with Tomate, Bacon"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	got = DescribeSandwich("White Bread, Pain Blanc", false, []string{"Tomato, Tomate"}, i18n.English)
	if want := "White Bread with Tomato"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
