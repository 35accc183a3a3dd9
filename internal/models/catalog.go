package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/kaskroutek/internal/utils"
)

// ToppingCategory groups toppings on the sandwich builder.
type ToppingCategory string

const (
	ToppingSalads     ToppingCategory = "salads"
	ToppingMeats      ToppingCategory = "meats"
	ToppingCondiments ToppingCategory = "condiments"
	ToppingExtra      ToppingCategory = "extra"
)

// Valid reports whether c is a known category.
func (c ToppingCategory) Valid() bool {
	switch c {
	case ToppingSalads, ToppingMeats, ToppingCondiments, ToppingExtra:
		return true
	}
	return false
}

// Bread is a sandwich base. Name is stored as "English, French".
type Bread struct {
	BaseModel
	Name     string          `gorm:"not null" json:"name"`
	NameEn   string          `gorm:"-" json:"name_en"`
	NameFr   string          `gorm:"-" json:"name_fr"`
	Price    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	ImageURL string          `json:"image_url,omitempty"`
}

// FillNames splits the stored bilingual name into NameEn and NameFr.
func (b *Bread) FillNames() {
	b.NameEn, b.NameFr = utils.ParseBilingualName(b.Name)
}

func (b *Bread) AfterFind(tx *gorm.DB) error {
	b.FillNames()
	return nil
}

// Topping is an addition to a sandwich.
type Topping struct {
	BaseModel
	Name     string          `gorm:"not null" json:"name"`
	NameEn   string          `gorm:"-" json:"name_en"`
	NameFr   string          `gorm:"-" json:"name_fr"`
	Price    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	ImageURL string          `json:"image_url,omitempty"`
	Category ToppingCategory `gorm:"size:32;not null" json:"category"`
}

// FillNames splits the stored bilingual name into NameEn and NameFr.
func (t *Topping) FillNames() {
	t.NameEn, t.NameFr = utils.ParseBilingualName(t.Name)
}

func (t *Topping) AfterFind(tx *gorm.DB) error {
	t.FillNames()
	return nil
}
