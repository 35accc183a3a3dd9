package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/example/kaskroutek/internal/models"
)

type seedItem struct {
	name     string
	price    string
	imageURL string
	category models.ToppingCategory
}

var demoBreads = []seedItem{
	{name: "White Bread, Pain Blanc", price: "2.50", imageURL: "https://images.unsplash.com/photo-1509440159596-0249088772ff?w=300&h=200&fit=crop"},
	{name: "Whole Wheat, Pain Complet", price: "3.00", imageURL: "https://images.unsplash.com/photo-1549931319-a545dcf3bc73?w=300&h=200&fit=crop"},
	{name: "Rye Bread, Pain de Seigle", price: "3.50", imageURL: "https://images.unsplash.com/photo-1586444248902-2f64eddc13df?w=300&h=200&fit=crop"},
	{name: "Sourdough, Pain au Levain", price: "4.00", imageURL: "https://images.unsplash.com/photo-1551782450-17144efb9c50?w=300&h=200&fit=crop"},
	{name: "Multigrain, Pain Multi-Céréales", price: "3.75", imageURL: "https://images.unsplash.com/photo-1574323347407-f5e1ad6d020b?w=300&h=200&fit=crop"},
}

var demoToppings = []seedItem{
	{name: "Lettuce, Laitue", price: "0.50", category: models.ToppingSalads, imageURL: "https://images.unsplash.com/photo-1622206151226-18ca2c9ab4a1?w=200&h=200&fit=crop"},
	{name: "Tomato, Tomate", price: "0.75", category: models.ToppingSalads, imageURL: "https://images.unsplash.com/photo-1592924357228-91a4daadcfea?w=200&h=200&fit=crop"},
	{name: "Onion, Oignon", price: "0.50", category: models.ToppingSalads, imageURL: "https://images.unsplash.com/photo-1518977956812-cd3dbadaaf31?w=200&h=200&fit=crop"},
	{name: "Bacon, Bacon", price: "2.00", category: models.ToppingMeats, imageURL: "https://images.unsplash.com/photo-1529692236671-f1f6cf9683ba?w=200&h=200&fit=crop"},
	{name: "Avocado, Avocat", price: "1.50", category: models.ToppingSalads, imageURL: "https://images.unsplash.com/photo-1523049673857-eb18f1d7b578?w=200&h=200&fit=crop"},
	{name: "Extra Cheese, Fromage Supplémentaire", price: "1.00", category: models.ToppingExtra, imageURL: "https://images.unsplash.com/photo-1486297678162-eb2a19b0a32d?w=200&h=200&fit=crop"},
	{name: "Cucumber, Concombre", price: "0.50", category: models.ToppingSalads, imageURL: "https://images.unsplash.com/photo-1449300079323-02e209d9d3a6?w=200&h=200&fit=crop"},
	{name: "Pickles, Cornichons", price: "0.50", category: models.ToppingCondiments, imageURL: "https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b?w=200&h=200&fit=crop"},
	{name: "Jalapeños, Jalapeños", price: "0.75", category: models.ToppingCondiments, imageURL: "https://images.unsplash.com/photo-1609501676725-7186f3a1a2d1?w=200&h=200&fit=crop"},
	{name: "Mushrooms, Champignons", price: "1.25", category: models.ToppingSalads, imageURL: "https://images.unsplash.com/photo-1518977676601-b53f82aba655?w=200&h=200&fit=crop"},
}

// SeedDemoCatalog fills an empty catalog with the demo breads and toppings.
// It does nothing when at least one bread already exists.
func SeedDemoCatalog(ctx context.Context, catalog Catalog) error {
	breads, err := catalog.ListBreads(ctx)
	if err != nil {
		return err
	}
	if len(breads) > 0 {
		return nil
	}

	for _, item := range demoBreads {
		bread := &models.Bread{
			Name:     item.name,
			Price:    decimal.RequireFromString(item.price),
			ImageURL: item.imageURL,
		}
		if err := catalog.CreateBread(ctx, bread); err != nil {
			return err
		}
	}

	for _, item := range demoToppings {
		topping := &models.Topping{
			Name:     item.name,
			Price:    decimal.RequireFromString(item.price),
			ImageURL: item.imageURL,
			Category: item.category,
		}
		if err := catalog.CreateTopping(ctx, topping); err != nil {
			return err
		}
	}
	return nil
}
