package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/example/kaskroutek/internal/models"
	"github.com/example/kaskroutek/internal/services"
	"github.com/example/kaskroutek/internal/store"
	"github.com/example/kaskroutek/internal/utils"
)

// CatalogHandler manages breads and toppings.
type CatalogHandler struct {
	catalog store.Catalog
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog store.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type catalogItemRequest struct {
	Name     string          `json:"name"`
	NameEn   string          `json:"name_en"`
	NameFr   string          `json:"name_fr"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url"`
	Category string          `json:"category"`
}

// name accepts either a stored-format "English, French" name or the two parts separately.
func (r catalogItemRequest) name() (string, error) {
	name := strings.TrimSpace(r.Name)
	if r.NameEn != "" || r.NameFr != "" {
		name = utils.CreateBilingualName(r.NameEn, r.NameFr)
	}
	if !utils.IsValidBilingualName(name) {
		return "", &services.ValidationError{Fields: map[string]string{"name": `must be "English, French"`}}
	}
	return name, nil
}

func (r catalogItemRequest) price() (decimal.Decimal, error) {
	if r.Price.IsNegative() {
		return decimal.Zero, &services.ValidationError{Fields: map[string]string{"price": "must not be negative"}}
	}
	return r.Price.Round(2), nil
}

func catalogErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return services.ErrNotFound
	}
	return &services.PersistenceError{Op: "catalog", Err: err}
}

// ListBreads returns every bread.
func (h *CatalogHandler) ListBreads(c *fiber.Ctx) error {
	breads, err := h.catalog.ListBreads(c.UserContext())
	if err != nil {
		return catalogErr(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": breads})
}

// CreateBread persists a new bread.
func (h *CatalogHandler) CreateBread(c *fiber.Ctx) error {
	var req catalogItemRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	name, err := req.name()
	if err != nil {
		return err
	}
	price, err := req.price()
	if err != nil {
		return err
	}

	bread := models.Bread{Name: name, Price: price, ImageURL: req.ImageURL}
	if err := h.catalog.CreateBread(c.UserContext(), &bread); err != nil {
		return catalogErr(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": bread})
}

// UpdateBread replaces an existing bread.
func (h *CatalogHandler) UpdateBread(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req catalogItemRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	name, err := req.name()
	if err != nil {
		return err
	}
	price, err := req.price()
	if err != nil {
		return err
	}

	bread, err := h.catalog.GetBread(c.UserContext(), id)
	if err != nil {
		return catalogErr(err)
	}
	bread.Name = name
	bread.Price = price
	bread.ImageURL = req.ImageURL
	if err := h.catalog.UpdateBread(c.UserContext(), bread); err != nil {
		return catalogErr(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": bread})
}

// DeleteBread removes a bread.
func (h *CatalogHandler) DeleteBread(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteBread(c.UserContext(), id); err != nil {
		return catalogErr(err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// ListToppings returns every topping, optionally filtered by ?category=.
func (h *CatalogHandler) ListToppings(c *fiber.Ctx) error {
	toppings, err := h.catalog.ListToppings(c.UserContext())
	if err != nil {
		return catalogErr(err)
	}

	if category := models.ToppingCategory(c.Query("category")); category != "" {
		filtered := make([]models.Topping, 0, len(toppings))
		for _, topping := range toppings {
			if topping.Category == category {
				filtered = append(filtered, topping)
			}
		}
		toppings = filtered
	}
	return c.JSON(fiber.Map{"success": true, "data": toppings})
}

func (r catalogItemRequest) category() (models.ToppingCategory, error) {
	category := models.ToppingCategory(strings.ToLower(strings.TrimSpace(r.Category)))
	if !category.Valid() {
		return "", &services.ValidationError{Fields: map[string]string{"category": "must be one of salads, meats, condiments, extra"}}
	}
	return category, nil
}

// CreateTopping persists a new topping.
func (h *CatalogHandler) CreateTopping(c *fiber.Ctx) error {
	var req catalogItemRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	name, err := req.name()
	if err != nil {
		return err
	}
	price, err := req.price()
	if err != nil {
		return err
	}
	category, err := req.category()
	if err != nil {
		return err
	}

	topping := models.Topping{Name: name, Price: price, ImageURL: req.ImageURL, Category: category}
	if err := h.catalog.CreateTopping(c.UserContext(), &topping); err != nil {
		return catalogErr(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": topping})
}

// UpdateTopping replaces an existing topping.
func (h *CatalogHandler) UpdateTopping(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req catalogItemRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	name, err := req.name()
	if err != nil {
		return err
	}
	price, err := req.price()
	if err != nil {
		return err
	}
	category, err := req.category()
	if err != nil {
		return err
	}

	topping, err := h.catalog.GetTopping(c.UserContext(), id)
	if err != nil {
		return catalogErr(err)
	}
	topping.Name = name
	topping.Price = price
	topping.ImageURL = req.ImageURL
	topping.Category = category
	if err := h.catalog.UpdateTopping(c.UserContext(), topping); err != nil {
		return catalogErr(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": topping})
}

// DeleteTopping removes a topping.
func (h *CatalogHandler) DeleteTopping(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteTopping(c.UserContext(), id); err != nil {
		return catalogErr(err)
	}
	return c.JSON(fiber.Map{"success": true})
}
