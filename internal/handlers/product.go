package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soorihai2/ssksilks-sub000/internal/models"
	"github.com/soorihai2/ssksilks-sub000/internal/utils"
)

// ProductHandler manages product CRUD.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// ListProducts returns paginated products with optional filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{})

	if v := c.Query("category"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			query = query.Where("category_id = ?", id)
		} else {
			query = query.Joins("JOIN categories ON categories.id = products.category_id").
				Where("categories.slug = ?", v)
		}
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + search + "%"
		query = query.Where("products.name ILIKE ? OR products.description ILIKE ? OR products.fabric ILIKE ?", q, q, q)
	}

	if v := c.Query("featured"); v == "true" {
		query = query.Where("is_featured = ?", true)
	}

	if minPrice := c.Query("min_price"); minPrice != "" {
		if val, err := strconv.ParseFloat(minPrice, 64); err == nil {
			query = query.Where("price >= ?", val)
		}
	}

	if maxPrice := c.Query("max_price"); maxPrice != "" {
		if val, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			query = query.Where("price <= ?", val)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Preload("Category").
		Limit(pg.Limit).Offset(pg.Offset).
		Order("created_at desc").
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetProduct loads a product by id or slug.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	param := c.Params("id")

	var product models.Product
	query := h.db.Preload("Category")

	if id, err := uuid.Parse(param); err == nil {
		err = query.First(&product, "id = ?", id).Error
		if err == nil {
			return c.JSON(fiber.Map{"success": true, "data": product})
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
	}

	if err := query.First(&product, "slug = ?", param).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type productRequest struct {
	Slug              string   `json:"slug"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Fabric            string   `json:"fabric"`
	Color             string   `json:"color"`
	Occasion          string   `json:"occasion"`
	Price             float64  `json:"price"`
	ComparePrice      float64  `json:"compare_price"`
	Currency          string   `json:"currency"`
	Images            []string `json:"images"`
	CategoryID        string   `json:"category_id"`
	InventoryQuantity int      `json:"inventory_quantity"`
	IsFeatured        bool     `json:"is_featured"`
}

// CreateProduct creates a product.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.Price <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "name and a positive price are required")
	}

	product := models.Product{
		Slug:              req.Slug,
		Name:              req.Name,
		Description:       req.Description,
		Fabric:            req.Fabric,
		Color:             req.Color,
		Occasion:          req.Occasion,
		Price:             req.Price,
		ComparePrice:      req.ComparePrice,
		Currency:          req.Currency,
		Images:            req.Images,
		InventoryQuantity: req.InventoryQuantity,
		InStock:           req.InventoryQuantity > 0,
		IsFeatured:        req.IsFeatured,
	}
	if product.Slug == "" {
		product.Slug = slugify(req.Name)
	}
	if product.Currency == "" {
		product.Currency = "INR"
	}
	if req.CategoryID != "" {
		if id, err := uuid.Parse(req.CategoryID); err == nil {
			product.CategoryID = &id
		}
	}

	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct updates product fields.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Slug != "" {
		product.Slug = req.Slug
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Fabric != "" {
		product.Fabric = req.Fabric
	}
	if req.Color != "" {
		product.Color = req.Color
	}
	if req.Occasion != "" {
		product.Occasion = req.Occasion
	}
	if req.Price > 0 {
		product.Price = req.Price
	}
	if req.ComparePrice > 0 {
		product.ComparePrice = req.ComparePrice
	}
	if req.Images != nil {
		product.Images = req.Images
	}
	if req.CategoryID != "" {
		if cid, err := uuid.Parse(req.CategoryID); err == nil {
			product.CategoryID = &cid
		}
	}
	if req.InventoryQuantity >= 0 {
		product.InventoryQuantity = req.InventoryQuantity
		product.InStock = req.InventoryQuantity > 0
	}
	product.IsFeatured = req.IsFeatured

	if err := h.db.Save(&product).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct removes a product.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "product deleted"})
}
