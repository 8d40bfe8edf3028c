package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Category struct {
	BaseModel
	Name         string    `json:"name"`
	Slug         string    `gorm:"uniqueIndex" json:"slug"`
	Description  string    `json:"description"`
	Image        string    `json:"image"`
	ProductCount int       `json:"product_count"`
	Products     []Product `json:"products,omitempty"`
}

type Product struct {
	BaseModel
	Slug              string         `gorm:"uniqueIndex" json:"slug"`
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	Fabric            string         `json:"fabric"`
	Color             string         `json:"color"`
	Occasion          string         `json:"occasion"`
	Price             float64        `json:"price"`
	ComparePrice      float64        `json:"compare_price"`
	Currency          string         `json:"currency"`
	Images            pq.StringArray `gorm:"type:text[]" json:"images"`
	CategoryID        *uuid.UUID     `gorm:"type:uuid" json:"category_id"`
	Category          *Category      `json:"category,omitempty"`
	InventoryQuantity int            `json:"inventory_quantity"`
	InStock           bool           `json:"in_stock"`
	IsFeatured        bool           `json:"is_featured"`
	RatingAverage     float64        `json:"rating_average"`
	RatingCount       int            `json:"rating_count"`
}
