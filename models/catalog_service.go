package models

import (
	"gorm.io/gorm"
)

// CatalogService is a bookable generic service (spa, transfer, dinner set).
type CatalogService struct {
	gorm.Model

	Slug      string `json:"slug" gorm:"column:slug;uniqueIndex;size:150"`
	Title     string `json:"title" gorm:"size:255"`
	Thumbnail string `json:"thumbnail" gorm:"size:255"`

	UnitPrice   float64 `json:"unitPrice" gorm:"column:unit_price"`
	Description string  `json:"description" gorm:"type:text"`
}

func (CatalogService) TableName() string { return "catalog_services" }
