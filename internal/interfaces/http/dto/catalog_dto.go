package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/storesync/backend/internal/domain/catalog"
)

// CatalogItemResponse is the storefront view of one catalog item
type CatalogItemResponse struct {
	ID              string          `json:"id"`
	ExternalID      string          `json:"externalId"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	Description     string          `json:"description,omitempty"`
	MRP             decimal.Decimal `json:"mrp"`
	SellingPrice    decimal.Decimal `json:"sellingPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Quantity        int             `json:"quantity"`
	Unit            string          `json:"unit,omitempty"`
	SKU             string          `json:"sku,omitempty"`
	Barcode         string          `json:"barcode,omitempty"`
	HSNCode         string          `json:"hsnCode,omitempty"`
	GSTPercent      decimal.Decimal `json:"gstPercent"`
	IsInStock       bool            `json:"isInStock"`
	LastSyncedAt    time.Time       `json:"lastSyncedAt"`
}

// NewCatalogItemResponse maps a domain item to its wire form
func NewCatalogItemResponse(item *catalog.Item) CatalogItemResponse {
	return CatalogItemResponse{
		ID:              item.ID.String(),
		ExternalID:      item.ExternalID,
		Name:            item.Name,
		Slug:            item.Slug,
		Description:     item.Description,
		MRP:             item.MRP,
		SellingPrice:    item.SellingPrice,
		DiscountPercent: item.DiscountPercent,
		Quantity:        item.Quantity,
		Unit:            item.Unit,
		SKU:             item.SKU,
		Barcode:         item.Barcode,
		HSNCode:         item.HSNCode,
		GSTPercent:      item.GSTPercent,
		IsInStock:       item.IsInStock,
		LastSyncedAt:    item.LastSyncedAt,
	}
}

// NewCatalogItemResponses maps a slice of items
func NewCatalogItemResponses(items []catalog.Item) []CatalogItemResponse {
	out := make([]CatalogItemResponse, 0, len(items))
	for i := range items {
		out = append(out, NewCatalogItemResponse(&items[i]))
	}
	return out
}
