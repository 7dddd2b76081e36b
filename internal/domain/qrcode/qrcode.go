package qrcode

import (
	"time"

	"github.com/yungbote/qrcodes-backend/internal/platform/pointers"
)

type Destination string

const (
	DestinationProduct Destination = "product"
	DestinationCart    Destination = "cart"
)

func (d Destination) Valid() bool {
	return d == DestinationProduct || d == DestinationCart
}

type QRCode struct {
	ID               uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Shop             string      `gorm:"not null;index;column:shop" json:"shop"`
	Title            string      `gorm:"not null;column:title" json:"title"`
	ProductID        string      `gorm:"not null;column:product_id" json:"productId"`
	ProductVariantID string      `gorm:"column:product_variant_id" json:"productVariantId"`
	ProductHandle    string      `gorm:"column:product_handle" json:"productHandle"`
	Destination      Destination `gorm:"not null;column:destination" json:"destination"`
	Scans            int         `gorm:"not null;default:0;column:scans" json:"scans"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (QRCode) TableName() string { return "qr_code" }

// Product is the live catalog data joined onto a record. A nil Title means
// the product no longer exists.
type Product struct {
	Title  *string
	Images []ProductImage
}

type ProductImage struct {
	URL     string
	AltText string
}

// EnrichedQRCode is the read model served to callers. It is rebuilt on every
// read and never persisted.
type EnrichedQRCode struct {
	ID               uint        `json:"id"`
	Shop             string      `json:"shop"`
	Title            string      `json:"title"`
	ProductID        string      `json:"productId"`
	ProductVariantID string      `json:"productVariantId"`
	ProductHandle    string      `json:"productHandle"`
	Destination      Destination `json:"destination"`
	Scans            int         `json:"scans"`
	CreatedAt        time.Time   `json:"createdAt"`

	ProductDeleted bool    `json:"productDeleted"`
	ProductTitle   *string `json:"productTitle,omitempty"`
	ProductImage   *string `json:"productImage,omitempty"`
	ProductAlt     *string `json:"productAlt,omitempty"`
	DestinationURL string  `json:"destinationUrl"`
	Image          string  `json:"image"`
}

// NewEnrichedQRCode copies the persisted fields of rec and attaches the
// derived ones. product may be nil, which is treated as a deleted product.
func NewEnrichedQRCode(rec *QRCode, product *Product, destinationURL, image string) *EnrichedQRCode {
	out := &EnrichedQRCode{
		ID:               rec.ID,
		Shop:             rec.Shop,
		Title:            rec.Title,
		ProductID:        rec.ProductID,
		ProductVariantID: rec.ProductVariantID,
		ProductHandle:    rec.ProductHandle,
		Destination:      rec.Destination,
		Scans:            rec.Scans,
		CreatedAt:        rec.CreatedAt,
		DestinationURL:   destinationURL,
		Image:            image,
	}
	if product == nil || product.Title == nil {
		out.ProductDeleted = true
		return out
	}
	out.ProductTitle = pointers.Ptr(*product.Title)
	if len(product.Images) > 0 {
		out.ProductImage = pointers.Ptr(product.Images[0].URL)
		out.ProductAlt = pointers.Ptr(product.Images[0].AltText)
	}
	return out
}
