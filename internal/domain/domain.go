package domain

import "github.com/yungbote/qrcodes-backend/internal/domain/qrcode"

type Destination = qrcode.Destination

const (
	DestinationProduct = qrcode.DestinationProduct
	DestinationCart    = qrcode.DestinationCart
)

type QRCode = qrcode.QRCode
type EnrichedQRCode = qrcode.EnrichedQRCode
type Product = qrcode.Product
type ProductImage = qrcode.ProductImage

var NewEnrichedQRCode = qrcode.NewEnrichedQRCode
