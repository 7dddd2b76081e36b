package realtime

import "fmt"

type SSEEvent string

const (
	SSEEventQRCodeCreated SSEEvent = "QRCodeCreated"
	SSEEventQRCodeUpdated SSEEvent = "QRCodeUpdated"
	SSEEventQRCodeDeleted SSEEvent = "QRCodeDeleted"
	SSEEventQRCodeScanned SSEEvent = "QRCodeScanned"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// ShopChannel is the channel every admin session of a shop subscribes to.
func ShopChannel(shop string) string {
	return fmt.Sprintf("shop:%s", shop)
}
