package qrcodes

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/yungbote/qrcodes-backend/internal/domain"
)

// ErrCorruptRecord marks a persisted record that cannot be rendered. It is
// never user-correctable and must not be defaulted away.
var ErrCorruptRecord = errors.New("corrupt qr code record")

type CorruptRecordError struct {
	RecordID uint
	Field    string
	Value    string
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("qr code %d: invalid %s %q", e.RecordID, e.Field, e.Value)
}

func (e *CorruptRecordError) Unwrap() error { return ErrCorruptRecord }

var variantIDPattern = regexp.MustCompile(`^.+/ProductVariant/([0-9]+)$`)

// ParseVariantID extracts the numeric id from "<namespace>/ProductVariant/<digits>".
func ParseVariantID(gid string) (int64, bool) {
	m := variantIDPattern.FindStringSubmatch(gid)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ResolveDestination returns the public URL a scan of rec redirects to.
func ResolveDestination(rec *domain.QRCode) (string, error) {
	switch rec.Destination {
	case domain.DestinationProduct:
		return fmt.Sprintf("https://%s/products/%s", rec.Shop, rec.ProductHandle), nil
	case domain.DestinationCart:
		id, ok := ParseVariantID(rec.ProductVariantID)
		if !ok {
			return "", &CorruptRecordError{RecordID: rec.ID, Field: "productVariantId", Value: rec.ProductVariantID}
		}
		return fmt.Sprintf("https://%s/cart/%d:1", rec.Shop, id), nil
	default:
		return "", &CorruptRecordError{RecordID: rec.ID, Field: "destination", Value: string(rec.Destination)}
	}
}

// ScanURL is the public redirect endpoint encoded into every QR image.
func ScanURL(appBaseURL string, id uint) string {
	return fmt.Sprintf("%s/qrcodes/%d/scan", trimSlash(appBaseURL), id)
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
