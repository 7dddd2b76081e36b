package qrcodes

import "github.com/yungbote/qrcodes-backend/internal/domain"

// Candidate is the user-submitted form for a create or update.
type Candidate struct {
	Title            string             `json:"title"`
	ProductID        string             `json:"productId"`
	ProductVariantID string             `json:"productVariantId"`
	ProductHandle    string             `json:"productHandle"`
	Destination      domain.Destination `json:"destination"`
}

// FieldErrors maps a field name to a human readable message.
type FieldErrors map[string]string

const (
	msgTitleRequired       = "Title is required"
	msgProductRequired     = "Product is required"
	msgDestinationRequired = "Destination is required"
)

// Validate reports missing required fields, or nil when there are none.
// Cross-field consistency (a cart destination without a variant) is not
// checked here.
func Validate(c Candidate) FieldErrors {
	errs := FieldErrors{}
	if c.Title == "" {
		errs["title"] = msgTitleRequired
	}
	if c.ProductID == "" {
		errs["productId"] = msgProductRequired
	}
	if c.Destination == "" {
		errs["destination"] = msgDestinationRequired
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
