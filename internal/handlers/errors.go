package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salonworks/booking-api/internal/httperr"
)

// Business codes that surface as 409 rather than 400.
var conflictCodes = map[string]bool{
	"time_conflict":            true,
	"service_already_attached": true,
	"invalid_transition":       true,
	"invalid_state":            true,
	"coupon_already_applied":   true,
	"order_not_modifiable":     true,
	"usage_limit_reached":      true,
	"coupon_expired":           true,
	"insufficient_stock":       true,
	"stylist_unavailable":      true,
}

var notFoundCodes = map[string]bool{
	"user_not_found":        true,
	"product_not_found":     true,
	"appointment_not_found": true,
	"order_not_found":       true,
	"coupon_not_found":      true,
	"schedule_not_found":    true,
	"service_not_found":     true,
	"stylist_not_found":     true,
}

// writeError maps repository and business errors onto the error body.
// Unknown errors become a generic 500 without leaking details.
func writeError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.NotFound(c, "not_found", "Resource not found.")
		return
	}

	if code, ok := httperr.BusinessCode(err); ok {
		switch {
		case conflictCodes[code]:
			httperr.Conflict(c, code, "Operation conflicts with current state.")
		case notFoundCodes[code]:
			httperr.NotFound(c, code, "Resource not found.")
		default:
			httperr.BadRequest(c, code, "Request rejected.")
		}
		return
	}

	httperr.Internal(c, "internal_error", "Unexpected error.")
}
