package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/salonworks/booking-api/internal/httperr"
	"github.com/salonworks/booking-api/internal/middleware"
	"github.com/salonworks/booking-api/internal/models"
)

// actor returns the authenticated caller's ID and role.
func actor(c *gin.Context) (string, string) {
	return c.MustGet(middleware.ContextUserID).(string),
		c.MustGet(middleware.ContextUserRole).(string)
}

// canAccessAppointment allows admins, the booking customer and the
// stylist working the slot.
func canAccessAppointment(c *gin.Context, ap *models.Appointment) bool {
	userID, role := actor(c)
	if role == models.RoleAdmin {
		return true
	}
	if ap.UserID == userID {
		return true
	}
	return role == models.RoleStylist && ap.StylistID == userID
}

// canAccessOrder allows admins, the ordering customer and the stylist
// of the appointment the order settles.
func canAccessOrder(c *gin.Context, o *models.Order) bool {
	userID, role := actor(c)
	if role == models.RoleAdmin {
		return true
	}
	if o.UserID == userID {
		return true
	}
	return role == models.RoleStylist &&
		o.Appointment != nil && o.Appointment.StylistID == userID
}

func denyAccess(c *gin.Context) {
	httperr.Forbidden(c, "permission_denied", "Not allowed for this resource.")
}
