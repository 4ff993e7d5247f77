package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/jkfest/jkfest-api/internal/helpers"
	"github.com/jkfest/jkfest-api/internal/middleware"
	"github.com/jkfest/jkfest-api/internal/ticketing"
)

// TicketQR renders a ticket's code as a PNG for the wallet view. The QR
// payload is the code itself, which is what the gate scanner feeds back
// into lookup. Read-only: rendering never touches ticket state.
func TicketQR(c *gin.Context) {
	code := ticketing.NormalizeCode(c.Param("code"))

	svc := middleware.GetTicketingService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}

	result, err := svc.Lookup(c.Request.Context(), code)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error looking up ticket.")
		return
	}
	if result.Status == ticketing.ScanNotFound {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}

	qrImage, err := qrcode.Encode(result.Ticket.Code, qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}
