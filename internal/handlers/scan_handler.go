package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jkfest/jkfest-api/internal/helpers"
	"github.com/jkfest/jkfest-api/internal/middleware"
	"github.com/jkfest/jkfest-api/internal/monitoring"
)

type LookupRequest struct {
	Code string `json:"code" binding:"required"`
}

type RedeemRequest struct {
	TicketID uuid.UUID `json:"ticket_id" binding:"required"`
}

// LookupTicket is the read-only first step of the gate flow. Every
// business outcome, including not_found, is a 200 with a status tag:
// the gate UI branches on the tag, never on an error response.
func LookupTicket(c *gin.Context) {
	var req LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Ticket code is required.")
		return
	}

	svc := middleware.GetTicketingService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}

	result, err := svc.Lookup(c.Request.Context(), req.Code)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error looking up ticket.")
		return
	}

	monitoring.RecordScan("lookup", string(result.Status))
	c.JSON(http.StatusOK, result)
}

// RedeemTicket is the explicit second step after the operator confirms
// a valid lookup. At most one concurrent attempt per ticket reports
// activated; the rest see the used result.
func RedeemTicket(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Ticket id is required.")
		return
	}

	svc := middleware.GetTicketingService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}

	result, err := svc.Redeem(c.Request.Context(), req.TicketID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error redeeming ticket.")
		return
	}

	monitoring.RecordScan("redeem", string(result.Status))
	c.JSON(http.StatusOK, result)
}

// RevokeTicket is the administrative valid->revoked transition.
func RevokeTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
		return
	}

	svc := middleware.GetTicketingService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}

	result, err := svc.Revoke(c.Request.Context(), ticketID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error revoking ticket.")
		return
	}

	monitoring.RecordScan("revoke", string(result.Status))
	c.JSON(http.StatusOK, result)
}

// AdminStats reports ticket counts by status for the back office.
func AdminStats(c *gin.Context) {
	svc := middleware.GetTicketingService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}

	counts, err := svc.Stats(c.Request.Context())
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving stats.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tickets_by_status": counts})
}
