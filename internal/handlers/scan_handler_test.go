package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkfest/jkfest-api/internal/middleware"
	"github.com/jkfest/jkfest-api/internal/models"
	"github.com/jkfest/jkfest-api/internal/ticketing"
)

func setupScanRouter(t *testing.T) (*gin.Engine, *ticketing.Service, models.TicketType) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := ticketing.NewMemoryStore()
	general := models.TicketType{
		ID:        uuid.New(),
		Name:      "Entrada General",
		Price:     decimal.RequireFromString("45.00"),
		Available: true,
	}
	store.SeedTicketType(general)
	svc := ticketing.NewService(store)

	r := gin.New()
	r.Use(middleware.TicketingMiddleware(svc))
	r.POST("/v1/scan/lookup", LookupTicket)
	r.POST("/v1/scan/redeem", RedeemTicket)
	r.POST("/v1/admin/tickets/:id/revoke", RevokeTicket)

	return r, svc, general
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeScanResult(t *testing.T, w *httptest.ResponseRecorder) ticketing.ScanResult {
	t.Helper()
	var result ticketing.ScanResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func issueOne(t *testing.T, svc *ticketing.Service, tt models.TicketType) models.Ticket {
	t.Helper()
	order, err := svc.Issue(context.Background(),
		ticketing.Customer{Name: "Ana Torres", Email: "ana@example.com", Country: "ES"},
		[]ticketing.LineItem{{TicketTypeID: tt.ID, Quantity: 1}},
	)
	require.NoError(t, err)
	return order.Tickets[0]
}

func TestLookupTicket_ValidTicket(t *testing.T) {
	r, svc, general := setupScanRouter(t)
	ticket := issueOne(t, svc, general)

	w := postJSON(t, r, "/v1/scan/lookup", gin.H{"code": ticket.Code})

	require.Equal(t, http.StatusOK, w.Code)
	result := decodeScanResult(t, w)
	assert.Equal(t, ticketing.ScanValid, result.Status)
	require.NotNil(t, result.Ticket)
	assert.Equal(t, "Entrada General", result.Ticket.TicketTypeName)
}

func TestLookupTicket_UnknownCodeIsStillHTTP200(t *testing.T) {
	r, _, _ := setupScanRouter(t)

	w := postJSON(t, r, "/v1/scan/lookup", gin.H{"code": "NONEXISTENT"})

	// not_found is a business outcome, not an HTTP error.
	require.Equal(t, http.StatusOK, w.Code)
	result := decodeScanResult(t, w)
	assert.Equal(t, ticketing.ScanNotFound, result.Status)
	assert.Nil(t, result.Ticket)
}

func TestLookupTicket_MissingCodeRejected(t *testing.T) {
	r, _, _ := setupScanRouter(t)

	w := postJSON(t, r, "/v1/scan/lookup", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRedeemTicket_FullGateFlow(t *testing.T) {
	r, svc, general := setupScanRouter(t)
	ticket := issueOne(t, svc, general)

	// Lookup leaves the ticket untouched.
	w := postJSON(t, r, "/v1/scan/lookup", gin.H{"code": ticket.Code})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, ticketing.ScanValid, decodeScanResult(t, w).Status)

	// Operator confirms; redeem activates.
	w = postJSON(t, r, "/v1/scan/redeem", gin.H{"ticket_id": ticket.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ticketing.ScanActivated, decodeScanResult(t, w).Status)

	// Replay is refused with the used outcome, still HTTP 200.
	w = postJSON(t, r, "/v1/scan/redeem", gin.H{"ticket_id": ticket.ID})
	require.Equal(t, http.StatusOK, w.Code)
	result := decodeScanResult(t, w)
	assert.Equal(t, ticketing.ScanUsed, result.Status)
	require.NotNil(t, result.Ticket)
	assert.Equal(t, "Ana Torres", result.Ticket.OwnerName)
}

func TestRevokeTicket_ThenLookupDenies(t *testing.T) {
	r, svc, general := setupScanRouter(t)
	ticket := issueOne(t, svc, general)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/v1/admin/tickets/%s/revoke", ticket.ID), nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ticketing.ScanRevoked, decodeScanResult(t, w).Status)

	w2 := postJSON(t, r, "/v1/scan/lookup", gin.H{"code": ticket.Code})
	require.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, ticketing.ScanRevoked, decodeScanResult(t, w2).Status)
}

func TestRevokeTicket_InvalidID(t *testing.T) {
	r, _, _ := setupScanRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/tickets/not-a-uuid/revoke", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
