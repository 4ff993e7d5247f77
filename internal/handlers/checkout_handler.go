package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xendit/xendit-go/v6/invoice"

	"github.com/jkfest/jkfest-api/internal/helpers"
	"github.com/jkfest/jkfest-api/internal/middleware"
	"github.com/jkfest/jkfest-api/internal/monitoring"
	"github.com/jkfest/jkfest-api/internal/ticketing"
)

// checkoutTTL bounds how long an unpaid cart waits for its payment
// confirmation before it silently expires from redis.
const checkoutTTL = 30 * time.Minute

type CheckoutRequest struct {
	Name    string               `json:"name" binding:"required"`
	Email   string               `json:"email" binding:"required,email"`
	Country string               `json:"country" binding:"required"`
	Items   []ticketing.LineItem `json:"items" binding:"required"`
}

// CreateCheckout prices the cart, parks it in redis and hands the buyer
// a payment-gateway invoice URL. Tickets are only issued when the
// gateway confirms the invoice as paid.
func CreateCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	svc := middleware.GetTicketingService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}

	total, err := svc.Quote(c.Request.Context(), req.Items)
	if err != nil {
		switch {
		case errors.Is(err, ticketing.ErrEmptyCart),
			errors.Is(err, ticketing.ErrInvalidQuantity),
			errors.Is(err, ticketing.ErrUnknownTicketType),
			errors.Is(err, ticketing.ErrZeroTotal):
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to price the cart.")
		}
		return
	}

	ch := middleware.GetCache(c)
	if ch == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Cache not found.")
		return
	}

	externalID := fmt.Sprintf("jkf-checkout-%s", uuid.New().String())
	checkout := ticketing.Checkout{
		Customer: ticketing.Customer{
			Name:    req.Name,
			Email:   req.Email,
			Country: req.Country,
		},
		Items: req.Items,
	}
	if err := ch.SetJSON(c.Request.Context(), checkoutKey(externalID), checkout, checkoutTTL); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to store checkout session.")
		return
	}

	xnd := middleware.GetXenditClient(c)
	if xnd == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Payment client not found.")
		return
	}

	invoiceReq := *invoice.NewCreateInvoiceRequest(externalID, total.InexactFloat64())
	invoiceReq.SetPayerEmail(req.Email)
	invoiceReq.SetDescription("JKF Festival tickets")

	inv, _, xerr := xnd.InvoiceApi.CreateInvoice(c.Request.Context()).
		CreateInvoiceRequest(invoiceReq).
		Execute()
	if xerr != nil {
		slog.Error("invoice creation failed", "external_id", externalID, "error", xerr.Error())
		helpers.RespondWithError(c, http.StatusBadGateway, "Payment link generation failed.")
		return
	}

	monitoring.RecordCheckout("created")

	c.JSON(http.StatusOK, gin.H{
		"payment_url": inv.GetInvoiceUrl(),
		"external_id": externalID,
		"total":       total,
	})
}

// PaymentWebhook handles the gateway's invoice callback. A PAID invoice
// consumes its parked checkout and triggers issuance; everything else
// is acknowledged without side effects.
func PaymentWebhook(c *gin.Context) {
	callbackToken := os.Getenv("XENDIT_CALLBACK_TOKEN")
	if callbackToken == "" || c.GetHeader("x-callback-token") != callbackToken {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid callback token.")
		return
	}

	var callback invoice.InvoiceCallback
	if err := c.ShouldBindJSON(&callback); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid callback payload.")
		return
	}

	if callback.GetStatus() != "PAID" {
		monitoring.RecordCheckout("expired")
		c.JSON(http.StatusOK, gin.H{"message": "Callback acknowledged."})
		return
	}

	completeCheckout(c, callback.GetExternalId())
}

// SimulatePayment marks a checkout as paid without the gateway. Only
// routed in development.
func SimulatePayment(c *gin.Context) {
	var req struct {
		ExternalID string `json:"external_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. external_id is required.")
		return
	}

	completeCheckout(c, req.ExternalID)
}

func completeCheckout(c *gin.Context, externalID string) {
	ch := middleware.GetCache(c)
	if ch == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Cache not found.")
		return
	}

	var checkout ticketing.Checkout
	found, err := ch.TakeJSON(c.Request.Context(), checkoutKey(externalID), &checkout)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to load checkout session.")
		return
	}
	if !found {
		monitoring.RecordCheckout("missing")
		helpers.RespondWithError(c, http.StatusNotFound, "Checkout session not found or already processed.")
		return
	}

	svc := middleware.GetTicketingService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}

	order, err := svc.Issue(c.Request.Context(), checkout.Customer, checkout.Items)
	if err != nil {
		slog.Error("issuance failed after confirmed payment", "external_id", externalID, "error", err)
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to issue tickets.")
		return
	}

	perType := make(map[string]int)
	for _, ticket := range order.Tickets {
		perType[ticket.TicketTypeName]++
	}
	monitoring.RecordOrder(perType)
	monitoring.RecordCheckout("paid")

	slog.Info("tickets issued",
		"order_id", order.ID,
		"external_id", externalID,
		"tickets", len(order.Tickets),
		"total", order.Total.String(),
	)

	c.JSON(http.StatusOK, gin.H{
		"message":  "Payment confirmed. Tickets issued.",
		"order_id": order.ID,
	})
}

func checkoutKey(externalID string) string {
	return "checkout:" + externalID
}
