package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jkfest/jkfest-api/internal/helpers"
	"github.com/jkfest/jkfest-api/internal/middleware"
	"github.com/jkfest/jkfest-api/internal/models"
	"github.com/jkfest/jkfest-api/internal/ticketing"
)

// GetOrder backs the post-payment confirmation view: the order, its
// line items and every ticket issued for it.
func GetOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid order ID.")
		return
	}

	svc := middleware.GetTicketingService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}

	order, err := svc.Order(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, ticketing.ErrNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Order not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving order.")
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListOrders is the admin back-office order list, newest first.
func ListOrders(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	pageNum, err := helpers.StringToInt(c.DefaultQuery("page", "1"))
	if err != nil || pageNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}
	limitNum, err := helpers.StringToInt(c.DefaultQuery("limit", "20"))
	if err != nil || limitNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	var totalCount int64
	gormDB.Model(&models.Order{}).Count(&totalCount)

	var orders []models.Order
	offset := (pageNum - 1) * limitNum
	err = gormDB.Preload("Items").
		Offset(offset).Limit(limitNum).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving orders.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":      orders,
		"total":       totalCount,
		"page":        pageNum,
		"limit":       limitNum,
		"total_pages": (totalCount + int64(limitNum) - 1) / int64(limitNum),
	})
}
