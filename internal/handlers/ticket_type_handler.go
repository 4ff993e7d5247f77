package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jkfest/jkfest-api/internal/helpers"
	"github.com/jkfest/jkfest-api/internal/middleware"
	"github.com/jkfest/jkfest-api/internal/models"
)

const ticketTypesCacheKey = "catalog:ticket-types"

type TicketTypeRequest struct {
	Name      string          `json:"name" binding:"required"`
	Price     decimal.Decimal `json:"price" binding:"required"`
	Benefits  []string        `json:"benefits"`
	Available *bool           `json:"available"`
}

func ListTicketTypes(c *gin.Context) {
	ch := middleware.GetCache(c)
	if ch != nil {
		var cached []models.TicketType
		if hit, err := ch.GetJSON(c.Request.Context(), ticketTypesCacheKey, &cached); err == nil && hit {
			c.JSON(http.StatusOK, gin.H{"ticket_types": cached})
			return
		}
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var ticketTypes []models.TicketType
	if err := gormDB.Order("price ASC").Find(&ticketTypes).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ticket types.")
		return
	}

	if ch != nil {
		_ = ch.SetJSON(c.Request.Context(), ticketTypesCacheKey, ticketTypes, 5*time.Minute)
	}

	c.JSON(http.StatusOK, gin.H{"ticket_types": ticketTypes})
}

func GetTicketType(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var ticketType models.TicketType
	if err := gormDB.Where("id = ?", c.Param("id")).First(&ticketType).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket type not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ticket type.")
		return
	}

	c.JSON(http.StatusOK, ticketType)
}

func CreateTicketType(c *gin.Context) {
	var req TicketTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	if req.Price.IsNegative() {
		helpers.RespondWithError(c, http.StatusBadRequest, "Price cannot be negative.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	ticketType := models.TicketType{
		ID:        uuid.New(),
		Name:      req.Name,
		Price:     req.Price,
		Benefits:  req.Benefits,
		Available: available,
	}

	if err := gormDB.Create(&ticketType).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create ticket type.")
		return
	}

	invalidateCatalog(c, ticketTypesCacheKey)

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Ticket type created successfully.",
		"ticket_type_id": ticketType.ID,
	})
}

func UpdateTicketType(c *gin.Context) {
	var req TicketTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	if req.Price.IsNegative() {
		helpers.RespondWithError(c, http.StatusBadRequest, "Price cannot be negative.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var ticketType models.TicketType
	if err := gormDB.Where("id = ?", c.Param("id")).First(&ticketType).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket type not found.")
		return
	}

	ticketType.Name = req.Name
	ticketType.Price = req.Price
	ticketType.Benefits = req.Benefits
	if req.Available != nil {
		ticketType.Available = *req.Available
	}

	if err := gormDB.Save(&ticketType).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update ticket type.")
		return
	}

	invalidateCatalog(c, ticketTypesCacheKey)

	c.JSON(http.StatusOK, gin.H{
		"message":     "Ticket type updated successfully.",
		"ticket_type": ticketType,
	})
}

func DeleteTicketType(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var ticketType models.TicketType
	if err := gormDB.Where("id = ?", c.Param("id")).First(&ticketType).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket type not found.")
		return
	}

	if err := gormDB.Delete(&ticketType).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete ticket type.")
		return
	}

	invalidateCatalog(c, ticketTypesCacheKey)

	c.JSON(http.StatusOK, gin.H{
		"message": "Ticket type deleted successfully.",
	})
}

func invalidateCatalog(c *gin.Context, keys ...string) {
	if ch := middleware.GetCache(c); ch != nil {
		_ = ch.Delete(c.Request.Context(), keys...)
	}
}
