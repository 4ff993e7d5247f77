package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jkfest/jkfest-api/internal/helpers"
	"github.com/jkfest/jkfest-api/internal/middleware"
	"github.com/jkfest/jkfest-api/internal/models"
)

const lineupCacheKey = "catalog:lineup"

func ListLineup(c *gin.Context) {
	day := c.Query("day")
	stage := c.Query("stage")

	// Only the unfiltered programme is cached; filtered views go to
	// the database.
	cacheable := day == "" && stage == ""

	ch := middleware.GetCache(c)
	if ch != nil && cacheable {
		var cached []models.LineupSlot
		if hit, err := ch.GetJSON(c.Request.Context(), lineupCacheKey, &cached); err == nil && hit {
			c.JSON(http.StatusOK, gin.H{"lineup": cached})
			return
		}
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	query := gormDB.Model(&models.LineupSlot{})
	if day != "" {
		dayNum, err := helpers.StringToInt(day)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid day.")
			return
		}
		query = query.Where("day = ?", dayNum)
	}
	if stage != "" {
		query = query.Where("stage = ?", stage)
	}

	var slots []models.LineupSlot
	if err := query.Order("day ASC, starts_at ASC").Find(&slots).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving lineup.")
		return
	}

	if ch != nil && cacheable {
		_ = ch.SetJSON(c.Request.Context(), lineupCacheKey, slots, 5*time.Minute)
	}

	c.JSON(http.StatusOK, gin.H{"lineup": slots})
}

func CreateLineupSlot(c *gin.Context) {
	slot, ok := bindLineupForm(c)
	if !ok {
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	slot.ID = uuid.New()

	imageFile, err := c.FormFile("image")
	if err == nil {
		imagePath, err := helpers.UploadFile(c, imageFile, "lineup_artists")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		slot.ImagePath = imagePath
	}

	if err := gormDB.Create(slot).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create lineup slot.")
		return
	}

	invalidateCatalog(c, lineupCacheKey)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Lineup slot created successfully.",
		"slot_id": slot.ID,
	})
}

func UpdateLineupSlot(c *gin.Context) {
	updated, ok := bindLineupForm(c)
	if !ok {
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var slot models.LineupSlot
	if err := gormDB.Where("id = ?", c.Param("id")).First(&slot).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Lineup slot not found.")
		return
	}

	slot.ArtistName = updated.ArtistName
	slot.Stage = updated.Stage
	slot.Day = updated.Day
	slot.StartsAt = updated.StartsAt
	slot.EndsAt = updated.EndsAt
	slot.Description = updated.Description

	imageFile, err := c.FormFile("image")
	if err == nil {
		imagePath, err := helpers.UploadFile(c, imageFile, "lineup_artists")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		if slot.ImagePath != "" {
			_ = helpers.DeleteFile(slot.ImagePath)
		}
		slot.ImagePath = imagePath
	}

	if err := gormDB.Save(&slot).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update lineup slot.")
		return
	}

	invalidateCatalog(c, lineupCacheKey)

	c.JSON(http.StatusOK, gin.H{
		"message": "Lineup slot updated successfully.",
		"slot":    slot,
	})
}

func DeleteLineupSlot(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var slot models.LineupSlot
	if err := gormDB.Where("id = ?", c.Param("id")).First(&slot).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Lineup slot not found.")
		return
	}

	if err := gormDB.Delete(&slot).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete lineup slot.")
		return
	}

	invalidateCatalog(c, lineupCacheKey)

	c.JSON(http.StatusOK, gin.H{
		"message": "Lineup slot deleted successfully.",
	})
}

func bindLineupForm(c *gin.Context) (*models.LineupSlot, bool) {
	artistName := c.PostForm("artist_name")
	stage := c.PostForm("stage")
	description := c.PostForm("description")

	dayStr := c.PostForm("day")
	day, err := helpers.StringToInt(dayStr)
	if err != nil || day < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid day.")
		return nil, false
	}

	startsAt, err := time.Parse(time.RFC3339, c.PostForm("starts_at"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid start time format.")
		return nil, false
	}
	endsAt, err := time.Parse(time.RFC3339, c.PostForm("ends_at"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid end time format.")
		return nil, false
	}
	if !endsAt.After(startsAt) {
		helpers.RespondWithError(c, http.StatusBadRequest, fmt.Sprintf("End time %s must be after start time.", endsAt.Format(time.RFC3339)))
		return nil, false
	}

	if artistName == "" || stage == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Missing required fields.")
		return nil, false
	}

	return &models.LineupSlot{
		ArtistName:  artistName,
		Stage:       stage,
		Day:         day,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Description: description,
	}, true
}
