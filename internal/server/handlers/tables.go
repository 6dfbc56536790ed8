package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"comanda-system/internal/database/models"
)

type TableHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewTableHandler(db *gorm.DB, rdb *redis.Client) *TableHandler {
	return &TableHandler{
		db:    db,
		redis: rdb,
	}
}

type CreateZoneRequest struct {
	Name     string `json:"name" binding:"required"`
	Position *int32 `json:"position,omitempty"`
}

type UpdateZoneRequest struct {
	Name     *string `json:"name,omitempty"`
	Position *int32  `json:"position,omitempty"`
}

type CreateTableRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *TableHandler) invalidateLayoutCache(ctx context.Context) {
	if h.redis != nil {
		h.redis.Del(ctx, LAYOUT_CACHE_KEY)
	}
}

// GetLayout returns all zones with their tables, ordered by position. Cached
// because the POS floor screen polls it and it changes rarely.
func (h *TableHandler) GetLayout(c *gin.Context) {
	ctx := c.Request.Context()

	if h.redis != nil {
		if cached, err := h.redis.Get(ctx, LAYOUT_CACHE_KEY).Result(); err == nil {
			var zones []models.Zone
			if json.Unmarshal([]byte(cached), &zones) == nil {
				c.JSON(http.StatusOK, successResponse("Layout retrieved", zones))
				return
			}
		}
	}

	var zones []models.Zone
	if err := h.db.Preload("Tables").Order("position asc").Find(&zones).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Database error fetching layout"))
		return
	}

	if h.redis != nil {
		if payload, err := json.Marshal(zones); err == nil {
			h.redis.Set(ctx, LAYOUT_CACHE_KEY, payload, CACHE_TTL_MEDIUM)
		}
	}

	c.JSON(http.StatusOK, successResponse("Layout retrieved", zones))
}

func (h *TableHandler) CreateZone(c *gin.Context) {
	var req CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	zone := models.Zone{
		ID:   uuid.NewString(),
		Name: req.Name,
	}
	if req.Position != nil {
		zone.Position = *req.Position
	}

	if err := h.db.Create(&zone).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create zone"))
		return
	}

	h.invalidateLayoutCache(c.Request.Context())
	c.JSON(http.StatusCreated, successResponse("Zone created", zone))
}

func (h *TableHandler) UpdateZone(c *gin.Context) {
	var req UpdateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	var zone models.Zone
	if err := h.db.First(&zone, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, errorResponse("Zone not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Database error"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if len(updates) > 0 {
		if err := h.db.Model(&zone).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorResponse("Failed to update zone"))
			return
		}
	}

	h.invalidateLayoutCache(c.Request.Context())
	c.JSON(http.StatusOK, successResponse("Zone updated", zone))
}

// DeleteZone removes a zone and its tables together.
func (h *TableHandler) DeleteZone(c *gin.Context) {
	id := c.Param("id")

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("zone_id = ?", id).Delete(&models.DiningTable{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Zone{}, "id = ?", id).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to delete zone"))
		return
	}

	h.invalidateLayoutCache(c.Request.Context())
	c.JSON(http.StatusOK, successResponse("Zone deleted", nil))
}

func (h *TableHandler) CreateTable(c *gin.Context) {
	var req CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	zoneID := c.Param("id")
	var zone models.Zone
	if err := h.db.First(&zone, "id = ?", zoneID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, errorResponse("Zone not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Database error"))
		return
	}

	table := models.DiningTable{
		ID:     uuid.NewString(),
		ZoneID: zoneID,
		Name:   req.Name,
	}
	if err := h.db.Create(&table).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create table"))
		return
	}

	h.invalidateLayoutCache(c.Request.Context())
	c.JSON(http.StatusCreated, successResponse("Table created", table))
}

func (h *TableHandler) UpdateTable(c *gin.Context) {
	var req CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	var table models.DiningTable
	if err := h.db.First(&table, "id = ?", c.Param("tableId")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, errorResponse("Table not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Database error"))
		return
	}

	if err := h.db.Model(&table).Update("name", req.Name).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to update table"))
		return
	}

	h.invalidateLayoutCache(c.Request.Context())
	c.JSON(http.StatusOK, successResponse("Table updated", table))
}

func (h *TableHandler) DeleteTable(c *gin.Context) {
	if err := h.db.Delete(&models.DiningTable{}, "id = ?", c.Param("tableId")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to delete table"))
		return
	}

	h.invalidateLayoutCache(c.Request.Context())
	c.JSON(http.StatusOK, successResponse("Table deleted", nil))
}
