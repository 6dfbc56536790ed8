package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"comanda-system/internal/database/models"
)

type InventoryHandler struct {
	db *gorm.DB
}

func NewInventoryHandler(db *gorm.DB) *InventoryHandler {
	return &InventoryHandler{db: db}
}

type CreateIngredientRequest struct {
	Name              string `json:"name" binding:"required"`
	Unit              string `json:"unit" binding:"required"`
	Stock             string `json:"stock,omitempty"`
	UnitCost          string `json:"unit_cost,omitempty"`
	LowStockThreshold string `json:"low_stock_threshold,omitempty"`
}

type UpdateIngredientRequest struct {
	Name              *string `json:"name,omitempty"`
	Unit              *string `json:"unit,omitempty"`
	LowStockThreshold *string `json:"low_stock_threshold,omitempty"`
}

type RestockRequest struct {
	Quantity  string `json:"quantity" binding:"required"`
	TotalCost string `json:"total_cost" binding:"required"`
}

type WasteRequest struct {
	Quantity string `json:"quantity" binding:"required"`
}

func (h *InventoryHandler) ListIngredients(c *gin.Context) {
	var ingredients []models.Ingredient
	if err := h.db.Order("name asc").Find(&ingredients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Database error fetching ingredients"))
		return
	}
	c.JSON(http.StatusOK, successResponse("Ingredients retrieved", ingredients))
}

func (h *InventoryHandler) CreateIngredient(c *gin.Context) {
	var req CreateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ingredient := models.Ingredient{
		Name:              req.Name,
		Unit:              req.Unit,
		Stock:             parseMoney(req.Stock),
		UnitCost:          parseMoney(req.UnitCost),
		LowStockThreshold: parseMoney(req.LowStockThreshold),
	}
	if err := h.db.Create(&ingredient).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create ingredient"))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Ingredient created", ingredient))
}

func (h *InventoryHandler) findIngredient(c *gin.Context) (*models.Ingredient, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid ingredient ID"))
		return nil, false
	}

	var ingredient models.Ingredient
	if err := h.db.First(&ingredient, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, errorResponse("Ingredient not found"))
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Database error"))
		return nil, false
	}

	return &ingredient, true
}

func (h *InventoryHandler) UpdateIngredient(c *gin.Context) {
	var req UpdateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ingredient, ok := h.findIngredient(c)
	if !ok {
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.LowStockThreshold != nil {
		updates["low_stock_threshold"] = parseMoney(*req.LowStockThreshold)
	}
	if len(updates) > 0 {
		if err := h.db.Model(ingredient).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, errorResponse("Failed to update ingredient"))
			return
		}
	}

	c.JSON(http.StatusOK, successResponse("Ingredient updated", ingredient))
}

func (h *InventoryHandler) DeleteIngredient(c *gin.Context) {
	ingredient, ok := h.findIngredient(c)
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ingredient_id = ?", ingredient.ID).Delete(&models.RecipeItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(ingredient).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to delete ingredient"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Ingredient deleted", nil))
}

// Restock adds purchased quantity to stock and refreshes the unit cost
// from the purchase price.
func (h *InventoryHandler) Restock(c *gin.Context) {
	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil || !quantity.IsPositive() {
		c.JSON(http.StatusBadRequest, errorResponse("Quantity must be a positive number"))
		return
	}
	totalCost, err := decimal.NewFromString(req.TotalCost)
	if err != nil || totalCost.IsNegative() {
		c.JSON(http.StatusBadRequest, errorResponse("Total cost must be a non-negative number"))
		return
	}

	ingredient, ok := h.findIngredient(c)
	if !ok {
		return
	}

	stock, err := decimal.NewFromString(ingredient.Stock)
	if err != nil {
		stock = decimal.Zero
	}

	updates := map[string]interface{}{
		"stock":     stock.Add(quantity).String(),
		"unit_cost": totalCost.DivRound(quantity, 4).String(),
	}
	if err := h.db.Model(ingredient).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to restock ingredient"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Ingredient restocked", ingredient))
}

// RecordWaste subtracts spoiled quantity, flooring the stock at zero.
func (h *InventoryHandler) RecordWaste(c *gin.Context) {
	var req WasteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil || !quantity.IsPositive() {
		c.JSON(http.StatusBadRequest, errorResponse("Quantity must be a positive number"))
		return
	}

	ingredient, ok := h.findIngredient(c)
	if !ok {
		return
	}

	stock, err := decimal.NewFromString(ingredient.Stock)
	if err != nil {
		stock = decimal.Zero
	}
	newStock := stock.Sub(quantity)
	if newStock.IsNegative() {
		newStock = decimal.Zero
	}

	if err := h.db.Model(ingredient).Update("stock", newStock.String()).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to record waste"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Waste recorded", ingredient))
}

// ListLowStock returns ingredients at or below their threshold, for the
// inventory dashboard's alert strip.
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	var ingredients []models.Ingredient
	if err := h.db.Find(&ingredients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Database error fetching ingredients"))
		return
	}

	low := make([]models.Ingredient, 0)
	for _, ing := range ingredients {
		stock, err := decimal.NewFromString(ing.Stock)
		if err != nil {
			continue
		}
		threshold, err := decimal.NewFromString(ing.LowStockThreshold)
		if err != nil || threshold.IsZero() {
			continue
		}
		if stock.LessThanOrEqual(threshold) {
			low = append(low, ing)
		}
	}

	c.JSON(http.StatusOK, successResponse("Low stock ingredients retrieved", low))
}
