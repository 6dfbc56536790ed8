package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"comanda-system/internal/database/models"
	"comanda-system/internal/pricing"
)

const (
	PromotionTypePercentage = "percentage"
	PromotionTypeFixed      = "fixed"
	PromotionTypeBogo       = "bogo"
	PromotionTypeQuantity   = "quantity"

	AppliesToProduct  = "product"
	AppliesToCategory = "category"
)

type PromotionHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewPromotionHandler(db *gorm.DB, redisClient *redis.Client) *PromotionHandler {
	return &PromotionHandler{
		db:    db,
		redis: redisClient,
	}
}

func (h *PromotionHandler) invalidatePromotionCache(ctx context.Context) {
	_ = h.redis.Del(ctx, PROMOTIONS_CACHE_KEY)
}

// promotionRule converts a stored promotion row into a pricing rule.
// Malformed rows are tolerated: an unparseable discount value becomes zero,
// a non-positive required quantity becomes 2, and an unknown type yields nil
// so the caller skips it.
func promotionRule(p models.Promotion) pricing.Rule {
	window := pricing.Window{
		Active: p.IsActive,
		Start:  p.StartDate,
		End:    p.EndDate,
	}

	value, err := decimal.NewFromString(p.DiscountValue)
	if err != nil {
		value = decimal.Zero
	}

	kind := pricing.TargetProduct
	if p.AppliesTo == AppliesToCategory {
		kind = pricing.TargetCategory
	}
	target := pricing.Target{Kind: kind, ID: strconv.Itoa(int(p.TargetID))}

	switch p.Type {
	case PromotionTypePercentage:
		return pricing.Percentage{PromoName: p.Name, Window: window, Target: target, Percent: value}
	case PromotionTypeFixed:
		return pricing.FixedAmount{PromoName: p.Name, Window: window, Target: target, Amount: value}
	case PromotionTypeBogo:
		return pricing.BuyOneGetOne{PromoName: p.Name, Window: window, Target: target}
	case PromotionTypeQuantity:
		required := int(p.RequiredQuantity)
		if required <= 0 {
			required = 2
		}
		return pricing.QuantityBonus{
			PromoName:        p.Name,
			Window:           window,
			ProductID:        strconv.Itoa(int(p.TargetID)),
			RequiredQuantity: required,
			Bonus:            value,
		}
	}
	return nil
}

// promotionRules maps rows to rules, dropping rows with an unknown type.
func promotionRules(promotions []models.Promotion) []pricing.Rule {
	rules := make([]pricing.Rule, 0, len(promotions))
	for _, p := range promotions {
		if r := promotionRule(p); r != nil {
			rules = append(rules, r)
		}
	}
	return rules
}

type CreatePromotionRequest struct {
	Name             string  `json:"name" binding:"required"`
	Type             string  `json:"type" binding:"required,oneof=percentage fixed bogo quantity"`
	AppliesTo        string  `json:"applies_to" binding:"omitempty,oneof=product category"`
	TargetID         int32   `json:"target_id" binding:"required"`
	DiscountValue    string  `json:"discount_value"`
	RequiredQuantity *int32  `json:"required_quantity,omitempty"`
	StartDate        *string `json:"start_date,omitempty"`
	EndDate          *string `json:"end_date,omitempty"`
}

type UpdatePromotionRequest struct {
	Name             *string `json:"name,omitempty"`
	DiscountValue    *string `json:"discount_value,omitempty"`
	RequiredQuantity *int32  `json:"required_quantity,omitempty"`
	IsActive         *bool   `json:"is_active,omitempty"`
	StartDate        *string `json:"start_date,omitempty"`
	EndDate          *string `json:"end_date,omitempty"`
}

func parseDateString(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", *s, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

func (h *PromotionHandler) CreatePromotion(c *gin.Context) {
	var req CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	// New promotions start active, mirroring the admin workflow of creating
	// first and toggling later.
	promotion := models.Promotion{
		Name:             req.Name,
		Type:             req.Type,
		AppliesTo:        req.AppliesTo,
		TargetID:         req.TargetID,
		DiscountValue:    parseMoney(req.DiscountValue),
		RequiredQuantity: 2,
		IsActive:         true,
		StartDate:        parseDateString(req.StartDate),
		EndDate:          parseDateString(req.EndDate),
	}
	if req.Type != PromotionTypeQuantity && req.AppliesTo == "" {
		promotion.AppliesTo = AppliesToProduct
	}
	if req.RequiredQuantity != nil && *req.RequiredQuantity > 0 {
		promotion.RequiredQuantity = *req.RequiredQuantity
	}

	if err := h.db.Create(&promotion).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create promotion"))
		return
	}

	h.invalidatePromotionCache(c.Request.Context())
	c.JSON(http.StatusCreated, successResponse("Promotion created", promotion))
}

func (h *PromotionHandler) ListPromotions(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("is_active") == "" {
		if cached, err := h.redis.Get(ctx, PROMOTIONS_CACHE_KEY).Result(); err == nil {
			var promotions []models.Promotion
			if json.Unmarshal([]byte(cached), &promotions) == nil {
				c.JSON(http.StatusOK, successResponse("Promotions retrieved", promotions))
				return
			}
		}
	}

	query := h.db.Order("created_at desc")
	if isActive := c.Query("is_active"); isActive != "" {
		active, err := strconv.ParseBool(isActive)
		if err == nil {
			query = query.Where("is_active = ?", active)
		}
	}

	var promotions []models.Promotion
	if err := query.Find(&promotions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to list promotions"))
		return
	}

	if c.Query("is_active") == "" {
		if payload, err := json.Marshal(promotions); err == nil {
			_ = h.redis.Set(ctx, PROMOTIONS_CACHE_KEY, payload, CACHE_TTL_SHORT)
		}
	}

	c.JSON(http.StatusOK, successResponse("Promotions retrieved", promotions))
}

func (h *PromotionHandler) UpdatePromotion(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid promotion ID"))
		return
	}

	var req UpdatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.DiscountValue != nil {
		updates["discount_value"] = parseMoney(*req.DiscountValue)
	}
	if req.RequiredQuantity != nil {
		required := *req.RequiredQuantity
		if required <= 0 {
			required = 2
		}
		updates["required_quantity"] = required
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.StartDate != nil {
		updates["start_date"] = parseDateString(req.StartDate)
	}
	if req.EndDate != nil {
		updates["end_date"] = parseDateString(req.EndDate)
	}

	result := h.db.Model(&models.Promotion{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to update promotion"))
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, errorResponse("Promotion not found"))
		return
	}

	h.invalidatePromotionCache(c.Request.Context())
	c.JSON(http.StatusOK, successResponse("Promotion updated", nil))
}

func (h *PromotionHandler) DeletePromotion(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid promotion ID"))
		return
	}

	result := h.db.Delete(&models.Promotion{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to delete promotion"))
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, errorResponse("Promotion not found"))
		return
	}

	h.invalidatePromotionCache(c.Request.Context())
	c.JSON(http.StatusOK, successResponse("Promotion deleted", nil))
}
