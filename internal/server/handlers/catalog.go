package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"comanda-system/internal/database/models"
)

var catalogLogger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "catalog").Logger()

type CatalogHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewCatalogHandler(db *gorm.DB, redisClient *redis.Client) *CatalogHandler {
	return &CatalogHandler{
		db:    db,
		redis: redisClient,
	}
}

func (h *CatalogHandler) invalidateCatalogCaches(ctx context.Context) {
	_ = h.redis.Del(ctx, CATALOG_PRODUCTS_CACHE_KEY, CATALOG_CATEGORIES_CACHE_KEY)
}

// --- Categories ---

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	category := models.Category{Name: req.Name}
	if err := h.db.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create category"))
		return
	}

	h.invalidateCatalogCaches(c.Request.Context())
	c.JSON(http.StatusCreated, successResponse("Category created", category))
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	ctx := c.Request.Context()

	if cached, err := h.redis.Get(ctx, CATALOG_CATEGORIES_CACHE_KEY).Result(); err == nil {
		var categories []models.Category
		if json.Unmarshal([]byte(cached), &categories) == nil {
			c.JSON(http.StatusOK, successResponse("Categories retrieved", categories))
			return
		}
	}

	var categories []models.Category
	if err := h.db.Order("name asc").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to list categories"))
		return
	}

	if payload, err := json.Marshal(categories); err == nil {
		_ = h.redis.Set(ctx, CATALOG_CATEGORIES_CACHE_KEY, payload, CACHE_TTL_MEDIUM)
	}

	c.JSON(http.StatusOK, successResponse("Categories retrieved", categories))
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid category ID"))
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	result := h.db.Model(&models.Category{}).Where("id = ?", id).Update("name", req.Name)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to update category"))
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, errorResponse("Category not found"))
		return
	}

	h.invalidateCatalogCaches(c.Request.Context())
	c.JSON(http.StatusOK, successResponse("Category updated", nil))
}

// DeleteCategory removes the category together with all of its products.
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid category ID"))
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var productIDs []int32
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Pluck("id", &productIDs).Error; err != nil {
			return err
		}
		if len(productIDs) > 0 {
			if err := tx.Where("product_id IN ?", productIDs).Delete(&models.RecipeItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("category_id = ?", id).Delete(&models.Product{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Category{}, id).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to delete category"))
		return
	}

	h.invalidateCatalogCaches(c.Request.Context())
	catalogLogger.Info().Int64("category_id", id).Msg("category deleted with its products")
	c.JSON(http.StatusOK, successResponse("Category and its products deleted", nil))
}

// --- Products ---

type RecipeItemRequest struct {
	IngredientID int32  `json:"ingredient_id" binding:"required"`
	Quantity     string `json:"quantity" binding:"required"`
}

type CreateProductRequest struct {
	Name        string              `json:"name" binding:"required"`
	Price       string              `json:"price" binding:"required"`
	CategoryID  int32               `json:"category_id" binding:"required"`
	ImageUrl    *string             `json:"image_url,omitempty"`
	HiddenInPOS bool                `json:"hidden_in_pos"`
	Recipe      []RecipeItemRequest `json:"recipe,omitempty"`
}

type UpdateProductRequest struct {
	Name        *string             `json:"name,omitempty"`
	Price       *string             `json:"price,omitempty"`
	CategoryID  *int32              `json:"category_id,omitempty"`
	ImageUrl    *string             `json:"image_url,omitempty"`
	HiddenInPOS *bool               `json:"hidden_in_pos,omitempty"`
	Recipe      []RecipeItemRequest `json:"recipe,omitempty"`
}

// parseMoney normalizes a request money string, falling back to zero on
// malformed input instead of rejecting it.
func parseMoney(s string) string {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "0"
	}
	return d.String()
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	product := models.Product{
		Name:        req.Name,
		Price:       parseMoney(req.Price),
		CategoryID:  req.CategoryID,
		ImageUrl:    req.ImageUrl,
		HiddenInPOS: req.HiddenInPOS,
	}
	for _, r := range req.Recipe {
		product.Recipe = append(product.Recipe, models.RecipeItem{
			IngredientID: r.IngredientID,
			Quantity:     r.Quantity,
		})
	}

	if err := h.db.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create product"))
		return
	}

	h.invalidateCatalogCaches(c.Request.Context())
	c.JSON(http.StatusCreated, successResponse("Product created", product))
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid product ID"))
		return
	}

	var product models.Product
	if err := h.db.Preload("Category").Preload("Recipe.Ingredient").First(&product, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, errorResponse("Product not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Database error"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Product retrieved", product))
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	// The full menu is read on every POS screen, so the unfiltered listing
	// is served from cache.
	filtered := c.Query("category_id") != "" || c.Query("include_hidden") == "true"
	if !filtered {
		if cached, err := h.redis.Get(ctx, CATALOG_PRODUCTS_CACHE_KEY).Result(); err == nil {
			var products []models.Product
			if json.Unmarshal([]byte(cached), &products) == nil {
				c.JSON(http.StatusOK, successResponse("Products retrieved", products))
				return
			}
		}
	}

	query := h.db.Preload("Category").Order("name asc")
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if c.Query("include_hidden") != "true" {
		query = query.Where("hidden_in_pos = ?", false)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to list products"))
		return
	}

	if !filtered {
		if payload, err := json.Marshal(products); err == nil {
			_ = h.redis.Set(ctx, CATALOG_PRODUCTS_CACHE_KEY, payload, CACHE_TTL_MEDIUM)
		}
	}

	c.JSON(http.StatusOK, successResponse("Products retrieved", products))
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid product ID"))
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	var product models.Product
	if err := h.db.First(&product, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, errorResponse("Product not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Database error"))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Price != nil {
		updates["price"] = parseMoney(*req.Price)
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.ImageUrl != nil {
		updates["image_url"] = *req.ImageUrl
	}
	if req.HiddenInPOS != nil {
		updates["hidden_in_pos"] = *req.HiddenInPOS
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&product).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.Recipe != nil {
			if err := tx.Where("product_id = ?", product.ID).Delete(&models.RecipeItem{}).Error; err != nil {
				return err
			}
			for _, r := range req.Recipe {
				item := models.RecipeItem{
					ProductID:    product.ID,
					IngredientID: r.IngredientID,
					Quantity:     r.Quantity,
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to update product"))
		return
	}

	h.invalidateCatalogCaches(c.Request.Context())
	c.JSON(http.StatusOK, successResponse("Product updated", nil))
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid product ID"))
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.RecipeItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to delete product"))
		return
	}

	h.invalidateCatalogCaches(c.Request.Context())
	c.JSON(http.StatusOK, successResponse("Product deleted", nil))
}
