package handlers

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"comanda-system/internal/database/models"
	"comanda-system/internal/events"
	"comanda-system/internal/pricing"
	"comanda-system/internal/server/middleware"
)

var orderLogger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "orders").Logger()

const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"

	OrderTypeDineIn   = "dine_in"
	OrderTypeTakeaway = "takeaway"
	OrderTypeDelivery = "delivery"
)

// validTransitions is the kitchen workflow: orders move forward only, and
// anything not yet completed can be cancelled.
var validTransitions = map[string][]string{
	OrderStatusPending:   {OrderStatusPreparing, OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusCompleted, OrderStatusCancelled},
}

type OrderHandler struct {
	db        *gorm.DB
	publisher *events.Publisher
}

func NewOrderHandler(db *gorm.DB, publisher *events.Publisher) *OrderHandler {
	return &OrderHandler{
		db:        db,
		publisher: publisher,
	}
}

// --- Requests ---

// OrderItemRequest is one physical unit; pressing a product button twice
// sends two entries. The optional note belongs to this unit alone.
type OrderItemRequest struct {
	ProductID int32  `json:"product_id" binding:"required"`
	Note      string `json:"note,omitempty"`
}

type QuoteRequest struct {
	Items        []OrderItemRequest `json:"items" binding:"required"`
	ShippingCost string             `json:"shipping_cost,omitempty"`
}

type CreateOrderRequest struct {
	OrderType     string             `json:"order_type" binding:"required,oneof=dine_in takeaway delivery"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1"`
	PaymentMethod string             `json:"payment_method" binding:"required"`
	TableID       *string            `json:"table_id,omitempty"`
	TableName     *string            `json:"table_name,omitempty"`
	ClientName    *string            `json:"client_name,omitempty"`
	ClientPhone   *string            `json:"client_phone,omitempty"`
	ClientAddr    *string            `json:"client_address,omitempty"`
	ShippingCost  string             `json:"shipping_cost,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=preparing completed cancelled"`
}

type totalsResponse struct {
	Subtotal             string `json:"subtotal"`
	Discount             string `json:"discount"`
	ShippingCost         string `json:"shipping_cost"`
	FinalTotal           string `json:"final_total"`
	AppliedPromotionName string `json:"applied_promotion_name,omitempty"`
}

func toTotalsResponse(t pricing.Totals) totalsResponse {
	return totalsResponse{
		Subtotal:             t.Subtotal.StringFixed(2),
		Discount:             t.Discount.StringFixed(2),
		ShippingCost:         t.ShippingCost.StringFixed(2),
		FinalTotal:           t.FinalTotal.StringFixed(2),
		AppliedPromotionName: t.AppliedPromotionName,
	}
}

// --- Helpers ---

// buildInstances resolves each requested unit against the product catalog,
// snapshotting its price. A product's malformed price is tolerated as zero.
func (h *OrderHandler) buildInstances(items []OrderItemRequest) ([]pricing.LineItemInstance, map[int32]models.Product, error) {
	ids := make([]int32, 0, len(items))
	seen := make(map[int32]bool)
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	var products []models.Product
	if err := h.db.Preload("Recipe").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, nil, err
	}

	byID := make(map[int32]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	instances := make([]pricing.LineItemInstance, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, nil, fmt.Errorf("product %d not found", item.ProductID)
		}
		price, err := decimal.NewFromString(product.Price)
		if err != nil {
			price = decimal.Zero
		}
		instances = append(instances, pricing.LineItemInstance{
			InstanceID: uuid.NewString(),
			ProductID:  strconv.Itoa(int(product.ID)),
			CategoryID: strconv.Itoa(int(product.CategoryID)),
			UnitPrice:  price,
			Note:       item.Note,
		})
	}

	return instances, byID, nil
}

func (h *OrderHandler) loadRules() ([]pricing.Rule, error) {
	var promotions []models.Promotion
	if err := h.db.Find(&promotions).Error; err != nil {
		return nil, err
	}
	return promotionRules(promotions), nil
}

// rollupNotes flattens the notes of a group's instances into one line,
// e.g. "(x2) no onions; extra cheese".
func rollupNotes(instances []pricing.LineItemInstance) string {
	counts := make(map[string]int)
	var order []string
	for _, inst := range instances {
		note := strings.TrimSpace(inst.Note)
		if note == "" {
			continue
		}
		if counts[note] == 0 {
			order = append(order, note)
		}
		counts[note]++
	}

	parts := make([]string, 0, len(order))
	for _, note := range order {
		if counts[note] > 1 {
			parts = append(parts, fmt.Sprintf("(x%d) %s", counts[note], note))
		} else {
			parts = append(parts, note)
		}
	}
	return strings.Join(parts, "; ")
}

// nextFolio numbers the order within its day: #YYYYMMDD-NN.
func (h *OrderHandler) nextFolio(tx *gorm.DB, now time.Time) (string, error) {
	y, m, d := now.Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	var count int64
	if err := tx.Model(&models.Order{}).Where("created_at >= ?", startOfDay).Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("#%s-%02d", now.Format("20060102"), count+1), nil
}

func parseShipping(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// deductStock consumes each ordered product's recipe from the ingredient
// stock. Stock may go negative; the usage counter tracks how often an
// ingredient is consumed.
func deductStock(tx *gorm.DB, groups []pricing.GroupedLineItem, products map[int32]models.Product) error {
	type deduction struct {
		ingredientID int32
		quantity     decimal.Decimal
	}
	var order []int32
	totals := make(map[int32]decimal.Decimal)

	for _, g := range groups {
		id, _ := strconv.Atoi(g.ProductID)
		product, ok := products[int32(id)]
		if !ok {
			continue
		}
		for _, r := range product.Recipe {
			perUnit, err := decimal.NewFromString(r.Quantity)
			if err != nil {
				continue
			}
			needed := perUnit.Mul(decimal.NewFromInt(int64(g.Quantity)))
			if _, ok := totals[r.IngredientID]; !ok {
				order = append(order, r.IngredientID)
			}
			totals[r.IngredientID] = totals[r.IngredientID].Add(needed)
		}
	}

	for _, id := range order {
		var ingredient models.Ingredient
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ingredient, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return err
		}

		stock, err := decimal.NewFromString(ingredient.Stock)
		if err != nil {
			stock = decimal.Zero
		}
		newStock := stock.Sub(totals[id])

		updates := map[string]interface{}{
			"stock":       newStock.String(),
			"usage_count": ingredient.UsageCount + 1,
		}
		if err := tx.Model(&ingredient).Updates(updates).Error; err != nil {
			return err
		}
	}

	return nil
}

// --- Handlers ---

// QuoteOrder prices a cart without persisting anything. The POS screen
// calls this on every cart change to show live totals.
func (h *OrderHandler) QuoteOrder(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	if len(req.Items) == 0 {
		c.JSON(http.StatusOK, successResponse("Totals computed", toTotalsResponse(pricing.ComputeTotals(nil, nil, decimal.Zero, time.Now()))))
		return
	}

	instances, _, err := h.buildInstances(req.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	rules, err := h.loadRules()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to load promotions"))
		return
	}

	totals := pricing.ComputeTotals(pricing.GroupItems(instances), rules, parseShipping(req.ShippingCost), time.Now())
	c.JSON(http.StatusOK, successResponse("Totals computed", toTotalsResponse(totals)))
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	instances, products, err := h.buildInstances(req.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	rules, err := h.loadRules()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to load promotions"))
		return
	}

	now := time.Now()
	groups := pricing.GroupItems(instances)
	totals := pricing.ComputeTotals(groups, rules, parseShipping(req.ShippingCost), now)

	var createdBy *int64
	if id, ok := c.Get(middleware.ContextUserID); ok {
		if userID, ok := id.(int64); ok {
			createdBy = &userID
		}
	}

	order := models.Order{
		OrderType:         req.OrderType,
		Status:            OrderStatusPending,
		TableID:           req.TableID,
		TableName:         req.TableName,
		ClientName:        req.ClientName,
		ClientPhone:       req.ClientPhone,
		ClientAddr:        req.ClientAddr,
		PaymentMethod:     req.PaymentMethod,
		Subtotal:          totals.Subtotal.StringFixed(2),
		DiscountAmount:    totals.Discount.StringFixed(2),
		ShippingCost:      totals.ShippingCost.StringFixed(2),
		TotalAmount:       totals.FinalTotal.StringFixed(2),
		AppliedPromotions: totals.AppliedPromotionName,
		CreatedBy:         createdBy,
	}

	for _, g := range groups {
		id, _ := strconv.Atoi(g.ProductID)
		product := products[int32(id)]
		order.Lines = append(order.Lines, models.OrderLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   g.UnitPrice.StringFixed(2),
			Quantity:    int32(g.Quantity),
			Notes:       strPtr(rollupNotes(g.Instances)),
		})
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		folio, err := h.nextFolio(tx, now)
		if err != nil {
			return err
		}
		order.Folio = folio

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return deductStock(tx, groups, products)
	})
	if err != nil {
		orderLogger.Error().Err(err).Msg("failed to create order")
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create order"))
		return
	}

	tableName := ""
	if order.TableName != nil {
		tableName = *order.TableName
	}
	h.publisher.PublishOrderEvent(c.Request.Context(), events.OrderEvent{
		Event:     events.EventOrderCreated,
		OrderID:   order.ID,
		Folio:     order.Folio,
		Status:    order.Status,
		OrderType: order.OrderType,
		TableName: tableName,
		Total:     order.TotalAmount,
	})

	orderLogger.Info().Str("folio", order.Folio).Str("total", order.TotalAmount).Msg("order created")
	c.JSON(http.StatusCreated, successResponse("Order created", order))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid order ID"))
		return
	}

	var order models.Order
	if err := h.db.Preload("Lines").First(&order, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, errorResponse("Order not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Database error"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Order retrieved", order))
}

type ListOrdersQuery struct {
	Page     int     `form:"page,default=1"`
	PageSize int     `form:"page_size,default=20"`
	Status   *string `form:"status,omitempty"`
	Type     *string `form:"type,omitempty"`
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	var query ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	q := h.db.Model(&models.Order{})
	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}
	if query.Type != nil {
		q = q.Where("order_type = ?", *query.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Database error counting orders"))
		return
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	page := query.Page
	if page <= 0 {
		page = 1
	}

	var orders []models.Order
	if err := q.Preload("Lines").
		Order("created_at desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Database error fetching orders"))
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Orders retrieved", orders, PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}))
}

// ListKitchenOrders returns the queue the kitchen display works through:
// everything pending or preparing, oldest first.
func (h *OrderHandler) ListKitchenOrders(c *gin.Context) {
	var orders []models.Order
	err := h.db.Preload("Lines").
		Where("status IN ?", []string{OrderStatusPending, OrderStatusPreparing}).
		Order("created_at asc").
		Find(&orders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Database error fetching kitchen orders"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Kitchen orders retrieved", orders))
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid order ID"))
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	var order models.Order
	if err := h.db.First(&order, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, errorResponse("Order not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Database error"))
		return
	}

	allowed := false
	for _, next := range validTransitions[order.Status] {
		if next == req.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusConflict, errorResponse(fmt.Sprintf("Cannot move order from %s to %s", order.Status, req.Status)))
		return
	}

	if err := h.db.Model(&order).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to update order status"))
		return
	}

	event := events.EventOrderStatusChanged
	if req.Status == OrderStatusCancelled {
		event = events.EventOrderCancelled
	}
	h.publisher.PublishOrderEvent(c.Request.Context(), events.OrderEvent{
		Event:     event,
		OrderID:   order.ID,
		Folio:     order.Folio,
		Status:    req.Status,
		OrderType: order.OrderType,
		Total:     order.TotalAmount,
	})

	c.JSON(http.StatusOK, successResponse("Order status updated", gin.H{
		"id":     order.ID,
		"status": req.Status,
	}))
}
