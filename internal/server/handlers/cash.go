package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"comanda-system/internal/database/models"
	"comanda-system/internal/events"
	"comanda-system/internal/server/middleware"
)

var cashLogger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "cash").Logger()

const (
	MovementTypeIncome  = "income"
	MovementTypeExpense = "expense"

	PaymentMethodCash = "cash"
)

type CashHandler struct {
	db        *gorm.DB
	publisher *events.Publisher
}

func NewCashHandler(db *gorm.DB, publisher *events.Publisher) *CashHandler {
	return &CashHandler{
		db:        db,
		publisher: publisher,
	}
}

type OpenRegisterRequest struct {
	InitialCash string `json:"initial_cash" binding:"required"`
}

type CashMovementRequest struct {
	Type    string `json:"type" binding:"required,oneof=income expense"`
	Amount  string `json:"amount" binding:"required"`
	Concept string `json:"concept" binding:"required"`
}

// shiftSummary holds the running numbers of an open register.
type shiftSummary struct {
	InitialCash  decimal.Decimal
	TotalSales   decimal.Decimal
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	ExpectedCash decimal.Decimal
	OrderCount   int64
}

func contextUserID(c *gin.Context) *int64 {
	if id, ok := c.Get(middleware.ContextUserID); ok {
		if userID, ok := id.(int64); ok {
			return &userID
		}
	}
	return nil
}

func (h *CashHandler) openRegister() (*models.CashRegister, error) {
	var register models.CashRegister
	err := h.db.Where("is_open = ?", true).First(&register).Error
	if err != nil {
		return nil, err
	}
	return &register, nil
}

// summarize computes the expected cash of an open register: the opening
// float plus cash sales since opening, plus manual income, minus expenses.
// Cancelled orders never count.
func (h *CashHandler) summarize(register *models.CashRegister) (*shiftSummary, error) {
	initial, err := decimal.NewFromString(register.InitialCash)
	if err != nil {
		initial = decimal.Zero
	}

	var orders []models.Order
	err = h.db.Where("payment_method = ? AND status <> ? AND created_at >= ?",
		PaymentMethodCash, OrderStatusCancelled, register.OpenedAt).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	sales := decimal.Zero
	for _, o := range orders {
		amount, err := decimal.NewFromString(o.TotalAmount)
		if err != nil {
			continue
		}
		sales = sales.Add(amount)
	}

	var movements []models.CashMovement
	if err := h.db.Where("register_id = ?", register.ID).Find(&movements).Error; err != nil {
		return nil, err
	}

	income, expense := decimal.Zero, decimal.Zero
	for _, m := range movements {
		amount, err := decimal.NewFromString(m.Amount)
		if err != nil {
			continue
		}
		switch m.Type {
		case MovementTypeIncome:
			income = income.Add(amount)
		case MovementTypeExpense:
			expense = expense.Add(amount)
		}
	}

	return &shiftSummary{
		InitialCash:  initial,
		TotalSales:   sales,
		TotalIncome:  income,
		TotalExpense: expense,
		ExpectedCash: initial.Add(sales).Add(income).Sub(expense),
		OrderCount:   int64(len(orders)),
	}, nil
}

func (h *CashHandler) OpenRegister(c *gin.Context) {
	var req OpenRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	initial, err := decimal.NewFromString(req.InitialCash)
	if err != nil || initial.IsNegative() {
		c.JSON(http.StatusBadRequest, errorResponse("Initial cash must be a non-negative amount"))
		return
	}

	if _, err := h.openRegister(); err == nil {
		c.JSON(http.StatusConflict, errorResponse("A register is already open"))
		return
	} else if err != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, errorResponse("Database error"))
		return
	}

	now := time.Now()
	register := models.CashRegister{
		IsOpen:      true,
		InitialCash: initial.StringFixed(2),
		OpenedBy:    contextUserID(c),
		OpenedAt:    &now,
	}
	if err := h.db.Create(&register).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to open register"))
		return
	}

	cashLogger.Info().Int64("register_id", register.ID).Str("initial_cash", register.InitialCash).Msg("register opened")
	c.JSON(http.StatusCreated, successResponse("Register opened", register))
}

func (h *CashHandler) GetRegisterStatus(c *gin.Context) {
	register, err := h.openRegister()
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusOK, successResponse("Register status", gin.H{"is_open": false}))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Database error"))
		return
	}

	summary, err := h.summarize(register)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to compute shift summary"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Register status", gin.H{
		"is_open":       true,
		"register":      register,
		"total_sales":   summary.TotalSales.StringFixed(2),
		"total_income":  summary.TotalIncome.StringFixed(2),
		"total_expense": summary.TotalExpense.StringFixed(2),
		"expected_cash": summary.ExpectedCash.StringFixed(2),
		"order_count":   summary.OrderCount,
	}))
}

func (h *CashHandler) AddMovement(c *gin.Context) {
	var req CashMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		c.JSON(http.StatusBadRequest, errorResponse("Amount must be a positive number"))
		return
	}

	register, err := h.openRegister()
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusConflict, errorResponse("No open register"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Database error"))
		return
	}

	movement := models.CashMovement{
		RegisterID: register.ID,
		Type:       req.Type,
		Amount:     amount.StringFixed(2),
		Concept:    req.Concept,
		CreatedBy:  contextUserID(c),
	}
	if err := h.db.Create(&movement).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to record movement"))
		return
	}

	c.JSON(http.StatusCreated, successResponse("Movement recorded", movement))
}

func (h *CashHandler) ListMovements(c *gin.Context) {
	register, err := h.openRegister()
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusConflict, errorResponse("No open register"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Database error"))
		return
	}

	var movements []models.CashMovement
	if err := h.db.Where("register_id = ?", register.ID).Order("created_at desc").Find(&movements).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Database error fetching movements"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Movements retrieved", movements))
}

// CloseRegister archives the shift's numbers and marks the register closed.
func (h *CashHandler) CloseRegister(c *gin.Context) {
	register, err := h.openRegister()
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusConflict, errorResponse("No open register"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Database error"))
		return
	}

	summary, err := h.summarize(register)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to compute shift summary"))
		return
	}

	now := time.Now()
	closedBy := contextUserID(c)
	report := models.ShiftReport{
		RegisterID:   register.ID,
		OpenedAt:     register.OpenedAt,
		ClosedAt:     &now,
		InitialCash:  summary.InitialCash.StringFixed(2),
		TotalSales:   summary.TotalSales.StringFixed(2),
		TotalIncome:  summary.TotalIncome.StringFixed(2),
		TotalExpense: summary.TotalExpense.StringFixed(2),
		ExpectedCash: summary.ExpectedCash.StringFixed(2),
		ClosedBy:     closedBy,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&report).Error; err != nil {
			return err
		}
		return tx.Model(register).Updates(map[string]interface{}{
			"is_open":   false,
			"closed_by": closedBy,
			"closed_at": &now,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to close register"))
		return
	}

	h.publisher.PublishOrderEvent(c.Request.Context(), events.OrderEvent{
		Event:  events.EventShiftClosed,
		Status: "closed",
		Total:  report.ExpectedCash,
	})

	cashLogger.Info().Int64("register_id", register.ID).Str("expected_cash", report.ExpectedCash).Msg("register closed")
	c.JSON(http.StatusOK, successResponse("Register closed", report))
}

func (h *CashHandler) ListShiftReports(c *gin.Context) {
	var query ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
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

	var total int64
	if err := h.db.Model(&models.ShiftReport{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Database error counting reports"))
		return
	}

	var reports []models.ShiftReport
	if err := h.db.Order("closed_at desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&reports).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Database error fetching reports"))
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Shift reports retrieved", reports, PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}))
}
