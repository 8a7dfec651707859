package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	financeapp "github.com/sparkcode/dashboard/internal/application/finance"
	"github.com/sparkcode/dashboard/internal/domain/finance"
)

// FinanceHandler handles the finance overview and its exports. Every route
// is admin only.
type FinanceHandler struct {
	BaseHandler
	service *financeapp.Service
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(service *financeapp.Service) *FinanceHandler {
	return &FinanceHandler{service: service}
}

// AddTransactionRequest records one income or expense
type AddTransactionRequest struct {
	Description string `json:"description" binding:"required,notblank,max=200" example:"Website project deposit"`
	Amount      string `json:"amount" binding:"required,notblank,max=50" example:"$2,500.00"`
	Date        string `json:"date" binding:"omitempty,datetime=2006-01-02" example:"2026-10-01"`
	Type        string `json:"type" binding:"required,oneof=income expense" example:"income"`
	Status      string `json:"status" binding:"omitempty,oneof=Completed Pending Failed" example:"Completed"`
}

// UpdateTotalsRequest corrects the headline figures. Omitted fields stay.
type UpdateTotalsRequest struct {
	Balance  *string `json:"balance" binding:"omitempty,max=50" example:"$45,230.00"`
	Income   *string `json:"income" binding:"omitempty,max=50"`
	Expenses *string `json:"expenses" binding:"omitempty,max=50"`
}

// Overview godoc
// @Summary      Finance overview
// @Tags         finance
// @Produce      json
// @Success      200 {object} dto.Response{data=FinanceOverviewResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance [get]
func (h *FinanceHandler) Overview(c *gin.Context) {
	o, err := h.service.Overview(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toFinanceOverviewResponse(o))
}

// AddTransaction godoc
// @Summary      Record transaction
// @Tags         finance
// @Accept       json
// @Produce      json
// @Param        request body AddTransactionRequest true "Transaction"
// @Success      201 {object} dto.Response{data=FinanceOverviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/transactions [post]
func (h *FinanceHandler) AddTransaction(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req AddTransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	var date time.Time
	if req.Date != "" {
		// validated by the binding
		date, _ = time.Parse(time.DateOnly, req.Date)
	}
	o, err := h.service.AddTransaction(c.Request.Context(), session, financeapp.AddTransactionInput{
		Description: req.Description,
		Amount:      req.Amount,
		Date:        date,
		Type:        finance.TransactionType(req.Type),
		Status:      finance.TransactionStatus(req.Status),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toFinanceOverviewResponse(o))
}

// UpdateTotals godoc
// @Summary      Update balance, income and expenses
// @Tags         finance
// @Accept       json
// @Produce      json
// @Param        request body UpdateTotalsRequest true "Totals"
// @Success      200 {object} dto.Response{data=FinanceOverviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/totals [patch]
func (h *FinanceHandler) UpdateTotals(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req UpdateTotalsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	o, err := h.service.UpdateTotals(c.Request.Context(), session, finance.Totals{
		Balance:  req.Balance,
		Income:   req.Income,
		Expenses: req.Expenses,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toFinanceOverviewResponse(o))
}

// ExportCSV godoc
// @Summary      Download transactions as CSV
// @Tags         finance
// @Produce      text/csv
// @Success      200 {file} file
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo} "No transactions to download"
// @Security     BearerAuth
// @Router       /finance/export.csv [get]
func (h *FinanceHandler) ExportCSV(c *gin.Context) {
	export, err := h.service.CSV(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.attachment(c, export)
}

// ExportPDF godoc
// @Summary      Download the financial statement
// @Tags         finance
// @Produce      application/pdf
// @Success      200 {file} file
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /finance/statement.pdf [get]
func (h *FinanceHandler) ExportPDF(c *gin.Context) {
	export, err := h.service.StatementPDF(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.attachment(c, export)
}

func (h *FinanceHandler) attachment(c *gin.Context, export *financeapp.Export) {
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, export.ContentType, export.Data)
}
