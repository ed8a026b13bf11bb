package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_company_currency/internal/core/ports/services"
	"github.com/SscSPs/invoice_company_currency/internal/dto"
	"github.com/SscSPs/invoice_company_currency/internal/middleware"
	"github.com/gin-gonic/gin"
)

type workflowAction func(ctx context.Context, invoiceIDs []string, userID string) ([]domain.Invoice, error)

// invoiceHandler handles HTTP requests related to invoices and their workflow.
type invoiceHandler struct {
	invoiceService portssvc.InvoiceSvcFacade
	actions        map[string]workflowAction
}

func newInvoiceHandler(is portssvc.InvoiceSvcFacade) *invoiceHandler {
	return &invoiceHandler{
		invoiceService: is,
		actions: map[string]workflowAction{
			"validate": is.ValidateInvoices,
			"post":     is.PostInvoices,
			"draft":    is.DraftInvoices,
			"cancel":   is.CancelInvoices,
		},
	}
}

// registerInvoiceRoutes registers invoice CRUD, per-invoice workflow actions and
// the batch workflow endpoint.
func registerInvoiceRoutes(rg *gin.RouterGroup, invoiceService portssvc.InvoiceSvcFacade) {
	h := newInvoiceHandler(invoiceService)

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.createInvoice)
		invoices.GET("", h.listInvoices)
		invoices.GET("/:id", h.getInvoice)
		invoices.PATCH("/:id", h.updateInvoice)
		invoices.GET("/:id/taxes", h.getInvoiceTaxes)
		invoices.GET("/:id/lines", h.getInvoiceLines)
		invoices.POST("/:id/copy", h.copyInvoice)
		for name := range h.actions {
			invoices.POST("/:id/"+name, h.runSingleAction(name))
		}
	}
	rg.POST("/invoice-workflow/:action", h.runBatchAction)
}

// createInvoice godoc
// @Summary Create a draft invoice
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   invoice body dto.CreateInvoiceRequest true "Invoice details"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid input or unknown company/currency"
// @Security BearerAuth
// @Router /invoices [post]
func (h *invoiceHandler) createInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateInvoice", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondError(c, logger, err, "Failed to create invoice")
		return
	}
	c.JSON(http.StatusCreated, dto.ToInvoiceResponse(invoice, nil))
}

// getInvoice godoc
// @Summary Get an invoice with its company-currency amounts
// @Tags invoices
// @Produce  json
// @Param   id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	invoiceID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("invoice_id", invoiceID))

	invoice, valuation, err := h.invoiceService.GetInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice, valuation))
}

// listInvoices godoc
// @Summary List the invoices of a company
// @Description Newest first. Pass nextToken from the previous page to continue.
// @Tags invoices
// @Produce  json
// @Param   companyID query string true "Company ID"
// @Param   limit query int false "Page size (max 100)"
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListInvoicesResponse
// @Security BearerAuth
// @Router /invoices [get]
func (h *invoiceHandler) listInvoices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListInvoicesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListInvoices", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	invoices, amounts, nextToken, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger.With(slog.String("company_id", params.CompanyID)), err, "Failed to list invoices")
		return
	}

	res := dto.ListInvoicesResponse{Invoices: make([]dto.InvoiceResponse, len(invoices)), NextToken: nextToken}
	for i := range invoices {
		item := dto.ToInvoiceResponse(&invoices[i], nil)
		if a, ok := amounts[invoices[i].InvoiceID]; ok {
			item.CompanyUntaxedAmount, item.CompanyTaxAmount, item.CompanyTotalAmount = a.Untaxed, a.Tax, a.Total
		}
		res.Invoices[i] = item
	}
	c.JSON(http.StatusOK, res)
}

// updateInvoice godoc
// @Summary Edit a draft invoice
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   id path string true "Invoice ID"
// @Param   invoice body dto.UpdateInvoiceRequest true "Fields to change"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invoice is not a draft"
// @Security BearerAuth
// @Router /invoices/{id} [patch]
func (h *invoiceHandler) updateInvoice(c *gin.Context) {
	invoiceID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("invoice_id", invoiceID))
	var req dto.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateInvoice", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), invoiceID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice, nil))
}

func (h *invoiceHandler) copyInvoice(c *gin.Context) {
	invoiceID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("invoice_id", invoiceID))

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	dup, err := h.invoiceService.CopyInvoice(c.Request.Context(), invoiceID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to copy invoice")
		return
	}
	c.JSON(http.StatusCreated, dto.ToInvoiceResponse(dup, nil))
}

func (h *invoiceHandler) getInvoiceTaxes(c *gin.Context) {
	invoiceID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("invoice_id", invoiceID))

	invoice, amounts, err := h.invoiceService.GetTaxCompanyAmounts(c.Request.Context(), invoiceID)
	if err != nil {
		respondError(c, logger, err, "Failed to compute tax company amounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceTaxResponses(invoice, amounts))
}

func (h *invoiceHandler) getInvoiceLines(c *gin.Context) {
	invoiceID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("invoice_id", invoiceID))

	invoice, amounts, err := h.invoiceService.GetLineCompanyAmounts(c.Request.Context(), invoiceID)
	if err != nil {
		respondError(c, logger, err, "Failed to compute line company amounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceLineResponses(invoice, amounts))
}

func (h *invoiceHandler) runSingleAction(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.runAction(c, name, []string{c.Param("id")})
	}
}

// runBatchAction godoc
// @Summary Apply a workflow action to many invoices at once
// @Description Action is one of validate, post, draft, cancel. All invoices change in one transaction or none does.
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   action path string true "Workflow action"
// @Param   invoices body dto.InvoiceIDsRequest true "Invoice IDs"
// @Success 200 {array} dto.InvoiceResponse
// @Security BearerAuth
// @Router /invoice-workflow/{action} [post]
func (h *invoiceHandler) runBatchAction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.InvoiceIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for invoice workflow", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	h.runAction(c, c.Param("action"), req.InvoiceIDs)
}

func (h *invoiceHandler) runAction(c *gin.Context, name string, invoiceIDs []string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("action", name))
	action, ok := h.actions[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown invoice action: " + name})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	invoices, err := action(c.Request.Context(), invoiceIDs, userID)
	if err != nil {
		respondError(c, logger.With(slog.Any("invoice_ids", invoiceIDs)), err, "Failed to "+name+" invoices")
		return
	}

	res := make([]dto.InvoiceResponse, len(invoices))
	for i := range invoices {
		res[i] = dto.ToInvoiceResponse(&invoices[i], nil)
	}
	c.JSON(http.StatusOK, res)
}
