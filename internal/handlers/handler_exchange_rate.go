package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_company_currency/internal/core/ports/services"
	"github.com/SscSPs/invoice_company_currency/internal/dto"
	"github.com/SscSPs/invoice_company_currency/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
	now                 func() time.Time
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
		now:                 time.Now,
	}
}

// registerExchangeRateRoutes registers routes related to exchange rates and conversions.
func registerExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(exchangeRateService)

	exchangeRates := rg.Group("/exchange-rates")
	{
		exchangeRates.POST("", h.createExchangeRate)
		exchangeRates.GET("/:from/:to", h.getExchangeRate)
	}
	rg.GET("/conversions", h.convertAmount)
}

// createExchangeRate godoc
// @Summary Create a new exchange rate
// @Description Adds the rate between two currencies effective from a date. A rate for the same pair and date is replaced.
// @Tags exchange rates
// @Accept  json
// @Produce  json
// @Param   rate body dto.CreateExchangeRateRequest true "Exchange Rate details"
// @Success 201 {object} dto.ExchangeRateResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Security BearerAuth
// @Router /exchange-rates [post]
func (h *exchangeRateHandler) createExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateExchangeRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID))
	logger.Info("Received request to create exchange rate",
		slog.String("from", req.FromCurrencyCode),
		slog.String("to", req.ToCurrencyCode),
		slog.String("rate", req.Rate.String()),
		slog.Time("date_effective", req.DateEffective),
	)

	createdRate, err := h.exchangeRateService.CreateExchangeRate(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondError(c, logger, err, "Failed to create exchange rate")
		return
	}

	logger.Info("Exchange rate created successfully", slog.String("rate_id", createdRate.ExchangeRateID))
	c.JSON(http.StatusCreated, dto.ToExchangeRateResponse(createdRate))
}

// getExchangeRate godoc
// @Summary Get an exchange rate
// @Description Retrieves the rate in force for a currency pair on a date, or the latest rate when no date is given
// @Tags exchange rates
// @Produce  json
// @Param   from path string true "From Currency Code (3 letters)"
// @Param   to   path string true "To Currency Code (3 letters)"
// @Param   date query string false "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.ExchangeRateResponse
// @Failure 404 {object} map[string]string "Exchange rate not found"
// @Security BearerAuth
// @Router /exchange-rates/{from}/{to} [get]
func (h *exchangeRateHandler) getExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	fromCode := strings.ToUpper(c.Param("from"))
	toCode := strings.ToUpper(c.Param("to"))

	if len(fromCode) != 3 || len(toCode) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Currency codes must be 3 letters"})
		return
	}
	var query dto.ExchangeRateQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("from_code", fromCode), slog.String("to_code", toCode), slog.String("date", query.Date))
	logger.Info("Received request to get exchange rate")

	var (
		rate *domain.ExchangeRate
		err  error
	)
	if query.Date == "" {
		rate, err = h.exchangeRateService.GetExchangeRate(c.Request.Context(), fromCode, toCode)
	} else {
		asOf, _ := time.Parse(dateLayout, query.Date)
		rate, err = h.exchangeRateService.GetExchangeRateAsOf(c.Request.Context(), fromCode, toCode, asOf)
	}
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve exchange rate")
		return
	}

	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// convertAmount godoc
// @Summary Convert an amount between currencies
// @Description Converts with the rate in force on the date (today by default), rounded to the target currency unless round=false
// @Tags exchange rates
// @Produce  json
// @Param   from query string true "From Currency Code"
// @Param   to query string true "To Currency Code"
// @Param   amount query string true "Amount"
// @Param   date query string false "Date (YYYY-MM-DD)"
// @Param   round query bool false "Round to the target currency"
// @Success 200 {object} dto.ConvertAmountResponse
// @Security BearerAuth
// @Router /conversions [get]
func (h *exchangeRateHandler) convertAmount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var query dto.ConvertAmountQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.Warn("Failed to bind conversion query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	amount, err := decimal.NewFromString(query.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	asOf := domain.DateOnly(h.now())
	if query.Date != "" {
		asOf, _ = time.Parse(dateLayout, query.Date)
	}
	round := query.Round == nil || *query.Round

	converted, err := h.exchangeRateService.ConvertAmount(c.Request.Context(), amount, query.From, query.To, round, asOf)
	if err != nil {
		respondError(c, logger.With(slog.String("from", query.From), slog.String("to", query.To)), err, "Failed to convert amount")
		return
	}

	c.JSON(http.StatusOK, dto.ConvertAmountResponse{
		From:            query.From,
		To:              query.To,
		Amount:          amount,
		ConvertedAmount: converted,
		Date:            asOf.Format(dateLayout),
	})
}
