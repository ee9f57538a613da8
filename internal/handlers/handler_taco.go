package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tacotally/taco_tally_app/internal/core/domain"
	portssvc "github.com/tacotally/taco_tally_app/internal/core/ports/services"
	"github.com/tacotally/taco_tally_app/internal/dto"
	"github.com/tacotally/taco_tally_app/internal/middleware"
)

// tacoHandler handles HTTP requests on the recognition ledger.
type tacoHandler struct {
	tacoService portssvc.TacoSvcFacade
}

// newTacoHandler creates a new tacoHandler.
func newTacoHandler(ts portssvc.TacoSvcFacade) *tacoHandler {
	return &tacoHandler{
		tacoService: ts,
	}
}

// RegisterTacoRoutes registers all ledger-related routes.
func RegisterTacoRoutes(rg *gin.RouterGroup, tacoService portssvc.TacoSvcFacade) {
	h := newTacoHandler(tacoService)

	communities := rg.Group("/communities/:communityID")
	{
		communities.POST("/tacos", h.giveTacos)
		communities.GET("/tacos/recent", h.recentTransactions)
		communities.POST("/tacos/:transactionID/ack", h.acknowledgeTransaction)
		communities.GET("/users/:userID/given-today", h.dailyGivenTotal)
		communities.GET("/users/:userID/history", h.history)
		communities.GET("/stats", h.communityStats)
		communities.GET("/reasons/top", h.topReasons)
	}
}

// giveTacos godoc
// @Summary Give tacos to another user
// @Description Records a recognition award, enforcing the giver's daily quota
// @Tags tacos
// @Accept  json
// @Produce  json
// @Param   communityID path string true "Community ID"
// @Param   award body dto.GiveTacosRequest true "Award details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 429 {object} map[string]interface{} "Daily quota exceeded"
// @Failure 503 {object} map[string]string "Store unavailable"
// @Router /communities/{communityID}/tacos [post]
func (h *tacoHandler) giveTacos(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.GiveTacosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for give tacos request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	req.CommunityID = c.Param("communityID")

	txn, err := h.tacoService.GiveTacos(c.Request.Context(), req)
	if err != nil {
		logger.Warn("Failed to give tacos", slog.String("giver_id", req.GiverID), slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// recentTransactions godoc
// @Summary List recent awards of a community
// @Tags tacos
// @Produce  json
// @Param   communityID path string true "Community ID"
// @Param   limit query int false "Maximum entries" default(10)
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 503 {object} map[string]string "Store unavailable"
// @Router /communities/{communityID}/tacos/recent [get]
func (h *tacoHandler) recentTransactions(c *gin.Context) {
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	txns, err := h.tacoService.RecentTransactions(c.Request.Context(), c.Param("communityID"), params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns))
}

// acknowledgeTransaction godoc
// @Summary Acknowledge a recorded award
// @Tags tacos
// @Produce  json
// @Param   communityID path string true "Community ID"
// @Param   transactionID path string true "Transaction ID"
// @Success 204 "Acknowledged"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Router /communities/{communityID}/tacos/{transactionID}/ack [post]
func (h *tacoHandler) acknowledgeTransaction(c *gin.Context) {
	if err := h.tacoService.AcknowledgeTransaction(c.Request.Context(), c.Param("transactionID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// dailyGivenTotal godoc
// @Summary Get a giver's consumed daily quota
// @Tags tacos
// @Produce  json
// @Param   communityID path string true "Community ID"
// @Param   userID path string true "User ID"
// @Success 200 {object} dto.QuotaResponse
// @Failure 503 {object} map[string]string "Store unavailable"
// @Router /communities/{communityID}/users/{userID}/given-today [get]
func (h *tacoHandler) dailyGivenTotal(c *gin.Context) {
	giverID := c.Param("userID")
	communityID := c.Param("communityID")

	total, err := h.tacoService.DailyGivenTotal(c.Request.Context(), giverID, communityID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.QuotaResponse{
		GiverID:     giverID,
		CommunityID: communityID,
		GivenToday:  total,
	})
}

// history godoc
// @Summary List a user's award history
// @Tags tacos
// @Produce  json
// @Param   communityID path string true "Community ID"
// @Param   userID path string true "User ID"
// @Param   direction query string false "given or received" default(received)
// @Param   limit query int false "Maximum entries" default(20)
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid direction"
// @Router /communities/{communityID}/users/{userID}/history [get]
func (h *tacoHandler) history(c *gin.Context) {
	var params dto.HistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID := c.Param("userID")
	communityID := c.Param("communityID")

	var (
		txns []domain.TacoTransaction
		err  error
	)
	if params.Direction == string(domain.MetricGiven) {
		txns, err = h.tacoService.GivingHistory(c.Request.Context(), userID, communityID, params.Limit)
	} else {
		txns, err = h.tacoService.ReceivingHistory(c.Request.Context(), userID, communityID, params.Limit)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns))
}

// communityStats godoc
// @Summary Summarise ledger activity of a community
// @Tags tacos
// @Produce  json
// @Param   communityID path string true "Community ID"
// @Success 200 {object} domain.CommunityStats
// @Failure 503 {object} map[string]string "Store unavailable"
// @Router /communities/{communityID}/stats [get]
func (h *tacoHandler) communityStats(c *gin.Context) {
	stats, err := h.tacoService.CommunityStats(c.Request.Context(), c.Param("communityID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// topReasons godoc
// @Summary List the most frequent award reasons of a community
// @Tags tacos
// @Produce  json
// @Param   communityID path string true "Community ID"
// @Param   limit query int false "Maximum entries" default(5)
// @Success 200 {array} domain.ReasonCount
// @Failure 503 {object} map[string]string "Store unavailable"
// @Router /communities/{communityID}/reasons/top [get]
func (h *tacoHandler) topReasons(c *gin.Context) {
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	reasons, err := h.tacoService.TopReasons(c.Request.Context(), c.Param("communityID"), params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reasons)
}
