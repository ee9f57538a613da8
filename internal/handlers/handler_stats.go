package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tacotally/taco_tally_app/internal/core/domain"
	portssvc "github.com/tacotally/taco_tally_app/internal/core/ports/services"
	"github.com/tacotally/taco_tally_app/internal/core/services"
	"github.com/tacotally/taco_tally_app/internal/dto"
	"github.com/tacotally/taco_tally_app/internal/middleware"
)

// statsHandler handles HTTP requests for aggregates and rankings.
type statsHandler struct {
	statsService portssvc.StatsSvcFacade
}

// newStatsHandler creates a new statsHandler.
func newStatsHandler(ss portssvc.StatsSvcFacade) *statsHandler {
	return &statsHandler{
		statsService: ss,
	}
}

// RegisterStatsRoutes registers all aggregate and ranking routes.
func RegisterStatsRoutes(rg *gin.RouterGroup, statsService portssvc.StatsSvcFacade) {
	h := newStatsHandler(statsService)

	communities := rg.Group("/communities/:communityID")
	{
		communities.GET("/leaderboard", h.leaderboard)
		communities.GET("/users/:userID/stats", h.userStats)
		communities.PATCH("/users/:userID/preferences", h.updatePreferences)
	}
}

// leaderboard godoc
// @Summary Rank the community's top users by a metric
// @Description Only users with public stats and a positive value appear
// @Tags stats
// @Produce  json
// @Param   communityID path string true "Community ID"
// @Param   metric query string false "given or received" default(received)
// @Param   limit query int false "Number of entries (1-20)" default(10)
// @Success 200 {object} dto.LeaderboardResponse
// @Failure 400 {object} map[string]string "Invalid metric or limit"
// @Failure 503 {object} map[string]string "Store unavailable"
// @Router /communities/{communityID}/leaderboard [get]
func (h *statsHandler) leaderboard(c *gin.Context) {
	var params dto.LeaderboardParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	communityID := c.Param("communityID")

	entries, err := h.statsService.Leaderboard(c.Request.Context(), communityID, domain.Metric(params.Metric), params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LeaderboardResponse{
		CommunityID: communityID,
		Metric:      params.Metric,
		Entries:     entries,
	})
}

// userStats godoc
// @Summary Get a user's aggregate with ranks and percentiles
// @Tags stats
// @Produce  json
// @Param   communityID path string true "Community ID"
// @Param   userID path string true "User ID"
// @Success 200 {object} dto.StatsWithRankResponse
// @Failure 503 {object} map[string]string "Store unavailable"
// @Router /communities/{communityID}/users/{userID}/stats [get]
func (h *statsHandler) userStats(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	ranked, err := h.statsService.StatsWithRank(c.Request.Context(), c.Param("userID"), c.Param("communityID"))
	if err != nil {
		logger.Warn("Failed to fetch user stats", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	resp := dto.StatsWithRankResponse{
		Stats:        dto.ToUserStatsResponse(&ranked.Stats),
		ReceivedRank: ranked.ReceivedRank,
		GivenRank:    ranked.GivenRank,
		TotalUsers:   ranked.TotalUsers,
	}
	// Percentiles are undefined for an empty ranking population.
	if p, perr := services.Percentile(ranked.ReceivedRank, ranked.TotalUsers); perr == nil {
		resp.ReceivedPercentile = &p
	}
	if p, perr := services.Percentile(ranked.GivenRank, ranked.TotalUsers); perr == nil {
		resp.GivenPercentile = &p
	}

	c.JSON(http.StatusOK, resp)
}

// updatePreferences godoc
// @Summary Partially update a user's preferences
// @Description Omitted fields keep their current values
// @Tags stats
// @Accept  json
// @Produce  json
// @Param   communityID path string true "Community ID"
// @Param   userID path string true "User ID"
// @Param   preferences body dto.UpdatePreferencesRequest true "Fields to change"
// @Success 200 {object} dto.UserStatsResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 503 {object} map[string]string "Store unavailable"
// @Router /communities/{communityID}/users/{userID}/preferences [patch]
func (h *statsHandler) updatePreferences(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for preferences update", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	stats, err := h.statsService.UpdatePreferences(c.Request.Context(), c.Param("userID"), c.Param("communityID"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserStatsResponse(stats))
}
