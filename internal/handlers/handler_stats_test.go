package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/tacotally/taco_tally_app/internal/apperrors"
	"github.com/tacotally/taco_tally_app/internal/core/domain"
	portssvc "github.com/tacotally/taco_tally_app/internal/core/ports/services"
	"github.com/tacotally/taco_tally_app/internal/dto"
	"github.com/tacotally/taco_tally_app/internal/handlers"
)

// --- Mock StatsService ---
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Leaderboard(ctx context.Context, communityID string, metric domain.Metric, limit int) ([]domain.LeaderboardEntry, error) {
	args := m.Called(ctx, communityID, metric, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LeaderboardEntry), args.Error(1)
}

func (m *MockStatsService) Rank(ctx context.Context, userID, communityID string, metric domain.Metric) (int64, error) {
	args := m.Called(ctx, userID, communityID, metric)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsService) StatsWithRank(ctx context.Context, userID, communityID string) (*domain.StatsWithRank, error) {
	args := m.Called(ctx, userID, communityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatsWithRank), args.Error(1)
}

func (m *MockStatsService) GetOrCreateStats(ctx context.Context, userID, communityID string) (*domain.UserStats, error) {
	args := m.Called(ctx, userID, communityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserStats), args.Error(1)
}

func (m *MockStatsService) UpdatePreferences(ctx context.Context, userID, communityID string, req dto.UpdatePreferencesRequest) (*domain.UserStats, error) {
	args := m.Called(ctx, userID, communityID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserStats), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.StatsSvcFacade = (*MockStatsService)(nil)

// --- Test Suite ---
type StatsHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockStatsService *MockStatsService
}

func (suite *StatsHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(handlers.RegisterCustomValidators())
	suite.router = gin.New()
	suite.mockStatsService = new(MockStatsService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterStatsRoutes(v1, suite.mockStatsService)
}

// --- Test Cases ---

func (suite *StatsHandlerTestSuite) TestLeaderboard_Success() {
	entries := []domain.LeaderboardEntry{
		{UserID: "bob", Value: 12},
		{UserID: "alice", Value: 7},
	}

	suite.mockStatsService.On("Leaderboard", mock.Anything, "community-1", domain.MetricReceived, 10).
		Return(entries, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/communities/community-1/leaderboard", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.LeaderboardResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("received", resp.Metric)
	suite.Require().Len(resp.Entries, 2)
	suite.Equal("bob", resp.Entries[0].UserID)
	suite.mockStatsService.AssertExpectations(suite.T())
}

func (suite *StatsHandlerTestSuite) TestLeaderboard_InvalidMetricRejected() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/communities/community-1/leaderboard?metric=karma", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockStatsService.AssertNotCalled(suite.T(), "Leaderboard", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *StatsHandlerTestSuite) TestLeaderboard_ZeroLimitRejected() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/communities/community-1/leaderboard?limit=0", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockStatsService.AssertNotCalled(suite.T(), "Leaderboard", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *StatsHandlerTestSuite) TestUserStats_IncludesPercentiles() {
	ranked := &domain.StatsWithRank{
		Stats:        domain.UserStats{UserID: "alice", CommunityID: "community-1", TacosReceived: 7},
		ReceivedRank: 1,
		GivenRank:    4,
		TotalUsers:   4,
	}

	suite.mockStatsService.On("StatsWithRank", mock.Anything, "alice", "community-1").
		Return(ranked, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/communities/community-1/users/alice/stats", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.StatsWithRankResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(int64(1), resp.ReceivedRank)
	suite.Require().NotNil(resp.ReceivedPercentile)
	suite.Equal(int64(100), *resp.ReceivedPercentile)
	suite.Require().NotNil(resp.GivenPercentile)
	suite.Equal(int64(25), *resp.GivenPercentile)
	suite.mockStatsService.AssertExpectations(suite.T())
}

func (suite *StatsHandlerTestSuite) TestUserStats_OmitsPercentilesWhenNoPublicUsers() {
	ranked := &domain.StatsWithRank{
		Stats:        domain.UserStats{UserID: "alice", CommunityID: "community-1"},
		ReceivedRank: 1,
		GivenRank:    1,
		TotalUsers:   0,
	}

	suite.mockStatsService.On("StatsWithRank", mock.Anything, "alice", "community-1").
		Return(ranked, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/communities/community-1/users/alice/stats", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var raw map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &raw))
	suite.NotContains(raw, "receivedPercentile")
	suite.NotContains(raw, "givenPercentile")
	suite.mockStatsService.AssertExpectations(suite.T())
}

func (suite *StatsHandlerTestSuite) TestUserStats_StoreErrorMapsTo503() {
	suite.mockStatsService.On("StatsWithRank", mock.Anything, "alice", "community-1").
		Return(nil, apperrors.ErrStoreUnavailable).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/communities/community-1/users/alice/stats", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusServiceUnavailable, w.Code)
	suite.mockStatsService.AssertExpectations(suite.T())
}

func (suite *StatsHandlerTestSuite) TestUpdatePreferences_Success() {
	updated := &domain.UserStats{
		UserID:      "alice",
		CommunityID: "community-1",
		Preferences: domain.Preferences{ReceiveNotifications: true, PublicStats: false},
	}

	suite.mockStatsService.On("UpdatePreferences", mock.Anything, "alice", "community-1", mock.MatchedBy(func(req dto.UpdatePreferencesRequest) bool {
		return req.PublicStats != nil && !*req.PublicStats && req.ReceiveNotifications == nil
	})).Return(updated, nil).Once()

	payload := []byte(`{"publicStats":false}`)
	req, _ := http.NewRequest(http.MethodPatch, "/api/v1/communities/community-1/users/alice/preferences", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.UserStatsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.False(resp.Preferences.PublicStats)
	suite.True(resp.Preferences.ReceiveNotifications)
	suite.mockStatsService.AssertExpectations(suite.T())
}

// --- Run Suite ---
func TestStatsHandler(t *testing.T) {
	suite.Run(t, new(StatsHandlerTestSuite))
}
