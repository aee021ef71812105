package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "papertrade/internal/errors"
	"papertrade/internal/pagination"
	"papertrade/internal/services"
)

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	leaderboardService services.LeaderboardServicer
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(leaderboardService services.LeaderboardServicer) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// GetLeaderboard returns all active users ranked by percentage return.
// @Summary     Get leaderboard
// @Description Get active users ranked by percentage return on their starting balance
// @Tags        leaderboard
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number" default(1)
// @Param       page_size query int false "Page size" default(20)
// @Success     200 {object} pagination.PageResponse[services.LeaderboardEntry] "Ranked users"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /leaderboard [get]
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	board, err := h.leaderboardService.GetLeaderboard(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}

// GetMyRank returns the authenticated user's leaderboard entry.
// @Summary     Get own rank
// @Description Get the authenticated user's leaderboard entry and rank
// @Tags        leaderboard
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.LeaderboardEntry "User's leaderboard entry"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not ranked"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /leaderboard/me [get]
func (h *LeaderboardHandler) GetMyRank(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.leaderboardService.GetUserRank(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}
