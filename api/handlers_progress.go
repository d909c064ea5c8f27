package api

import (
	"errors"
	"fmt"
	"net/http"

	"empowerher/db"
	"empowerher/models"
	"empowerher/progress"
	"empowerher/utils"

	"github.com/gin-gonic/gin"
)

// progressError maps service errors onto status codes.
func progressError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, progress.ErrInvalidInput):
		utils.GinBadRequest(c, err.Error())
	case errors.Is(err, progress.ErrNotInitialized), errors.Is(err, progress.ErrAlreadyCompleted):
		utils.GinConflict(c, err.Error())
	case errors.Is(err, db.ErrNotFound):
		utils.GinNotFound(c, err.Error())
	default:
		utils.GinInternalServerError(c, fmt.Sprintf("Progress update failed: %v", err))
	}
}

// --- Stats ---

// GetStatsHandler returns the stats record.
// @Summary      Get points, streak, level and badges
// @Tags         Progress
// @Produce      json
// @Success      200  {object}  models.UserStats "The stats record."
// @Failure      404  {object}  utils.APIError   "Not Found: stats have not been initialized yet. Call POST /stats/init."
// @Failure      500  {object}  utils.APIError   "Internal Server Error: the stats could not be read."
// @Router       /stats [get]
func GetStatsHandler(c *gin.Context, svc *progress.Service) {
	stats, err := svc.Stats(c.Request.Context())
	if err != nil {
		progressError(c, err)
		return
	}
	if stats == nil {
		utils.GinNotFound(c, "Stats have not been initialized.")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// InitStatsHandler creates the stats record when it does not exist yet.
// @Summary      Initialize stats
// @Description  Creates the zeroed stats record (level 1, no badges) if there is none, then returns it. Safe to call repeatedly.
// @Tags         Progress
// @Produce      json
// @Success      200  {object}  models.UserStats "The stats record."
// @Failure      500  {object}  utils.APIError   "Internal Server Error: the stats could not be saved."
// @Router       /stats/init [post]
func InitStatsHandler(c *gin.Context, svc *progress.Service) {
	stats, err := svc.InitStats(c.Request.Context())
	if err != nil {
		progressError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AwardPointsRequest is the body of POST /stats/points.
type AwardPointsRequest struct {
	Points int            `json:"points" binding:"min=0"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// AwardPointsHandler adds points outside a lesson flow.
// @Summary      Award points
// @Description  Adds `points` to the total, advances the daily streak, recomputes the level and evaluates badges.
// @Description  `extra` fields are merged into the stats record as-is.
// @Tags         Progress
// @Accept       json
// @Produce      json
// @Param        request body AwardPointsRequest true "Points to add (not negative) and optional extra fields."
// @Success      200  {object}  progress.AwardResult "Updated stats and any badges unlocked by this call."
// @Failure      400  {object}  utils.APIError       "Bad Request: invalid body or negative points."
// @Failure      409  {object}  utils.APIError       "Conflict: stats have not been initialized."
// @Failure      500  {object}  utils.APIError       "Internal Server Error: the update could not be saved."
// @Router       /stats/points [post]
func AwardPointsHandler(c *gin.Context, svc *progress.Service) {
	var req AwardPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	res, err := svc.AwardPoints(c.Request.Context(), req.Points, req.Extra)
	if err != nil {
		progressError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// --- Award Flows ---

// CompleteLessonHandler records lesson progress and awards its points.
// @Summary      Complete a lesson
// @Description  In one save: upserts the TrainingProgress record for (module_type, lesson_id), awards `points_earned`,
// @Description  evaluates badges and appends an ActivityLog entry. Stats are initialized on first use.
// @Tags         Progress
// @Accept       json
// @Produce      json
// @Param        lesson body progress.LessonCompletion true "Lesson progress. module_type is legal_rights, voice_assertiveness or self_defense."
// @Success      200  {object}  progress.AwardResult "Progress record, updated stats, activity entry and new badges."
// @Failure      400  {object}  utils.APIError       "Bad Request: unknown module, missing lesson_id or values out of range."
// @Failure      500  {object}  utils.APIError       "Internal Server Error: nothing was saved."
// @Router       /progress/lessons [post]
func CompleteLessonHandler(c *gin.Context, svc *progress.Service) {
	var req progress.LessonCompletion
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	res, err := svc.CompleteLesson(c.Request.Context(), req)
	if err != nil {
		progressError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CompleteChapterHandler records chapter progress and awards its points.
// @Summary      Complete a chapter
// @Description  Like lesson completion, keyed by (module_type, lesson_id, chapter_id), and also stores the scenario position and choices made.
// @Tags         Progress
// @Accept       json
// @Produce      json
// @Param        chapter body progress.ChapterCompletion true "Chapter progress."
// @Success      200  {object}  progress.AwardResult "Progress record, updated stats, activity entry and new badges."
// @Failure      400  {object}  utils.APIError       "Bad Request: invalid module, ids or values."
// @Failure      500  {object}  utils.APIError       "Internal Server Error: nothing was saved."
// @Router       /progress/chapters [post]
func CompleteChapterHandler(c *gin.Context, svc *progress.Service) {
	var req progress.ChapterCompletion
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	res, err := svc.CompleteChapter(c.Request.Context(), req)
	if err != nil {
		progressError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CompleteChallengeHandler logs a daily challenge.
// @Summary      Complete a daily challenge
// @Description  Appends a DailyChallengeLog entry for today, awards its points and evaluates badges. Each challenge counts once per day.
// @Tags         Progress
// @Accept       json
// @Produce      json
// @Param        challenge body progress.ChallengeCompletion true "Challenge id, title, points and an optional reflection."
// @Success      200  {object}  progress.AwardResult "Challenge log, updated stats, activity entry and new badges."
// @Failure      400  {object}  utils.APIError       "Bad Request: missing challenge_id or negative points."
// @Failure      409  {object}  utils.APIError       "Conflict: this challenge was already completed today."
// @Failure      500  {object}  utils.APIError       "Internal Server Error: nothing was saved."
// @Router       /progress/challenges [post]
func CompleteChallengeHandler(c *gin.Context, svc *progress.Service) {
	var req progress.ChallengeCompletion
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	res, err := svc.CompleteChallenge(c.Request.Context(), req)
	if err != nil {
		progressError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// RecordActivityHandler appends an activity entry without awarding points.
// @Summary      Log an activity
// @Tags         Progress
// @Accept       json
// @Produce      json
// @Param        activity body models.ActivityLog true "Activity entry. status defaults to 'completed'."
// @Success      201  {object}  models.ActivityLog "The stored entry."
// @Failure      400  {object}  utils.APIError     "Bad Request: missing title or type."
// @Failure      500  {object}  utils.APIError     "Internal Server Error: the entry could not be saved."
// @Router       /activity [post]
func RecordActivityHandler(c *gin.Context, svc *progress.Service) {
	var req models.ActivityLog
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	rec, err := svc.RecordActivity(c.Request.Context(), req)
	if err != nil {
		progressError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// --- Badges & Dashboard ---

// ListBadgesHandler returns the badge catalog.
// @Summary      List badges
// @Description  Every badge in the catalog with its rarity and whether it has been earned.
// @Tags         Progress
// @Produce      json
// @Success      200  {array}   progress.BadgeStatus
// @Failure      500  {object}  utils.APIError
// @Router       /badges [get]
func ListBadgesHandler(c *gin.Context, svc *progress.Service) {
	badges, err := svc.Badges(c.Request.Context())
	if err != nil {
		progressError(c, err)
		return
	}
	c.JSON(http.StatusOK, badges)
}

// DashboardHandler returns the home screen overview.
// @Summary      Dashboard
// @Description  Stats (null before initialization), earned badges, the 10 most recent activities and per-module lesson totals.
// @Tags         Progress
// @Produce      json
// @Success      200  {object}  progress.Dashboard
// @Failure      500  {object}  utils.APIError
// @Router       /dashboard [get]
func DashboardHandler(c *gin.Context, svc *progress.Service) {
	d, err := svc.Dashboard(c.Request.Context())
	if err != nil {
		progressError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
