package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"empowerher/db"
	"empowerher/logger"
	"empowerher/models"
)

var (
	// ErrInvalidInput wraps every validation failure of an award flow.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotInitialized is returned when points are awarded before the stats record exists.
	ErrNotInitialized = errors.New("user stats not initialized")
	// ErrAlreadyCompleted is returned when a daily challenge is completed twice on the same day.
	ErrAlreadyCompleted = errors.New("challenge already completed today")
)

const (
	ActivityLesson    = "lesson"
	ActivityChapter   = "chapter"
	ActivityChallenge = "challenge"

	StatusCompleted = "completed"

	// challengeModule is the module_type recorded for daily challenge activity.
	challengeModule = "daily_challenge"

	recentActivityLimit = 10
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// LessonCompletion reports progress on one lesson.
type LessonCompletion struct {
	ModuleType           models.ModuleType `json:"module_type"`
	LessonID             string            `json:"lesson_id"`
	LessonTitle          string            `json:"lesson_title"`
	CompletionPercentage int               `json:"completion_percentage"`
	PointsEarned         int               `json:"points_earned"`
	ConfidenceLevel      int               `json:"confidence_level"`
}

func (c LessonCompletion) validate() error {
	if !c.ModuleType.Valid() {
		return invalid("unknown module_type %q", c.ModuleType)
	}
	if strings.TrimSpace(c.LessonID) == "" {
		return invalid("lesson_id is required")
	}
	return validateScores(c.CompletionPercentage, c.PointsEarned, c.ConfidenceLevel)
}

// ChapterCompletion reports progress on one chapter of a lesson.
type ChapterCompletion struct {
	LessonCompletion
	ChapterID       string   `json:"chapter_id"`
	ChapterTitle    string   `json:"chapter_title"`
	CurrentScenario int      `json:"current_scenario"`
	ChoicesMade     []string `json:"choices_made"`
}

func (c ChapterCompletion) validate() error {
	if err := c.LessonCompletion.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.ChapterID) == "" {
		return invalid("chapter_id is required")
	}
	if c.CurrentScenario < 0 {
		return invalid("current_scenario must not be negative")
	}
	return nil
}

// ChallengeCompletion reports a completed daily challenge.
type ChallengeCompletion struct {
	ChallengeID string `json:"challenge_id"`
	Title       string `json:"title"`
	Points      int    `json:"points"`
	Reflection  string `json:"reflection"`
}

func (c ChallengeCompletion) validate() error {
	if strings.TrimSpace(c.ChallengeID) == "" {
		return invalid("challenge_id is required")
	}
	if c.Points < 0 {
		return invalid("points must not be negative")
	}
	return nil
}

func validateScores(completion, points, confidence int) error {
	if completion < 0 || completion > 100 {
		return invalid("completion_percentage must be between 0 and 100")
	}
	if points < 0 {
		return invalid("points_earned must not be negative")
	}
	if confidence != 0 && (confidence < 1 || confidence > 5) {
		return invalid("confidence_level must be between 1 and 5")
	}
	return nil
}

// AwardResult is what an award flow wrote.
type AwardResult struct {
	Progress  models.Record     `json:"progress,omitempty"`
	Stats     *models.UserStats `json:"stats"`
	Activity  models.Record     `json:"activity"`
	NewBadges []string          `json:"new_badges"`
}

// BadgeStatus is a catalog entry with the user's earned flag.
type BadgeStatus struct {
	models.Badge
	Earned bool `json:"earned"`
}

// ModuleSummary aggregates the TrainingProgress records of one module.
type ModuleSummary struct {
	LessonsStarted   int `json:"lessons_started"`
	LessonsCompleted int `json:"lessons_completed"`
	PointsEarned     int `json:"points_earned"`
}

// Dashboard is the overview shown on the home screen.
type Dashboard struct {
	Stats          *models.UserStats                   `json:"stats"`
	Badges         []models.Badge                      `json:"badges"`
	RecentActivity []models.Record                     `json:"recent_activity"`
	Modules        map[models.ModuleType]ModuleSummary `json:"modules"`
}

// Service runs the award flows. Each flow is one unit of work on the store:
// progress record, stats update with badge evaluation, and activity entry are
// saved together or not at all.
type Service struct {
	store  *db.Store
	ledger *Ledger
	rules  RuleSet
	log    *logger.Logger
}

func NewService(store *db.Store, ledger *Ledger, rules RuleSet, log *logger.Logger) *Service {
	return &Service{store: store, ledger: ledger, rules: rules, log: log.With("component", "progress")}
}

// InitStats creates the stats record if needed and returns it.
func (s *Service) InitStats(ctx context.Context) (*models.UserStats, error) {
	var stats *models.UserStats
	err := s.store.Transact(ctx, func(tx *db.Tx) error {
		var err error
		stats, err = s.ledger.EnsureUserStats(ctx, tx)
		return err
	})
	return stats, err
}

// Stats returns the stats record, or nil before InitStats.
func (s *Service) Stats(ctx context.Context) (*models.UserStats, error) {
	return s.ledger.UserStats(ctx, s.store)
}

// AwardPoints applies points outside any lesson flow. Unlike the completion
// flows it does not initialize the stats record.
func (s *Service) AwardPoints(ctx context.Context, points int, extra map[string]any) (*AwardResult, error) {
	if points < 0 {
		return nil, invalid("points must not be negative")
	}
	result := &AwardResult{}
	err := s.store.Transact(ctx, func(tx *db.Tx) error {
		stats, unlocked, err := s.ledger.update(ctx, tx, points, extra)
		if err != nil {
			return err
		}
		if stats == nil {
			return ErrNotInitialized
		}
		result.Stats, result.NewBadges = stats, unlocked
		if result.NewBadges == nil {
			result.NewBadges = []string{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) CompleteLesson(ctx context.Context, c LessonCompletion) (*AwardResult, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	fields, err := models.Fields(models.TrainingProgress{
		ModuleType:           c.ModuleType,
		LessonID:             c.LessonID,
		LessonTitle:          c.LessonTitle,
		CompletionPercentage: c.CompletionPercentage,
		PointsEarned:         c.PointsEarned,
		ConfidenceLevel:      c.ConfidenceLevel,
		LastAccessed:         s.timestamp(),
	})
	if err != nil {
		return nil, err
	}
	match := db.AllOf(
		db.FieldEquals("module_type", c.ModuleType),
		db.FieldEquals("lesson_id", c.LessonID),
	)
	activity := models.ActivityLog{
		ModuleType: string(c.ModuleType),
		Title:      c.LessonTitle,
		Type:       ActivityLesson,
		Points:     c.PointsEarned,
		Status:     StatusCompleted,
	}
	return s.award(ctx, models.EntityTrainingProgress, match, fields, activity)
}

func (s *Service) CompleteChapter(ctx context.Context, c ChapterCompletion) (*AwardResult, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	choices := c.ChoicesMade
	if choices == nil {
		choices = []string{}
	}
	fields, err := models.Fields(models.ChapterProgress{
		ModuleType:           c.ModuleType,
		LessonID:             c.LessonID,
		ChapterID:            c.ChapterID,
		ChapterTitle:         c.ChapterTitle,
		CompletionPercentage: c.CompletionPercentage,
		PointsEarned:         c.PointsEarned,
		ConfidenceLevel:      c.ConfidenceLevel,
		CurrentScenario:      c.CurrentScenario,
		ChoicesMade:          choices,
		LastAccessed:         s.timestamp(),
	})
	if err != nil {
		return nil, err
	}
	match := db.AllOf(
		db.FieldEquals("module_type", c.ModuleType),
		db.FieldEquals("lesson_id", c.LessonID),
		db.FieldEquals("chapter_id", c.ChapterID),
	)
	title := c.ChapterTitle
	if title == "" {
		title = c.LessonTitle
	}
	activity := models.ActivityLog{
		ModuleType: string(c.ModuleType),
		Title:      title,
		Type:       ActivityChapter,
		Points:     c.PointsEarned,
		Status:     StatusCompleted,
	}
	return s.award(ctx, models.EntityChapterProgress, match, fields, activity)
}

// CompleteChallenge logs a daily challenge and awards its points. A challenge
// counts once per calendar day.
func (s *Service) CompleteChallenge(ctx context.Context, c ChallengeCompletion) (*AwardResult, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	today := s.ledger.Today()
	fields, err := models.Fields(models.DailyChallengeLog{
		ChallengeID: c.ChallengeID,
		Title:       c.Title,
		Date:        today,
		Points:      c.Points,
		Reflection:  c.Reflection,
	})
	if err != nil {
		return nil, err
	}
	activity := models.ActivityLog{
		ModuleType: challengeModule,
		Title:      c.Title,
		Type:       ActivityChallenge,
		Points:     c.Points,
		Status:     StatusCompleted,
	}

	result := &AwardResult{}
	err = s.store.Transact(ctx, func(tx *db.Tx) error {
		done, err := tx.Filter(ctx, models.EntityDailyChallengeLog, db.AllOf(
			db.FieldEquals("challenge_id", c.ChallengeID),
			db.FieldEquals("date", today),
		))
		if err != nil {
			return err
		}
		if len(done) > 0 {
			return ErrAlreadyCompleted
		}
		if result.Progress, err = tx.Create(ctx, models.EntityDailyChallengeLog, fields); err != nil {
			return err
		}
		return s.finishAward(ctx, tx, result, activity)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecordActivity appends an activity entry without awarding points.
func (s *Service) RecordActivity(ctx context.Context, a models.ActivityLog) (models.Record, error) {
	if strings.TrimSpace(a.Title) == "" {
		return nil, invalid("title is required")
	}
	if strings.TrimSpace(a.Type) == "" {
		return nil, invalid("type is required")
	}
	if a.Points < 0 {
		return nil, invalid("points must not be negative")
	}
	if a.Status == "" {
		a.Status = StatusCompleted
	}
	fields, err := models.Fields(a)
	if err != nil {
		return nil, err
	}
	return s.store.Create(ctx, models.EntityActivityLog, fields)
}

// award upserts a progress record, then applies the points and logs the activity.
// The progress record is written first so badge rules counting it see it.
func (s *Service) award(ctx context.Context, entityType string, match db.Predicate, fields map[string]any, activity models.ActivityLog) (*AwardResult, error) {
	result := &AwardResult{}
	err := s.store.Transact(ctx, func(tx *db.Tx) error {
		var err error
		if result.Progress, err = tx.Upsert(ctx, entityType, match, fields); err != nil {
			return err
		}
		return s.finishAward(ctx, tx, result, activity)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("progress awarded", "entity", entityType, "points", activity.Points, "new_badges", result.NewBadges)
	return result, nil
}

func (s *Service) finishAward(ctx context.Context, tx *db.Tx, result *AwardResult, activity models.ActivityLog) error {
	if _, err := s.ledger.EnsureUserStats(ctx, tx); err != nil {
		return err
	}
	stats, unlocked, err := s.ledger.update(ctx, tx, activity.Points, nil)
	if err != nil {
		return err
	}
	result.Stats, result.NewBadges = stats, unlocked
	if result.NewBadges == nil {
		result.NewBadges = []string{}
	}

	fields, err := models.Fields(activity)
	if err != nil {
		return err
	}
	result.Activity, err = tx.Create(ctx, models.EntityActivityLog, fields)
	return err
}

// Badges lists the catalog with earned flags.
func (s *Service) Badges(ctx context.Context) ([]BadgeStatus, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]BadgeStatus, 0, len(s.rules.Badges))
	for _, b := range s.rules.Badges {
		out = append(out, BadgeStatus{Badge: b, Earned: stats != nil && stats.HasBadge(b.ID)})
	}
	return out, nil
}

// Dashboard gathers stats, earned badges, recent activity and per-module totals.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{
		Stats:   stats,
		Badges:  []models.Badge{},
		Modules: make(map[models.ModuleType]ModuleSummary, len(models.ModuleTypes)),
	}
	if stats != nil {
		for _, id := range stats.BadgesEarned {
			if b, ok := s.rules.Badge(id); ok {
				d.Badges = append(d.Badges, b)
			}
		}
	}

	// The activity log is append-only, so insertion order is chronological
	// even when two entries share a createdAt millisecond.
	activity, err := s.store.List(ctx, models.EntityActivityLog)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	d.RecentActivity = make([]models.Record, 0, recentActivityLimit)
	for i := len(activity) - 1; i >= 0 && len(d.RecentActivity) < recentActivityLimit; i-- {
		d.RecentActivity = append(d.RecentActivity, activity[i])
	}

	for _, m := range models.ModuleTypes {
		d.Modules[m] = ModuleSummary{}
	}
	lessons, err := s.store.List(ctx, models.EntityTrainingProgress)
	if err != nil {
		return nil, fmt.Errorf("lessons: %w", err)
	}
	for _, rec := range lessons {
		var tp models.TrainingProgress
		if err := rec.Decode(&tp); err != nil {
			s.log.Warn("skipping unreadable lesson record", "id", rec.ID(), "error", err)
			continue
		}
		sum := d.Modules[tp.ModuleType]
		sum.LessonsStarted++
		if tp.CompletionPercentage >= 100 {
			sum.LessonsCompleted++
		}
		sum.PointsEarned += tp.PointsEarned
		d.Modules[tp.ModuleType] = sum
	}
	return d, nil
}

func (s *Service) timestamp() string {
	return s.ledger.now().UTC().Format(db.TimestampLayout)
}
