package progress

import (
	"context"
	"fmt"
	"time"

	"empowerher/db"
	"empowerher/logger"
	"empowerher/models"
)

// DateLayout is the calendar-date format stored in last_activity and challenge logs.
const DateLayout = "2006-01-02"

// PointsPerLevel is the number of points between two levels.
const PointsPerLevel = 200

// Level derives the level from cumulative points: floor(points/200) + 1.
// Negative totals round toward minus infinity, so -1 is level 0.
func Level(points int) int {
	if points < 0 {
		return (points-(PointsPerLevel-1))/PointsPerLevel + 1
	}
	return points/PointsPerLevel + 1
}

// NextStreak returns the streak after an activity on today, given the stored
// last activity date. Dates are DateLayout strings.
func NextStreak(lastActivity, today, yesterday string, current int) int {
	switch lastActivity {
	case today:
		return current
	case yesterday:
		return current + 1
	default:
		return 1
	}
}

// Ledger applies points to the single UserStats record and keeps streak and
// level consistent. It holds no records itself; every call gets the
// db.Records to work on, usually a *db.Tx.
type Ledger struct {
	evaluator *Evaluator
	log       *logger.Logger
	now       func() time.Time
	loc       *time.Location
}

// LedgerOption customizes a Ledger.
type LedgerOption func(*Ledger)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

// WithLocation sets the time zone calendar days are counted in.
func WithLocation(loc *time.Location) LedgerOption {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

func NewLedger(evaluator *Evaluator, log *logger.Logger, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		evaluator: evaluator,
		log:       log.With("component", "ledger"),
		now:       time.Now,
		loc:       time.Local,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Today returns the current calendar date in the ledger's location.
func (l *Ledger) Today() string {
	return l.now().In(l.loc).Format(DateLayout)
}

func (l *Ledger) days() (today, yesterday string) {
	t := l.now().In(l.loc)
	return t.Format(DateLayout), t.AddDate(0, 0, -1).Format(DateLayout)
}

// loadStats returns the stats record and its typed view, or nils when the
// ledger is not initialized. With several records the first one wins.
func loadStats(ctx context.Context, rs db.Records) (models.Record, *models.UserStats, error) {
	records, err := rs.List(ctx, models.EntityUserStats)
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	var stats models.UserStats
	if err := records[0].Decode(&stats); err != nil {
		return nil, nil, err
	}
	if stats.BadgesEarned == nil {
		stats.BadgesEarned = []string{}
	}
	return records[0], &stats, nil
}

// UserStats returns the stats record, or nil when it has not been created yet.
func (l *Ledger) UserStats(ctx context.Context, rs db.Records) (*models.UserStats, error) {
	_, stats, err := loadStats(ctx, rs)
	return stats, err
}

// EnsureUserStats returns the stats record, creating a zeroed one when absent.
// Run it inside db.Store.Transact to guarantee a single record under
// concurrent callers.
func (l *Ledger) EnsureUserStats(ctx context.Context, rs db.Records) (*models.UserStats, error) {
	_, stats, err := loadStats(ctx, rs)
	if err != nil || stats != nil {
		return stats, err
	}

	fields, err := models.Fields(models.UserStats{Level: 1, BadgesEarned: []string{}})
	if err != nil {
		return nil, err
	}
	rec, err := rs.Create(ctx, models.EntityUserStats, fields)
	if err != nil {
		return nil, fmt.Errorf("create stats: %w", err)
	}
	l.log.Info("stats initialized", "id", rec.ID())

	var created models.UserStats
	if err := rec.Decode(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateUserStats adds points, advances the streak, recomputes the level and
// merges extra verbatim, then evaluates badges against the result. It returns
// the updated stats including any badge unlocked by this call.
//
// badges_earned in extra is unioned with the stored list; earned badges are
// never removed.
//
// When no stats record exists it does nothing and returns nil.
func (l *Ledger) UpdateUserStats(ctx context.Context, rs db.Records, pointsToAdd int, extra map[string]any) (*models.UserStats, error) {
	stats, _, err := l.update(ctx, rs, pointsToAdd, extra)
	return stats, err
}

func (l *Ledger) update(ctx context.Context, rs db.Records, pointsToAdd int, extra map[string]any) (*models.UserStats, []string, error) {
	rec, stats, err := loadStats(ctx, rs)
	if err != nil {
		return nil, nil, fmt.Errorf("load stats: %w", err)
	}
	if stats == nil {
		l.log.Debug("stats not initialized, points dropped", "points", pointsToAdd)
		return nil, nil, nil
	}

	today, yesterday := l.days()
	streak := NextStreak(stats.LastActivity, today, yesterday, stats.CurrentStreak)
	longest := stats.LongestStreak
	if streak > longest {
		longest = streak
	}
	total := stats.TotalPoints + pointsToAdd

	partial := map[string]any{
		"total_points":   total,
		"current_streak": streak,
		"longest_streak": longest,
		"level":          Level(total),
		"last_activity":  today,
	}
	for k, v := range extra {
		if k == "badges_earned" {
			ids, err := badgeIDs(v)
			if err != nil {
				return nil, nil, err
			}
			partial[k] = mergeBadges(stats.BadgesEarned, ids)
			continue
		}
		partial[k] = v
	}

	updated, found, err := rs.Update(ctx, models.EntityUserStats, rec.ID(), partial)
	if err != nil {
		return nil, nil, fmt.Errorf("update stats: %w", err)
	}
	if !found {
		return nil, nil, nil
	}

	var merged models.UserStats
	if err := updated.Decode(&merged); err != nil {
		return nil, nil, err
	}
	if merged.BadgesEarned == nil {
		merged.BadgesEarned = []string{}
	}
	l.log.Debug("stats updated", "points", pointsToAdd, "total", merged.TotalPoints, "streak", merged.CurrentStreak)

	if l.evaluator == nil {
		return &merged, nil, nil
	}
	unlocked, err := l.evaluator.Evaluate(ctx, rs, &merged)
	if err != nil {
		l.log.Error("badge evaluation failed", "error", err)
		return &merged, nil, nil
	}
	merged.BadgesEarned = mergeBadges(merged.BadgesEarned, unlocked)
	return &merged, unlocked, nil
}

// badgeIDs reads a badges_earned value as sent by a caller: a string slice or
// a decoded JSON array of strings. nil reads as empty.
func badgeIDs(v any) ([]string, error) {
	switch ids := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return ids, nil
	case []any:
		out := make([]string, 0, len(ids))
		for _, id := range ids {
			s, ok := id.(string)
			if !ok {
				return nil, invalid("badges_earned must be a list of strings")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, invalid("badges_earned must be a list of strings")
	}
}
