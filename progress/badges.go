package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"empowerher/db"
	"empowerher/logger"
	"empowerher/models"

	"github.com/tidwall/gjson"
)

// Rule unlocks Badge when its condition holds.
//
// A stat rule (Stat set) compares a numeric UserStats field, addressed by gjson
// path, against Min. A count rule (EntityType set) counts the records of that
// type matching the Where content query and compares the count against Min.
type Rule struct {
	Badge      string   `json:"badge" yaml:"badge"`
	Stat       string   `json:"stat,omitempty" yaml:"stat,omitempty"`
	EntityType string   `json:"entity_type,omitempty" yaml:"entity_type,omitempty"`
	Where      []string `json:"where,omitempty" yaml:"where,omitempty"`
	Min        float64  `json:"min" yaml:"min"`
}

func (r Rule) validate() error {
	if r.Badge == "" {
		return errors.New("rule has no badge")
	}
	if (r.Stat == "") == (r.EntityType == "") {
		return fmt.Errorf("rule %s: exactly one of stat or entity_type must be set", r.Badge)
	}
	if r.Stat != "" && len(r.Where) > 0 {
		return fmt.Errorf("rule %s: where only applies to entity_type rules", r.Badge)
	}
	if _, err := db.ParseContentQuery(r.Where); err != nil {
		return fmt.Errorf("rule %s: %w", r.Badge, err)
	}
	return nil
}

// Evaluator grants badges. It never removes one.
type Evaluator struct {
	rules []Rule
	log   *logger.Logger
}

// NewEvaluator evaluates rules in the given order.
func NewEvaluator(rules []Rule, log *logger.Logger) *Evaluator {
	return &Evaluator{rules: rules, log: log.With("component", "badges")}
}

// Rules returns the rule table in evaluation order.
func (e *Evaluator) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Evaluate checks every rule against stats and the progress records in rs, and
// returns the badge ids newly unlocked, in rule order. When there are any, the
// stats record is re-read and only badges_earned is written, once.
//
// A rule that cannot be evaluated is logged and does not fire this pass.
func (e *Evaluator) Evaluate(ctx context.Context, rs db.Records, stats *models.UserStats) ([]string, error) {
	if stats == nil {
		return nil, nil
	}
	snapshot, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("encode stats snapshot: %w", err)
	}

	earned := make(map[string]bool, len(stats.BadgesEarned))
	for _, id := range stats.BadgesEarned {
		earned[id] = true
	}

	var unlocked []string
	for _, rule := range e.rules {
		if earned[rule.Badge] {
			continue
		}
		ok, err := e.holds(ctx, rs, rule, snapshot)
		if err != nil {
			e.log.Warn("badge rule skipped", "badge", rule.Badge, "error", err)
			continue
		}
		if ok {
			earned[rule.Badge] = true
			unlocked = append(unlocked, rule.Badge)
		}
	}
	if len(unlocked) == 0 {
		return nil, nil
	}

	rec, current, err := loadStats(ctx, rs)
	if err != nil {
		return nil, fmt.Errorf("re-read stats: %w", err)
	}
	if current == nil {
		return nil, errors.New("stats record disappeared during evaluation")
	}

	badges := mergeBadges(current.BadgesEarned, stats.BadgesEarned, unlocked)
	if len(badges) == len(current.BadgesEarned) {
		return unlocked, nil
	}
	if _, _, err := rs.Update(ctx, models.EntityUserStats, rec.ID(), map[string]any{"badges_earned": badges}); err != nil {
		return nil, fmt.Errorf("write badges: %w", err)
	}
	e.log.Info("badges unlocked", "badges", unlocked)
	return unlocked, nil
}

func (e *Evaluator) holds(ctx context.Context, rs db.Records, rule Rule, snapshot []byte) (bool, error) {
	if rule.Stat != "" {
		v := gjson.GetBytes(snapshot, rule.Stat)
		if !v.Exists() {
			return false, fmt.Errorf("stat %q not found", rule.Stat)
		}
		if v.Type != gjson.Number {
			return false, fmt.Errorf("stat %q is not a number", rule.Stat)
		}
		return v.Float() >= rule.Min, nil
	}

	pred, err := db.Where(rule.Where...)
	if err != nil {
		return false, err
	}
	matches, err := rs.Filter(ctx, rule.EntityType, pred)
	if err != nil {
		return false, fmt.Errorf("count %s: %w", rule.EntityType, err)
	}
	return float64(len(matches)) >= rule.Min, nil
}

// mergeBadges appends every id from extra lists missing in base, keeping order.
func mergeBadges(base []string, extra ...[]string) []string {
	seen := make(map[string]bool, len(base))
	out := make([]string, 0, len(base))
	for _, id := range base {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, ids := range extra {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
