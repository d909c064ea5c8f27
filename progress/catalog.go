package progress

import (
	"errors"
	"fmt"
	"os"

	"empowerher/models"

	"gopkg.in/yaml.v3"
)

// RuleSet is the badge catalog and the rules that unlock it.
type RuleSet struct {
	Badges []models.Badge `yaml:"badges"`
	Rules  []Rule         `yaml:"rules"`
}

// Validate checks that badge ids are unique and every rule names a catalog badge.
func (s RuleSet) Validate() error {
	if len(s.Badges) == 0 {
		return errors.New("rule set has no badges")
	}
	ids := make(map[string]bool, len(s.Badges))
	for _, b := range s.Badges {
		if b.ID == "" {
			return errors.New("badge without id")
		}
		if ids[b.ID] {
			return fmt.Errorf("duplicate badge %s", b.ID)
		}
		ids[b.ID] = true
	}
	for _, r := range s.Rules {
		if err := r.validate(); err != nil {
			return err
		}
		if !ids[r.Badge] {
			return fmt.Errorf("rule references unknown badge %s", r.Badge)
		}
	}
	return nil
}

// Badge looks up a catalog entry.
func (s RuleSet) Badge(id string) (models.Badge, bool) {
	for _, b := range s.Badges {
		if b.ID == id {
			return b, true
		}
	}
	return models.Badge{}, false
}

// DefaultRuleSet is the built-in catalog.
func DefaultRuleSet() RuleSet {
	return RuleSet{Badges: DefaultCatalog(), Rules: DefaultRules()}
}

func DefaultCatalog() []models.Badge {
	return []models.Badge{
		{ID: "first_lesson", Name: "First Steps", Description: "Complete your first lesson", Rarity: models.RarityCommon, Icon: "footprints"},
		{ID: "streak_3", Name: "On a Roll", Description: "Keep a 3-day learning streak", Rarity: models.RarityCommon, Icon: "flame"},
		{ID: "streak_7", Name: "Week Warrior", Description: "Keep a 7-day learning streak", Rarity: models.RarityUncommon, Icon: "calendar-check"},
		{ID: "streak_30", Name: "Unstoppable", Description: "Keep a 30-day learning streak", Rarity: models.RarityLegendary, Icon: "crown"},
		{ID: "century", Name: "Century", Description: "Earn 100 points", Rarity: models.RarityUncommon, Icon: "star"},
		{ID: "high_achiever", Name: "High Achiever", Description: "Earn 500 points", Rarity: models.RarityRare, Icon: "trophy"},
		{ID: "legal_expert", Name: "Legal Expert", Description: "Complete 2 legal rights lessons", Rarity: models.RarityRare, Icon: "scale"},
		{ID: "confident_voice", Name: "Confident Voice", Description: "Complete 2 voice assertiveness lessons", Rarity: models.RarityRare, Icon: "megaphone"},
		{ID: "safety_champion", Name: "Safety Champion", Description: "Complete 2 self defense lessons", Rarity: models.RarityRare, Icon: "shield"},
		{ID: "challenge_lover", Name: "Challenge Lover", Description: "Complete 5 daily challenges", Rarity: models.RarityUncommon, Icon: "target"},
	}
}

// DefaultRules returns the built-in rules in evaluation order.
func DefaultRules() []Rule {
	completed := "completion_percentage equals 100"
	moduleRule := func(badge string, module models.ModuleType) Rule {
		return Rule{
			Badge:      badge,
			EntityType: models.EntityTrainingProgress,
			Where:      []string{"module_type equals " + string(module), "and", completed},
			Min:        2,
		}
	}
	return []Rule{
		{Badge: "streak_3", Stat: "current_streak", Min: 3},
		{Badge: "streak_7", Stat: "current_streak", Min: 7},
		{Badge: "streak_30", Stat: "current_streak", Min: 30},
		{Badge: "century", Stat: "total_points", Min: 100},
		{Badge: "high_achiever", Stat: "total_points", Min: 500},
		{Badge: "first_lesson", EntityType: models.EntityTrainingProgress, Where: []string{completed}, Min: 1},
		moduleRule("legal_expert", models.ModuleLegalRights),
		moduleRule("confident_voice", models.ModuleVoiceAssertiveness),
		moduleRule("safety_champion", models.ModuleSelfDefense),
		{Badge: "challenge_lover", EntityType: models.EntityDailyChallengeLog, Min: 5},
	}
}

// LoadRuleSet reads a YAML rule set. An empty path yields the default set.
func LoadRuleSet(path string) (RuleSet, error) {
	if path == "" {
		return DefaultRuleSet(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("open badge rules: %w", err)
	}
	defer f.Close()

	var set RuleSet
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&set); err != nil {
		return RuleSet{}, fmt.Errorf("decode badge rules %s: %w", path, err)
	}
	if err := set.Validate(); err != nil {
		return RuleSet{}, fmt.Errorf("badge rules %s: %w", path, err)
	}
	return set, nil
}
