package models

import (
	"encoding/json"
	"fmt"
)

// Entity type names. Each one is persisted as its own ordered collection.
const (
	EntityUserStats         = "UserStats"
	EntityTrainingProgress  = "TrainingProgress"
	EntityChapterProgress   = "ChapterProgress"
	EntityDailyChallenge    = "DailyChallenge"
	EntityDailyChallengeLog = "DailyChallengeLog"
	EntityActivityLog       = "ActivityLog"
	EntityEmergencyContact  = "EmergencyContact"
	EntityProfile           = "Profile"
)

// Reserved record fields managed by the store.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// ModuleType identifies one of the three training tracks.
type ModuleType string

const (
	ModuleLegalRights        ModuleType = "legal_rights"
	ModuleVoiceAssertiveness ModuleType = "voice_assertiveness"
	ModuleSelfDefense        ModuleType = "self_defense"
)

// ModuleTypes lists the valid training tracks in display order.
var ModuleTypes = []ModuleType{ModuleLegalRights, ModuleVoiceAssertiveness, ModuleSelfDefense}

// Valid reports whether m is one of the known training tracks.
func (m ModuleType) Valid() bool {
	for _, known := range ModuleTypes {
		if m == known {
			return true
		}
	}
	return false
}

// Record is an untyped stored entity. The store owns id, createdAt and updatedAt;
// every other field is defined by the caller.
type Record map[string]any

// ID returns the record id, or "" if it has none.
func (r Record) ID() string {
	id, _ := r[FieldID].(string)
	return id
}

// Clone returns a deep copy so callers can never alias stored state.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[k] = cloneValue(inner)
		}
		return m
	case Record:
		return val.Clone()
	case []any:
		s := make([]any, len(val))
		for i, inner := range val {
			s[i] = cloneValue(inner)
		}
		return s
	case []string:
		return append([]string(nil), val...)
	default:
		return val
	}
}

// Decode converts the record into a typed view (UserStats, TrainingProgress, ...).
func (r Record) Decode(into any) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", r.ID(), err)
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("decode record %s: %w", r.ID(), err)
	}
	return nil
}

// Fields flattens a typed view back into a field map suitable for Create/Update.
// Reserved store fields are stripped.
func Fields(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	delete(out, FieldID)
	delete(out, FieldCreatedAt)
	delete(out, FieldUpdatedAt)
	return out, nil
}

// UserStats is the singleton gamification ledger record.
type UserStats struct {
	ID               string   `json:"id,omitempty"`
	TotalPoints      int      `json:"total_points"`
	CurrentStreak    int      `json:"current_streak"`
	LongestStreak    int      `json:"longest_streak"`
	Level            int      `json:"level"`
	BadgesEarned     []string `json:"badges_earned"`
	LastActivity     string   `json:"last_activity"` // YYYY-MM-DD, "" means never
	ModulesCompleted int      `json:"modules_completed"`
	CreatedAt        string   `json:"createdAt,omitempty"`
	UpdatedAt        string   `json:"updatedAt,omitempty"`
}

// HasBadge reports whether id is already earned.
func (s *UserStats) HasBadge(id string) bool {
	for _, b := range s.BadgesEarned {
		if b == id {
			return true
		}
	}
	return false
}

// TrainingProgress tracks one lesson of one module. Upserted by (module_type, lesson_id).
type TrainingProgress struct {
	ID                   string     `json:"id,omitempty"`
	ModuleType           ModuleType `json:"module_type"`
	LessonID             string     `json:"lesson_id"`
	LessonTitle          string     `json:"lesson_title"`
	CompletionPercentage int        `json:"completion_percentage"`
	PointsEarned         int        `json:"points_earned"`
	ConfidenceLevel      int        `json:"confidence_level,omitempty"`
	LastAccessed         string     `json:"last_accessed"`
	CreatedAt            string     `json:"createdAt,omitempty"`
	UpdatedAt            string     `json:"updatedAt,omitempty"`
}

// ChapterProgress tracks a sub-chapter of a lesson, including scenario position.
type ChapterProgress struct {
	ID                   string     `json:"id,omitempty"`
	ModuleType           ModuleType `json:"module_type"`
	LessonID             string     `json:"lesson_id"`
	ChapterID            string     `json:"chapter_id"`
	ChapterTitle         string     `json:"chapter_title"`
	CompletionPercentage int        `json:"completion_percentage"`
	PointsEarned         int        `json:"points_earned"`
	ConfidenceLevel      int        `json:"confidence_level,omitempty"`
	CurrentScenario      int        `json:"current_scenario"`
	ChoicesMade          []string   `json:"choices_made"`
	LastAccessed         string     `json:"last_accessed"`
	CreatedAt            string     `json:"createdAt,omitempty"`
	UpdatedAt            string     `json:"updatedAt,omitempty"`
}

// ActivityLog is an append-only history entry.
type ActivityLog struct {
	ID         string `json:"id,omitempty"`
	ModuleType string `json:"module_type"`
	Title      string `json:"title"`
	Type       string `json:"type"` // lesson, chapter, challenge, quiz
	Points     int    `json:"points"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// DailyChallengeLog records one completed daily challenge.
type DailyChallengeLog struct {
	ID          string `json:"id,omitempty"`
	ChallengeID string `json:"challenge_id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Points      int    `json:"points"`
	Reflection  string `json:"reflection,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// EmergencyContact is a user-managed contact, stored through the generic record endpoints.
type EmergencyContact struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship,omitempty"`
	IsPrimary    bool   `json:"is_primary"`
}

// Profile is the cosmetic signed-in identity. It never changes which keys the ledger uses.
type Profile struct {
	ID           string `json:"id,omitempty"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// Rarity grades a badge.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

// Badge is a static catalog entry. Only its id is persisted, inside UserStats.badges_earned.
type Badge struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Rarity      Rarity `json:"rarity" yaml:"rarity"`
	Icon        string `json:"icon" yaml:"icon"`
}
