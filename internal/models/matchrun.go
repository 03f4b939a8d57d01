package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type MatchRunStatus string

const (
	StatusQueued     MatchRunStatus = "queued"
	StatusProcessing MatchRunStatus = "processing"
	StatusCompleted  MatchRunStatus = "completed"
	StatusFailed     MatchRunStatus = "failed"
)

// EducationLevel is one of the three qualification tiers the feature
// extractor recognizes. A resume can carry any combination of them.
type EducationLevel string

const (
	EducationUG      EducationLevel = "UG"
	EducationMasters EducationLevel = "Masters"
	EducationPG      EducationLevel = "PG"
)

// ParseEducationLevel validates a client-supplied education label.
func ParseEducationLevel(s string) (EducationLevel, error) {
	switch EducationLevel(s) {
	case EducationUG, EducationMasters, EducationPG:
		return EducationLevel(s), nil
	default:
		return "", fmt.Errorf("unknown education level %q: must be one of UG, Masters, PG", s)
	}
}

// JoinEducation serializes a level set into the comma-joined, sorted
// form stored in text columns.
func JoinEducation(levels []EducationLevel) string {
	strs := make([]string, 0, len(levels))
	for _, l := range levels {
		strs = append(strs, string(l))
	}
	sort.Strings(strs)
	return strings.Join(strs, ",")
}

// SplitEducation is the inverse of JoinEducation. Unknown labels are
// dropped rather than erroring: the column is only ever written by us.
func SplitEducation(s string) []EducationLevel {
	if s == "" {
		return nil
	}
	var levels []EducationLevel
	for _, part := range strings.Split(s, ",") {
		if l, err := ParseEducationLevel(strings.TrimSpace(part)); err == nil {
			levels = append(levels, l)
		}
	}
	return levels
}

// MatchRun is one batch matching request: a set of uploaded documents
// screened against a requirements text under a fixed configuration.
type MatchRun struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RequirementsText    string         `gorm:"type:text;not null" json:"requirements_text"`
	SimilarityThreshold float64        `gorm:"type:decimal(4,3);not null" json:"similarity_threshold"`
	FiltersEnabled      bool           `gorm:"not null;default:false" json:"filters_enabled"`
	MinExperience       float64        `gorm:"type:decimal(4,1);default:0" json:"min_experience"`
	RequiredEducation   string         `gorm:"type:text" json:"required_education"`
	DocumentIDs         string         `gorm:"type:text;not null" json:"document_ids"`
	Status              MatchRunStatus `gorm:"not null;default:'queued'" json:"status"`
	Diagnostics         string         `gorm:"type:text" json:"diagnostics,omitempty"`
	ErrorMessage        string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt           time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (MatchRun) TableName() string {
	return "match_runs"
}

// DocumentIDList decodes the comma-joined document ID column.
func (m *MatchRun) DocumentIDList() ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, part := range strings.Split(m.DocumentIDs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("invalid document ID %q on run %s: %w", part, m.ID, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// JoinDocumentIDs encodes document IDs for the DocumentIDs column,
// preserving submission order.
func JoinDocumentIDs(ids []uuid.UUID) string {
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, id.String())
	}
	return strings.Join(strs, ",")
}

// MatchResult is one accepted candidate of a completed run. A row
// exists iff the document passed the hard filters (when enabled) and
// scored at or above the similarity threshold.
type MatchResult struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MatchRunID       uuid.UUID `gorm:"type:uuid;not null;index" json:"match_run_id"`
	DocumentID       uuid.UUID `gorm:"type:uuid;not null" json:"document_id"`
	OriginalFileName string    `gorm:"type:text" json:"original_filename"`
	MatchedFilename  string    `gorm:"type:text" json:"matched_filename"`
	SimilarityScore  float64   `gorm:"type:decimal(4,3)" json:"similarity_score"`
	ExperienceYears  float64   `gorm:"type:decimal(4,1)" json:"experience_years"`
	Education        string    `gorm:"type:text" json:"education"`
	Position         int       `gorm:"not null" json:"position"`
	CreatedAt        time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (MatchResult) TableName() string {
	return "match_results"
}
