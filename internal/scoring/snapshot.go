package scoring

import (
	"encoding/json"
	"fmt"

	"hse-compliance/internal/models"
)

// Snapshot is a frozen copy of a questionnaire tree as it existed at dispatch
// time. Once attached to an assignment it is never mutated; all weight lookups
// for that assignment resolve against it, so later edits to the live
// questionnaire cannot change a historical score.
type Snapshot struct {
	QuestionnaireID uint           `json:"questionnaire_id"`
	Title           string         `json:"title"`
	Areas           []AreaSnapshot `json:"areas"`
}

// AreaSnapshot freezes one area and its questions
type AreaSnapshot struct {
	ID        uint               `json:"id"`
	Title     string             `json:"title"`
	Weight    float64            `json:"weight"`
	SortOrder int                `json:"sort_order"`
	Questions []QuestionSnapshot `json:"questions"`
}

// QuestionSnapshot freezes one question and its options
type QuestionSnapshot struct {
	ID        uint             `json:"id"`
	Text      string           `json:"text"`
	Required  bool             `json:"required"`
	SortOrder int              `json:"sort_order"`
	Options   []OptionSnapshot `json:"options"`
}

// OptionSnapshot freezes one answer option
type OptionSnapshot struct {
	ID        uint    `json:"id"`
	Text      string  `json:"text"`
	Weight    float64 `json:"weight"`
	SortOrder int     `json:"sort_order"`
	IsNA      bool    `json:"is_na"`
}

// NewSnapshot freezes a live questionnaire tree
func NewSnapshot(q *models.QuestionnaireWithDetails) *Snapshot {
	snap := &Snapshot{
		QuestionnaireID: q.ID,
		Title:           q.Title,
	}
	for _, area := range q.Areas {
		areaSnap := AreaSnapshot{
			ID:        area.ID,
			Title:     area.Title,
			Weight:    area.Weight,
			SortOrder: area.SortOrder,
		}
		for _, question := range area.Questions {
			questionSnap := QuestionSnapshot{
				ID:        question.ID,
				Text:      question.Text,
				Required:  question.Required,
				SortOrder: question.SortOrder,
			}
			for _, option := range question.Options {
				questionSnap.Options = append(questionSnap.Options, OptionSnapshot{
					ID:        option.ID,
					Text:      option.Text,
					Weight:    option.Weight,
					SortOrder: option.SortOrder,
					IsNA:      option.IsNA,
				})
			}
			areaSnap.Questions = append(areaSnap.Questions, questionSnap)
		}
		snap.Areas = append(snap.Areas, areaSnap)
	}
	return snap
}

// Marshal serializes the snapshot for storage on the assignment row
func (s *Snapshot) Marshal() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// ParseSnapshot deserializes a stored snapshot
func ParseSnapshot(data []byte) (*Snapshot, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty snapshot")
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &snap, nil
}
