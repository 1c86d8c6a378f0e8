package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/algonote-ai/sheet-engine/pkg/jsonutil"
)

// LearningSheet represents one playlist-import run.
// Stored in the learning_sheets table. Sheets are immutable after creation
// except for the materialization marker and deletion.
type LearningSheet struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	PlaylistURL string    `json:"playlist_url"`
	// MaterializedFolderID records the workspace folder created for this
	// sheet, if any. Repeat materialize calls short-circuit on it.
	MaterializedFolderID string    `json:"materialized_folder_id,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// SheetProblem is one catalog problem attached to a sheet, derived from one
// playlist video. Stored in the sheet_problems table. Position is the index
// of the source video in the playlist; read-back order follows it.
type SheetProblem struct {
	ID              uuid.UUID `json:"id"`
	SheetID         uuid.UUID `json:"sheet_id"`
	Position        int       `json:"position"`
	Title           string    `json:"title"`
	TitleSlug       string    `json:"title_slug"`
	LeetCodeLink    string    `json:"leetcode_link"`
	YouTubeLink     string    `json:"youtube_link"`
	Difficulty      string    `json:"difficulty"`
	Description     string    `json:"description"`
	StarterCode     string    `json:"starter_code"`
	ConfidenceScore float64   `json:"confidence_score"`
	CreatedAt       time.Time `json:"created_at"`
}

// IdentifiedProblem is the structured answer from the identification model
// for a single video title. Confidence is the model's own [0,1] score and is
// never recomputed here.
type IdentifiedProblem struct {
	Title      string  `json:"title"`
	TitleSlug  string  `json:"titleSlug"`
	Difficulty string  `json:"difficulty"`
	Confidence float64 `json:"confidence"`
}

// UnmarshalJSON tolerates the model returning null fields or a confidence
// encoded as a string.
func (p *IdentifiedProblem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title      jsonutil.FlexibleString `json:"title"`
		TitleSlug  jsonutil.FlexibleString `json:"titleSlug"`
		Difficulty jsonutil.FlexibleString `json:"difficulty"`
		Confidence jsonutil.FlexibleFloat  `json:"confidence"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.Title = raw.Title.String()
	p.TitleSlug = raw.TitleSlug.String()
	p.Difficulty = raw.Difficulty.String()
	p.Confidence = float64(raw.Confidence)
	return nil
}
