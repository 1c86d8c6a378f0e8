package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/algonote-ai/sheet-engine/pkg/database"
	"github.com/algonote-ai/sheet-engine/pkg/models"
)

// SheetProblemRepository provides data access for sheet problems.
// Inserts are append-only per sheet; problems are never updated.
type SheetProblemRepository interface {
	Create(ctx context.Context, problem *models.SheetProblem) error
	// GetBySheet returns the sheet's problems in source-video order.
	GetBySheet(ctx context.Context, sheetID uuid.UUID) ([]*models.SheetProblem, error)
	CountBySheet(ctx context.Context, sheetID uuid.UUID) (int, error)
}

type sheetProblemRepository struct {
	db *database.DB
}

// NewSheetProblemRepository creates a new SheetProblemRepository.
func NewSheetProblemRepository(db *database.DB) SheetProblemRepository {
	return &sheetProblemRepository{db: db}
}

var _ SheetProblemRepository = (*sheetProblemRepository)(nil)

func (r *sheetProblemRepository) Create(ctx context.Context, problem *models.SheetProblem) error {
	query := `
		INSERT INTO sheet_problems (
			sheet_id, position, title, title_slug, leetcode_link,
			youtube_link, difficulty, description, starter_code, confidence_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		problem.SheetID,
		problem.Position,
		problem.Title,
		problem.TitleSlug,
		problem.LeetCodeLink,
		problem.YouTubeLink,
		problem.Difficulty,
		problem.Description,
		problem.StarterCode,
		problem.ConfidenceScore,
	).Scan(&problem.ID, &problem.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create sheet problem: %w", err)
	}

	return nil
}

func (r *sheetProblemRepository) GetBySheet(ctx context.Context, sheetID uuid.UUID) ([]*models.SheetProblem, error) {
	query := `
		SELECT id, sheet_id, position, title, title_slug, leetcode_link,
		       youtube_link, difficulty, description, starter_code,
		       confidence_score, created_at
		FROM sheet_problems
		WHERE sheet_id = $1
		ORDER BY position ASC`

	rows, err := r.db.Query(ctx, query, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheet problems: %w", err)
	}
	defer rows.Close()

	var problems []*models.SheetProblem
	for rows.Next() {
		var problem models.SheetProblem
		if err := rows.Scan(
			&problem.ID,
			&problem.SheetID,
			&problem.Position,
			&problem.Title,
			&problem.TitleSlug,
			&problem.LeetCodeLink,
			&problem.YouTubeLink,
			&problem.Difficulty,
			&problem.Description,
			&problem.StarterCode,
			&problem.ConfidenceScore,
			&problem.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sheet problem: %w", err)
		}
		problems = append(problems, &problem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sheet problems: %w", err)
	}

	return problems, nil
}

func (r *sheetProblemRepository) CountBySheet(ctx context.Context, sheetID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sheet_problems WHERE sheet_id = $1`, sheetID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sheet problems: %w", err)
	}
	return count, nil
}
