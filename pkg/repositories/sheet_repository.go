package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/algonote-ai/sheet-engine/pkg/apperrors"
	"github.com/algonote-ai/sheet-engine/pkg/database"
	"github.com/algonote-ai/sheet-engine/pkg/models"
)

// SheetRepository provides data access for learning sheets.
type SheetRepository interface {
	Create(ctx context.Context, sheet *models.LearningSheet) error
	GetByID(ctx context.Context, sheetID uuid.UUID) (*models.LearningSheet, error)
	ListByRecency(ctx context.Context) ([]*models.LearningSheet, error)
	// Delete removes a sheet and, via cascade, its problems. Deleting a
	// sheet that does not exist is not an error.
	Delete(ctx context.Context, sheetID uuid.UUID) error
	// SetMaterializedFolder records the workspace folder created for the sheet.
	SetMaterializedFolder(ctx context.Context, sheetID uuid.UUID, folderID string) error
}

type sheetRepository struct {
	db *database.DB
}

// NewSheetRepository creates a new SheetRepository.
func NewSheetRepository(db *database.DB) SheetRepository {
	return &sheetRepository{db: db}
}

var _ SheetRepository = (*sheetRepository)(nil)

func (r *sheetRepository) Create(ctx context.Context, sheet *models.LearningSheet) error {
	query := `
		INSERT INTO learning_sheets (name, playlist_url)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		sheet.Name,
		sheet.PlaylistURL,
	).Scan(&sheet.ID, &sheet.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	return nil
}

func (r *sheetRepository) GetByID(ctx context.Context, sheetID uuid.UUID) (*models.LearningSheet, error) {
	query := `
		SELECT id, name, playlist_url, COALESCE(materialized_folder_id, ''), created_at
		FROM learning_sheets
		WHERE id = $1`

	var sheet models.LearningSheet
	err := r.db.QueryRow(ctx, query, sheetID).Scan(
		&sheet.ID,
		&sheet.Name,
		&sheet.PlaylistURL,
		&sheet.MaterializedFolderID,
		&sheet.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sheet: %w", err)
	}

	return &sheet, nil
}

func (r *sheetRepository) ListByRecency(ctx context.Context) ([]*models.LearningSheet, error) {
	query := `
		SELECT id, name, playlist_url, COALESCE(materialized_folder_id, ''), created_at
		FROM learning_sheets
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	defer rows.Close()

	var sheets []*models.LearningSheet
	for rows.Next() {
		var sheet models.LearningSheet
		if err := rows.Scan(
			&sheet.ID,
			&sheet.Name,
			&sheet.PlaylistURL,
			&sheet.MaterializedFolderID,
			&sheet.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sheet: %w", err)
		}
		sheets = append(sheets, &sheet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sheets: %w", err)
	}

	return sheets, nil
}

func (r *sheetRepository) Delete(ctx context.Context, sheetID uuid.UUID) error {
	query := `DELETE FROM learning_sheets WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, sheetID); err != nil {
		return fmt.Errorf("failed to delete sheet: %w", err)
	}

	return nil
}

func (r *sheetRepository) SetMaterializedFolder(ctx context.Context, sheetID uuid.UUID, folderID string) error {
	query := `UPDATE learning_sheets SET materialized_folder_id = $2 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, sheetID, folderID)
	if err != nil {
		return fmt.Errorf("failed to set materialized folder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
