package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/algonote-ai/sheet-engine/pkg/models"
	"github.com/algonote-ai/sheet-engine/pkg/repositories"
)

// SheetWithProblems is a sheet together with its problems in source order.
type SheetWithProblems struct {
	Sheet    *models.LearningSheet  `json:"sheet"`
	Problems []*models.SheetProblem `json:"problems"`
}

// SheetService provides read and delete operations over persisted sheets.
type SheetService interface {
	// GetSheet returns a sheet and its problems; apperrors.ErrNotFound if
	// the sheet does not exist.
	GetSheet(ctx context.Context, sheetID uuid.UUID) (*SheetWithProblems, error)

	// ListSheets returns all sheets, most recent first.
	ListSheets(ctx context.Context) ([]*models.LearningSheet, error)

	// DeleteSheet removes a sheet and all of its problems. Deleting a sheet
	// that does not exist is not an error.
	DeleteSheet(ctx context.Context, sheetID uuid.UUID) error
}

type sheetService struct {
	sheetRepo   repositories.SheetRepository
	problemRepo repositories.SheetProblemRepository
	logger      *zap.Logger
}

// NewSheetService creates a new SheetService.
func NewSheetService(
	sheetRepo repositories.SheetRepository,
	problemRepo repositories.SheetProblemRepository,
	logger *zap.Logger,
) SheetService {
	return &sheetService{
		sheetRepo:   sheetRepo,
		problemRepo: problemRepo,
		logger:      logger.Named("sheets"),
	}
}

var _ SheetService = (*sheetService)(nil)

func (s *sheetService) GetSheet(ctx context.Context, sheetID uuid.UUID) (*SheetWithProblems, error) {
	sheet, err := s.sheetRepo.GetByID(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	problems, err := s.problemRepo.GetBySheet(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if problems == nil {
		problems = []*models.SheetProblem{}
	}

	return &SheetWithProblems{Sheet: sheet, Problems: problems}, nil
}

func (s *sheetService) ListSheets(ctx context.Context) ([]*models.LearningSheet, error) {
	sheets, err := s.sheetRepo.ListByRecency(ctx)
	if err != nil {
		return nil, err
	}
	if sheets == nil {
		sheets = []*models.LearningSheet{}
	}
	return sheets, nil
}

func (s *sheetService) DeleteSheet(ctx context.Context, sheetID uuid.UUID) error {
	if err := s.sheetRepo.Delete(ctx, sheetID); err != nil {
		return err
	}
	s.logger.Info("Deleted sheet", zap.String("sheet_id", sheetID.String()))
	return nil
}
