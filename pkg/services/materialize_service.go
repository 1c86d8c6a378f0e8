package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/algonote-ai/sheet-engine/pkg/apperrors"
	"github.com/algonote-ai/sheet-engine/pkg/models"
	"github.com/algonote-ai/sheet-engine/pkg/repositories"
	"github.com/algonote-ai/sheet-engine/pkg/workspace"
)

// WorkspaceProjector is the slice of the workspace services the materializer
// consumes: node creation in the file tree and content upserts in the
// problem-content store.
type WorkspaceProjector interface {
	CreateNode(ctx context.Context, node workspace.NodeRequest) (string, error)
	EnsureContent(ctx context.Context, fileID string) error
	UpdateContent(ctx context.Context, fileID string, content workspace.ContentPayload) error
}

// CreatedFile identifies one workspace file created during materialization.
type CreatedFile struct {
	FileID string `json:"fileId"`
	Title  string `json:"title"`
}

// MaterializeResult reports what a materialization call actually created.
type MaterializeResult struct {
	FolderID         string        `json:"folderId"`
	FolderName       string        `json:"folderName"`
	CreatedFileCount int           `json:"createdFileCount"`
	CreatedFiles     []CreatedFile `json:"createdFiles"`
	// AlreadyMaterialized is true when the sheet had been projected before;
	// the call is then a no-op returning the recorded folder.
	AlreadyMaterialized bool `json:"alreadyMaterialized,omitempty"`
}

// MaterializeService projects a persisted sheet into the external workspace
// as a folder of pre-populated problem files.
type MaterializeService interface {
	Materialize(ctx context.Context, sheetID uuid.UUID) (*MaterializeResult, error)
}

type materializeService struct {
	sheetRepo   repositories.SheetRepository
	problemRepo repositories.SheetProblemRepository
	projector   WorkspaceProjector
	logger      *zap.Logger
}

// NewMaterializeService creates a new MaterializeService.
func NewMaterializeService(
	sheetRepo repositories.SheetRepository,
	problemRepo repositories.SheetProblemRepository,
	projector WorkspaceProjector,
	logger *zap.Logger,
) MaterializeService {
	return &materializeService{
		sheetRepo:   sheetRepo,
		problemRepo: problemRepo,
		projector:   projector,
		logger:      logger.Named("materialize"),
	}
}

var _ MaterializeService = (*materializeService)(nil)

func (s *materializeService) Materialize(ctx context.Context, sheetID uuid.UUID) (*MaterializeResult, error) {
	sheet, err := s.sheetRepo.GetByID(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	// Repeat calls short-circuit on the recorded folder instead of creating
	// a duplicate folder and file set.
	if sheet.MaterializedFolderID != "" {
		s.logger.Info("Sheet already materialized",
			zap.String("sheet_id", sheetID.String()),
			zap.String("folder_id", sheet.MaterializedFolderID))
		return &MaterializeResult{
			FolderID:            sheet.MaterializedFolderID,
			FolderName:          sheet.Name,
			CreatedFiles:        []CreatedFile{},
			AlreadyMaterialized: true,
		}, nil
	}

	problems, err := s.problemRepo.GetBySheet(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if len(problems) == 0 {
		return nil, apperrors.ErrEmptySheet
	}

	folderID, err := s.projector.CreateNode(ctx, workspace.NodeRequest{
		Name: sheet.Name,
		Type: workspace.NodeTypeFolder,
	})
	if err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}

	s.logger.Info("Created workspace folder",
		zap.String("sheet_id", sheetID.String()),
		zap.String("folder_id", folderID),
		zap.String("name", sheet.Name))

	if err := s.sheetRepo.SetMaterializedFolder(ctx, sheetID, folderID); err != nil {
		// The folder exists; a lost marker only costs idempotency on a
		// later retry, so carry on.
		s.logger.Warn("Failed to record materialization marker",
			zap.String("sheet_id", sheetID.String()),
			zap.Error(err))
	}

	createdFiles := make([]CreatedFile, 0, len(problems))
	for _, problem := range problems {
		fileID, err := s.projectProblem(ctx, folderID, problem)
		if err != nil {
			s.logger.Warn("Failed to materialize problem, continuing",
				zap.String("title", problem.Title),
				zap.Error(err))
			continue
		}
		createdFiles = append(createdFiles, CreatedFile{FileID: fileID, Title: problem.Title})
	}

	return &MaterializeResult{
		FolderID:         folderID,
		FolderName:       sheet.Name,
		CreatedFileCount: len(createdFiles),
		CreatedFiles:     createdFiles,
	}, nil
}

// projectProblem creates the file node for one problem and pushes its content
// into the problem-content store.
func (s *materializeService) projectProblem(ctx context.Context, folderID string, problem *models.SheetProblem) (string, error) {
	fileID, err := s.projector.CreateNode(ctx, workspace.NodeRequest{
		Name:     problem.Title,
		Type:     workspace.NodeTypeFile,
		ParentID: folderID,
		Link:     problem.LeetCodeLink,
	})
	if err != nil {
		return "", fmt.Errorf("create file node: %w", err)
	}

	// The content record must exist before the dependent write; the upsert
	// removes the original's assumption that the file service's async
	// auto-creation has finished by now.
	if err := s.projector.EnsureContent(ctx, fileID); err != nil {
		return "", fmt.Errorf("ensure content record: %w", err)
	}

	var snippets []workspace.CodeSnippet
	if problem.StarterCode != "" {
		snippets = []workspace.CodeSnippet{
			{Lang: "JavaScript", LangSlug: "javascript", Code: problem.StarterCode},
			{Lang: "Python3", LangSlug: "python3", Code: problem.StarterCode},
		}
	}

	if err := s.projector.UpdateContent(ctx, fileID, workspace.ContentPayload{
		Title:            problem.Title,
		Slug:             problem.TitleSlug,
		Difficulty:       problem.Difficulty,
		Description:      problem.Description,
		ExampleTestcases: "",
		Tags:             []string{},
		CodeSnippets:     snippets,
	}); err != nil {
		return "", fmt.Errorf("push content: %w", err)
	}

	s.logger.Debug("Materialized problem file",
		zap.String("file_id", fileID),
		zap.String("title", problem.Title))

	return fileID, nil
}
