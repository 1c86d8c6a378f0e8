package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/algonote-ai/sheet-engine/pkg/apperrors"
	"github.com/algonote-ai/sheet-engine/pkg/leetcode"
	"github.com/algonote-ai/sheet-engine/pkg/llm"
	"github.com/algonote-ai/sheet-engine/pkg/models"
	"github.com/algonote-ai/sheet-engine/pkg/repositories"
	"github.com/algonote-ai/sheet-engine/pkg/youtube"
)

// VideoLister retrieves the full ordered video list of a playlist.
type VideoLister interface {
	ListPlaylistVideos(ctx context.Context, playlistURL string) ([]youtube.Video, error)
}

// ProblemResolver fetches canonical problem content by catalog slug.
// A (nil, nil) return means the catalog has no such problem.
type ProblemResolver interface {
	FetchProblem(ctx context.Context, titleSlug string) (*leetcode.ProblemDetail, error)
}

// ImportPolicy holds the confidence cutoffs and fan-out bound for one import.
type ImportPolicy struct {
	// MinConfidence gates whether an identification is considered a match at all.
	MinConfidence float64
	// MinimalEntryConfidence gates saving an identification-only entry when
	// detail resolution fails. A merely-passing match without content is too
	// likely to be noise.
	MinimalEntryConfidence float64
	// MaxConcurrent bounds parallel identification/resolution calls.
	MaxConcurrent int
}

// DefaultImportPolicy mirrors the original import thresholds.
func DefaultImportPolicy() ImportPolicy {
	return ImportPolicy{
		MinConfidence:          0.5,
		MinimalEntryConfidence: 0.8,
		MaxConcurrent:          4,
	}
}

// ImportResult summarizes one playlist import.
type ImportResult struct {
	SheetID       uuid.UUID `json:"sheetId"`
	SheetName     string    `json:"sheetName"`
	TotalVideos   int       `json:"totalVideos"`
	SavedProblems int       `json:"savedProblems"`
}

// ImportService drives the playlist-to-sheet pipeline.
type ImportService interface {
	// ImportPlaylist lists the playlist's videos, identifies and resolves a
	// catalog problem for each, and persists the accepted ones under a new
	// sheet. Per-video failures never abort the batch; a sheet with zero
	// saved problems is a valid outcome.
	ImportPlaylist(ctx context.Context, playlistURL string) (*ImportResult, error)
}

type importService struct {
	videoLister VideoLister
	identifier  ProblemIdentifier
	resolver    ProblemResolver
	sheetRepo   repositories.SheetRepository
	problemRepo repositories.SheetProblemRepository
	pool        *llm.WorkerPool
	policy      ImportPolicy
	logger      *zap.Logger
	now         func() time.Time
}

// NewImportService creates a new ImportService.
func NewImportService(
	videoLister VideoLister,
	identifier ProblemIdentifier,
	resolver ProblemResolver,
	sheetRepo repositories.SheetRepository,
	problemRepo repositories.SheetProblemRepository,
	policy ImportPolicy,
	logger *zap.Logger,
) ImportService {
	if policy.MaxConcurrent < 1 {
		policy.MaxConcurrent = 1
	}
	return &importService{
		videoLister: videoLister,
		identifier:  identifier,
		resolver:    resolver,
		sheetRepo:   sheetRepo,
		problemRepo: problemRepo,
		pool: llm.NewWorkerPool(llm.WorkerPoolConfig{
			MaxConcurrent: policy.MaxConcurrent,
		}, logger),
		policy: policy,
		logger: logger.Named("import"),
		now:    time.Now,
	}
}

var _ ImportService = (*importService)(nil)

// videoOutcome is the terminal state of one video's pipeline run. A nil
// problem means the video was skipped.
type videoOutcome struct {
	problem *models.SheetProblem
	minimal bool
}

func (s *importService) ImportPlaylist(ctx context.Context, playlistURL string) (*ImportResult, error) {
	s.logger.Info("Fetching playlist videos", zap.String("playlist_url", playlistURL))

	videos, err := s.videoLister.ListPlaylistVideos(ctx, playlistURL)
	if err != nil {
		return nil, fmt.Errorf("list playlist videos: %w", err)
	}
	if len(videos) == 0 {
		return nil, apperrors.ErrNoVideosFound
	}

	s.logger.Info("Found playlist videos", zap.Int("count", len(videos)))

	// The sheet exists before any per-video decision: a sheet with zero
	// saved problems is a valid, visible outcome.
	sheet := &models.LearningSheet{
		Name:        "DSA Sheet — " + s.now().Format("Jan 2, 2006"),
		PlaylistURL: playlistURL,
	}
	if err := s.sheetRepo.Create(ctx, sheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	// Fan out identification and detail resolution with bounded parallelism.
	// Results land in source order so persistence below preserves it.
	items := make([]llm.WorkItem[videoOutcome], len(videos))
	for i, video := range videos {
		items[i] = llm.WorkItem[videoOutcome]{
			ID:      fmt.Sprintf("video-%d", i),
			Execute: s.processVideoFunc(sheet.ID, i, video),
		}
	}
	results := llm.ProcessOrdered(ctx, s.pool, items)

	// Persist accepted problems sequentially in source order. Position is
	// the source video index, so read-back order matches the playlist.
	saved := 0
	for i, result := range results {
		if result.Err != nil {
			s.logger.Warn("Video processing failed, skipping",
				zap.String("video_title", videos[i].Title),
				zap.Error(result.Err))
			continue
		}
		outcome := result.Result
		if outcome.problem == nil {
			continue
		}
		if err := s.problemRepo.Create(ctx, outcome.problem); err != nil {
			s.logger.Warn("Failed to persist problem, skipping",
				zap.String("video_title", videos[i].Title),
				zap.String("slug", outcome.problem.TitleSlug),
				zap.Error(err))
			continue
		}
		saved++
		s.logger.Debug("Saved problem",
			zap.String("slug", outcome.problem.TitleSlug),
			zap.Int("position", outcome.problem.Position),
			zap.Bool("minimal", outcome.minimal))
	}

	s.logger.Info("Import complete",
		zap.String("sheet_id", sheet.ID.String()),
		zap.Int("total_videos", len(videos)),
		zap.Int("saved_problems", saved))

	return &ImportResult{
		SheetID:       sheet.ID,
		SheetName:     sheet.Name,
		TotalVideos:   len(videos),
		SavedProblems: saved,
	}, nil
}

// processVideoFunc runs one video through identify -> confidence gate ->
// resolve and returns the problem to persist, if any.
func (s *importService) processVideoFunc(sheetID uuid.UUID, position int, video youtube.Video) func(ctx context.Context) (videoOutcome, error) {
	return func(ctx context.Context) (videoOutcome, error) {
		identified, err := s.identifier.Identify(ctx, video.Title)
		if err != nil {
			s.logger.Warn("Identification failed, skipping video",
				zap.String("video_title", video.Title),
				zap.Error(err))
			return videoOutcome{}, nil
		}
		if identified == nil || identified.TitleSlug == "" || identified.Confidence < s.policy.MinConfidence {
			confidence := 0.0
			if identified != nil {
				confidence = identified.Confidence
			}
			s.logger.Info("Skipping video: no match or low confidence",
				zap.String("video_title", video.Title),
				zap.Float64("confidence", confidence))
			return videoOutcome{}, nil
		}

		detail, err := s.resolver.FetchProblem(ctx, identified.TitleSlug)
		if err != nil {
			s.logger.Warn("Detail resolution failed",
				zap.String("slug", identified.TitleSlug),
				zap.Error(err))
			detail = nil
		}

		if detail == nil {
			// A high-confidence match is worth keeping even without full
			// content; anything below the cutoff is dropped.
			if identified.Confidence < s.policy.MinimalEntryConfidence {
				s.logger.Info("Skipping video: detail unavailable and confidence too low",
					zap.String("video_title", video.Title),
					zap.Float64("confidence", identified.Confidence))
				return videoOutcome{}, nil
			}
			return videoOutcome{
				minimal: true,
				problem: &models.SheetProblem{
					SheetID:         sheetID,
					Position:        position,
					Title:           identified.Title,
					TitleSlug:       identified.TitleSlug,
					LeetCodeLink:    leetcode.ProblemLink(identified.TitleSlug),
					YouTubeLink:     video.URL,
					Difficulty:      identified.Difficulty,
					Description:     "",
					StarterCode:     "",
					ConfidenceScore: identified.Confidence,
				},
			}, nil
		}

		return videoOutcome{
			problem: &models.SheetProblem{
				SheetID:         sheetID,
				Position:        position,
				Title:           detail.Title,
				TitleSlug:       detail.TitleSlug,
				LeetCodeLink:    detail.Link,
				YouTubeLink:     video.URL,
				Difficulty:      detail.Difficulty,
				Description:     detail.Description,
				StarterCode:     detail.StarterCode,
				ConfidenceScore: identified.Confidence,
			},
		}, nil
	}
}
