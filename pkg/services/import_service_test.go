package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/algonote-ai/sheet-engine/pkg/apperrors"
	"github.com/algonote-ai/sheet-engine/pkg/leetcode"
	"github.com/algonote-ai/sheet-engine/pkg/models"
	"github.com/algonote-ai/sheet-engine/pkg/youtube"
)

type mockVideoLister struct {
	videos []youtube.Video
	err    error
}

func (m *mockVideoLister) ListPlaylistVideos(ctx context.Context, playlistURL string) ([]youtube.Video, error) {
	return m.videos, m.err
}

// mockIdentifier maps video titles to identification outcomes. Calls run
// concurrently under the worker pool.
type mockIdentifier struct {
	mu       sync.Mutex
	byTitle  map[string]*models.IdentifiedProblem
	errTitle string
	calls    int
}

func (m *mockIdentifier) Identify(ctx context.Context, videoTitle string) (*models.IdentifiedProblem, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.errTitle != "" && videoTitle == m.errTitle {
		return nil, errors.New("identification timed out")
	}
	return m.byTitle[videoTitle], nil
}

type mockResolver struct {
	mu      sync.Mutex
	bySlug  map[string]*leetcode.ProblemDetail
	errSlug string
	calls   []string
}

func (m *mockResolver) FetchProblem(ctx context.Context, titleSlug string) (*leetcode.ProblemDetail, error) {
	m.mu.Lock()
	m.calls = append(m.calls, titleSlug)
	m.mu.Unlock()
	if m.errSlug != "" && titleSlug == m.errSlug {
		return nil, errors.New("catalog unreachable")
	}
	return m.bySlug[titleSlug], nil
}

type mockSheetRepo struct {
	sheets        map[uuid.UUID]*models.LearningSheet
	createErr     error
	materialized  map[uuid.UUID]string
	setFolderErr  error
	deletedSheets []uuid.UUID
}

func newMockSheetRepo() *mockSheetRepo {
	return &mockSheetRepo{
		sheets:       make(map[uuid.UUID]*models.LearningSheet),
		materialized: make(map[uuid.UUID]string),
	}
}

func (m *mockSheetRepo) Create(ctx context.Context, sheet *models.LearningSheet) error {
	if m.createErr != nil {
		return m.createErr
	}
	sheet.ID = uuid.New()
	sheet.CreatedAt = time.Now()
	m.sheets[sheet.ID] = sheet
	return nil
}

func (m *mockSheetRepo) GetByID(ctx context.Context, sheetID uuid.UUID) (*models.LearningSheet, error) {
	sheet, ok := m.sheets[sheetID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return sheet, nil
}

func (m *mockSheetRepo) ListByRecency(ctx context.Context) ([]*models.LearningSheet, error) {
	var sheets []*models.LearningSheet
	for _, sheet := range m.sheets {
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

func (m *mockSheetRepo) Delete(ctx context.Context, sheetID uuid.UUID) error {
	delete(m.sheets, sheetID)
	m.deletedSheets = append(m.deletedSheets, sheetID)
	return nil
}

func (m *mockSheetRepo) SetMaterializedFolder(ctx context.Context, sheetID uuid.UUID, folderID string) error {
	if m.setFolderErr != nil {
		return m.setFolderErr
	}
	if _, ok := m.sheets[sheetID]; !ok {
		return apperrors.ErrNotFound
	}
	m.materialized[sheetID] = folderID
	m.sheets[sheetID].MaterializedFolderID = folderID
	return nil
}

type mockProblemRepo struct {
	problems  []*models.SheetProblem
	failSlugs map[string]bool
}

func (m *mockProblemRepo) Create(ctx context.Context, problem *models.SheetProblem) error {
	if m.failSlugs[problem.TitleSlug] {
		return errors.New("insert failed")
	}
	problem.ID = uuid.New()
	problem.CreatedAt = time.Now()
	m.problems = append(m.problems, problem)
	return nil
}

func (m *mockProblemRepo) GetBySheet(ctx context.Context, sheetID uuid.UUID) ([]*models.SheetProblem, error) {
	var out []*models.SheetProblem
	for _, problem := range m.problems {
		if problem.SheetID == sheetID {
			out = append(out, problem)
		}
	}
	return out, nil
}

func (m *mockProblemRepo) CountBySheet(ctx context.Context, sheetID uuid.UUID) (int, error) {
	problems, _ := m.GetBySheet(ctx, sheetID)
	return len(problems), nil
}

func detailFor(slug, title, difficulty string) *leetcode.ProblemDetail {
	return &leetcode.ProblemDetail{
		Title:       title,
		TitleSlug:   slug,
		Difficulty:  difficulty,
		Description: "<p>" + title + "</p>",
		StarterCode: "var solve = function() {};",
		Link:        leetcode.ProblemLink(slug),
	}
}

func newTestImportService(
	lister *mockVideoLister,
	identifier *mockIdentifier,
	resolver *mockResolver,
	sheetRepo *mockSheetRepo,
	problemRepo *mockProblemRepo,
) *importService {
	svc := NewImportService(
		lister, identifier, resolver, sheetRepo, problemRepo,
		DefaultImportPolicy(), zap.NewNop(),
	).(*importService)
	svc.now = func() time.Time { return time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestImportPlaylist_MixedOutcomes(t *testing.T) {
	// Three videos: a clean match, a non-problem video, and a confident
	// match whose catalog lookup fails.
	lister := &mockVideoLister{videos: []youtube.Video{
		{Title: "Two Sum - Leetcode 1", URL: "https://www.youtube.com/watch?v=a"},
		{Title: "My Channel Trailer", URL: "https://www.youtube.com/watch?v=b"},
		{Title: "Valid Anagram - Leetcode 242", URL: "https://www.youtube.com/watch?v=c"},
	}}
	identifier := &mockIdentifier{byTitle: map[string]*models.IdentifiedProblem{
		"Two Sum - Leetcode 1":         {Title: "Two Sum", TitleSlug: "two-sum", Difficulty: "Easy", Confidence: 0.95},
		"Valid Anagram - Leetcode 242": {Title: "Valid Anagram", TitleSlug: "valid-anagram", Difficulty: "Easy", Confidence: 0.9},
	}}
	resolver := &mockResolver{
		bySlug:  map[string]*leetcode.ProblemDetail{"two-sum": detailFor("two-sum", "Two Sum", "Easy")},
		errSlug: "valid-anagram",
	}
	sheetRepo := newMockSheetRepo()
	problemRepo := &mockProblemRepo{}

	svc := newTestImportService(lister, identifier, resolver, sheetRepo, problemRepo)

	result, err := svc.ImportPlaylist(context.Background(), "https://www.youtube.com/playlist?list=PLabc")
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalVideos)
	assert.Equal(t, 2, result.SavedProblems)
	assert.Equal(t, "DSA Sheet — Mar 5, 2024", result.SheetName)
	assert.NotEqual(t, uuid.Nil, result.SheetID)

	require.Len(t, problemRepo.problems, 2)

	full := problemRepo.problems[0]
	assert.Equal(t, 0, full.Position)
	assert.Equal(t, "two-sum", full.TitleSlug)
	assert.Equal(t, "https://www.youtube.com/watch?v=a", full.YouTubeLink)
	assert.Equal(t, "var solve = function() {};", full.StarterCode)
	assert.InDelta(t, 0.95, full.ConfidenceScore, 1e-9)

	// The high-confidence match survives the catalog failure as an
	// identification-only entry keeping its source position.
	minimal := problemRepo.problems[1]
	assert.Equal(t, 2, minimal.Position)
	assert.Equal(t, "valid-anagram", minimal.TitleSlug)
	assert.Equal(t, leetcode.ProblemLink("valid-anagram"), minimal.LeetCodeLink)
	assert.Empty(t, minimal.Description)
	assert.Empty(t, minimal.StarterCode)
}

func TestImportPlaylist_ConfidenceGates(t *testing.T) {
	lister := &mockVideoLister{videos: []youtube.Video{
		{Title: "maybe two sum?", URL: "https://www.youtube.com/watch?v=a"},
		{Title: "probably sliding window", URL: "https://www.youtube.com/watch?v=b"},
	}}
	identifier := &mockIdentifier{byTitle: map[string]*models.IdentifiedProblem{
		// Below the match cutoff: never even resolved.
		"maybe two sum?": {Title: "Two Sum", TitleSlug: "two-sum", Confidence: 0.3},
		// Above the match cutoff but below the minimal-entry cutoff, and the
		// catalog lookup fails: dropped.
		"probably sliding window": {Title: "Sliding Window Maximum", TitleSlug: "sliding-window-maximum", Confidence: 0.6},
	}}
	resolver := &mockResolver{errSlug: "sliding-window-maximum"}
	sheetRepo := newMockSheetRepo()
	problemRepo := &mockProblemRepo{}

	svc := newTestImportService(lister, identifier, resolver, sheetRepo, problemRepo)

	result, err := svc.ImportPlaylist(context.Background(), "https://www.youtube.com/playlist?list=PLabc")
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalVideos)
	assert.Equal(t, 0, result.SavedProblems)
	assert.Empty(t, problemRepo.problems)

	// The sub-cutoff identification must not trigger a catalog call.
	assert.NotContains(t, resolver.calls, "two-sum")

	// A zero-problem sheet still exists and is listable.
	assert.Len(t, sheetRepo.sheets, 1)
}

func TestImportPlaylist_IdentificationFailureSkipsVideoOnly(t *testing.T) {
	lister := &mockVideoLister{videos: []youtube.Video{
		{Title: "flaky video", URL: "https://www.youtube.com/watch?v=a"},
		{Title: "Two Sum - Leetcode 1", URL: "https://www.youtube.com/watch?v=b"},
	}}
	identifier := &mockIdentifier{
		errTitle: "flaky video",
		byTitle: map[string]*models.IdentifiedProblem{
			"Two Sum - Leetcode 1": {Title: "Two Sum", TitleSlug: "two-sum", Confidence: 0.95},
		},
	}
	resolver := &mockResolver{bySlug: map[string]*leetcode.ProblemDetail{
		"two-sum": detailFor("two-sum", "Two Sum", "Easy"),
	}}
	sheetRepo := newMockSheetRepo()
	problemRepo := &mockProblemRepo{}

	svc := newTestImportService(lister, identifier, resolver, sheetRepo, problemRepo)

	result, err := svc.ImportPlaylist(context.Background(), "https://www.youtube.com/playlist?list=PLabc")
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalVideos)
	assert.Equal(t, 1, result.SavedProblems)
	require.Len(t, problemRepo.problems, 1)
	assert.Equal(t, 1, problemRepo.problems[0].Position)
}

func TestImportPlaylist_PersistenceFailureSkipsProblemOnly(t *testing.T) {
	lister := &mockVideoLister{videos: []youtube.Video{
		{Title: "Two Sum - Leetcode 1", URL: "https://www.youtube.com/watch?v=a"},
		{Title: "Valid Anagram - Leetcode 242", URL: "https://www.youtube.com/watch?v=b"},
	}}
	identifier := &mockIdentifier{byTitle: map[string]*models.IdentifiedProblem{
		"Two Sum - Leetcode 1":         {Title: "Two Sum", TitleSlug: "two-sum", Confidence: 0.95},
		"Valid Anagram - Leetcode 242": {Title: "Valid Anagram", TitleSlug: "valid-anagram", Confidence: 0.9},
	}}
	resolver := &mockResolver{bySlug: map[string]*leetcode.ProblemDetail{
		"two-sum":       detailFor("two-sum", "Two Sum", "Easy"),
		"valid-anagram": detailFor("valid-anagram", "Valid Anagram", "Easy"),
	}}
	sheetRepo := newMockSheetRepo()
	problemRepo := &mockProblemRepo{failSlugs: map[string]bool{"two-sum": true}}

	svc := newTestImportService(lister, identifier, resolver, sheetRepo, problemRepo)

	result, err := svc.ImportPlaylist(context.Background(), "https://www.youtube.com/playlist?list=PLabc")
	require.NoError(t, err)

	assert.Equal(t, 1, result.SavedProblems)
	require.Len(t, problemRepo.problems, 1)
	assert.Equal(t, "valid-anagram", problemRepo.problems[0].TitleSlug)
}

func TestImportPlaylist_PreservesSourceOrder(t *testing.T) {
	titles := []string{"Problem A", "Problem B", "Problem C", "Problem D", "Problem E"}
	videos := make([]youtube.Video, len(titles))
	byTitle := make(map[string]*models.IdentifiedProblem, len(titles))
	bySlug := make(map[string]*leetcode.ProblemDetail, len(titles))
	slugs := []string{"problem-a", "problem-b", "problem-c", "problem-d", "problem-e"}
	for i, title := range titles {
		videos[i] = youtube.Video{Title: title, URL: "https://www.youtube.com/watch?v=" + slugs[i]}
		byTitle[title] = &models.IdentifiedProblem{Title: title, TitleSlug: slugs[i], Confidence: 0.9}
		bySlug[slugs[i]] = detailFor(slugs[i], title, "Medium")
	}

	lister := &mockVideoLister{videos: videos}
	identifier := &mockIdentifier{byTitle: byTitle}
	resolver := &mockResolver{bySlug: bySlug}
	sheetRepo := newMockSheetRepo()
	problemRepo := &mockProblemRepo{}

	svc := newTestImportService(lister, identifier, resolver, sheetRepo, problemRepo)

	result, err := svc.ImportPlaylist(context.Background(), "https://www.youtube.com/playlist?list=PLabc")
	require.NoError(t, err)
	require.Equal(t, len(titles), result.SavedProblems)

	// Persistence happens after the fan-out, in source-video order.
	for i, problem := range problemRepo.problems {
		assert.Equal(t, i, problem.Position)
		assert.Equal(t, slugs[i], problem.TitleSlug)
	}
}

func TestImportPlaylist_EmptyPlaylist(t *testing.T) {
	lister := &mockVideoLister{videos: nil}
	sheetRepo := newMockSheetRepo()

	svc := newTestImportService(lister, &mockIdentifier{}, &mockResolver{}, sheetRepo, &mockProblemRepo{})

	result, err := svc.ImportPlaylist(context.Background(), "https://www.youtube.com/playlist?list=PLempty")
	assert.ErrorIs(t, err, apperrors.ErrNoVideosFound)
	assert.Nil(t, result)
	assert.Empty(t, sheetRepo.sheets)
}

func TestImportPlaylist_ListerErrorPropagates(t *testing.T) {
	lister := &mockVideoLister{err: apperrors.ErrInvalidPlaylistURL}

	svc := newTestImportService(lister, &mockIdentifier{}, &mockResolver{}, newMockSheetRepo(), &mockProblemRepo{})

	_, err := svc.ImportPlaylist(context.Background(), "https://example.com/not-a-playlist")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPlaylistURL)
}

func TestImportPlaylist_SheetCreateErrorAborts(t *testing.T) {
	lister := &mockVideoLister{videos: []youtube.Video{{Title: "Two Sum", URL: "https://www.youtube.com/watch?v=a"}}}
	sheetRepo := newMockSheetRepo()
	sheetRepo.createErr = errors.New("connection refused")
	identifier := &mockIdentifier{}

	svc := newTestImportService(lister, identifier, &mockResolver{}, sheetRepo, &mockProblemRepo{})

	_, err := svc.ImportPlaylist(context.Background(), "https://www.youtube.com/playlist?list=PLabc")
	require.Error(t, err)
	assert.Zero(t, identifier.calls)
}
