package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/algonote-ai/sheet-engine/pkg/llm"
	"github.com/algonote-ai/sheet-engine/pkg/models"
	"github.com/algonote-ai/sheet-engine/pkg/prompts"
)

// ProblemIdentifier asks the identification model which catalog problem a
// video title refers to.
type ProblemIdentifier interface {
	// Identify returns the identified problem, or (nil, nil) when the model
	// could not name a problem (missing slug or malformed output). Transport
	// failures surface as errors; callers treat them like "no match".
	Identify(ctx context.Context, videoTitle string) (*models.IdentifiedProblem, error)
}

type problemIdentifier struct {
	chatClient llm.ChatClient
	timeout    time.Duration
	logger     *zap.Logger
}

// NewProblemIdentifier creates a ProblemIdentifier backed by an
// OpenAI-compatible chat client.
func NewProblemIdentifier(chatClient llm.ChatClient, timeout time.Duration, logger *zap.Logger) ProblemIdentifier {
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &problemIdentifier{
		chatClient: chatClient,
		timeout:    timeout,
		logger:     logger.Named("identify"),
	}
}

var _ ProblemIdentifier = (*problemIdentifier)(nil)

func (p *problemIdentifier) Identify(ctx context.Context, videoTitle string) (*models.IdentifiedProblem, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.chatClient.GenerateResponse(ctx, prompts.IdentifyProblem(videoTitle), 0)
	if err != nil {
		return nil, err
	}

	// The model is told to answer with bare JSON but routinely wraps it in
	// code fences anyway; ParseJSONResponse tolerates that.
	identified, err := llm.ParseJSONResponse[models.IdentifiedProblem](raw)
	if err != nil {
		p.logger.Warn("Unparseable identification response",
			zap.String("video_title", videoTitle),
			zap.Error(err))
		return nil, nil
	}

	if identified.TitleSlug == "" {
		return nil, nil
	}

	return &identified, nil
}
