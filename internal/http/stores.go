package http

import (
	"context"

	"github.com/mrlokans/quotebuy/internal/entities"
	"github.com/mrlokans/quotebuy/internal/submission"
)

// SubmissionService runs the buy and preview flows.
type SubmissionService interface {
	Buy(ctx context.Context, s submission.Submission, token string) submission.Outcome
	Preview(ctx context.Context, s submission.Submission) submission.Outcome
}

// QuoteReader provides read access to published quotes.
type QuoteReader interface {
	GetByID(ctx context.Context, id uint) (*entities.Quote, error)
	GetByAuthor(ctx context.Context, name string) ([]entities.Quote, error)
	GetAll(ctx context.Context) ([]entities.Quote, error)
	Count(ctx context.Context) (int64, error)
	CountDistinctAuthors(ctx context.Context) (int64, error)
	GetRandom(ctx context.Context) (*entities.Quote, error)
}
