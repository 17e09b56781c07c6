package submission

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/quotebuy/internal/database/quotes"
	"github.com/mrlokans/quotebuy/internal/entities"
	"github.com/mrlokans/quotebuy/internal/markup"
)

// memoryStore is an in-memory QuoteStore keyed by stripped text.
type memoryStore struct {
	mu        sync.Mutex
	quotes    map[string]*entities.Quote
	nextID    uint
	insertErr error
	lookupErr error
	inserts   int
}

func newMemoryStore(existing ...string) *memoryStore {
	s := &memoryStore{quotes: make(map[string]*entities.Quote)}
	for _, text := range existing {
		s.nextID++
		s.quotes[text] = &entities.Quote{ID: s.nextID, Text: text, Normalized: text, Author: entities.DefaultAuthor}
	}
	return s
}

func (s *memoryStore) ExistsNormalized(_ context.Context, normalized string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return false, s.lookupErr
	}
	_, ok := s.quotes[normalized]
	return ok, nil
}

func (s *memoryStore) Insert(ctx context.Context, q quotes.NewQuote) (*entities.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts++
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if _, ok := s.quotes[q.Normalized]; ok {
		return nil, quotes.ErrDuplicate
	}
	s.nextID++
	quote := &entities.Quote{
		ID:         s.nextID,
		Text:       q.Text,
		Normalized: q.Normalized,
		Digest:     quotes.Digest(q.Normalized),
		Author:     q.Author,
		Created:    q.Created,
	}
	s.quotes[q.Normalized] = quote
	return quote, nil
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.quotes)
}

func TestValidate_Valid(t *testing.T) {
	v := NewValidator(markup.NewProcessor(), newMemoryStore())

	res, err := v.Validate(context.Background(), Submission{Quote: "  [b]bold[/b] move  ", Author: " ada "})
	require.NoError(t, err)

	assert.True(t, res.Valid())
	assert.NoError(t, res.Err())
	assert.Equal(t, "<b>bold</b> move", res.Rendered)
	assert.Equal(t, "bold move", res.Stripped)
	assert.Equal(t, "ada", res.Author)
}

func TestValidate_BlankAuthorDefaultsToAnonymous(t *testing.T) {
	v := NewValidator(markup.NewProcessor(), newMemoryStore())

	res, err := v.Validate(context.Background(), Submission{Quote: "hello", Author: "   "})
	require.NoError(t, err)

	assert.True(t, res.Valid())
	assert.Equal(t, entities.DefaultAuthor, res.Author)
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name    string
		sub     Submission
		field   string
		reason  Reason
		message string
	}{
		{
			name:    "empty quote",
			sub:     Submission{Quote: ""},
			field:   "quote",
			reason:  ReasonStructural,
			message: "This field is required.",
		},
		{
			name:    "whitespace quote",
			sub:     Submission{Quote: "   \n "},
			field:   "quote",
			reason:  ReasonStructural,
			message: "This field is required.",
		},
		{
			name:    "markup only",
			sub:     Submission{Quote: "[b][/b]"},
			field:   "quote",
			reason:  ReasonLength,
			message: "Quote is not a valid length (0 characters).",
		},
		{
			name:    "too long",
			sub:     Submission{Quote: strings.Repeat("a", MaxQuoteLength+1)},
			field:   "quote",
			reason:  ReasonLength,
			message: "Quote is not a valid length (141 characters).",
		},
		{
			name:    "duplicate",
			sub:     Submission{Quote: "taken"},
			field:   "quote",
			reason:  ReasonDuplicate,
			message: "Quote exists, come up with something original.",
		},
		{
			name:    "author too long",
			sub:     Submission{Quote: "fresh", Author: strings.Repeat("b", MaxAuthorLength+1)},
			field:   "author",
			reason:  ReasonLength,
			message: "Field cannot be longer than 32 characters.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(markup.NewProcessor(), newMemoryStore("taken"))

			res, err := v.Validate(context.Background(), tt.sub)
			require.NoError(t, err)
			require.Len(t, res.Errors, 1)

			fe := res.Errors[0]
			assert.Equal(t, tt.field, fe.Field)
			assert.Equal(t, tt.reason, fe.Reason)
			assert.Equal(t, tt.message, fe.Message)
			assert.Empty(t, res.Rendered)
			assert.ErrorIs(t, res.Err(), ErrValidation)
		})
	}
}

func TestValidate_LengthBoundaries(t *testing.T) {
	v := NewValidator(markup.NewProcessor(), newMemoryStore())

	res, err := v.Validate(context.Background(), Submission{Quote: strings.Repeat("x", MaxQuoteLength)})
	require.NoError(t, err)
	assert.True(t, res.Valid())

	res, err = v.Validate(context.Background(), Submission{Quote: "x"})
	require.NoError(t, err)
	assert.True(t, res.Valid())

	// Spoiler markers do not count towards the length.
	res, err = v.Validate(context.Background(), Submission{Quote: "[spoiler]" + strings.Repeat("y", MaxQuoteLength) + "[/spoiler]"})
	require.NoError(t, err)
	assert.True(t, res.Valid())
}

func TestValidate_LengthCountsCharactersNotBytes(t *testing.T) {
	v := NewValidator(markup.NewProcessor(), newMemoryStore())

	res, err := v.Validate(context.Background(), Submission{Quote: strings.Repeat("é", MaxQuoteLength)})
	require.NoError(t, err)
	assert.True(t, res.Valid())

	res, err = v.Validate(context.Background(), Submission{Quote: "ok", Author: strings.Repeat("ü", MaxAuthorLength)})
	require.NoError(t, err)
	assert.True(t, res.Valid())
}

func TestValidate_DuplicateComparesStrippedText(t *testing.T) {
	v := NewValidator(markup.NewProcessor(), newMemoryStore("same words"))

	res, err := v.Validate(context.Background(), Submission{Quote: "[b]same[/b] words"})
	require.NoError(t, err)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, ReasonDuplicate, res.Errors[0].Reason)
	assert.ErrorIs(t, res.Err(), ErrDuplicate)
}

func TestValidate_ReportsBothFields(t *testing.T) {
	v := NewValidator(markup.NewProcessor(), newMemoryStore())

	res, err := v.Validate(context.Background(), Submission{Quote: "", Author: strings.Repeat("z", 40)})
	require.NoError(t, err)

	require.Len(t, res.Errors, 2)
	assert.Equal(t, "quote", res.Errors[0].Field)
	assert.Equal(t, "author", res.Errors[1].Field)

	var ve *ValidationError
	require.ErrorAs(t, res.Err(), &ve)
	assert.Equal(t, "quote", ve.First().Field)
	assert.True(t, ve.Has(ReasonStructural))
	assert.False(t, ve.Has(ReasonDuplicate))
}

func TestValidate_LookupFailure(t *testing.T) {
	store := newMemoryStore()
	store.lookupErr = errors.New("disk on fire")
	v := NewValidator(markup.NewProcessor(), store)

	_, err := v.Validate(context.Background(), Submission{Quote: "hello"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}
