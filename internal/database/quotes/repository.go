// Package quotes provides database operations for published quotes.
//
// This package implements the QuoteStore interface defined in
// internal/submission and the QuoteReader interface defined in internal/http.
//
// # Usage
//
//	repo := quotes.NewRepository(db)
//	quote, err := repo.Insert(ctx, quotes.NewQuote{Text: rendered, Normalized: stripped, Author: "Anonymous", Created: time.Now()})
//	if errors.Is(err, quotes.ErrDuplicate) { ... }
package quotes

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/blake2b"
	"gorm.io/gorm"

	"github.com/mrlokans/quotebuy/internal/entities"
)

// ErrDuplicate is returned by Insert when a quote with the same stripped text
// is already stored.
var ErrDuplicate = errors.New("quote already exists")

// NewQuote holds the fields of a quote that is about to be stored.
type NewQuote struct {
	Text       string // rendered display form
	Normalized string // stripped form, the uniqueness key
	Author     string
	Created    time.Time
}

// Repository handles all quote database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new quotes repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Digest returns the uniqueness key for a stripped quote.
func Digest(normalized string) string {
	sum := blake2b.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Insert stores a quote atomically. The unique digest index rejects a second
// quote with the same stripped text even when both passed validation.
func (r *Repository) Insert(ctx context.Context, q NewQuote) (*entities.Quote, error) {
	quote := &entities.Quote{
		Text:       q.Text,
		Normalized: q.Normalized,
		Digest:     Digest(q.Normalized),
		Author:     q.Author,
		Created:    q.Created,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(quote).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert quote: %w", err)
	}
	return quote, nil
}

// ExistsNormalized reports whether a quote with this stripped text is stored.
func (r *Repository) ExistsNormalized(ctx context.Context, normalized string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Quote{}).
		Where("digest = ?", Digest(normalized)).
		Count(&count).Error
	return count > 0, err
}

// GetByID returns the quote with the given id, or nil if there is none.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Quote, error) {
	var quote entities.Quote
	err := r.db.WithContext(ctx).First(&quote, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetByAuthor returns the quotes attributed to name in insertion order.
func (r *Repository) GetByAuthor(ctx context.Context, name string) ([]entities.Quote, error) {
	var quotes []entities.Quote
	err := r.db.WithContext(ctx).Where("author = ?", name).Order("id ASC").Find(&quotes).Error
	return quotes, err
}

// GetAll returns every quote in insertion order.
func (r *Repository) GetAll(ctx context.Context) ([]entities.Quote, error) {
	var quotes []entities.Quote
	err := r.db.WithContext(ctx).Order("id ASC").Find(&quotes).Error
	return quotes, err
}

// Count returns the number of stored quotes.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Quote{}).Count(&count).Error
	return count, err
}

// CountDistinctAuthors returns how many different names have published.
func (r *Repository) CountDistinctAuthors(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Quote{}).Distinct("author").Count(&count).Error
	return count, err
}

// GetRandom returns a quote drawn uniformly from all stored quotes, or nil
// when the store is empty.
func (r *Repository) GetRandom(ctx context.Context) (*entities.Quote, error) {
	var quotes []entities.Quote
	err := r.db.WithContext(ctx).Order("RANDOM()").Limit(1).Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, nil
	}
	return &quotes[0], nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
