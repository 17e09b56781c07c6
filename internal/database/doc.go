// Package database provides the data access layer for the application.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── quotes/          # Published quotes: insert with uniqueness, queries, random pick
//	└── audit/           # Purchase, payment failure and payment conflict records
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./quotes.db")
//
//	quotesRepo := quotes.NewRepository(db.DB)
//	auditRepo := audit.NewRepository(db.DB)
//
//	quote, err := quotesRepo.GetRandom(ctx)
//
// Repositories take a context on every call and scope the shared *gorm.DB to
// it with WithContext, so the session a request uses is explicit.
//
// # Uniqueness
//
// The quotes table carries a unique index on the digest of the stripped quote
// text. That index, not the validator's pre-check, decides whether two
// concurrent submissions of the same content conflict.
package database
