package session

import (
	"context"
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/quotebuy/internal/config"
)

// Session data keys
const (
	keyFlash = "flash"
	keyForm  = "form"
)

// FlashKind selects how a notice is styled.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashInfo    FlashKind = "info"
)

// Flash is a one-shot notice shown on the next page load.
type Flash struct {
	Kind    FlashKind
	Message string
}

// FormState is a rejected submission, kept so the form can be refilled.
type FormState struct {
	Quote  string
	Author string
	Errors map[string]string // field name to message
}

func init() {
	// Register types that will be stored in sessions
	gob.Register(Flash{})
	gob.Register(FormState{})
}

// Manager wraps scs.SessionManager with flash and form helpers.
type Manager struct {
	*scs.SessionManager
}

// NewManager creates a configured session manager.
// The sqlDB parameter should be the underlying *sql.DB from GORM.
func NewManager(sqlDB *sql.DB, cfg config.Session) (*Manager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)

	lifetime := cfg.Lifetime
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	sm.Lifetime = lifetime

	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	// Lax so the notice survives the redirect back from the Stripe checkout.
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &Manager{SessionManager: sm}, nil
}

// AddFlash queues a notice for the next page render.
func (m *Manager) AddFlash(ctx context.Context, kind FlashKind, message string) {
	m.Put(ctx, keyFlash, Flash{Kind: kind, Message: message})
}

// PopFlash returns and clears the pending notice, if any.
func (m *Manager) PopFlash(ctx context.Context) (Flash, bool) {
	f, ok := m.Pop(ctx, keyFlash).(Flash)
	return f, ok
}

// SaveForm keeps a rejected submission for redisplay.
func (m *Manager) SaveForm(ctx context.Context, form FormState) {
	m.Put(ctx, keyForm, form)
}

// PopForm returns and clears the saved submission.
func (m *Manager) PopForm(ctx context.Context) FormState {
	form, _ := m.Pop(ctx, keyForm).(FormState)
	return form
}
