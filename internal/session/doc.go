// Package session provides cookie sessions for flash notices, CSRF
// protection for the HTML forms, and response security headers.
//
// Sessions are stored in SQLite through scs/sqlite3store so notices
// survive the redirect after a POST. There is no user identity: a
// session only ever carries the next notice and the form values to
// redisplay.
//
// Middleware order matters:
//
//	router.Use(session.SecurityHeadersMiddleware())
//	router.Use(session.CSRFMiddleware(secret, secure))
//	router.Use(manager.SessionLoadSave("/static/"))
package session
