// internal/pkg/auth/session.go
package auth

// Session identifies the caller of a cart operation. An authenticated session
// carries the upstream user id and the bearer token the backend expects;
// a guest session only carries a locally generated session id.
type Session struct {
	UserID    string
	SessionID string
	Token     string
}

// Authenticated reports whether the session can talk to the backend cart
func (s Session) Authenticated() bool {
	return s.UserID != "" && s.Token != ""
}

// CacheKey returns the key under which this session's local snapshots are
// persisted. Authenticated sessions key by user so the cart follows the user
// across devices; guests key by session id.
func (s Session) CacheKey() string {
	if s.UserID != "" {
		return "user:" + s.UserID
	}
	return "session:" + s.SessionID
}
