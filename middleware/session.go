package middleware

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/defesacivil-sl/boletim/models"
)

// SessionProvider resolves the authenticated user behind a request and keeps
// a small per-process cache so repeated requests in one session do not hit
// the database every time. It is constructed once at startup and injected
// into the handlers that need current-user/role.
type SessionProvider struct {
	db *gorm.DB

	mu    sync.Mutex
	cache map[string]models.User

	// bootstrapTimeout bounds the initial user lookup. This is the only
	// timeout in the system; when it fires the cache is purged so a wedged
	// lookup cannot keep serving stale identity.
	bootstrapTimeout time.Duration
}

func NewSessionProvider(db *gorm.DB) *SessionProvider {
	return &SessionProvider{
		db:               db,
		cache:            make(map[string]models.User),
		bootstrapTimeout: 5 * time.Second,
	}
}

// CurrentUser loads the user for the given claims. A cached entry is
// returned as-is; otherwise the row is fetched under the bootstrap timeout.
func (s *SessionProvider) CurrentUser(ctx context.Context, claims *Claims) (models.User, error) {
	if claims == nil {
		return models.User{}, errors.New("no session")
	}

	s.mu.Lock()
	if u, ok := s.cache[claims.UserID]; ok {
		s.mu.Unlock()
		return u, nil
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.bootstrapTimeout)
	defer cancel()

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", claims.UserID).Error
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Printf("session bootstrap timed out for user %s, purging cache", claims.UserID)
			s.Purge()
		}
		return models.User{}, err
	}
	if !user.IsActive {
		return models.User{}, errors.New("user is inactive")
	}

	s.mu.Lock()
	s.cache[claims.UserID] = user
	s.mu.Unlock()
	return user, nil
}

// Invalidate drops one user from the cache (role change, deactivation,
// sign-out).
func (s *SessionProvider) Invalidate(userID string) {
	s.mu.Lock()
	delete(s.cache, userID)
	s.mu.Unlock()
}

// Purge drops the whole cache.
func (s *SessionProvider) Purge() {
	s.mu.Lock()
	s.cache = make(map[string]models.User)
	s.mu.Unlock()
}
