package identity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dentora/dentkit/pkg/authstate"
)

// LocalProvider is a self-hosted identity provider satisfying
// authstate.IdentityProvider. It verifies credentials against a UserStore,
// issues signed JWT session tokens and publishes session changes on an event
// stream, so the lifecycle controller can run against it exactly as it would
// against a hosted provider.
//
// The provider holds one current session, mirroring a per-device client: the
// hosted services this replaces keep the device's session token client-side.
type LocalProvider struct {
	users    UserStore
	secret   []byte
	issuer   string
	tokenTTL time.Duration
	log      *slog.Logger

	mu      sync.RWMutex
	current *authstate.Session

	subMu  sync.RWMutex
	subs   map[*eventStream]struct{}
	closed bool
}

// ProviderOption configures a LocalProvider.
type ProviderOption func(*LocalProvider)

// WithTokenTTL sets the session token lifetime.
func WithTokenTTL(ttl time.Duration) ProviderOption {
	return func(p *LocalProvider) {
		if ttl > 0 {
			p.tokenTTL = ttl
		}
	}
}

// WithIssuer sets the JWT issuer claim.
func WithIssuer(issuer string) ProviderOption {
	return func(p *LocalProvider) {
		if issuer != "" {
			p.issuer = issuer
		}
	}
}

// WithProviderLogger sets the provider logger.
func WithProviderLogger(log *slog.Logger) ProviderOption {
	return func(p *LocalProvider) {
		if log != nil {
			p.log = log
		}
	}
}

// NewLocalProvider creates a provider signing tokens with the given secret.
func NewLocalProvider(users UserStore, secret string, opts ...ProviderOption) *LocalProvider {
	p := &LocalProvider{
		users:    users,
		secret:   []byte(secret),
		issuer:   "dentkit",
		tokenTTL: time.Hour,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		subs:     make(map[*eventStream]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// CurrentSession returns the active session after verifying its token, or
// (nil, nil) when no valid session is held.
func (p *LocalProvider) CurrentSession(ctx context.Context) (*authstate.Session, error) {
	p.mu.RLock()
	sess := p.current
	p.mu.RUnlock()

	if sess == nil {
		return nil, nil
	}

	if _, err := p.parseToken(sess.Token); err != nil {
		// Expired or tampered token behaves like no session.
		p.mu.Lock()
		if p.current == sess {
			p.current = nil
		}
		p.mu.Unlock()
		return nil, nil
	}

	cp := *sess
	return &cp, nil
}

// SignInWithCredentials verifies the credentials and issues a new session.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (p *LocalProvider) SignInWithCredentials(ctx context.Context, email, password string) (*authstate.Session, error) {
	u, err := p.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sess, err := p.issueSession(*u)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.current = sess
	p.mu.Unlock()

	p.log.InfoContext(ctx, "user signed in", slog.String("user", u.ID.String()))
	p.publish(authstate.SessionEvent{Type: authstate.EventSignedIn, Session: sess})

	cp := *sess
	return &cp, nil
}

// SignOut revokes the current session. The local provider holds only this
// device's session, so local and global scope behave identically.
func (p *LocalProvider) SignOut(ctx context.Context, scope authstate.SignOutScope) error {
	p.mu.Lock()
	had := p.current != nil
	p.current = nil
	p.mu.Unlock()

	if had {
		p.publish(authstate.SessionEvent{Type: authstate.EventSignedOut})
	}
	return nil
}

// RefreshSession reissues the current session token and publishes a refresh
// event, or ErrTokenInvalid when no session is active.
func (p *LocalProvider) RefreshSession(ctx context.Context) (*authstate.Session, error) {
	p.mu.Lock()
	cur := p.current
	p.mu.Unlock()

	if cur == nil {
		return nil, ErrTokenInvalid
	}

	u, err := p.users.ByID(ctx, cur.Identity.ID)
	if err != nil {
		return nil, err
	}

	sess, err := p.issueSession(*u)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.current = sess
	p.mu.Unlock()

	p.publish(authstate.SessionEvent{Type: authstate.EventTokenRefreshed, Session: sess})

	cp := *sess
	return &cp, nil
}

// SessionEvents subscribes to session changes until ctx is cancelled or the
// stream is closed.
func (p *LocalProvider) SessionEvents(ctx context.Context) authstate.EventStream {
	sub := &eventStream{ch: make(chan authstate.SessionEvent, 8)}

	p.subMu.Lock()
	if p.closed {
		p.subMu.Unlock()
		_ = sub.Close()
		return sub
	}
	p.subs[sub] = struct{}{}
	p.subMu.Unlock()

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			p.unsubscribe(sub)
		}()
	}

	return sub
}

// Close shuts down all event streams. Idempotent.
func (p *LocalProvider) Close() error {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for sub := range p.subs {
		_ = sub.Close()
	}
	clear(p.subs)
	return nil
}

func (p *LocalProvider) issueSession(u User) (*authstate.Session, error) {
	now := time.Now()
	expires := now.Add(p.tokenTTL)

	claims := sessionClaims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, err
	}

	return &authstate.Session{
		Token:     token,
		ExpiresAt: expires,
		Identity:  authstate.Identity{ID: u.ID, Email: u.Email},
	}, nil
}

func (p *LocalProvider) parseToken(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return p.secret, nil
	}, jwt.WithIssuer(p.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, errors.Join(ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (p *LocalProvider) publish(ev authstate.SessionEvent) {
	p.subMu.RLock()
	defer p.subMu.RUnlock()

	for sub := range p.subs {
		if !sub.send(ev) {
			// Full buffer or closed stream; drop rather than block sign-in.
			go p.unsubscribe(sub)
		}
	}
}

func (p *LocalProvider) unsubscribe(sub *eventStream) {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	delete(p.subs, sub)
	_ = sub.Close()
}

type eventStream struct {
	ch     chan authstate.SessionEvent
	mu     sync.Mutex
	closed bool
}

func (s *eventStream) Receive(ctx context.Context) <-chan authstate.SessionEvent {
	return s.ch
}

func (s *eventStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
	return nil
}

func (s *eventStream) send(ev authstate.SessionEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}
