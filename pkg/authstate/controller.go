package authstate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dentora/dentkit/pkg/async"
	"github.com/dentora/dentkit/pkg/profile"
)

// flowState is the explicit mutual-exclusion machine between the user-driven
// flows and the passive event listener. The listener only reconciles provider
// events while the controller is idle; any explicit flow suppresses it.
type flowState int

const (
	flowIdle flowState = iota
	flowSigningIn
	flowSigningOut
)

// Controller coordinates the identity provider, the profile store and the
// session cache into a single canonical Store. Exactly one resolution mutates
// state at a time; late results from timed-out calls are discarded via a
// generation counter.
type Controller struct {
	cfg      Config
	store    *Store
	provider IdentityProvider
	profiles ProfileStore
	cache    CacheStore
	log      *slog.Logger

	mu           sync.Mutex
	flow         flowState
	gen          uint64
	bootstrapped bool

	listenCancel context.CancelFunc
	listenWG     sync.WaitGroup
}

// New creates a Controller. The returned controller is inert until Bootstrap
// runs; consumers reading Current before that observe the uninitialized
// loading state.
func New(provider IdentityProvider, profiles ProfileStore, opts ...Option) *Controller {
	c := &Controller{
		cfg:      DefaultConfig(),
		store:    NewStore(),
		provider: provider,
		profiles: profiles,
		cache:    NewMemoryCache(),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current returns the latest committed snapshot.
func (c *Controller) Current() State {
	return c.store.Current()
}

// Subscribe registers a state-change listener on the underlying store.
func (c *Controller) Subscribe(ctx context.Context) Subscription {
	return c.store.Subscribe(ctx)
}

// Bootstrap resolves the initial session state and registers the provider
// event listener exactly once. All provider failures and timeouts resolve to
// a terminal snapshot; Bootstrap never leaves Loading=true behind and only
// errors on repeated invocation.
func (c *Controller) Bootstrap(ctx context.Context) error {
	c.mu.Lock()
	if c.bootstrapped {
		c.mu.Unlock()
		return ErrAlreadyBootstrapped
	}
	c.bootstrapped = true
	c.mu.Unlock()

	// The listener registers on every path, including early returns.
	defer c.startListener()

	// Fast path: the last fully resolved pair restores state with no network
	// round trip. The event stream refreshes the session handle afterwards.
	if cached, err := c.cache.Load(ctx); err == nil && cached != nil {
		c.log.InfoContext(ctx, "session cache hit",
			slog.String("identity", cached.Identity.ID.String()))
		c.commit(stateFromCache(cached), DestinationNone)
		return nil
	}

	if c.cfg.BootPolicy == BootFastPath {
		c.log.InfoContext(ctx, "fast boot, skipping session check")
		c.commit(State{}, DestinationNone)
		return nil
	}

	task := async.Run(ctx, func(ctx context.Context) (*Session, error) {
		return c.provider.CurrentSession(ctx)
	})
	sess, err := task.AwaitTimeout(c.cfg.SessionCheckTimeout)
	switch {
	case errors.Is(err, async.ErrTimeout):
		c.log.WarnContext(ctx, "session check timed out, forcing resolution")
		c.commit(State{Error: ErrSessionCheckTimeout.Error()}, DestinationNone)
		return nil
	case err != nil:
		c.log.ErrorContext(ctx, "session check failed", slog.String("error", err.Error()))
		c.commit(State{Error: err.Error()}, DestinationNone)
		return nil
	case sess == nil:
		c.commit(State{}, DestinationNone)
		return nil
	}

	// Active session: expose the identity right away so guards stop blocking,
	// then enrich. If anything commits in between, the enrichment loses.
	ident := sess.Identity
	gen := c.commit(State{Identity: &ident, Session: sess}, DestinationNone)

	st, _ := c.enrich(ctx, sess)
	c.commitIf(gen, st, DestinationNone)
	return nil
}

// SignIn exchanges credentials for a fully enriched session. It rejects
// immediately if another sign-in is in flight and suppresses the event
// listener for its whole duration so the provider's own sign-in event cannot
// race the explicit flow.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	c.mu.Lock()
	if c.flow != flowIdle {
		c.mu.Unlock()
		return ErrSignInInProgress
	}
	c.flow = flowSigningIn
	c.mu.Unlock()
	defer c.clearFlow()

	base := c.store.Current()
	loading := base
	loading.Loading = true
	loading.Error = ""
	gen := c.commit(loading, DestinationNone)

	task := async.Run(ctx, func(ctx context.Context) (*Session, error) {
		return c.provider.SignInWithCredentials(ctx, email, password)
	})
	sess, err := task.AwaitTimeout(c.cfg.SignInTimeout)
	if errors.Is(err, async.ErrTimeout) {
		err = ErrSignInTimeout
	}
	if err != nil {
		fail := base
		fail.Loading = false
		fail.Error = err.Error()
		c.commitIf(gen, fail, DestinationNone)
		return err
	}

	st, verr := c.enrich(ctx, sess)
	if verr != nil {
		// A session without a usable profile is torn down at the provider so
		// the user is not left half-authenticated.
		if soErr := c.provider.SignOut(ctx, SignOutLocal); soErr != nil {
			c.log.WarnContext(ctx, "failed to tear down invalid session",
				slog.String("error", soErr.Error()))
		}
		_ = c.cache.Clear(ctx)
		c.commitIf(gen, State{Error: verr.Error()}, DestinationNone)
		return verr
	}

	if !c.commitIf(gen, st, DestinationHome) {
		// A sign-out won the race; its cleared state stands.
		_ = c.cache.Clear(ctx)
		return nil
	}
	c.log.InfoContext(ctx, "sign-in complete", slog.String("tenant", st.TenantID.String()))
	return nil
}

// SignOut revokes the local provider session, clears the cache and commits
// the empty state. Provider failure is surfaced in State.Error and in the
// returned error, but local state clears regardless; sign-out is never
// blocked by a remote failure.
func (c *Controller) SignOut(ctx context.Context) error {
	c.mu.Lock()
	// Sign-out overrides an in-flight sign-in: its empty state must stand.
	c.flow = flowSigningOut
	c.mu.Unlock()
	defer c.clearFlow()

	task := async.Run(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.provider.SignOut(ctx, SignOutLocal)
	})
	_, err := task.AwaitTimeout(c.cfg.SignOutTimeout)
	if errors.Is(err, async.ErrTimeout) {
		err = ErrSignOutTimeout
	}
	if err != nil {
		c.log.WarnContext(ctx, "provider sign-out failed, clearing local state anyway",
			slog.String("error", err.Error()))
	}

	if cerr := c.cache.Clear(ctx); cerr != nil {
		c.log.WarnContext(ctx, "failed to clear session cache", slog.String("error", cerr.Error()))
	}

	st := State{}
	if err != nil {
		st.Error = err.Error()
	}
	c.commit(st, DestinationSignIn)
	return err
}

// RefreshProfile re-runs profile enrichment for the current identity, useful
// after out-of-band profile edits.
func (c *Controller) RefreshProfile(ctx context.Context) error {
	cur := c.store.Current()
	if cur.Identity == nil || cur.Session == nil {
		return ErrNotAuthenticated
	}

	loading := cur
	loading.Loading = true
	loading.Error = ""
	gen := c.commit(loading, DestinationNone)

	st, err := c.enrich(ctx, cur.Session)
	c.commitIf(gen, st, DestinationNone)
	return err
}

// Close tears down the event listener subscription and the store.
func (c *Controller) Close() error {
	if c.listenCancel != nil {
		c.listenCancel()
	}
	c.listenWG.Wait()
	return c.store.Close()
}

// enrich resolves the profile for an active session and folds the result into
// a terminal snapshot. Validation failures keep the identity populated but
// leave the derived fields absent; the returned error names the failure.
// On full success the cache slot is overwritten with the new pair.
func (c *Controller) enrich(ctx context.Context, sess *Session) (State, error) {
	ident := sess.Identity
	st := State{Identity: &ident, Session: sess}

	task := async.Run(ctx, func(ctx context.Context) (*profile.Profile, error) {
		return c.profiles.ByIdentity(ctx, ident.ID)
	})
	p, err := task.AwaitTimeout(c.cfg.ProfileFetchTimeout)
	switch {
	case errors.Is(err, async.ErrTimeout):
		st.Error = ErrProfileFetchTimeout.Error()
		return st, ErrProfileFetchTimeout
	case errors.Is(err, profile.ErrNotFound):
		st.Error = ErrProfileNotFound.Error()
		return st, ErrProfileNotFound
	case err != nil:
		st.Error = err.Error()
		return st, err
	}

	st.Profile = p
	if !p.Active {
		st.Error = ErrProfileInactive.Error()
		return st, ErrProfileInactive
	}
	if p.TenantID == uuid.Nil {
		st.Error = ErrNoTenantLinked.Error()
		return st, ErrNoTenantLinked
	}

	st.TenantID = p.TenantID
	st.Role = p.Role
	st.DisplayName = p.DisplayName

	if err := c.cache.Save(ctx, CachedSession{Identity: ident, Profile: *p}); err != nil {
		c.log.WarnContext(ctx, "failed to persist session cache", slog.String("error", err.Error()))
	}
	return st, nil
}

// startListener subscribes to the provider's session-change stream. Called
// exactly once, at the end of Bootstrap, whichever path it took.
func (c *Controller) startListener() {
	ctx, cancel := context.WithCancel(context.Background())
	c.listenCancel = cancel

	stream := c.provider.SessionEvents(ctx)

	c.listenWG.Add(1)
	go func() {
		defer c.listenWG.Done()
		defer stream.Close()

		ch := stream.Receive(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				c.handleEvent(ctx, ev)
			}
		}
	}()
}

// handleEvent reconciles one provider event into the store, unless an
// explicit flow is in progress.
func (c *Controller) handleEvent(ctx context.Context, ev SessionEvent) {
	c.mu.Lock()
	if c.flow != flowIdle {
		c.mu.Unlock()
		c.log.DebugContext(ctx, "provider event suppressed during explicit flow",
			slog.String("event", string(ev.Type)))
		return
	}
	gen := c.gen
	c.mu.Unlock()

	if ev.Session == nil || ev.Type == EventSignedOut {
		if cerr := c.cache.Clear(ctx); cerr != nil {
			c.log.WarnContext(ctx, "failed to clear session cache", slog.String("error", cerr.Error()))
		}
		c.commitIf(gen, State{}, DestinationSignIn)
		return
	}

	sess := ev.Session

	// A cached profile for the same identity skips the fetch; the event only
	// refreshes the session handle.
	if cached, err := c.cache.Load(ctx); err == nil && cached != nil &&
		cached.Identity.ID == sess.Identity.ID {
		st := stateFromCache(cached)
		st.Session = sess
		c.commitIf(gen, st, DestinationNone)
		return
	}

	st, _ := c.enrich(ctx, sess)
	c.commitIf(gen, st, DestinationNone)
}

func (c *Controller) clearFlow() {
	c.mu.Lock()
	c.flow = flowIdle
	c.mu.Unlock()
}

// commit bumps the generation and writes the snapshot unconditionally.
// Returns the new generation for follow-up commitIf calls.
func (c *Controller) commit(st State, nav Destination) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.store.commit(st, nav)
	return c.gen
}

// commitIf writes the snapshot only if nothing else committed since gen was
// observed. This is the guard that keeps late results from timed-out or
// superseded resolutions from clobbering newer state.
func (c *Controller) commitIf(gen uint64, st State, nav Destination) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		return false
	}
	c.gen++
	c.store.commit(st, nav)
	return true
}
