// Package identity implements email and password accounts with revocable
// bearer sessions.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"quotestudio/internal/domain"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 6

// Principal is an authenticated user.
type Principal struct {
	ID        string
	Email     string
	SessionID string
}

// Session is what a successful sign-in hands back to the client.
type Session struct {
	Token     string
	ExpiresAt int64
	Principal Principal
}

// ProfileFactory builds the profile stored for a new account.
type ProfileFactory func(id, email, name string, isAdmin bool) domain.Profile

// AuthStateListener is told about sign-in and sign-up with the principal and
// about sign-out with nil.
type AuthStateListener func(ctx context.Context, p *Principal)

// Service is the identity provider.
type Service struct {
	accounts   domain.AccountRepository
	profiles   domain.ProfileStore
	newProfile ProfileFactory
	tokens     *TokenIssuer
	sessions   SessionStore
	bootstrap  string
	hashCost   int
	logger     zerolog.Logger

	mu        sync.RWMutex
	listeners map[int]AuthStateListener
	nextID    int
}

// Options configures a Service.
type Options struct {
	Accounts   domain.AccountRepository
	Profiles   domain.ProfileStore
	NewProfile ProfileFactory
	Tokens     *TokenIssuer
	Sessions   SessionStore
	// BootstrapAdminEmail, when set, makes the account signing up with this
	// address an administrator.
	BootstrapAdminEmail string
	// HashCost overrides the bcrypt cost; zero uses bcrypt.DefaultCost.
	HashCost int
	Logger   zerolog.Logger
}

func NewService(opts Options) *Service {
	cost := opts.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		accounts:   opts.Accounts,
		profiles:   opts.Profiles,
		newProfile: opts.NewProfile,
		tokens:     opts.Tokens,
		sessions:   opts.Sessions,
		bootstrap:  strings.ToLower(strings.TrimSpace(opts.BootstrapAdminEmail)),
		hashCost:   cost,
		logger:     opts.Logger.With().Str("component", "identity").Logger(),
		listeners:  make(map[int]AuthStateListener),
	}
}

// OnAuthStateChange registers fn and returns a function that removes it.
func (s *Service) OnAuthStateChange(fn AuthStateListener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Service) notify(ctx context.Context, p *Principal) {
	s.mu.RLock()
	fns := make([]AuthStateListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(ctx, p)
	}
}

// SignUp creates the account and its profile, then signs the user in.
func (s *Service) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name is required: %w", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	account := &domain.Account{ID: uuid.NewString(), Email: email, PasswordHash: string(hash)}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrEmailInUse) {
			return nil, fmt.Errorf("%w: %w", domain.ErrAuth, domain.ErrEmailInUse)
		}
		return nil, err
	}

	isAdmin := s.bootstrap != "" && email == s.bootstrap
	profile := s.newProfile(account.ID, email, name, isAdmin)
	if err := s.profiles.Create(ctx, &profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	if isAdmin {
		s.logger.Warn().Str("user_id", account.ID).Msg("bootstrap administrator signed up")
	}
	return s.open(ctx, Principal{ID: account.ID, Email: email})
}

// SignIn checks the password and opens a session. A missing profile is
// recreated with defaults.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	account, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuth, domain.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuth, domain.ErrInvalidCredentials)
	}

	if _, err := s.profiles.GetByID(ctx, account.ID); errors.Is(err, domain.ErrNotFound) {
		profile := s.newProfile(account.ID, account.Email, "", s.bootstrap != "" && account.Email == s.bootstrap)
		if err := s.profiles.Create(ctx, &profile); err != nil {
			return nil, fmt.Errorf("recreate profile: %w", err)
		}
		s.logger.Warn().Str("user_id", account.ID).Msg("profile missing at sign-in, recreated")
	} else if err != nil {
		return nil, err
	}
	return s.open(ctx, Principal{ID: account.ID, Email: account.Email})
}

func (s *Service) open(ctx context.Context, p Principal) (*Session, error) {
	p.SessionID = uuid.NewString()
	token, expires, err := s.tokens.Issue(p, p.SessionID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, p.SessionID, p.ID, s.tokens.TTL()); err != nil {
		return nil, err
	}
	s.notify(ctx, &p)
	return &Session{Token: token, ExpiresAt: expires.Unix(), Principal: p}, nil
}

// Verify resolves a bearer token to its principal.
func (s *Service) Verify(ctx context.Context, token string) (*Principal, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	userID, err := s.sessions.UserID(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if userID != claims.Subject {
		return nil, fmt.Errorf("session owner mismatch: %w", domain.ErrUnauthorized)
	}
	return &Principal{ID: claims.Subject, Email: claims.Email, SessionID: claims.ID}, nil
}

// SignOut revokes the session behind token.
func (s *Service) SignOut(ctx context.Context, token string) error {
	p, err := s.Verify(ctx, token)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, p.SessionID); err != nil {
		return err
	}
	s.notify(ctx, nil)
	return nil
}

func validateCredentials(email, password string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address: %w", domain.ErrInvalidInput)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters: %w", MinPasswordLength, domain.ErrInvalidInput)
	}
	return nil
}
