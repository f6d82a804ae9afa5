package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/accountsvc/apiserver/internal/store"
	"github.com/accountsvc/apiserver/types"
	"github.com/rs/zerolog"
)

// AccountStore defines persistence operations for accounts.
type AccountStore interface {
	Insert(ctx context.Context, record types.AccountRecord) error
	FindByEmail(ctx context.Context, email string) (types.AccountRecord, error)
	FindByID(ctx context.Context, id string) (types.AccountRecord, error)
	ListAll(ctx context.Context) ([]types.AccountRecord, error)
	DeleteByID(ctx context.Context, id string) error
}

// IDGenerator produces unique account identifiers.
type IDGenerator interface {
	Generate() string
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, digest string) bool
}

// TokenService issues and verifies stateless authorization tokens.
type TokenService interface {
	Issue(payload types.TokenPayload) (string, error)
	Verify(token string) (types.TokenPayload, bool)
}

// EventPublisher delivers account lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event types.AccountEvent) error
}

// SignupInput is a validated signup request.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput is a validated login request.
type LoginInput struct {
	Email    string
	Password string
}

// AccountRequest addresses a single account on behalf of a token holder.
type AccountRequest struct {
	Token string
	ID    string
}

// MessageAccountDeleted confirms a successful DeleteAccount.
const MessageAccountDeleted = "account deleted successfully"

// AccountService encapsulates the account lifecycle use-cases.
type AccountService struct {
	store  AccountStore
	ids    IDGenerator
	hasher PasswordHasher
	tokens TokenService
	events EventPublisher
	now    func() time.Time
	logger zerolog.Logger
}

// Option customizes an AccountService.
type Option func(*AccountService)

// WithEvents publishes account.created and account.deleted through p.
func WithEvents(p EventPublisher) Option {
	return func(s *AccountService) {
		s.events = p
	}
}

// WithClock overrides the time source used for createdAt and event stamps.
func WithClock(now func() time.Time) Option {
	return func(s *AccountService) {
		s.now = now
	}
}

// WithLogger sets the logger used for best-effort event failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *AccountService) {
		s.logger = logger
	}
}

// NewAccountService wires the account use-cases. Events are disabled and
// the clock is time.Now unless overridden by opts.
func NewAccountService(
	store AccountStore,
	ids IDGenerator,
	hasher PasswordHasher,
	tokens TokenService,
	opts ...Option,
) *AccountService {
	s := &AccountService{
		store:  store,
		ids:    ids,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup creates a NORMAL account and returns a token bound to it.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (string, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" {
		return "", validationError("name is required")
	}
	if email == "" {
		return "", validationError("email is required")
	}
	if strings.TrimSpace(in.Password) == "" {
		return "", validationError("password is required")
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return "", conflictError("email already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("check email: %w", err)
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	account := types.NewAccount(s.ids.Generate(), name, email, hashed, s.now())
	record, err := account.Record()
	if err != nil {
		return "", err
	}
	if err := s.store.Insert(ctx, record); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return "", conflictError("email already registered")
		}
		return "", fmt.Errorf("insert account: %w", err)
	}

	token, err := s.tokens.Issue(account.TokenPayload())
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.publish(ctx, types.EventAccountCreated, account)
	return token, nil
}

// Login verifies credentials and returns a token for the stored identity.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (string, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return "", validationError("email is required")
	}
	if strings.TrimSpace(in.Password) == "" {
		return "", validationError("password is required")
	}

	record, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", notFoundError("email not registered")
		}
		return "", fmt.Errorf("find account: %w", err)
	}

	account := types.AccountFromRecord(record)
	if !s.hasher.Compare(in.Password, account.PasswordHash) {
		return "", validationError("invalid password")
	}

	token, err := s.tokens.Issue(account.TokenPayload())
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// GetAccount returns the view of one account. ADMIN only.
func (s *AccountService) GetAccount(ctx context.Context, req AccountRequest) (types.AccountView, error) {
	if err := s.authorizeAdmin(req.Token); err != nil {
		return types.AccountView{}, err
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return types.AccountView{}, validationError("id is required")
	}

	record, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.AccountView{}, notFoundError("account not found")
		}
		return types.AccountView{}, fmt.Errorf("find account: %w", err)
	}

	return types.AccountFromRecord(record).View(), nil
}

// ListAccounts returns every account view in store order.
// It performs no authorization check.
func (s *AccountService) ListAccounts(ctx context.Context) ([]types.AccountView, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	views := make([]types.AccountView, 0, len(records))
	for _, record := range records {
		views = append(views, types.AccountFromRecord(record).View())
	}
	return views, nil
}

// DeleteAccount removes an account. ADMIN only.
func (s *AccountService) DeleteAccount(ctx context.Context, req AccountRequest) (string, error) {
	if err := s.authorizeAdmin(req.Token); err != nil {
		return "", err
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return "", validationError("id is required")
	}

	record, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", notFoundError("account not found")
		}
		return "", fmt.Errorf("find account: %w", err)
	}

	if err := s.store.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", notFoundError("account not found")
		}
		return "", fmt.Errorf("delete account: %w", err)
	}

	s.publish(ctx, types.EventAccountDeleted, types.AccountFromRecord(record))
	return MessageAccountDeleted, nil
}

func (s *AccountService) authorizeAdmin(token string) error {
	if strings.TrimSpace(token) == "" {
		return unauthorizedError("invalid credentials")
	}
	payload, ok := s.tokens.Verify(token)
	if !ok || !payload.IsAdmin() {
		return unauthorizedError("invalid credentials")
	}
	return nil
}

// publish is best effort: the account change is already committed.
func (s *AccountService) publish(ctx context.Context, eventType string, account types.Account) {
	if s.events == nil {
		return
	}
	event := types.AccountEvent{
		Type:       eventType,
		AccountID:  account.ID,
		Role:       account.Role,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().
			Err(err).
			Str("event", eventType).
			Str("account_id", account.ID).
			Msg("publish account event failed")
	}
}
