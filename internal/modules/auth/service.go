package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"classifieds/internal/domain"
	"classifieds/internal/modules/access"
	"classifieds/internal/pkg/jwt"
	"classifieds/internal/pkg/validator"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Service issues stateless bearer sessions and resolves them back into
// access identities.
type Service struct {
	users    UserStore
	profiles ProfileStore
	tokens   Tokens
	log      logrus.FieldLogger
	cost     int
	now      func() time.Time
}

func NewService(users UserStore, profiles ProfileStore, tokens Tokens, log logrus.FieldLogger) *Service {
	return &Service{
		users:    users,
		profiles: profiles,
		tokens:   tokens,
		log:      log,
		cost:     bcrypt.DefaultCost,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SignUp creates the account. A non-blank display name also opens the
// advertiser profile.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*Session, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{Email: req.Email, PasswordHash: string(hash), FullName: req.DisplayName}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Invalid("email", "already registered")
		}
		return nil, err
	}

	if req.DisplayName != "" {
		profile := &domain.AdvertiserProfile{UserID: user.ID, DisplayName: req.DisplayName}
		if err := s.profiles.Create(ctx, profile); err != nil {
			// The account stands; the profile can be created later.
			s.log.WithFields(logrus.Fields{"user_id": user.ID, "error": err.Error()}).Warn("advertiser profile not created at sign-up")
		}
	}

	s.log.WithField("user_id", user.ID).Info("user signed up")
	return s.session(user)
}

func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*Session, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(user)
}

// SignOut is stateless: the client drops its token.
func (s *Service) SignOut(_ context.Context, who access.Identity) error {
	if !who.Authenticated() {
		return domain.ErrUnauthenticated
	}
	s.log.WithField("user_id", who.UserID).Info("user signed out")
	return nil
}

func (s *Service) Me(ctx context.Context, who access.Identity) (*Me, error) {
	if !who.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.users.GetByID(ctx, who.UserID)
	if err != nil {
		return nil, err
	}
	me := &Me{User: user, Roles: who.Roles, AdvertiserID: who.AdvertiserID}
	if who.AdvertiserID != "" {
		if me.Profile, err = s.profiles.GetByUserID(ctx, who.UserID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return me, nil
}

// Identify validates a bearer token and loads the caller's current roles
// and advertiser profile.
func (s *Service) Identify(ctx context.Context, token string) (access.Identity, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return access.Identity{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	if _, err := s.users.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return access.Identity{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, jwt.ErrInvalidToken)
		}
		return access.Identity{}, err
	}

	roles, err := s.users.Roles(ctx, claims.UserID)
	if err != nil {
		return access.Identity{}, err
	}
	id := access.Identity{UserID: claims.UserID, Roles: roles}

	profile, err := s.profiles.GetByUserID(ctx, claims.UserID)
	switch {
	case err == nil:
		id.AdvertiserID = profile.ID
	case !errors.Is(err, domain.ErrNotFound):
		return access.Identity{}, err
	}
	return id, nil
}

func (s *Service) session(user *domain.User) (*Session, error) {
	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{User: user, Token: token, ExpiresAt: s.now().Add(s.tokens.TTL())}, nil
}
