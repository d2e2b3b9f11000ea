// Package auth implements the identity provider: email/password and Google
// Sign-In, issuing bearer tokens that carry user id, email and onboarding
// status.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"

	"github.com/JimmyUA/menu-master/internal/docstore"
)

const userCollection = "auth_users"

var (
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers unknown emails, wrong passwords and
	// rejected Google credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserRecord is the stored authentication record for a user.
type UserRecord struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"` // empty for Google-only users
	GoogleID     string    `json:"google_id,omitempty"`
	IsOnboarded  bool      `json:"is_onboarded"`
	CreatedAt    time.Time `json:"created_at"`
}

// Token is the response to a successful authentication.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	IsOnboarded bool   `json:"is_onboarded"`
}

// Service provides authentication over the document store.
type Service struct {
	users          docstore.Collection
	jwtSecret      string
	googleClientID string

	// validateIDToken is swappable for tests.
	validateIDToken func(ctx context.Context, credential, audience string) (*idtoken.Payload, error)
}

// NewService creates an auth Service.
func NewService(store docstore.Store, jwtSecret, googleClientID string) *Service {
	return &Service{
		users:           store.Collection(userCollection),
		jwtSecret:       jwtSecret,
		googleClientID:  googleClientID,
		validateIDToken: idtoken.Validate,
	}
}

// SignupWithEmail creates a new user with an email and password.
func (s *Service) SignupWithEmail(ctx context.Context, email, password string) (*Token, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if existing, err := s.getByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &UserRecord{
		UserID:       "user_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Set(ctx, user.UserID, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return s.issueToken(user)
}

// LoginWithEmail authenticates with an email and password.
func (s *Service) LoginWithEmail(ctx context.Context, email, password string) (*Token, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.getByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(user)
}

// AuthWithGoogle verifies a Google ID token and signs the user in, creating
// the account on first sight.
func (s *Service) AuthWithGoogle(ctx context.Context, credential string) (*Token, error) {
	payload, err := s.validateIDToken(ctx, credential, s.googleClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	email, _ := payload.Claims["email"].(string)
	googleID := payload.Subject
	if email == "" || googleID == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.getByGoogleID(ctx, googleID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Link to an existing email account if one exists.
		user, err = s.getByEmail(ctx, strings.ToLower(email))
		if err != nil {
			return nil, err
		}
		if user != nil {
			user.GoogleID = googleID
		} else {
			user = &UserRecord{
				UserID:    "user_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
				Email:     strings.ToLower(email),
				GoogleID:  googleID,
				CreatedAt: time.Now().UTC(),
			}
		}
		if err := s.users.Set(ctx, user.UserID, user); err != nil {
			return nil, fmt.Errorf("failed to save user: %w", err)
		}
	}
	return s.issueToken(user)
}

// SetOnboarded marks a user as onboarded.
func (s *Service) SetOnboarded(ctx context.Context, userID string) error {
	raw, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("user not found: %s", userID)
		}
		return fmt.Errorf("failed to get user %s: %w", userID, err)
	}

	var user UserRecord
	if err := json.Unmarshal(raw, &user); err != nil {
		return fmt.Errorf("failed to unmarshal user %s: %w", userID, err)
	}
	user.IsOnboarded = true

	if err := s.users.Set(ctx, userID, &user); err != nil {
		return fmt.Errorf("failed to update user %s: %w", userID, err)
	}
	return nil
}

// Verify validates a bearer token and returns its claims.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	return VerifyAccessToken(s.jwtSecret, tokenString)
}

func (s *Service) issueToken(user *UserRecord) (*Token, error) {
	accessToken, err := createAccessToken(s.jwtSecret, user.UserID, user.Email, user.IsOnboarded)
	if err != nil {
		return nil, err
	}
	return &Token{
		AccessToken: accessToken,
		TokenType:   "bearer",
		UserID:      user.UserID,
		Email:       user.Email,
		IsOnboarded: user.IsOnboarded,
	}, nil
}

func (s *Service) getByEmail(ctx context.Context, email string) (*UserRecord, error) {
	return s.queryOne(ctx, "email", email)
}

func (s *Service) getByGoogleID(ctx context.Context, googleID string) (*UserRecord, error) {
	return s.queryOne(ctx, "google_id", googleID)
}

func (s *Service) queryOne(ctx context.Context, field, value string) (*UserRecord, error) {
	docs, err := s.users.Query(ctx, field, value)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by %s: %w", field, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	var user UserRecord
	if err := json.Unmarshal(docs[0], &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user record: %w", err)
	}
	return &user, nil
}
