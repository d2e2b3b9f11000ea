// Package server exposes the HTTP API: authentication, the onboarding
// conversation flow and profile/menu reads.
package server

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/JimmyUA/menu-master/internal/auth"
	"github.com/JimmyUA/menu-master/internal/menu"
	"github.com/JimmyUA/menu-master/internal/onboarding"
	"github.com/JimmyUA/menu-master/internal/profile"
)

// OnboardingHandler handles the conversational onboarding endpoints.
type OnboardingHandler struct {
	conversations *onboarding.Handler
	authService   *auth.Service
	menus         *menu.Generator
}

// NewOnboardingHandler creates an OnboardingHandler.
func NewOnboardingHandler(conversations *onboarding.Handler, authService *auth.Service, menus *menu.Generator) *OnboardingHandler {
	return &OnboardingHandler{
		conversations: conversations,
		authService:   authService,
		menus:         menus,
	}
}

type startRequest struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Start begins a new onboarding conversation.
func (h *OnboardingHandler) Start(c *fiber.Ctx) error {
	var req startRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.City == "" || req.Country == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "City and country are required",
		})
	}

	sessionID, message, err := h.conversations.Start(c.Context(), profile.Location{
		City:    req.City,
		Country: req.Country,
	})
	if err != nil {
		return conversationError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id": sessionID,
		"message":    message,
	})
}

type messageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Message sends a user message in an active conversation.
func (h *OnboardingHandler) Message(c *fiber.Ctx) error {
	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.SessionID == "" || req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session ID and message are required",
		})
	}

	reply, isComplete, err := h.conversations.Continue(c.Context(), req.SessionID, req.Message)
	if err != nil {
		return conversationError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":     reply,
		"is_complete": isComplete,
	})
}

type finalizeRequest struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

// Finalize extracts and persists the user profile, then marks the user as
// onboarded and kicks off their first menu, both best-effort.
func (h *OnboardingHandler) Finalize(c *fiber.Ctx) error {
	var req finalizeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.SessionID == "" || req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session ID and user ID are required",
		})
	}

	createdProfile, err := h.conversations.Finalize(c.Context(), req.UserID, req.SessionID)
	if err != nil {
		return conversationError(c, err)
	}

	if err := h.authService.SetOnboarded(c.Context(), req.UserID); err != nil {
		log.Printf("failed to mark user %s as onboarded: %v", req.UserID, err)
	}
	if err := h.menus.GenerateForUser(c.Context(), req.UserID); err != nil {
		log.Printf("failed to generate first menu for %s: %v", req.UserID, err)
	}

	return c.JSON(fiber.Map{
		"profile": createdProfile,
		"success": true,
	})
}

// History returns the transcript of a session.
func (h *OnboardingHandler) History(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session ID is required",
		})
	}

	turns, err := h.conversations.History(c.Context(), sessionID)
	if err != nil {
		return conversationError(c, err)
	}

	return c.JSON(fiber.Map{
		"session_id": sessionID,
		"messages":   turns,
	})
}

// conversationError maps the onboarding error kinds onto HTTP statuses.
func conversationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, onboarding.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	case errors.Is(err, onboarding.ErrGeneration):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate response",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
}

// UserHandler handles profile and menu reads.
type UserHandler struct {
	profiles *profile.Repository
	menus    *menu.Generator
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(profiles *profile.Repository, menus *menu.Generator) *UserHandler {
	return &UserHandler{profiles: profiles, menus: menus}
}

// GetProfile returns a stored user profile.
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID := c.Params("user_id")

	p, err := h.profiles.Get(c.Context(), userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(p)
}

// GetLatestMenu returns the most recent generated menu for a user.
func (h *UserHandler) GetLatestMenu(c *fiber.Ctx) error {
	userID := c.Params("user_id")

	doc, err := h.menus.LatestMenu(c.Context(), userID)
	if err != nil {
		if errors.Is(err, menu.ErrNoMenu) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No menu found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(doc)
}

// AuthHandler handles signup and login.
type AuthHandler struct {
	service *auth.Service
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new email/password user.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if !strings.Contains(req.Email, "@") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A valid email is required",
		})
	}
	if len(req.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Password must be at least 6 characters",
		})
	}

	token, err := h.service.SignupWithEmail(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Email already registered",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create account",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(token)
}

// Login authenticates an email/password user.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	token, err := h.service.LoginWithEmail(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid email or password",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to log in",
		})
	}
	return c.JSON(token)
}

type googleAuthRequest struct {
	Credential string `json:"credential"`
}

// Google signs a user in with a Google ID token.
func (h *AuthHandler) Google(c *fiber.Ctx) error {
	var req googleAuthRequest
	if err := c.BodyParser(&req); err != nil || req.Credential == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Credential is required",
		})
	}

	token, err := h.service.AuthWithGoogle(c.Context(), req.Credential)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid Google credential",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to authenticate",
		})
	}
	return c.JSON(token)
}
