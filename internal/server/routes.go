package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JimmyUA/menu-master/internal/auth"
	"github.com/JimmyUA/menu-master/internal/menu"
	"github.com/JimmyUA/menu-master/internal/onboarding"
	"github.com/JimmyUA/menu-master/internal/profile"
)

// SetupRoutes configures all API routes.
func SetupRoutes(
	app *fiber.App,
	conversations *onboarding.Handler,
	authService *auth.Service,
	profiles *profile.Repository,
	menus *menu.Generator,
) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	authHandler := NewAuthHandler(authService)
	authGroup := app.Group("/auth")
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/google", authHandler.Google)

	onboardingHandler := NewOnboardingHandler(conversations, authService, menus)
	onboardingGroup := app.Group("/onboarding")
	onboardingGroup.Post("/start", onboardingHandler.Start)
	onboardingGroup.Post("/message", onboardingHandler.Message)
	onboardingGroup.Post("/finalize", onboardingHandler.Finalize)
	onboardingGroup.Get("/history/:session_id", onboardingHandler.History)

	userHandler := NewUserHandler(profiles, menus)
	users := app.Group("/users", auth.Middleware(authService))
	users.Get("/:user_id", userHandler.GetProfile)
	users.Get("/:user_id/menu", userHandler.GetLatestMenu)
}
