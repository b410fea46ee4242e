package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"roomdesigner/internal/auth/models"
	"roomdesigner/internal/auth/repository"
	"roomdesigner/internal/auth/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
)

const sessionLocal = "session"

// SessionState is the part of the design store the login flow drives.
type SessionState interface {
	Login(name string)
	Logout()
}

// ============================================================
// Auth Handler
// ============================================================

type AuthHandler struct {
	repo     *repository.Repository
	sessions *service.SessionManager
	state    SessionState
	validate *validator.Validate
	log      zerolog.Logger
}

func NewAuthHandler(repo *repository.Repository, sessions *service.SessionManager, state SessionState, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		repo:     repo,
		sessions: sessions,
		state:    state,
		validate: validator.New(),
		log:      log.With().Str("component", "auth").Logger(),
	}
}

type loginRequest struct {
	Login    string `json:"login" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login checks the demo credentials, starts the store session and issues a
// bearer token.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "empty body"})
	}

	var req loginRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "login and password required"})
	}

	user, err := h.repo.GetByCredentials(c.Context(), req.Login, req.Password)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			h.log.Error().Err(err).Msg("credential lookup failed")
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		}
		h.log.Info().Str("login", req.Login).Msg("login rejected")
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	session := h.sessions.Issue(user)
	h.state.Login(user.Login)
	h.log.Info().Str("login", user.Login).Msg("logged in")

	return c.JSON(loginResponse{Token: session.Token, User: *user})
}

// Logout ends the shared store session; every issued token dies with it.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	session, _ := SessionFrom(c)
	revoked := h.sessions.RevokeAll()
	h.state.Logout()
	h.log.Info().Str("login", session.Login).Int("revoked", revoked).Msg("logged out")
	return c.JSON(fiber.Map{"status": "logged out"})
}

// Me returns the user behind the bearer token.
func (h *AuthHandler) Me(c fiber.Ctx) error {
	session, _ := SessionFrom(c)
	user, err := h.repo.GetByID(c.Context(), session.UserID)
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}
	return c.JSON(user)
}

// ============================================================
// Middleware
// ============================================================

// RequireSession rejects requests without a live bearer token.
func (h *AuthHandler) RequireSession() fiber.Handler {
	return func(c fiber.Ctx) error {
		session, ok := h.authorize(c)
		if !ok {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		c.Locals(sessionLocal, session)
		c.Locals("user", session.Login)
		return c.Next()
	}
}

func SessionFrom(c fiber.Ctx) (models.Session, bool) {
	s, ok := c.Locals(sessionLocal).(models.Session)
	return s, ok
}

func (h *AuthHandler) authorize(c fiber.Ctx) (models.Session, bool) {
	auth := c.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return models.Session{}, false
	}
	return h.sessions.Resolve(strings.TrimPrefix(auth, "Bearer "))
}
