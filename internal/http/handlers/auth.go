package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/authhub/internal/auth"
	"github.com/geocoder89/authhub/internal/cache"
	"github.com/geocoder89/authhub/internal/config"
	"github.com/geocoder89/authhub/internal/domain/user"
	"github.com/geocoder89/authhub/internal/http/middlewares"
	"github.com/geocoder89/authhub/internal/jobs"
	"github.com/geocoder89/authhub/internal/observability"
	"github.com/geocoder89/authhub/internal/repo/postgres"
	"github.com/geocoder89/authhub/internal/security"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	SetVerifyToken(ctx context.Context, id, token string, expiry time.Time) error
	ConsumeVerifyToken(ctx context.Context, token string) (user.User, error)
}

// Enqueuer pushes verification-email jobs onto the queue. Nil is allowed;
// signup then skips dispatch (the token is still issued and stored).
type Enqueuer interface {
	Enqueue(ctx context.Context, j jobs.Job) error
}

type AuthHandler struct {
	users   UserStore
	jwt     *auth.Manager
	queue   Enqueuer
	profile *cache.Cache
	metrics *observability.Prom
	cfg     config.Config
}

func NewAuthHandler(users UserStore, jwtManager *auth.Manager, queue Enqueuer, profile *cache.Cache, metrics *observability.Prom, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:   users,
		jwt:     jwtManager,
		queue:   queue,
		profile: profile,
		metrics: metrics,
		cfg:     cfg,
	}
}

type SignUpRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// UnmarshalJSON normalizes username and email during decode so the binding
// rules measure the same values the store persists. Passwords keep their
// whitespace.
func (r *SignUpRequest) UnmarshalJSON(b []byte) error {
	type plain SignUpRequest

	var p plain

	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}

	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))

	*r = SignUpRequest(p)

	return nil
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	// accepted from older clients; token lifetime is fixed regardless
	RememberMe bool `json:"rememberMe"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	var u user.User

	err = h.observe("users.create", func() error {
		var err error
		u, err = h.users.Create(cctx, req.Username, req.Email, hash)
		return err
	})

	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrUsernameTaken), errors.Is(err, postgres.ErrEmailTaken):
			RespondConflict(ctx, "user_exists", "User already exists.")
		default:
			RespondInternal(ctx, "Could not create user")
		}
		return
	}

	h.issueVerification(ctx, u)

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User created",
	})
}

// issueVerification stores a fresh token and hands the email off to the
// queue. Failures are logged via gin errors and never fail the signup.
func (h *AuthHandler) issueVerification(ctx *gin.Context, u user.User) {
	token, err := security.NewVerifyToken()

	if err != nil {
		_ = ctx.Error(err)
		return
	}

	expiry := time.Now().UTC().Add(h.cfg.VerifyTokenTTL)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err = h.observe("users.set_verify_token", func() error {
		return h.users.SetVerifyToken(cctx, u.ID, token, expiry)
	})

	if err != nil {
		_ = ctx.Error(err)
		return
	}

	if h.queue == nil {
		return
	}

	payload, err := jobs.EncodePayload(jobs.JobSendVerificationEmail, jobs.SendVerificationEmailPayload{
		UserID:    u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Token:     token,
		ExpiresAt: expiry,
	})

	if err != nil {
		_ = ctx.Error(err)
		return
	}

	j, err := jobs.NewJob(jobs.JobSendVerificationEmail, payload, time.Time{})

	if err != nil {
		_ = ctx.Error(err)
		return
	}

	if err := h.queue.Enqueue(cctx, j); err != nil {
		_ = ctx.Error(err)
	}
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}
	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	var foundUser user.User

	err := h.observe("users.get_by_email", func() error {
		var err error
		foundUser, err = h.users.GetByEmail(cctx, req.Email)
		return err
	})

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondNotFound(ctx, "User does not exist.")
			return
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	if !security.CheckPassword(foundUser.PasswordHash, req.Password) {
		RespondUnAuthorized(ctx, "invalid_credentials", "Invalid password.")
		return
	}

	token, err := h.jwt.IssueSessionToken(foundUser.ID, foundUser.Username, foundUser.Email)

	if err != nil {
		// covers a missing signing key; never name it to the client
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, token)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"user":    foundUser.Public(),
	})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	// always clear, authenticated or not
	h.clearSessionCookie(ctx)

	ctx.JSON(http.StatusOK, gin.H{
		"message":  "Logout successful",
		"success":  true,
		"redirect": "/login",
	})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)

	if !ok || id == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	if h.profile != nil {
		if v, ok := h.profile.Get(profileKey(id)); ok {
			if u, ok := v.(user.User); ok {
				ctx.JSON(http.StatusOK, gin.H{"message": "User found", "data": u})
				return
			}
		}
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	var u user.User

	err := h.observe("users.get_by_id", func() error {
		var err error
		u, err = h.users.GetByID(cctx, id)
		return err
	})

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			// valid session for a user deleted since issuance
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not load profile")
		return
	}

	if h.profile != nil {
		h.profile.Set(profileKey(id), u)
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User found", "data": u})
}

func (h *AuthHandler) VerifyEmail(ctx *gin.Context) {
	var req VerifyEmailRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	var u user.User

	err := h.observe("users.consume_verify_token", func() error {
		var err error
		u, err = h.users.ConsumeVerifyToken(cctx, req.Token)
		return err
	})

	if err != nil {
		if errors.Is(err, postgres.ErrVerifyTokenInvalid) {
			// wrong value, reuse and expiry all answer the same
			RespondBadRequest(ctx, "Invalid or expired token", nil)
			return
		}

		RespondInternal(ctx, "Could not verify email")
		return
	}

	if h.profile != nil {
		h.profile.Delete(profileKey(u.ID))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Email verified successfully",
		"success": true,
	})
}

// ListUsers is the admin-only user listing.
func (h *AuthHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	var users []user.User

	err := h.observe("users.list", func() error {
		var err error
		users, err = h.users.List(cctx)
		return err
	})

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": users})
}

// Helper functions

func profileKey(id string) string {
	return "me:" + id
}

func (h *AuthHandler) observe(op string, fn func() error) error {
	if h.metrics == nil {
		return fn()
	}

	return h.metrics.ObserveDB(op, fn)
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string) {
	secure := h.cfg.Env == "prod"

	maxAge := int(h.jwt.SessionTTL().Seconds())

	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		middlewares.SessionCookieName,
		token,
		maxAge,
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		middlewares.SessionCookieName,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
