package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// tokenValidity is the fixed lifetime of a session token.
const tokenValidity = 10 * time.Hour

type AuthHandler struct {
	db        *sql.DB
	jwtSecret []byte
}

// Package-level JWT secret for shared access
var sharedJWTSecret []byte

func NewAuthHandler(db *sql.DB) *AuthHandler {
	secret := os.Getenv("JWT_SECRET")
	env := os.Getenv("PDFDOCK_ENV")

	if secret == "" {
		if env == "production" {
			log.Fatal("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		// Development fallback with warning
		log.Println("WARNING: JWT_SECRET not set. Using default secret. Set JWT_SECRET in production!")
		secret = "pdfdock-dev-secret-not-for-production-use"
	} else if len(secret) < 32 {
		log.Println("WARNING: JWT_SECRET should be at least 32 characters for security")
	}

	sharedJWTSecret = []byte(secret)
	return &AuthHandler{
		db:        db,
		jwtSecret: []byte(secret),
	}
}

// Principal is the authenticated identity established for a single request.
// Email is the unique identifier; Username is display-only.
type Principal struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GenerateJWT mints a session token for the given email. The subject is the
// only claim of interest; expiration is issued-at plus tokenValidity.
func GenerateJWT(email string) (string, error) {
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenValidity)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString(sharedJWTSecret)
}

// parseToken verifies the signature and standard claims of a session token.
func (h *AuthHandler) parseToken(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		if err == nil {
			err = jwt.ErrTokenUnverifiable
		}
		return nil, err
	}
	return claims, nil
}

// Register creates a new user account
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, ErrBadRequest("Invalid request"))
	}

	if err := ValidateUsername(req.Username); err != nil {
		return RespondError(c, ErrBadRequest(err.Error()))
	}
	if err := ValidateEmail(req.Email); err != nil {
		return RespondError(c, ErrBadRequest(err.Error()))
	}
	if err := ValidatePassword(req.Password); err != nil {
		return RespondError(c, ErrBadRequest(err.Error()))
	}

	var exists bool
	err := h.db.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", req.Email).Scan(&exists)
	if err != nil {
		return RespondError(c, ErrInternal("Database error"))
	}
	if exists {
		return RespondError(c, ErrBadRequest("Email is already taken"))
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return RespondError(c, ErrInternal("Failed to hash password"))
	}

	var userID int64
	err = h.db.QueryRow(`
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`, req.Username, req.Email, string(passwordHash)).Scan(&userID)

	if err != nil {
		// The exists check above can race a concurrent registration; the
		// unique constraint on email is the authoritative answer.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return RespondError(c, ErrBadRequest("Email is already taken"))
		}
		return RespondError(c, ErrInternal("Failed to create user"))
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"id":      userID,
		"message": "User registered successfully",
	})
}

// Login authenticates a user by email and password and returns a session token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, ErrBadRequest("Invalid request"))
	}

	if req.Email == "" || req.Password == "" {
		return RespondError(c, ErrBadRequest("Email and password are required"))
	}

	var passwordHash string
	err := h.db.QueryRow(`
		SELECT password_hash FROM users WHERE email = $1
	`, req.Email).Scan(&passwordHash)

	if err == sql.ErrNoRows {
		return RespondError(c, ErrUnauthorized("Invalid email or password"))
	}
	if err != nil {
		return RespondError(c, ErrInternal("Database error"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		return RespondError(c, ErrUnauthorized("Invalid email or password"))
	}

	token, err := GenerateJWT(req.Email)
	if err != nil {
		return RespondError(c, ErrInternal("Failed to generate token"))
	}

	return c.JSON(http.StatusOK, map[string]string{
		"jwtToken": token,
	})
}

// Profile returns the authenticated principal.
func (h *AuthHandler) Profile(c echo.Context) error {
	p, err := RequirePrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user": p,
	})
}

// AuthFilter establishes the authenticated identity for a request. It never
// rejects: any failure along the way degrades to an unauthenticated request
// and the decision to reject belongs to RequireAuth. Public routes are
// bypassed with no token inspection at all.
func (h *AuthHandler) AuthFilter(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if IsPublicRoute(c.Request().URL.Path) {
			return next(c)
		}

		// The header must be exactly "Bearer <token>"; anything else means
		// no credential was supplied.
		var tokenString string
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return next(c)
		}

		claims, err := h.parseToken(tokenString)
		if err != nil || claims.Subject == "" {
			return next(c)
		}

		// Idempotent re-entry: an identity set earlier in the chain wins.
		if GetPrincipal(c) != nil {
			return next(c)
		}

		principal, err := h.findUserByEmail(claims.Subject)
		if err != nil {
			return next(c)
		}

		if !claimsValidFor(claims, principal) {
			return next(c)
		}

		c.Set(principalKey, principal)
		return next(c)
	}
}

// RequireAuth is the authorization gate. Public routes pass through; every
// other route requires a principal established by AuthFilter. The rejection
// is uniform and carries no detail about which check failed upstream.
func (h *AuthHandler) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if IsPublicRoute(c.Request().URL.Path) {
			return next(c)
		}
		if GetPrincipal(c) == nil {
			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "Forbidden - Not Authorized",
			})
		}
		return next(c)
	}
}

func (h *AuthHandler) findUserByEmail(email string) (*Principal, error) {
	var p Principal
	err := h.db.QueryRow(`
		SELECT id, username, email FROM users WHERE email = $1
	`, email).Scan(&p.ID, &p.Username, &p.Email)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// claimsValidFor re-checks the token against the looked-up principal:
// the subject must match the principal's email and the token must carry an
// expiration still in the future.
func claimsValidFor(claims *jwt.RegisteredClaims, p *Principal) bool {
	if claims.Subject != p.Email {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Now().Before(claims.ExpiresAt.Time)
}
