package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/openleads/openleads"
	"github.com/openleads/openleads/middleware"
	"github.com/openleads/openleads/session"
)

type api struct {
	engine  *openleads.Engine
	cookies session.CookieConfig
}

func newRouter(engine *openleads.Engine, cookies session.CookieConfig, origins []string) http.Handler {
	a := &api{engine: engine, cookies: cookies}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/otp/request", a.requestOTP)
		r.Post("/otp/verify", a.verifyOTP)
		r.Post("/register", a.register)
		r.Post("/login", a.login)
		r.Post("/refresh", a.refresh)
		r.Post("/logout", a.logout)
		r.Post("/password/forgot", a.forgotPassword)
		r.Post("/password/reset", a.resetPassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Guard(engine, cookies))
			r.Get("/me", a.me)
		})
	})

	return r
}

// requestOTP starts registration: checks the email is free and sends the
// first code.
func (a *api) requestOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if !decode(w, r, &body) {
		return
	}
	if !validEmail(body.Email) {
		writeMessage(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	if err := a.engine.BeginRegistration(r.Context(), body.Name, body.Email); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "OTP sent")
}

// verifyOTP checks a code without completing any flow. The frontend uses it
// to gate the final registration step.
func (a *api) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if !decode(w, r, &body) {
		return
	}

	if err := a.engine.VerifyOTP(r.Context(), body.Email, body.OTP); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "OTP verified")
}

func (a *api) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		OTP      string `json:"otp"`
	}
	if !decode(w, r, &body) {
		return
	}
	if !validEmail(body.Email) {
		writeMessage(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	tokens, err := a.engine.CompleteRegistration(r.Context(), openleads.RegisterInput{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
	}, body.OTP)
	if err != nil {
		writeError(w, err)
		return
	}

	session.Write(w, a.cookies, tokens.AccessToken, tokens.RefreshToken, tokens.AccessExpiresAt, tokens.RefreshExpiresAt)
	writeMessage(w, http.StatusCreated, "registration complete")
}

func (a *api) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}

	tokens, err := a.engine.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	session.Write(w, a.cookies, tokens.AccessToken, tokens.RefreshToken, tokens.AccessExpiresAt, tokens.RefreshExpiresAt)
	writeMessage(w, http.StatusOK, "login successful")
}

// refresh issues a new access cookie. The refresh cookie is not rotated and
// stays valid until its original expiry.
func (a *api) refresh(w http.ResponseWriter, r *http.Request) {
	token := session.ReadRefreshToken(r, a.cookies)

	access, expiresAt, err := a.engine.Refresh(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	session.WriteAccess(w, a.cookies, access, expiresAt)
	writeMessage(w, http.StatusOK, "token refreshed")
}

func (a *api) logout(w http.ResponseWriter, r *http.Request) {
	session.Clear(w, a.cookies)
	writeMessage(w, http.StatusOK, "logged out")
}

func (a *api) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &body) {
		return
	}
	if !validEmail(body.Email) {
		writeMessage(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	if err := a.engine.BeginPasswordReset(r.Context(), body.Email); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "if the email exists, an OTP was sent")
}

func (a *api) resetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if !decode(w, r, &body) {
		return
	}

	if err := a.engine.CompletePasswordReset(r.Context(), body.Email, body.OTP, body.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "password updated")
}

func (a *api) me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":    identity.ID,
		"email": identity.Email,
		"role":  identity.Role,
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

// writeError maps engine errors to HTTP uniformly: typed kinds carry their
// status and message, anything else is a 500 with no internals leaked.
// Rate-limit rejections additionally get a Retry-After header.
func writeError(w http.ResponseWriter, err error) {
	var typed *openleads.Error
	if errors.As(err, &typed) && typed.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(typed.RetryAfter.Seconds())))
	}
	writeMessage(w, openleads.HTTPStatusFor(err), openleads.UserMessage(err))
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
