package srv

import (
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/opd-ai/bookforge/store"
)

const msgMissingFields = "Please provide all required fields"

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r registerRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	); err != nil {
		return badRequest(msgMissingFields)
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.EmailFormat.Error("Please provide a valid email")),
		validation.Field(&r.Password, validation.Length(6, 0).Error("Password must be at least 6 characters")),
	)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(req); err != nil {
		s.fail(w, r, err)
		return
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	user := &store.User{Name: req.Name, Email: req.Email, Password: hash}
	if err := s.users.Create(r.Context(), nil, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			s.fail(w, r, badRequest("User already exists"))
			return
		}
		s.fail(w, r, err)
		return
	}
	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"token":   token,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	invalid := newAPIError(http.StatusUnauthorized, "Invalid email or password", nil)

	user, err := s.users.GetByEmail(r.Context(), nil, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.fail(w, r, invalid)
			return
		}
		s.fail(w, r, err)
		return
	}
	if !s.auth.CheckPassword(user.Password, req.Password) {
		s.fail(w, r, invalid)
		return
	}
	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User logged in successfully",
		"id":      user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"token":   token,
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     u.ID,
		"name":   u.Name,
		"email":  u.Email,
		"avatar": u.Avatar,
		"isPro":  u.IsPro,
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.users.UpdateName(r.Context(), nil, currentUser(r).ID, req.Name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.fail(w, r, newAPIError(http.StatusNotFound, "User not found", err))
			return
		}
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":   u.ID,
		"name": u.Name,
	})
}
