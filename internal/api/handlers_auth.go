// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/streamvault/streamvault/internal/logging"
	"github.com/streamvault/streamvault/internal/store"
)

var validate = validator.New()

// SignupRequest is the payload for POST /api/v1/auth/signup.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest is the payload for POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Signup registers a new admin account.
// POST /api/v1/auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email and a password of at least 8 characters are required", nil)
		return
	}

	hash, err := h.auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account", err)
		return
	}

	user, err := h.store.CreateUser(req.Email, hash)
	if errors.Is(err, store.ErrEmailTaken) {
		respondError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already registered", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account", err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("user", user.ID).Msg("Admin account created")
	respondSuccess(w, http.StatusCreated, user)
}

// Login exchanges credentials for an access token. Wrong email and wrong
// password produce the same response.
// POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required", nil)
		return
	}

	user, err := h.store.GetUserByEmail(req.Email)
	if err != nil || !h.auth.VerifyPassword(req.Password, user.HashedPassword) {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Invalid email or password", nil)
		return
	}

	token, err := h.auth.IssueToken(user.ID, h.now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token", err)
		return
	}

	respondSuccess(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}
