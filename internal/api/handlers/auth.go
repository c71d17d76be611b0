package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/posthub/posthub/internal/api/respond"
	"github.com/posthub/posthub/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type AccessTokenResponse struct {
	Access string `json:"access"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Username, email and password are required")
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, TokenPairResponse{
		Access:  result.AccessToken,
		Refresh: result.RefreshToken,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Email and password are required")
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, TokenPairResponse{
		Access:  result.AccessToken,
		Refresh: result.RefreshToken,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Refresh token is required")
		return
	}

	access, err := h.authService.Refresh(r.Context(), req.Refresh)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, AccessTokenResponse{Access: access})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Refresh token is required")
		return
	}

	if err := h.authService.Logout(r.Context(), req.Refresh); err != nil {
		serviceError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
