package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/posthub/posthub/internal/api/middleware"
	"github.com/posthub/posthub/internal/api/respond"
	"github.com/posthub/posthub/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type UpdateProfileRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Unauthorized", "User is not authenticated")
		return
	}

	user, err := h.profileService.GetProfile(r.Context(), userID)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, newUserResponse(user))
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Unauthorized", "User is not authenticated")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	user, err := h.profileService.UpdateProfile(r.Context(), userID, service.UpdateProfileInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, newUserResponse(user))
}

func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Unauthorized", "User is not authenticated")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		respond.Error(w, r, http.StatusBadRequest, "Bad Request", "Current and new passwords are required")
		return
	}

	if err := h.profileService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		serviceError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
