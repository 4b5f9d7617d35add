package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/reeltide/backend/internal/repositories"
)

// ProfileHandler exposes the authenticated user's profile.
type ProfileHandler struct {
	Users  UserStore
	Videos VideoStore

	Sessions SessionManager
}

type profileResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Avatar    string        `json:"avatar,omitempty"`
	Uploaded  []videoView   `json:"uploaded"`
	Followers []userSummary `json:"followers"`
	Following int           `json:"followingCount"`
}

type updateProfileRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Avatar *string `json:"avatar"`
}

// Get handles GET /api/v1/users/profile.
func (h ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, ok := requireActor(ctx, w, r, h.Sessions)
	if !ok {
		return
	}

	user, err := h.Users.FindByID(ctx, actorID)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	uploaded, err := h.Videos.ListByOwner(ctx, actorID)
	if err != nil {
		respondStoreError(ctx, w, err, "videos not found")
		return
	}
	uploadedViews, err := newVideoViews(ctx, h.Users, uploaded)
	if err != nil {
		respondStoreError(ctx, w, err, "videos not found")
		return
	}

	followers, err := h.Users.FindByIDs(ctx, user.Followers)
	if err != nil {
		respondStoreError(ctx, w, err, "users not found")
		return
	}
	followerSummaries := make([]userSummary, 0, len(followers))
	for _, f := range followers {
		followerSummaries = append(followerSummaries, summarize(f))
	}

	respondJSON(ctx, w, http.StatusOK, profileResponse{
		ID:        user.ID.Hex(),
		Name:      user.Name,
		Email:     user.Email,
		Avatar:    user.Avatar,
		Uploaded:  uploadedViews,
		Followers: followerSummaries,
		Following: len(user.Following),
	})
}

// Update handles PATCH /api/v1/users/profile. Absent fields are left
// untouched.
func (h ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, ok := requireActor(ctx, w, r, h.Sessions)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	update := repositories.ProfileUpdate{Avatar: req.Avatar}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			respondError(ctx, w, http.StatusBadRequest, "name must not be empty")
			return
		}
		update.Name = &name
	}
	if req.Email != nil {
		addr, err := mail.ParseAddress(strings.TrimSpace(*req.Email))
		if err != nil {
			respondError(ctx, w, http.StatusBadRequest, "invalid email address")
			return
		}
		update.Email = &addr.Address
	}

	user, err := h.Users.UpdateProfile(ctx, actorID, update)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "email already in use")
			return
		}
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{
		"name":   user.Name,
		"email":  user.Email,
		"avatar": user.Avatar,
	})
}
