package handlers

import (
	"errors"
	"net/http"

	"github.com/reeltide/backend/internal/logging"
	"github.com/reeltide/backend/internal/metrics"
	"github.com/reeltide/backend/internal/repositories"
)

// SocialHandler implements the follow-status and follow-toggle endpoints over
// the users' embedded following/followers sets.
type SocialHandler struct {
	Users    UserStore
	Sessions SessionManager
	Metrics  metrics.Recorder
}

type followStatusResponse struct {
	Following bool              `json:"following"`
	User      followUserSummary `json:"user"`
}

type followUserSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	FollowersCount int    `json:"followersCount"`
}

type followToggleResponse struct {
	Success   bool `json:"success"`
	Following bool `json:"following"`
}

// Status handles GET /api/v1/users/{id}/follow. Authentication is optional:
// anonymous callers see following=false alongside the target's follower
// count. A self-target also reports "not following" without error.
func (h SocialHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	targetID, ok := pathObjectID(ctx, w, r, "user")
	if !ok {
		return
	}

	target, err := h.Users.FindByID(ctx, targetID)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	following := false
	if actorID, err := resolveActor(ctx, h.Sessions, r); err == nil && actorID != targetID {
		actor, err := h.Users.FindByID(ctx, actorID)
		if err == nil {
			following = actor.IsFollowing(targetID)
		} else if !errors.Is(err, repositories.ErrNotFound) {
			respondStoreError(ctx, w, err, "user not found")
			return
		}
	}

	respondJSON(ctx, w, http.StatusOK, followStatusResponse{
		Following: following,
		User: followUserSummary{
			ID:             target.ID.Hex(),
			Name:           target.Name,
			FollowersCount: len(target.Followers),
		},
	})
}

// Toggle handles POST /api/v1/users/{id}/follow. Each call flips the
// relationship: following becomes unfollowed and vice versa. Both sides of
// the symmetric pair are written; a failure between the two writes surfaces
// as an internal error with the first write committed.
func (h SocialHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx, span := logging.StartSpan(r.Context(), "social.toggleFollow")
	defer span.End()

	actorID, ok := requireActor(ctx, w, r, h.Sessions)
	if !ok {
		return
	}

	targetID, ok := pathObjectID(ctx, w, r, "user")
	if !ok {
		return
	}

	if actorID == targetID {
		respondError(ctx, w, http.StatusBadRequest, "you cannot follow yourself")
		return
	}

	actor, err := h.Users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusUnauthorized, "authentication required")
			return
		}
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	if _, err := h.Users.FindByID(ctx, targetID); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	following := !actor.IsFollowing(targetID)
	if err := h.Users.SetFollowing(ctx, actorID, targetID, following); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordFollowToggle(following)
	}
	logging.FromContext(ctx).Info("follow toggled",
		"actorId", actorID.Hex(), "targetId", targetID.Hex(), "following", following)

	respondJSON(ctx, w, http.StatusOK, followToggleResponse{Success: true, Following: following})
}
