package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reeltide/backend/internal/auth"
	"github.com/reeltide/backend/internal/logging"
	"github.com/reeltide/backend/internal/repositories"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	respondJSON(ctx, w, status, map[string]string{"error": message})
}

// respondStoreError maps persistence failures to the error taxonomy: missing
// records become 404, conflicts become 409, everything else is a generic 500
// with the detail kept server-side.
func respondStoreError(ctx context.Context, w http.ResponseWriter, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, repositories.ErrConflict):
		respondError(ctx, w, http.StatusConflict, "conflicting record")
	default:
		logging.FromContext(ctx).Error("storage failure", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "internal error")
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

var errUnauthenticated = errors.New("unauthenticated")

// resolveActor authenticates the request and returns the actor's user id.
// Returns errUnauthenticated when no valid session accompanies the request.
func resolveActor(ctx context.Context, sessions SessionManager, r *http.Request) (primitive.ObjectID, error) {
	token := bearerToken(r)
	if token == "" || sessions == nil {
		return primitive.NilObjectID, errUnauthenticated
	}

	userID, err := sessions.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) || errors.Is(err, auth.ErrAccessTokenExpired) {
			return primitive.NilObjectID, errUnauthenticated
		}
		return primitive.NilObjectID, err
	}

	actorID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, errUnauthenticated
	}
	return actorID, nil
}

// requireActor resolves the actor or writes the 401/500 response itself.
func requireActor(ctx context.Context, w http.ResponseWriter, r *http.Request, sessions SessionManager) (primitive.ObjectID, bool) {
	actorID, err := resolveActor(ctx, sessions, r)
	if err != nil {
		if errors.Is(err, errUnauthenticated) {
			respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		} else {
			logging.FromContext(ctx).Error("resolve session", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "internal error")
		}
		return primitive.NilObjectID, false
	}
	return actorID, true
}

// pathObjectID parses the {id} path segment, writing a 400 when malformed.
func pathObjectID(ctx context.Context, w http.ResponseWriter, r *http.Request, what string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid "+what+" id")
		return primitive.NilObjectID, false
	}
	return id, true
}
