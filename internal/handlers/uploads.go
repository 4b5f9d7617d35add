package handlers

import (
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadHandler hands out short-lived presigned PUT URLs so clients push
// media straight to the object store.
type UploadHandler struct {
	Signer   UploadSigner
	Sessions SessionManager

	PresignTTL time.Duration
}

// Auth handles GET /api/v1/uploads/auth.
func (h UploadHandler) Auth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, ok := requireActor(ctx, w, r, h.Sessions)
	if !ok {
		return
	}

	if h.Signer == nil {
		respondError(ctx, w, http.StatusServiceUnavailable, "uploads are not configured")
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("filename"))
	ext := path.Ext(name)

	key := path.Join("uploads", actorID.Hex(), uuid.NewString()+ext)
	signed, err := h.Signer.PresignUpload(ctx, key, h.PresignTTL)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "could not sign upload")
		return
	}

	respondJSON(ctx, w, http.StatusOK, signed)
}
