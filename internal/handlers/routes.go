package handlers

import (
	"net/http"
	"time"

	"github.com/reeltide/backend/internal/metrics"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users    UserStore
	Videos   VideoStore
	Sessions SessionManager
	Google   FederatedProvider
	Signer   UploadSigner
	Ingestor MediaIngestor

	AuthLimiter RateLimiter
	Metrics     metrics.Recorder
	PresignTTL  time.Duration
	NowFunc     func() time.Time
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	recorder := deps.Metrics
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	health := HealthHandler{}
	authn := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, Google: deps.Google, Limiter: deps.AuthLimiter, NowFunc: deps.NowFunc}
	social := SocialHandler{Users: deps.Users, Sessions: deps.Sessions, Metrics: recorder}
	library := LibraryHandler{Users: deps.Users, Videos: deps.Videos, Sessions: deps.Sessions}
	profile := ProfileHandler{Users: deps.Users, Videos: deps.Videos, Sessions: deps.Sessions}
	videos := VideoHandler{Users: deps.Users, Videos: deps.Videos, Sessions: deps.Sessions, Ingestor: deps.Ingestor, NowFunc: deps.NowFunc}
	engagement := EngagementHandler{Users: deps.Users, Videos: deps.Videos, Sessions: deps.Sessions, Metrics: recorder, NowFunc: deps.NowFunc}
	uploads := UploadHandler{Signer: deps.Signer, Sessions: deps.Sessions, PresignTTL: deps.PresignTTL}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/auth/signup", authn.SignUp)
	mux.HandleFunc("POST /api/v1/auth/login", authn.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", authn.Refresh)
	mux.HandleFunc("GET /api/v1/auth/google/login", authn.GoogleLogin)
	mux.HandleFunc("GET /api/v1/auth/google/callback", authn.GoogleCallback)

	mux.HandleFunc("GET /api/v1/users/{id}/follow", social.Status)
	mux.HandleFunc("POST /api/v1/users/{id}/follow", social.Toggle)
	mux.HandleFunc("GET /api/v1/users/feed", library.Feed)
	mux.HandleFunc("GET /api/v1/users/history", library.History)
	mux.HandleFunc("GET /api/v1/users/videos", library.UserVideos)
	mux.HandleFunc("GET /api/v1/users/profile", profile.Get)
	mux.HandleFunc("PATCH /api/v1/users/profile", profile.Update)

	mux.HandleFunc("GET /api/v1/videos", videos.List)
	mux.HandleFunc("POST /api/v1/videos", videos.Create)
	mux.HandleFunc("GET /api/v1/videos/{id}", videos.Get)
	mux.HandleFunc("PATCH /api/v1/videos/{id}", videos.Patch)
	mux.HandleFunc("DELETE /api/v1/videos/{id}", videos.Delete)
	mux.HandleFunc("POST /api/v1/videos/{id}/like", engagement.Like)
	mux.HandleFunc("POST /api/v1/videos/{id}/comment", engagement.Comment)
	mux.HandleFunc("POST /api/v1/videos/{id}/view", engagement.View)

	mux.HandleFunc("GET /api/v1/uploads/auth", uploads.Auth)
}
