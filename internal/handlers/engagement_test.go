package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reeltide/backend/internal/models"
)

func TestEngagementHandlerLikeToggle(t *testing.T) {
	users := newInMemoryUserStore()
	videos := newInMemoryVideoStore()
	manager := newTestSessionManager()
	handler := EngagementHandler{Users: users, Videos: videos, Sessions: manager}

	actor := users.add(models.User{Email: "actor@example.com"})
	video := videos.add(models.Video{Title: "Clip"})

	like := func() likeResponse {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/"+video.ID.Hex()+"/like", nil)
		req.SetPathValue("id", video.ID.Hex())
		authorize(t, manager, req, actor.ID)
		rec := httptest.NewRecorder()

		handler.Like(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}
		var resp likeResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		return resp
	}

	resp := like()
	if !resp.IsLiked || resp.LikesCount != 1 {
		t.Fatalf("expected liked with count 1, got %+v", resp)
	}
	if !videos.videos[video.ID].HasLike(actor.ID) {
		t.Fatal("video like set missing actor")
	}
	if len(users.users[actor.ID].Liked) != 1 {
		t.Fatal("user liked list not mirrored")
	}

	resp = like()
	if resp.IsLiked || resp.LikesCount != 0 {
		t.Fatalf("expected unliked with count 0, got %+v", resp)
	}
	if videos.videos[video.ID].HasLike(actor.ID) {
		t.Fatal("video like set still contains actor after unlike")
	}
	if len(users.users[actor.ID].Liked) != 0 {
		t.Fatal("user liked list not cleared after unlike")
	}
}

// contendedVideoStore lands a like from another user between the handler's
// read of the video and its like-set write.
type contendedVideoStore struct {
	*inMemoryVideoStore
	rival primitive.ObjectID
	raced bool
}

func (s *contendedVideoStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.Video, error) {
	video, err := s.inMemoryVideoStore.FindByID(ctx, id)
	if err == nil && !s.raced {
		s.raced = true
		if _, err := s.inMemoryVideoStore.SetLike(ctx, id, s.rival, true); err != nil {
			return models.Video{}, err
		}
	}
	return video, err
}

func TestEngagementHandlerLikeCountReflectsStore(t *testing.T) {
	users := newInMemoryUserStore()
	videos := newInMemoryVideoStore()
	manager := newTestSessionManager()

	actor := users.add(models.User{Email: "actor@example.com"})
	rival := users.add(models.User{Email: "rival@example.com"})
	video := videos.add(models.Video{Title: "Clip"})

	contended := &contendedVideoStore{inMemoryVideoStore: videos, rival: rival.ID}
	handler := EngagementHandler{Users: users, Videos: contended, Sessions: manager}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/"+video.ID.Hex()+"/like", nil)
	req.SetPathValue("id", video.ID.Hex())
	authorize(t, manager, req, actor.ID)
	rec := httptest.NewRecorder()

	handler.Like(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var resp likeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	stored := len(videos.videos[video.ID].Likes)
	if stored != 2 {
		t.Fatalf("expected 2 stored likes, got %d", stored)
	}
	if resp.LikesCount != stored {
		t.Fatalf("reported count %d diverges from stored count %d", resp.LikesCount, stored)
	}
}

func TestEngagementHandlerLikeUnauthenticated(t *testing.T) {
	videos := newInMemoryVideoStore()
	handler := EngagementHandler{Users: newInMemoryUserStore(), Videos: videos, Sessions: newTestSessionManager()}
	video := videos.add(models.Video{Title: "Clip"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/"+video.ID.Hex()+"/like", nil)
	req.SetPathValue("id", video.ID.Hex())
	rec := httptest.NewRecorder()

	handler.Like(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
	if videos.videos[video.ID].Likes != nil {
		t.Fatal("anonymous like must not mutate the like set")
	}
}

func TestEngagementHandlerComment(t *testing.T) {
	users := newInMemoryUserStore()
	videos := newInMemoryVideoStore()
	manager := newTestSessionManager()
	handler := EngagementHandler{Users: users, Videos: videos, Sessions: manager}

	actor := users.add(models.User{Name: "Commenter", Email: "commenter@example.com"})
	video := videos.add(models.Video{Title: "Clip"})

	body, _ := json.Marshal(commentRequest{Text: "great video"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/"+video.ID.Hex()+"/comment", bytes.NewReader(body))
	req.SetPathValue("id", video.ID.Hex())
	authorize(t, manager, req, actor.ID)
	rec := httptest.NewRecorder()

	handler.Comment(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp []commentView
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected 1 comment got %d", len(resp))
	}
	if resp[0].Text != "great video" || resp[0].Name != "Commenter" {
		t.Fatalf("unexpected comment view %+v", resp[0])
	}
}

func TestEngagementHandlerCommentEmptyText(t *testing.T) {
	users := newInMemoryUserStore()
	videos := newInMemoryVideoStore()
	manager := newTestSessionManager()
	handler := EngagementHandler{Users: users, Videos: videos, Sessions: manager}

	actor := users.add(models.User{Email: "commenter@example.com"})
	video := videos.add(models.Video{Title: "Clip"})

	body, _ := json.Marshal(commentRequest{Text: "   "})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/"+video.ID.Hex()+"/comment", bytes.NewReader(body))
	req.SetPathValue("id", video.ID.Hex())
	authorize(t, manager, req, actor.ID)
	rec := httptest.NewRecorder()

	handler.Comment(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
	if len(videos.videos[video.ID].Comments) != 0 {
		t.Fatal("blank comment must not be stored")
	}
}

func TestEngagementHandlerViewAnonymous(t *testing.T) {
	videos := newInMemoryVideoStore()
	handler := EngagementHandler{Users: newInMemoryUserStore(), Videos: videos, Sessions: newTestSessionManager()}
	video := videos.add(models.Video{Title: "Clip"})

	for want := int64(1); want <= 3; want++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/"+video.ID.Hex()+"/view", nil)
		req.SetPathValue("id", video.ID.Hex())
		rec := httptest.NewRecorder()

		handler.View(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
		}
		var resp viewResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Views != want {
			t.Fatalf("expected views %d got %d", want, resp.Views)
		}
	}
}

func TestEngagementHandlerViewRecordsHistory(t *testing.T) {
	users := newInMemoryUserStore()
	videos := newInMemoryVideoStore()
	manager := newTestSessionManager()

	base := time.Unix(1700000000, 0).UTC()
	current := base
	handler := EngagementHandler{
		Users: users, Videos: videos, Sessions: manager,
		NowFunc: func() time.Time { return current },
	}

	actor := users.add(models.User{Email: "viewer@example.com"})

	watch := func(video models.Video) {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/"+video.ID.Hex()+"/view", nil)
		req.SetPathValue("id", video.ID.Hex())
		authorize(t, manager, req, actor.ID)
		rec := httptest.NewRecorder()

		handler.View(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
		}
	}

	first := videos.add(models.Video{Title: "first"})
	watch(first)

	// Rewatching moves the entry to the front instead of duplicating it.
	var last models.Video
	for i := 0; i < models.HistoryLimit; i++ {
		current = current.Add(time.Minute)
		last = videos.add(models.Video{Title: fmt.Sprintf("clip-%d", i)})
		watch(last)
	}
	current = current.Add(time.Minute)
	watch(last)

	history := users.users[actor.ID].History
	if len(history) != models.HistoryLimit {
		t.Fatalf("expected history bounded at %d, got %d", models.HistoryLimit, len(history))
	}
	if history[0].VideoID != last.ID {
		t.Fatal("most recent watch not at the front")
	}
	seen := make(map[primitive.ObjectID]struct{}, len(history))
	for _, entry := range history {
		if _, dup := seen[entry.VideoID]; dup {
			t.Fatalf("duplicate history entry for %s", entry.VideoID.Hex())
		}
		seen[entry.VideoID] = struct{}{}
	}
	if _, ok := seen[first.ID]; ok {
		t.Fatal("oldest entry should have been evicted")
	}
}
