package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/devrecs/devrecs-backend/api/middleware"
	"github.com/devrecs/devrecs-backend/internal/clicks"
	pkgerrors "github.com/devrecs/devrecs-backend/pkg/errors"
	"github.com/devrecs/devrecs-backend/pkg/logger"
)

type testClicksService struct {
	trackFn func(ctx context.Context, input clicks.TrackClickInput) (bool, error)
}

func (s *testClicksService) TrackClick(ctx context.Context, input clicks.TrackClickInput) (bool, error) {
	if s.trackFn != nil {
		return s.trackFn(ctx, input)
	}
	return true, nil
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestTrackPostClickAnonymous(t *testing.T) {
	postID := uuid.New()
	var got clicks.TrackClickInput
	svc := &testClicksService{
		trackFn: func(_ context.Context, input clicks.TrackClickInput) (bool, error) {
			got = input
			return true, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/public/v1/posts/"+postID.String()+"/click", nil)
	req.Header.Set("User-Agent", "curl/8.0")
	req.Header.Set("Referer", "https://devrecs.io/posts/grpc")
	req = addRouteParam(req, "postId", postID.String())

	resp := httptest.NewRecorder()
	TrackPostClick(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if got.PostID != postID {
		t.Fatalf("unexpected post id %s", got.PostID)
	}
	if got.ViewerID != nil {
		t.Fatal("anonymous request must not carry a viewer id")
	}
	if got.UserAgent != "curl/8.0" {
		t.Fatalf("unexpected user agent %q", got.UserAgent)
	}

	var envelope struct {
		Data map[string]bool `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !envelope.Data["tracked"] {
		t.Fatal("expected tracked=true")
	}
}

func TestTrackPostClickCarriesViewerID(t *testing.T) {
	postID := uuid.New()
	viewerID := uuid.New()
	var got clicks.TrackClickInput
	svc := &testClicksService{
		trackFn: func(_ context.Context, input clicks.TrackClickInput) (bool, error) {
			got = input
			return false, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/public/v1/posts/"+postID.String()+"/click", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), viewerID.String()))
	req = addRouteParam(req, "postId", postID.String())

	resp := httptest.NewRecorder()
	TrackPostClick(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if got.ViewerID == nil || *got.ViewerID != viewerID {
		t.Fatalf("expected viewer id %s, got %v", viewerID, got.ViewerID)
	}

	var envelope struct {
		Data map[string]bool `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["tracked"] {
		t.Fatal("expected tracked=false for excluded click")
	}
}

func TestTrackPostClickInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/public/v1/posts/not-a-uuid/click", nil)
	req = addRouteParam(req, "postId", "not-a-uuid")

	resp := httptest.NewRecorder()
	TrackPostClick(&testClicksService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestTrackPostClickUnknownPost(t *testing.T) {
	svc := &testClicksService{
		trackFn: func(context.Context, clicks.TrackClickInput) (bool, error) {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		},
	}
	postID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/public/v1/posts/"+postID+"/click", nil)
	req = addRouteParam(req, "postId", postID)

	resp := httptest.NewRecorder()
	TrackPostClick(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
