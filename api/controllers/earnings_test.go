package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/devrecs/devrecs-backend/api/middleware"
	"github.com/devrecs/devrecs-backend/internal/earnings"
)

type testEarningsService struct {
	summaryFn      func(ctx context.Context, userID uuid.UUID) (*earnings.Summary, error)
	postEarningsFn func(ctx context.Context, userID uuid.UUID) ([]earnings.PostEarningsDTO, error)
	statsFn        func(ctx context.Context) (*earnings.PlatformStatsDTO, error)
}

func (s *testEarningsService) RecordEarnings(context.Context, earnings.RecordEarningsInput) (*earnings.RecordEarningsResult, error) {
	return &earnings.RecordEarningsResult{}, nil
}

func (s *testEarningsService) Summary(ctx context.Context, userID uuid.UUID) (*earnings.Summary, error) {
	if s.summaryFn != nil {
		return s.summaryFn(ctx, userID)
	}
	return &earnings.Summary{}, nil
}

func (s *testEarningsService) PostEarnings(ctx context.Context, userID uuid.UUID) ([]earnings.PostEarningsDTO, error) {
	if s.postEarningsFn != nil {
		return s.postEarningsFn(ctx, userID)
	}
	return nil, nil
}

func (s *testEarningsService) PlatformStats(ctx context.Context) (*earnings.PlatformStatsDTO, error) {
	if s.statsFn != nil {
		return s.statsFn(ctx)
	}
	return &earnings.PlatformStatsDTO{}, nil
}

func TestEarningsSummarySuccess(t *testing.T) {
	userID := uuid.New()
	svc := &testEarningsService{
		summaryFn: func(_ context.Context, got uuid.UUID) (*earnings.Summary, error) {
			if got != userID {
				t.Fatalf("unexpected user %s", got)
			}
			return &earnings.Summary{
				TotalEarnings: decimal.RequireFromString("2.38"),
				Monthly: []earnings.MonthlyEarnings{
					{Month: "2026-08", Amount: decimal.RequireFromString("2.38"), Clicks: 170},
				},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/earnings", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))

	resp := httptest.NewRecorder()
	EarningsSummary(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data earnings.Summary `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !envelope.Data.TotalEarnings.Equal(decimal.RequireFromString("2.38")) {
		t.Fatalf("unexpected total %s", envelope.Data.TotalEarnings)
	}
	if len(envelope.Data.Monthly) != 1 || envelope.Data.Monthly[0].Month != "2026-08" {
		t.Fatalf("unexpected monthly breakdown %+v", envelope.Data.Monthly)
	}
}

func TestEarningsSummaryMissingIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/earnings", nil)
	resp := httptest.NewRecorder()
	EarningsSummary(&testEarningsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestEarningsByPostSuccess(t *testing.T) {
	userID := uuid.New()
	postID := uuid.New()
	svc := &testEarningsService{
		postEarningsFn: func(_ context.Context, got uuid.UUID) ([]earnings.PostEarningsDTO, error) {
			if got != userID {
				t.Fatalf("unexpected user %s", got)
			}
			return []earnings.PostEarningsDTO{{
				PostID:        postID,
				Title:         "Streaming gRPC in production",
				ClickCount:    170,
				TotalEarnings: decimal.RequireFromString("2.38"),
			}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/earnings/posts", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))

	resp := httptest.NewRecorder()
	EarningsByPost(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			Posts []earnings.PostEarningsDTO `json:"posts"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(envelope.Data.Posts) != 1 || envelope.Data.Posts[0].PostID != postID {
		t.Fatalf("unexpected posts payload %+v", envelope.Data.Posts)
	}
}
