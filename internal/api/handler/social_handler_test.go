package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/pingloop/messenger/internal/core/domain"
	"github.com/pingloop/messenger/internal/core/ports"
)

type stubSocialService struct {
	searchFn  func(ctx context.Context, query, excludeID string) ([]domain.Profile, error)
	sendFn    func(ctx context.Context, from, to string) (*ports.FriendRequestResult, error)
	acceptFn  func(ctx context.Context, accepter, requester string) error
	declineFn func(ctx context.Context, accepter, requester string) error
	removeFn  func(ctx context.Context, userID, friendID string) error
	pinFn     func(ctx context.Context, userID, friendID string) error
	unpinFn   func(ctx context.Context, userID, friendID string) error
}

func (s *stubSocialService) SearchUsers(ctx context.Context, query, excludeID string) ([]domain.Profile, error) {
	return s.searchFn(ctx, query, excludeID)
}

func (s *stubSocialService) SendFriendRequest(ctx context.Context, from, to string) (*ports.FriendRequestResult, error) {
	return s.sendFn(ctx, from, to)
}

func (s *stubSocialService) AcceptFriendRequest(ctx context.Context, accepter, requester string) error {
	return s.acceptFn(ctx, accepter, requester)
}

func (s *stubSocialService) DeclineFriendRequest(ctx context.Context, accepter, requester string) error {
	return s.declineFn(ctx, accepter, requester)
}

func (s *stubSocialService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	return s.removeFn(ctx, userID, friendID)
}

func (s *stubSocialService) PinChat(ctx context.Context, userID, friendID string) error {
	return s.pinFn(ctx, userID, friendID)
}

func (s *stubSocialService) UnpinChat(ctx context.Context, userID, friendID string) error {
	return s.unpinFn(ctx, userID, friendID)
}

func TestSocialHandler_SendFriendRequest_Pending(t *testing.T) {
	stub := &stubSocialService{
		sendFn: func(ctx context.Context, from, to string) (*ports.FriendRequestResult, error) {
			if from != "u1" || to != "u2" {
				t.Fatalf("unexpected args: %s -> %s", from, to)
			}
			return &ports.FriendRequestResult{}, nil
		},
	}
	h := NewSocialHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/v1/friends/requests", `{"to":"u2"}`)
	c.Set("user_id", "u1")

	if err := h.SendFriendRequest(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "pending" {
		t.Fatalf("expected pending status, got %q", resp["status"])
	}
}

func TestSocialHandler_SendFriendRequest_AutoAccepted(t *testing.T) {
	stub := &stubSocialService{
		sendFn: func(ctx context.Context, from, to string) (*ports.FriendRequestResult, error) {
			return &ports.FriendRequestResult{AutoAccepted: true}, nil
		},
	}
	h := NewSocialHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/v1/friends/requests", `{"to":"u2"}`)
	c.Set("user_id", "u1")

	if err := h.SendFriendRequest(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "accepted" {
		t.Fatalf("expected accepted status, got %q", resp["status"])
	}
}

func TestSocialHandler_SendFriendRequest_Unauthenticated(t *testing.T) {
	h := NewSocialHandler(&stubSocialService{})

	c, _ := newTestContext(t, http.MethodPost, "/v1/friends/requests", `{"to":"u2"}`)

	err := h.SendFriendRequest(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestSocialHandler_SendFriendRequest_Duplicate(t *testing.T) {
	stub := &stubSocialService{
		sendFn: func(ctx context.Context, from, to string) (*ports.FriendRequestResult, error) {
			return nil, domain.ErrDuplicateRequest
		},
	}
	h := NewSocialHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/v1/friends/requests", `{"to":"u2"}`)
	c.Set("user_id", "u1")

	if err := h.SendFriendRequest(c); !errors.Is(err, domain.ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest, got %v", err)
	}
}

func TestSocialHandler_SearchUsers_RequiresQuery(t *testing.T) {
	h := NewSocialHandler(&stubSocialService{})

	c, _ := newTestContext(t, http.MethodGet, "/v1/users/search", "")
	c.Set("user_id", "u1")

	err := h.SearchUsers(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestSocialHandler_SearchUsers_ExcludesCaller(t *testing.T) {
	stub := &stubSocialService{
		searchFn: func(ctx context.Context, query, excludeID string) ([]domain.Profile, error) {
			if query != "ali" || excludeID != "u1" {
				t.Fatalf("unexpected args: %q %q", query, excludeID)
			}
			return []domain.Profile{{ID: "u2", Name: "alice"}}, nil
		},
	}
	h := NewSocialHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/v1/users/search?q=ali", "")
	c.Set("user_id", "u1")

	if err := h.SearchUsers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSocialHandler_AcceptFriendRequest(t *testing.T) {
	accepted := false
	stub := &stubSocialService{
		acceptFn: func(ctx context.Context, accepter, requester string) error {
			if accepter != "u1" || requester != "u9" {
				t.Fatalf("unexpected args: %s %s", accepter, requester)
			}
			accepted = true
			return nil
		},
	}
	h := NewSocialHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/v1/friends/requests/u9/accept", "")
	c.Set("user_id", "u1")
	c.SetParamNames("id")
	c.SetParamValues("u9")

	if err := h.AcceptFriendRequest(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !accepted {
		t.Fatalf("service not called")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestSocialHandler_RemoveFriend_NotFriends(t *testing.T) {
	stub := &stubSocialService{
		removeFn: func(ctx context.Context, userID, friendID string) error {
			return domain.ErrNotFriends
		},
	}
	h := NewSocialHandler(stub)

	c, _ := newTestContext(t, http.MethodDelete, "/v1/friends/u9", "")
	c.Set("user_id", "u1")
	c.SetParamNames("id")
	c.SetParamValues("u9")

	if err := h.RemoveFriend(c); !errors.Is(err, domain.ErrNotFriends) {
		t.Fatalf("expected ErrNotFriends, got %v", err)
	}
}
