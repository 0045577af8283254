package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/helmdeck/helmdeck/internal/identity"
)

func TestMessagesCarriesBearerAndDecodes(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"m1","role":"user","content":"hello","created_at":"2026-08-27T10:00:00Z"},
			{"id":"m2","role":"assistant","content":"hi","created_at":"2026-08-27T10:00:05Z"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, identity.NewStore("secret-token"))
	msgs, err := c.Messages(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}

	if gotAuth != "Bearer secret-token" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotPath != "/api/v1/conversations/c1/messages" {
		t.Errorf("path = %q", gotPath)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].ID != "m1" || msgs[0].Role != "user" || msgs[0].Content != "hello" {
		t.Errorf("first message = %+v", msgs[0])
	}
	want := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	if !msgs[0].Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", msgs[0].Timestamp, want)
	}
}

func TestMessagesRereadsRotatedToken(t *testing.T) {
	var auths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auths = append(auths, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	store := identity.NewStore("first")
	c := NewClient(srv.URL, store)
	if _, err := c.Messages(context.Background(), "c1"); err != nil {
		t.Fatal(err)
	}
	store.Set("second")
	if _, err := c.Messages(context.Background(), "c1"); err != nil {
		t.Fatal(err)
	}

	if auths[0] != "Bearer first" || auths[1] != "Bearer second" {
		t.Errorf("auth headers = %v", auths)
	}
}

func TestMessagesNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, identity.NewStore("bad"))
	if _, err := c.Messages(context.Background(), "c1"); err == nil {
		t.Fatal("want error on 401")
	}
}

func TestDeleteConversation(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, identity.NewStore("t"))
	if err := c.DeleteConversation(context.Background(), "c7"); err != nil {
		t.Fatalf("DeleteConversation: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/api/v1/conversations/c7" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
}

func TestStatusAndVerifyAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/status":
			w.Write([]byte(`{"version":"1.2.0","mode":"standalone","agent_id":"gw-1","uptime_seconds":42}`))
		case "/api/v1/auth/verify":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			w.Write([]byte(`{"valid":true,"auth_required":true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, identity.NewStore("t"))

	info, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if info.Version != "1.2.0" || info.UptimeSeconds != 42 {
		t.Errorf("status = %+v", info)
	}

	res, err := c.VerifyAuth(context.Background())
	if err != nil {
		t.Fatalf("VerifyAuth: %v", err)
	}
	if !res.Valid || !res.AuthRequired {
		t.Errorf("auth result = %+v", res)
	}
}

func TestListConversations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"c1","title":"Build notes","updated_at":"2026-08-27T09:00:00Z"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, identity.NewStore("t"))
	convs, err := c.ListConversations(context.Background())
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(convs) != 1 || convs[0].ID != "c1" || convs[0].Title != "Build notes" {
		t.Errorf("conversations = %+v", convs)
	}
}
