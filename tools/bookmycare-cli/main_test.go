package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Abhishek-Jatav/bookMyCare/libs/client"
	"github.com/Abhishek-Jatav/bookMyCare/libs/grpcx"
)

func newApp(t *testing.T, h http.HandlerFunc) (*app, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	var out bytes.Buffer
	store := client.NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	if _, err := store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return &app{api: client.New(srv.URL), session: store, out: &out}, &out
}

func TestLoginPersistsSession(t *testing.T) {
	a, out := newApp(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token_bookMyCare":"tok","user":{"id":5,"name":"Cara","email":"c@example.test","role":"CUSTOMER"}}`))
	})
	if err := a.run(context.Background(), "login", []string{"-email", "c@example.test", "-password", "secret123"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess := a.session.Current(); sess.Token != "tok" || sess.User.ID != 5 {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if !strings.Contains(out.String(), "signed in as Cara") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRoleGatedCommands(t *testing.T) {
	a, _ := newApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})
	if err := a.run(context.Background(), "my-bookings", nil); err == nil {
		t.Fatal("expected error when logged out")
	}
	if err := a.session.Set(client.Session{Token: "tok", User: client.User{ID: 1, Role: "CUSTOMER"}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := a.run(context.Background(), "add-slot", []string{"-date", "2030-01-01", "-time", "10:00"}); err == nil {
		t.Fatal("expected customer to be refused add-slot")
	}
	if err := a.run(context.Background(), "provider-bookings", nil); err == nil {
		t.Fatal("expected customer to be refused provider-bookings")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	a, _ := newApp(t, func(w http.ResponseWriter, r *http.Request) {})
	if err := a.session.Set(client.Session{Token: "tok", User: client.User{ID: 1, Role: "PROVIDER"}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := a.run(context.Background(), "logout", nil); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if a.session.Current().LoggedIn() {
		t.Fatal("expected session to be cleared")
	}
}

func TestUnknownCommand(t *testing.T) {
	a, _ := newApp(t, func(w http.ResponseWriter, r *http.Request) {})
	if err := a.run(context.Background(), "dance", nil); err == nil {
		t.Fatal("expected unknown command error")
	}
}

func TestHealthCommand(t *testing.T) {
	srv := grpcx.NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.ServeListener(ctx, lis) }()

	a, out := newApp(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.SetServing("", false)
	if err := a.run(ctx, "health", []string{"-grpc", lis.Addr().String()}); err == nil || !strings.Contains(err.Error(), "NOT_SERVING") {
		t.Fatalf("expected NOT_SERVING error, got %v", err)
	}
	srv.SetServing("", true)
	if err := a.run(ctx, "health", []string{"-grpc", lis.Addr().String()}); err != nil {
		t.Fatalf("health: %v", err)
	}
	if !strings.Contains(out.String(), "SERVING") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}
