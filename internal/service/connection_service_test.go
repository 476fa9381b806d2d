package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Assure-Desk/assuredesk/internal/adapter/outbound/memory"
	"github.com/Assure-Desk/assuredesk/internal/domain/connection"
)

type fakeProber struct {
	err   error
	calls int
	urls  []string
}

func (p *fakeProber) Probe(_ context.Context, rawURL string) error {
	p.calls++
	p.urls = append(p.urls, rawURL)
	return p.err
}

func TestConnectionAdd(t *testing.T) {
	t.Parallel()
	svc := NewConnectionService(memory.NewConnectionStore(), &fakeProber{}, 0, testLogger())
	ctx := context.Background()

	conn, err := svc.Add(ctx, AddInput{Name: "Prod", URL: "https://api.example.com/v1"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if conn.ID == "" {
		t.Error("expected a generated ID")
	}
	if conn.Status != connection.StatusConnected {
		t.Errorf("status = %q, want connected", conn.Status)
	}
	if conn.LastConnected == nil {
		t.Error("expected lastConnected to be set")
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != conn.ID {
		t.Errorf("created connection missing from list")
	}
}

func TestConnectionAddValidation(t *testing.T) {
	t.Parallel()
	svc := NewConnectionService(memory.NewConnectionStore(), &fakeProber{}, 0, testLogger())
	ctx := context.Background()

	tests := []struct {
		name  string
		input AddInput
	}{
		{"empty name", AddInput{URL: "https://api.example.com"}},
		{"empty url", AddInput{Name: "X"}},
		{"relative url", AddInput{Name: "X", URL: "/v1/api"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Add(ctx, tt.input); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestConnectionTestSuccess(t *testing.T) {
	t.Parallel()
	store := memory.NewConnectionStore()
	prober := &fakeProber{}
	svc := NewConnectionService(store, prober, 0, testLogger())
	ctx := context.Background()

	past := time.Now().UTC().Add(-24 * time.Hour)
	conn := &connection.Connection{
		ID: "c1", Name: "Dev", URL: "https://dev.example.com",
		Status: connection.StatusDisconnected, LastConnected: &past,
	}
	if err := store.Create(ctx, conn); err != nil {
		t.Fatal(err)
	}

	ok, err := svc.Test(ctx, "c1")
	if err != nil || !ok {
		t.Fatalf("Test() = %v, %v; want true, nil", ok, err)
	}
	if prober.calls != 1 || prober.urls[0] != "https://dev.example.com" {
		t.Errorf("prober called %d times with %v", prober.calls, prober.urls)
	}

	got, err := store.Get(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != connection.StatusConnected {
		t.Errorf("status = %q, want connected", got.Status)
	}
	if got.LastConnected == nil || !got.LastConnected.After(past) {
		t.Errorf("lastConnected not advanced: %v", got.LastConnected)
	}
}

func TestConnectionTestFailure(t *testing.T) {
	t.Parallel()
	store := memory.NewConnectionStore()
	probeErr := errors.New("connection refused")
	svc := NewConnectionService(store, &fakeProber{err: probeErr}, 0, testLogger())
	ctx := context.Background()

	last := time.Now().UTC().Add(-time.Hour)
	conn := &connection.Connection{
		ID: "c1", Name: "Prod", URL: "https://api.example.com",
		Status: connection.StatusConnected, LastConnected: &last,
	}
	if err := store.Create(ctx, conn); err != nil {
		t.Fatal(err)
	}

	ok, err := svc.Test(ctx, "c1")
	if ok || !errors.Is(err, probeErr) {
		t.Fatalf("Test() = %v, %v; want false and the probe error", ok, err)
	}
	var pe *ProbeError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %T, want *ProbeError", err)
	}

	got, err := store.Get(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != connection.StatusError {
		t.Errorf("status = %q, want error", got.Status)
	}
	if got.LastConnected == nil || !got.LastConnected.Equal(last) {
		t.Errorf("lastConnected changed on failure: %v", got.LastConnected)
	}
}

func TestConnectionTestUnknownID(t *testing.T) {
	t.Parallel()
	svc := NewConnectionService(memory.NewConnectionStore(), &fakeProber{}, 0, testLogger())

	if _, err := svc.Test(context.Background(), "missing"); !errors.Is(err, connection.ErrConnectionNotFound) {
		t.Fatalf("error = %v, want ErrConnectionNotFound", err)
	}
}

func TestHTTPProber(t *testing.T) {
	t.Parallel()

	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := &HTTPProber{Client: srv.Client()}
	// An HTTP error status still means the endpoint is reachable.
	if err := p.Probe(context.Background(), srv.URL); err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if method != http.MethodHead {
		t.Errorf("probe method = %q, want HEAD", method)
	}

	srv.Close()
	if err := p.Probe(context.Background(), srv.URL); err == nil {
		t.Fatal("expected transport error after server shutdown")
	}
}
