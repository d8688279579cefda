package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"expensedash/internal/core"
)

func decodeJSONBody(t *testing.T, r *http.Request, out any) {
	t.Helper()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		t.Errorf("decode request body: %v", err)
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second)
}

func TestListExpensesRangeParams(t *testing.T) {
	var gotQuery string
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"expenses":[{"id":1,"header":"Rent","category":"financial","cost":"900.00","date":"2024-01-02"}]}`))
	})

	f := core.NormalizeRange("2024-01-01", "2024-01-31")
	got, err := c.ListExpenses(context.Background(), "tok-123", f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "from=2024-01-01&to=2024-01-31" {
		t.Fatalf("unexpected query: %q", gotQuery)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if len(got) != 1 || got[0].Header != "Rent" || got[0].Cost != "900.00" {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestListExpensesNoRangeParams(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"expenses":[]}`))
	})

	// one bound missing means unfiltered, never a partial window
	if _, err := c.ListExpenses(context.Background(), "t", core.NormalizeRange("2024-01-01", "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "" {
		t.Fatalf("expected no range parameters, got %q", gotQuery)
	}
}

func TestSummaryDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/expense/summary" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"summary":[{"category":"operation","total":100.5},{"category":"other","total":49.5}]}`))
	})

	got, err := c.Summary(context.Background(), "t", core.Range{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Category != core.CategoryOperation || got[0].Total != 100.5 {
		t.Fatalf("unexpected summary: %+v", got)
	}
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	if _, err := c.ListExpenses(context.Background(), "stale", core.Range{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := c.AddExpense(context.Background(), "stale", core.Draft{Header: "x", Category: core.CategoryOther, Date: "2024-01-01"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestDecodeFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"expenses": [`))
	})
	if _, err := c.ListExpenses(context.Background(), "t", core.Range{}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestAddExpenseSendsDraft(t *testing.T) {
	var gotBody core.Draft
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/expense/add" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		decodeJSONBody(t, r, &gotBody)
		w.WriteHeader(http.StatusCreated)
	})

	d := core.Draft{Header: "Taxi", Category: core.CategoryOperation, Cost: "12.50", Date: "2024-02-01"}
	if err := c.AddExpense(context.Background(), "t", d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody != d {
		t.Fatalf("server received %+v, want %+v", gotBody, d)
	}
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		decodeJSONBody(t, r, &creds)
		if creds["username"] != "alice" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"bad credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok-1"}`))
	})

	tok, err := c.Login(context.Background(), "alice", "pw")
	if err != nil || tok != "tok-1" {
		t.Fatalf("expected tok-1, got %q (err=%v)", tok, err)
	}
	if _, err := c.Login(context.Background(), "mallory", "pw"); !errors.Is(err, ErrLoginRejected) {
		t.Fatalf("expected ErrLoginRejected, got %v", err)
	}
}
