package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KirillkoTankisto/iiko-bot/internal/dates"
)

func newTestClient(timeout time.Duration) *Client {
	return NewClient(timeout, WithInitialInterval(time.Millisecond), WithMaxRetries(3))
}

func TestEndpoint(t *testing.T) {
	testCases := []struct {
		name   string
		server string
		path   []string
		want   string
	}{
		{name: "bare host", server: "cafe.iiko.it", path: []string{"auth"}, want: "https://cafe.iiko.it/resto/api/auth"},
		{name: "host with port", server: "10.0.0.5:8080", path: []string{"v2", "cashshifts", "list"}, want: "https://10.0.0.5:8080/resto/api/v2/cashshifts/list"},
		{name: "explicit scheme", server: "http://127.0.0.1:9000/", path: []string{"logout"}, want: "http://127.0.0.1:9000/resto/api/logout"},
	}

	for _, tc := range testCases {
		got, err := Endpoint(tc.server, tc.path...)
		if err != nil {
			t.Fatalf("%s: endpoint: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}

	if _, err := Endpoint("   "); err == nil {
		t.Fatal("expected error for empty address")
	}
}

func TestLoginSendsCredentials(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/resto/api/auth" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("login"); got != "admin" {
			t.Errorf("unexpected login: %q", got)
		}
		if got := r.URL.Query().Get("pass"); got != "hash" {
			t.Errorf("unexpected pass: %q", got)
		}
		_, _ = w.Write([]byte("session-key\n"))
	}))
	defer server.Close()

	token, err := newTestClient(time.Second).Login(context.Background(), server.URL, "admin", "hash")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token != "session-key" {
		t.Fatalf("unexpected token: %q", token)
	}
}

func TestListShiftsDecodesPayload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/resto/api/v2/cashshifts/list" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("openDateFrom") != "2024-03-09" || query.Get("openDateTo") != "2024-03-15" {
			t.Errorf("unexpected range: %s", r.URL.RawQuery)
		}
		if query.Get("status") != "ANY" || query.Get("key") != "tok" {
			t.Errorf("unexpected status/key: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[
			{"id":"a","sessionNumber":41,"openDate":"2024-03-14T09:00:00","payOrders":1500.5,"salesCard":1000,"salesCash":500.5,"sessionStatus":"CLOSED","cashRemain":null},
			{"id":"b","sessionNumber":42,"openDate":"2024-03-15T09:00:00","payOrders":200,"sessionStatus":"OPEN","closeDate":null}
		]`))
	}))
	defer server.Close()

	shifts, err := newTestClient(time.Second).ListShifts(context.Background(), server.URL, "tok", dates.Range{From: "2024-03-09", To: "2024-03-15"})
	if err != nil {
		t.Fatalf("list shifts: %v", err)
	}
	if len(shifts) != 2 {
		t.Fatalf("expected 2 shifts, got %d", len(shifts))
	}
	if shifts[0].PayOrders.String() != "1500.5" {
		t.Fatalf("unexpected payOrders: %s", shifts[0].PayOrders)
	}
	if shifts[1].SessionNumber != 42 || shifts[1].CloseDate != nil {
		t.Fatalf("unexpected second shift: %+v", shifts[1])
	}
	if shifts[0].CashRemain.Valid {
		t.Fatal("expected null cashRemain")
	}
}

func TestOlapReportPostsBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected Content-Type: %q", got)
		}
		if r.URL.Query().Get("key") != "tok" {
			t.Errorf("missing key: %s", r.URL.RawQuery)
		}
		var req OlapRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.ReportType != ReportTypeSales || req.Filters["OrderDeleted"].FilterType != FilterTypeIncludeValues {
			t.Errorf("unexpected body: %+v", req)
		}
		_, _ = w.Write([]byte(`{"data":[{"DishCategory":"Пицца","DishName":"Маргарита","DishDiscountSumInt":1200,"GuestNum":3},{"DishName":"Вода","DishDiscountSumInt":90.5,"GuestNum":1}]}`))
	}))
	defer server.Close()

	req := OlapRequest{
		ReportType: ReportTypeSales,
		Filters: map[string]Filter{
			"OrderDeleted": IncludeValuesFilter(NotDeleted),
		},
	}
	rows, err := newTestClient(time.Second).OlapReport(context.Background(), server.URL, "tok", req)
	if err != nil {
		t.Fatalf("olap report: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].DishCategory == nil || *rows[0].DishCategory != "Пицца" {
		t.Fatalf("unexpected category: %+v", rows[0])
	}
	if rows[1].DishCategory != nil {
		t.Fatal("expected missing category to decode as nil")
	}
}

func TestRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("tok"))
	}))
	defer server.Close()

	token, err := newTestClient(time.Second).Login(context.Background(), server.URL, "u", "p")
	if err != nil {
		t.Fatalf("login after retries: %v", err)
	}
	if token != "tok" {
		t.Fatalf("unexpected token: %q", token)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
}

func TestClassifiesHTTPStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		status       int
		transient    bool
		unauthorized bool
		calls        int32
	}{
		{name: "server error", status: http.StatusInternalServerError, transient: true, calls: 4},
		{name: "unauthorized", status: http.StatusUnauthorized, unauthorized: true, calls: 1},
		{name: "forbidden", status: http.StatusForbidden, unauthorized: true, calls: 1},
		{name: "bad request", status: http.StatusBadRequest, calls: 1},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte("error"))
			}))
			defer server.Close()

			err := newTestClient(time.Second).Logout(context.Background(), server.URL, "tok")
			if err == nil {
				t.Fatalf("expected error for status %d", tc.status)
			}

			var reqErr *RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("expected RequestError, got %T", err)
			}
			if reqErr.StatusCode != tc.status {
				t.Fatalf("unexpected status: %d", reqErr.StatusCode)
			}
			if IsTransient(err) != tc.transient {
				t.Fatalf("transient mismatch: got=%v want=%v", IsTransient(err), tc.transient)
			}
			if IsUnauthorized(err) != tc.unauthorized {
				t.Fatalf("unauthorized mismatch: got=%v want=%v", IsUnauthorized(err), tc.unauthorized)
			}
			if got := atomic.LoadInt32(&calls); got != tc.calls {
				t.Fatalf("expected %d calls, got %d", tc.calls, got)
			}
		})
	}
}

func TestTimeoutIsTransient(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(120 * time.Millisecond)
		_, _ = w.Write([]byte("tok"))
	}))
	defer server.Close()

	client := NewClient(30*time.Millisecond, WithInitialInterval(time.Millisecond), WithMaxRetries(1))
	_, err := client.Login(context.Background(), server.URL, "u", "p")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !IsTransient(err) {
		t.Fatalf("expected timeout to be transient, got err=%v", err)
	}
}

func TestEmptySessionKeyIsError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("  "))
	}))
	defer server.Close()

	_, err := newTestClient(time.Second).Login(context.Background(), server.URL, "u", "p")
	if err == nil || !strings.Contains(err.Error(), "empty session key") {
		t.Fatalf("expected empty session key error, got %v", err)
	}
}
