package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/loansplit/loansplit/internal/auth"
	"github.com/loansplit/loansplit/internal/storage/memory"
)

const mortgagePayload = `[
	{"type": "AccountCreated", "date": "2025-06-01", "acctName": "Joint"},
	{"type": "BillAdded", "date": "2025-06-15", "billName": "rent",
	 "description": "June rent", "paidBy": "Alice",
	 "total": 1200, "shares": {"Alice": 0.5, "Bob": 0.5}},
	{"type": "LoanContracted", "date": "2025-11-01", "loanName": "House",
	 "principal": 1000000, "nominalRate": 4.5, "term": 360,
	 "backingAccountName": "Joint", "name1": "Alice", "name2": "Bob"}
]`

func newTestHandler(t *testing.T, opts Options) http.Handler {
	t.Helper()
	return NewServer(memory.New(), opts).Handler([]string{"*"})
}

func createStream(t *testing.T, handler http.Handler) string {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/eventStream", strings.NewReader(mortgagePayload)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /eventStream status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}
	if resp.ID == "" {
		t.Fatal("create response has empty id")
	}
	return resp.ID
}

func TestCreateStream(t *testing.T) {
	handler := newTestHandler(t, Options{})
	createStream(t, handler)

	t.Run("rejects malformed events", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/eventStream", strings.NewReader(`[{"date":"2025-06-01"}]`)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("rejects events that fail replay", func(t *testing.T) {
		rec := httptest.NewRecorder()
		payload := `[{"type": "LoanPayment", "date": "2025-06-01", "fromAccountName": "Joint", "loanName": "House"}]`
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/eventStream", strings.NewReader(payload)))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})
}

func TestGetState(t *testing.T) {
	handler := newTestHandler(t, Options{})
	id := createStream(t, handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/eventStream/"+id+"?date=2026-03-01", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Entities map[string]json.RawMessage `json:"entities"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	for _, name := range []string{"Joint", "House", "rent", "Balances", "House_payment_2025-12-31"} {
		if _, ok := resp.Entities[name]; !ok {
			t.Errorf("entities missing %q", name)
		}
	}

	t.Run("missing date", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/eventStream/"+id, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("date before first event", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/eventStream/"+id+"?date=2024-01-01", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("unknown stream", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/eventStream/nope?date=2026-03-01", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestLoanSummary(t *testing.T) {
	handler := newTestHandler(t, Options{})
	id := createStream(t, handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/eventStream/"+id+"/loanSummary?date=2026-03-01&loanName=House", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp loanSummaryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.LoanName != "House" {
		t.Errorf("loanName = %q, want House", resp.LoanName)
	}
	if resp.SnapshotDate != "2026-03-01" {
		t.Errorf("snapshotDate = %q, want 2026-03-01", resp.SnapshotDate)
	}
	if resp.NextPaymentTotal.Total <= 0 {
		t.Errorf("nextPaymentTotal.total = %v, want positive", resp.NextPaymentTotal.Total)
	}
	if resp.RemainingAmount <= 0 || resp.RemainingAmount >= 1_000_000 {
		t.Errorf("remainingAmount = %v, want between 0 and principal", resp.RemainingAmount)
	}
	for _, person := range []string{"Alice", "Bob"} {
		if _, ok := resp.NextPaymentByPerson[person]; !ok {
			t.Errorf("nextPaymentByPerson missing %s", person)
		}
		if _, ok := resp.RemainingAmountByPerson[person]; !ok {
			t.Errorf("remainingAmountByPerson missing %s", person)
		}
	}

	t.Run("missing loanName", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/eventStream/"+id+"/loanSummary?date=2026-03-01", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown loan", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/eventStream/"+id+"/loanSummary?date=2026-03-01&loanName=Boat", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestGetEvents(t *testing.T) {
	handler := newTestHandler(t, Options{})
	id := createStream(t, handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/eventStream/"+id+"/events?date=2026-03-01", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var events []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&events); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	// Three user events plus three payments, each with its bill.
	if len(events) != 9 {
		t.Fatalf("len(events) = %d, want 9", len(events))
	}
	if events[3]["type"] != "LoanPayment" {
		t.Errorf("events[3].type = %v, want LoanPayment", events[3]["type"])
	}
}

func TestStateSnapshot(t *testing.T) {
	handler := newTestHandler(t, Options{})
	id := createStream(t, handler)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"cutoffDate": "2026-03-01"}`)
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/eventStream/"+id+"/stateSnapshot", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp snapshotResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if _, ok := resp.Loans["House"]; !ok {
		t.Error("loans missing House")
	}
	if _, ok := resp.Accounts["Joint"]; !ok {
		t.Error("accounts missing Joint")
	}
	// The rent bill plus three payment bills.
	if len(resp.Bills) != 4 {
		t.Errorf("len(bills) = %d, want 4", len(resp.Bills))
	}
	if resp.Balances == nil {
		t.Error("balances missing")
	}

	t.Run("missing cutoff date", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/eventStream/"+id+"/stateSnapshot", strings.NewReader(`{}`)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestAuth(t *testing.T) {
	hash, err := auth.HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	handler := newTestHandler(t, Options{
		JWT:               auth.NewJWTManager("test-secret-key", time.Hour),
		AdminPasswordHash: hash,
	})

	t.Run("stream routes require a token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/eventStream", strings.NewReader(mortgagePayload)))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"password": "wrong"}`)))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("token grants access", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"password": "hunter2hunter2"}`)))
		if rec.Code != http.StatusOK {
			t.Fatalf("token status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decoding token response: %v", err)
		}

		req := httptest.NewRequest(http.MethodPost, "/eventStream", strings.NewReader(mortgagePayload))
		req.Header.Set("Authorization", "Bearer "+resp.Token)
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Errorf("authorized create status = %d, body %s", rec.Code, rec.Body.String())
		}
	})
}
