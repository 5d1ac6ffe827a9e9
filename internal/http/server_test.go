package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hearth/internal/services"
	"hearth/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := memory.New()
	srv := NewServer(":0", Deps{
		Store:        st,
		Transactions: services.NewTransactionService(st, nil),
		Stats:        services.NewStatsService(st),
		Budget:       services.NewBudgetService(st),
		Investments:  services.NewInvestmentService(st),
	})
	t.Cleanup(func() {
		srv.cacheMgr.Stop()
		srv.limiter.Stop()
	})
	return srv
}

type testRequest struct {
	method string
	path   string
	body   string
	role   string
	noAuth bool
}

func do(t *testing.T, srv *Server, req testRequest) *httptest.ResponseRecorder {
	t.Helper()
	var body *strings.Reader
	if req.body != "" {
		body = strings.NewReader(req.body)
	} else {
		body = strings.NewReader("")
	}
	r := httptest.NewRequest(req.method, req.path, body)
	r.Header.Set("Content-Type", "application/json")
	if !req.noAuth {
		r.Header.Set("X-User-ID", "u1")
		r.Header.Set("X-Family-ID", "fam")
		r.Header.Set("X-User-Name", "Ada")
		role := req.role
		if role == "" {
			role = "admin"
		}
		r.Header.Set("X-Role", role)
	}
	w := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func createCategory(t *testing.T, srv *Server, body string) string {
	t.Helper()
	w := do(t, srv, testRequest{method: http.MethodPost, path: "/api/categories", body: body})
	if w.Code != http.StatusCreated {
		t.Fatalf("create category: got status %d, body %s", w.Code, w.Body.String())
	}
	return decodeBody(t, w)["id"].(string)
}

func createAccount(t *testing.T, srv *Server, body string) string {
	t.Helper()
	w := do(t, srv, testRequest{method: http.MethodPost, path: "/api/accounts", body: body})
	if w.Code != http.StatusCreated {
		t.Fatalf("create account: got status %d, body %s", w.Code, w.Body.String())
	}
	return decodeBody(t, w)["id"].(string)
}

func TestIdentityRequired(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, testRequest{method: http.MethodGet, path: "/api/transactions", noAuth: true})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity headers, got %d", w.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, testRequest{method: http.MethodGet, path: "/healthz", noAuth: true})
	if w.Code != http.StatusOK {
		t.Fatalf("healthz: got %d", w.Code)
	}
	w = do(t, srv, testRequest{method: http.MethodGet, path: "/readyz", noAuth: true})
	if w.Code != http.StatusOK {
		t.Fatalf("readyz: got %d, body %s", w.Code, w.Body.String())
	}
}

func TestCreateCategoryRequiresAdminForBudgetLimit(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, testRequest{
		method: http.MethodPost,
		path:   "/api/categories",
		body:   `{"name":"Groceries","type":"expense","budget_limit":"100.00"}`,
		role:   "member",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for member setting budget limit, got %d", w.Code)
	}

	w = do(t, srv, testRequest{
		method: http.MethodPost,
		path:   "/api/categories",
		body:   `{"name":"Groceries","type":"expense","budget_limit":"100.00"}`,
		role:   "admin",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin, got %d, body %s", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["budget_limit"] != "100.00" {
		t.Errorf("budget_limit = %v, want 100.00", resp["budget_limit"])
	}
}

func TestCreateCategoryValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty name", `{"name":"","type":"expense"}`, http.StatusBadRequest},
		{"bad type", `{"name":"X","type":"weird"}`, http.StatusBadRequest},
		{"limit on income category", `{"name":"Salary","type":"income","budget_limit":"50.00"}`, http.StatusBadRequest},
		{"target on expense category", `{"name":"Food","type":"expense","investment_target":"50.00"}`, http.StatusBadRequest},
		{"malformed body", `{not json`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, testRequest{method: http.MethodPost, path: "/api/categories", body: tt.body})
			if w.Code != tt.want {
				t.Errorf("got status %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestRecordTransactionAndBalances(t *testing.T) {
	srv := newTestServer(t)

	catID := createCategory(t, srv, `{"name":"Salary","type":"income"}`)
	accID := createAccount(t, srv, `{"name":"Checking","type":"bank","opening_balance":"500.00"}`)

	w := do(t, srv, testRequest{
		method: http.MethodPost,
		path:   "/api/transactions",
		body:   `{"type":"income","amount":"1000.00","category_id":"` + catID + `","account_id":"` + accID + `","date":"2025-03-15","description":"March salary"}`,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("record: got %d, body %s", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	tx := resp["transaction"].(map[string]any)
	if tx["amount"] != "1000.00" {
		t.Errorf("amount = %v, want 1000.00", tx["amount"])
	}
	if tx["user_name"] != "Ada" {
		t.Errorf("user_name = %v, want Ada", tx["user_name"])
	}
	if resp["budget_warning"] != nil {
		t.Errorf("unexpected budget warning: %v", resp["budget_warning"])
	}

	w = do(t, srv, testRequest{method: http.MethodGet, path: "/api/accounts"})
	accounts := decodeBody(t, w)["accounts"].([]any)
	if len(accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(accounts))
	}
	balance := accounts[0].(map[string]any)["current_balance"]
	if balance != "1500.00" {
		t.Errorf("current_balance = %v, want 1500.00", balance)
	}
}

func TestTransferRequiresBothAccounts(t *testing.T) {
	srv := newTestServer(t)
	accID := createAccount(t, srv, `{"name":"Checking","type":"bank"}`)

	w := do(t, srv, testRequest{
		method: http.MethodPost,
		path:   "/api/transactions",
		body:   `{"type":"transfer","amount":"50.00","account_id":"` + accID + `","date":"2025-03-15"}`,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for transfer without destination, got %d", w.Code)
	}
}

func TestBudgetWarningOnExpense(t *testing.T) {
	srv := newTestServer(t)

	catID := createCategory(t, srv, `{"name":"Dining","type":"expense","budget_limit":"100.00"}`)
	body := `{"type":"expense","amount":"90.00","category_id":"` + catID + `","date":"2025-03-10"}`

	w := do(t, srv, testRequest{method: http.MethodPost, path: "/api/transactions", body: body})
	if w.Code != http.StatusCreated {
		t.Fatalf("record: got %d, body %s", w.Code, w.Body.String())
	}
	warning := decodeBody(t, w)["budget_warning"]
	if warning == nil {
		t.Fatal("expected a budget warning at 90% of limit")
	}
	wmap := warning.(map[string]any)
	if wmap["exceeded"] != false {
		t.Errorf("exceeded = %v, want false", wmap["exceeded"])
	}
	if wmap["new_total"] != "90.00" {
		t.Errorf("new_total = %v, want 90.00", wmap["new_total"])
	}
}

func TestGetUnknownTransaction(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, testRequest{method: http.MethodGet, path: "/api/transactions/nope"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDashboardStatsProfit(t *testing.T) {
	srv := newTestServer(t)

	incomeCat := createCategory(t, srv, `{"name":"Salary","type":"income"}`)
	expenseCat := createCategory(t, srv, `{"name":"Rent","type":"expense"}`)
	investCat := createCategory(t, srv, `{"name":"ETF","type":"investment"}`)

	records := []string{
		`{"type":"income","amount":"1000.00","category_id":"` + incomeCat + `","date":"2025-03-01"}`,
		`{"type":"expense","amount":"200.00","category_id":"` + expenseCat + `","date":"2025-03-02"}`,
		`{"type":"investment","amount":"500.00","category_id":"` + investCat + `","date":"2025-03-03"}`,
	}
	for _, body := range records {
		w := do(t, srv, testRequest{method: http.MethodPost, path: "/api/transactions", body: body})
		if w.Code != http.StatusCreated {
			t.Fatalf("record: got %d, body %s", w.Code, w.Body.String())
		}
	}

	w := do(t, srv, testRequest{method: http.MethodGet, path: "/api/dashboard/stats?month=3&year=2025"})
	if w.Code != http.StatusOK {
		t.Fatalf("stats: got %d, body %s", w.Code, w.Body.String())
	}
	stats := decodeBody(t, w)
	if stats["profit"] != "800.00" {
		t.Errorf("profit = %v, want 800.00 (investment must not reduce profit)", stats["profit"])
	}
	if stats["total_investment"] != "500.00" {
		t.Errorf("total_investment = %v, want 500.00", stats["total_investment"])
	}

	// A new write must invalidate the cached projection.
	w = do(t, srv, testRequest{
		method: http.MethodPost,
		path:   "/api/transactions",
		body:   `{"type":"expense","amount":"100.00","category_id":"` + expenseCat + `","date":"2025-03-04"}`,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("second record: got %d", w.Code)
	}
	w = do(t, srv, testRequest{method: http.MethodGet, path: "/api/dashboard/stats?month=3&year=2025"})
	stats = decodeBody(t, w)
	if stats["profit"] != "700.00" {
		t.Errorf("profit after second expense = %v, want 700.00", stats["profit"])
	}
}

func TestBudgetStatusEndpoint(t *testing.T) {
	srv := newTestServer(t)

	catID := createCategory(t, srv, `{"name":"Dining","type":"expense","budget_limit":"100.00"}`)
	w := do(t, srv, testRequest{
		method: http.MethodPost,
		path:   "/api/transactions",
		body:   `{"type":"expense","amount":"30.00","category_id":"` + catID + `","date":"2025-03-10"}`,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("record: got %d", w.Code)
	}

	w = do(t, srv, testRequest{method: http.MethodGet, path: "/api/budget/status?month=3&year=2025"})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	statuses := decodeBody(t, w)["statuses"].([]any)
	if len(statuses) != 1 {
		t.Fatalf("expected 1 budget entry, got %d", len(statuses))
	}
	entry := statuses[0].(map[string]any)
	if entry["status"] != "safe" {
		t.Errorf("status = %v, want safe", entry["status"])
	}
	if entry["percentage"].(float64) != 30.0 {
		t.Errorf("percentage = %v, want 30", entry["percentage"])
	}
}

func TestInvestmentTargetsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	catID := createCategory(t, srv, `{"name":"ETF","type":"investment","investment_target":"150.00"}`)
	w := do(t, srv, testRequest{
		method: http.MethodPost,
		path:   "/api/transactions",
		body:   `{"type":"investment","amount":"100.00","category_id":"` + catID + `","date":"2025-03-10"}`,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("record: got %d", w.Code)
	}

	w = do(t, srv, testRequest{method: http.MethodGet, path: "/api/dashboard/investment-targets"})
	targets := decodeBody(t, w)["targets"].([]any)
	if len(targets) != 1 {
		t.Fatalf("expected 1 target, got %d", len(targets))
	}
	entry := targets[0].(map[string]any)
	if entry["percentage"].(float64) != 66.67 {
		t.Errorf("percentage = %v, want 66.67", entry["percentage"])
	}
	if entry["status"] != "in_progress" {
		t.Errorf("status = %v, want in_progress", entry["status"])
	}
}

func TestPeriodStatsValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"unknown type", "/api/dashboard/period-stats?period_type=weekly", http.StatusBadRequest},
		{"quarter out of range", "/api/dashboard/period-stats?period_type=quarterly&quarter=5&year=2025", http.StatusBadRequest},
		{"half out of range", "/api/dashboard/period-stats?period_type=half_yearly&half=3&year=2025", http.StatusBadRequest},
		{"custom missing dates", "/api/dashboard/period-stats?period_type=custom", http.StatusBadRequest},
		{"valid quarterly", "/api/dashboard/period-stats?period_type=quarterly&quarter=1&year=2025", http.StatusOK},
		{"valid annual", "/api/dashboard/period-stats?period_type=annual&year=2025", http.StatusOK},
		{"valid custom", "/api/dashboard/period-stats?period_type=custom&start_date=2025-01-01&end_date=2025-02-28", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, testRequest{method: http.MethodGet, path: tt.path})
			if w.Code != tt.want {
				t.Errorf("got status %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestMonthlyTrendEndpoint(t *testing.T) {
	srv := newTestServer(t)

	catID := createCategory(t, srv, `{"name":"Salary","type":"income"}`)
	w := do(t, srv, testRequest{
		method: http.MethodPost,
		path:   "/api/transactions",
		body:   `{"type":"income","amount":"10.00","category_id":"` + catID + `","date":"2025-06-15"}`,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("record: got %d", w.Code)
	}

	w = do(t, srv, testRequest{method: http.MethodGet, path: "/api/dashboard/monthly-trend?year=2025"})
	months := decodeBody(t, w)["months"].([]any)
	if len(months) != 12 {
		t.Fatalf("expected 12 months, got %d", len(months))
	}
	june := months[5].(map[string]any)
	if june["income"] != "10.00" {
		t.Errorf("june income = %v, want 10.00", june["income"])
	}
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	srv := newTestServer(t)

	catID := createCategory(t, srv, `{"name":"Rent","type":"expense"}`)
	w := do(t, srv, testRequest{
		method: http.MethodPost,
		path:   "/api/transactions",
		body:   `{"type":"expense","amount":"700.00","category_id":"` + catID + `","date":"2025-03-01"}`,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("record: got %d", w.Code)
	}
	txID := decodeBody(t, w)["transaction"].(map[string]any)["id"].(string)

	w = do(t, srv, testRequest{
		method: http.MethodPut,
		path:   "/api/transactions/" + txID,
		body:   `{"type":"expense","amount":"750.00","category_id":"` + catID + `","date":"2025-03-01","description":"rent adjusted"}`,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: got %d, body %s", w.Code, w.Body.String())
	}
	if got := decodeBody(t, w)["amount"]; got != "750.00" {
		t.Errorf("updated amount = %v, want 750.00", got)
	}

	w = do(t, srv, testRequest{method: http.MethodDelete, path: "/api/transactions/" + txID})
	if w.Code != http.StatusOK {
		t.Fatalf("delete: got %d", w.Code)
	}
	w = do(t, srv, testRequest{method: http.MethodGet, path: "/api/transactions/" + txID})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}
