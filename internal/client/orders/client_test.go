package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"cleanorder-api/internal/pkg/pagination"
	"cleanorder-api/internal/pkg/response"
)

// fakeAPI mimics the order API closely enough for the client
type fakeAPI struct {
	mu          sync.Mutex
	token       string
	refreshTo   string
	orders      []map[string]interface{}
	pageCalls   []string
	statusCalls []string
	statusCode  int
	logoutCode  int
	// keepCookie skips the expiring Set-Cookie on logout
	keepCookie bool
}

func sampleRawOrders() []map[string]interface{} {
	return []map[string]interface{}{
		{"id": 1, "folio": 1001, "estado": "AGENDADO", "cliente": "Hotel Centro"},
		{"id": 2, "folio": 1002, "estado": "EN PROCESO", "region": map[string]interface{}{"id": 1, "nombre": "Norte"}},
		{"id": 3, "estado": "PAUSADO"},
	}
}

// writeEnvelope answers the way pkg/response does on the server
func writeEnvelope(w http.ResponseWriter, code int, text string, data interface{}) {
	body := response.Response{Success: true, Message: text, Data: data}
	if code >= 300 {
		body = response.Response{Error: text}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeAPI) authorized(r *http.Request) bool {
	ck, err := r.Cookie("AuthToken")
	return err == nil && ck.Value == f.token
}

func (f *fakeAPI) listOrders(w http.ResponseWriter, r *http.Request) {
	f.pageCalls = append(f.pageCalls, r.URL.RawQuery)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	params := pagination.NewParams(page, limit)

	orders := f.orders
	if orders == nil {
		orders = sampleRawOrders()
	}
	end := params.Offset + params.Limit
	if end > len(orders) {
		end = len(orders)
	}
	pageOrders := []map[string]interface{}{}
	if params.Offset < len(orders) {
		pageOrders = orders[params.Offset:end]
	}

	writeEnvelope(w, http.StatusOK, "Orders retrieved successfully", map[string]interface{}{
		"orders": pageOrders,
		"meta":   pagination.GetMeta(params, int64(len(orders))),
	})
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/auth/login":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "Secreto123" {
			writeEnvelope(w, http.StatusUnauthorized, "Invalid email or password", nil)
			return
		}
		f.token = "t1"
		http.SetCookie(w, &http.Cookie{Name: "AuthToken", Value: f.token, Path: "/", HttpOnly: true, Secure: true, SameSite: http.SameSiteNoneMode})
		writeEnvelope(w, http.StatusOK, "Login successful", map[string]string{"access_token": f.token})

	case !f.authorized(r):
		writeEnvelope(w, http.StatusUnauthorized, "Missing or invalid session", nil)

	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/orders":
		if f.refreshTo != "" {
			f.token, f.refreshTo = f.refreshTo, ""
			http.SetCookie(w, &http.Cookie{Name: "AuthToken", Value: f.token, Path: "/", HttpOnly: true, Secure: true, SameSite: http.SameSiteNoneMode})
		}
		f.listOrders(w, r)

	case r.Method == http.MethodPut:
		f.statusCalls = append(f.statusCalls, r.URL.Path)
		switch f.statusCode {
		case 0, http.StatusOK:
			writeEnvelope(w, http.StatusOK, "Order status updated", nil)
		case http.StatusConflict:
			writeEnvelope(w, http.StatusConflict, "Status transition not allowed", nil)
		default:
			writeEnvelope(w, f.statusCode, "", nil)
		}

	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/auth/logout":
		if f.logoutCode != 0 {
			writeEnvelope(w, f.logoutCode, "Failed to logout", nil)
			return
		}
		f.token = "revoked"
		if !f.keepCookie {
			http.SetCookie(w, &http.Cookie{Name: "AuthToken", Value: "", Path: "/", Expires: time.Unix(0, 0)})
		}
		writeEnvelope(w, http.StatusOK, "Logout successful", nil)

	default:
		writeEnvelope(w, http.StatusNotFound, "Not Found", nil)
	}
}

func newTestClient(t *testing.T, api *fakeAPI, logger *zap.Logger) *Client {
	t.Helper()

	c, _ := newTestClientWithServer(t, api, logger)
	return c
}

func newTestClientWithServer(t *testing.T, api *fakeAPI, logger *zap.Logger) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewTLSServer(api)
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL + "/", HTTPClient: srv.Client(), Location: time.UTC, Logger: logger})
	require.NoError(t, err)
	return c, srv
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestClient_LoginAndList(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	api := &fakeAPI{}
	c := newTestClient(t, api, zap.New(core))
	ctx := context.Background()

	require.NoError(t, c.Login(ctx, "juan@cleanorder.mx", "Secreto123"))

	orders, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)

	assert.Equal(t, "1001", orders[0].Code)
	assert.Equal(t, StatusPending, orders[0].Status)
	assert.Equal(t, StatusProgress, orders[1].Status)
	assert.Equal(t, "Norte", orders[1].CompanyName)
	assert.Equal(t, StatusPending, orders[2].Status)
	assert.Equal(t, NoCode, orders[2].Code)

	// the unknown status is logged, not surfaced
	assert.Equal(t, 1, logs.FilterMessage("unknown order status, showing as pending").Len())
}

func TestClient_FollowsSlidingRefresh(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api, nil)
	ctx := context.Background()

	require.NoError(t, c.Login(ctx, "juan@cleanorder.mx", "Secreto123"))

	api.refreshTo = "t2"
	_, err := c.List(ctx)
	require.NoError(t, err)

	// the old token is no longer accepted; the jar must hold t2
	_, err = c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t2", c.currentToken())
}

func TestClient_ListUnauthorized(t *testing.T) {
	c := newTestClient(t, &fakeAPI{}, nil)

	_, err := c.List(context.Background())

	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Missing or invalid session", apiErr.Message)
}

func TestClient_LoginRejected(t *testing.T) {
	c := newTestClient(t, &fakeAPI{}, nil)

	err := c.Login(context.Background(), "juan@cleanorder.mx", "nope")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
}

func TestClient_ChangeStatus(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api, nil)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "juan@cleanorder.mx", "Secreto123"))

	sent, err := c.ChangeStatus(ctx, Order{ID: 1, Status: StatusPending}, StatusProgress)
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = c.ChangeStatus(ctx, Order{ID: 2, Status: StatusProgress}, StatusDone)
	require.NoError(t, err)
	assert.True(t, sent)

	assert.Equal(t, []string{"/api/v1/orders/1/status/2", "/api/v1/orders/2/status/3"}, api.statusCalls)
}

func TestClient_ChangeStatus_InvalidTransitionsNeverHitTheNetwork(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api, nil)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "juan@cleanorder.mx", "Secreto123"))

	invalid := []struct{ from, to Status }{
		{StatusPending, StatusDone},
		{StatusPending, StatusPending},
		{StatusProgress, StatusPending},
		{StatusDone, StatusPending},
		{StatusDone, StatusProgress},
		{StatusDone, StatusDone},
	}

	for _, tt := range invalid {
		sent, err := c.ChangeStatus(ctx, Order{ID: 9, Status: tt.from}, tt.to)
		assert.NoError(t, err)
		assert.False(t, sent, "%s -> %s", tt.from, tt.to)
	}
	assert.Empty(t, api.statusCalls)
}

func TestClient_ChangeStatus_ServerConflict(t *testing.T) {
	api := &fakeAPI{statusCode: http.StatusConflict}
	c := newTestClient(t, api, nil)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "juan@cleanorder.mx", "Secreto123"))

	sent, err := c.ChangeStatus(ctx, Order{ID: 1, Status: StatusPending}, StatusProgress)

	assert.False(t, sent)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "Status transition not allowed", apiErr.Message)
}

func TestClient_ErrorWithoutReasonFallsBackToStatusText(t *testing.T) {
	api := &fakeAPI{statusCode: http.StatusBadGateway}
	c := newTestClient(t, api, nil)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "juan@cleanorder.mx", "Secreto123"))

	_, err := c.ChangeStatus(ctx, Order{ID: 1, Status: StatusPending}, StatusProgress)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestClient_ListFollowsPages(t *testing.T) {
	var orders []map[string]interface{}
	for i := 1; i <= 2*listPageSize+3; i++ {
		orders = append(orders, map[string]interface{}{"id": i, "folio": 5000 + i, "estado": "AGENDADO"})
	}
	api := &fakeAPI{orders: orders}
	c := newTestClient(t, api, nil)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "juan@cleanorder.mx", "Secreto123"))

	got, err := c.List(ctx)
	require.NoError(t, err)

	require.Len(t, got, len(orders))
	assert.Equal(t, "5001", got[0].Code)
	assert.Equal(t, fmt.Sprint(5000+len(orders)), got[len(got)-1].Code)
	assert.Equal(t, []string{
		fmt.Sprintf("page=1&limit=%d", listPageSize),
		fmt.Sprintf("page=2&limit=%d", listPageSize),
		fmt.Sprintf("page=3&limit=%d", listPageSize),
	}, api.pageCalls)
}

func TestClient_ListEmpty(t *testing.T) {
	api := &fakeAPI{orders: []map[string]interface{}{}}
	c := newTestClient(t, api, nil)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "juan@cleanorder.mx", "Secreto123"))

	got, err := c.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Len(t, api.pageCalls, 1)
}

func TestClient_Logout(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api, nil)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "juan@cleanorder.mx", "Secreto123"))

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.currentToken())

	_, err := c.List(ctx)
	assert.True(t, IsUnauthorized(err))
}

func TestClient_Logout_DropsCookieTheServerLeft(t *testing.T) {
	api := &fakeAPI{keepCookie: true}
	c, srv := newTestClientWithServer(t, api, nil)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "juan@cleanorder.mx", "Secreto123"))

	require.NoError(t, c.Logout(ctx))

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	assert.Empty(t, c.http.Jar.Cookies(u))
	assert.Empty(t, c.currentToken())
}

func TestClient_Logout_FailureKeepsSession(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api, nil)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "juan@cleanorder.mx", "Secreto123"))

	api.logoutCode = http.StatusInternalServerError
	err := c.Logout(ctx)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Failed to logout", apiErr.Message)
	assert.Equal(t, "t1", c.currentToken())

	// still signed in, so a retry can revoke the session
	_, err = c.List(ctx)
	require.NoError(t, err)

	api.logoutCode = 0
	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.currentToken())
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.List(context.Background())
	require.Error(t, err)
	assert.False(t, IsUnauthorized(err))
}
