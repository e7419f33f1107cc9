package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
	"github.com/mamadbah2/fleetbook/internal/repository"
	"github.com/mamadbah2/fleetbook/internal/repository/memory"
	"github.com/mamadbah2/fleetbook/internal/server/handlers"
	"github.com/mamadbah2/fleetbook/internal/service/alerts"
	"github.com/mamadbah2/fleetbook/internal/service/analytics"
	"github.com/mamadbah2/fleetbook/internal/service/export"
	"github.com/mamadbah2/fleetbook/internal/service/records"
	"github.com/mamadbah2/fleetbook/internal/service/revenue"
)

func newTestEngine() *gin.Engine {
	store := memory.NewStore()
	return newTestEngineWith(store, revenue.NewReconciler(store, nil), time.Now)
}

func newTestEngineWith(store repository.Store, reconciler records.Reconciler, now func() time.Time) *gin.Engine {
	recordSvc := records.NewService(store, nil)
	fleet := records.NewFleet(recordSvc, reconciler)
	dashboard := handlers.NewDashboardHandler(analytics.NewService(store, 30, nil), alerts.NewService(store, nil, nil), 365, nil).
		WithClock(now)

	return New(Handlers{
		Dashboard:      dashboard,
		Trips:          handlers.NewTripHandler(fleet, nil),
		Trucks:         handlers.NewTruckHandler(fleet, nil),
		Employees:      handlers.NewRecordHandler(recordSvc, records.Employees, "employee", "employees", nil),
		Expenses:       handlers.NewRecordHandler(recordSvc, records.Expenses, "expense", "expenses", nil),
		ClientPayments: handlers.NewRecordHandler(recordSvc, records.ClientPayments, "client_payment", "client_payments", nil),
	}, nil)
}

// tripWritesFail rejects updates to trips while every other write succeeds.
type tripWritesFail struct {
	repository.Store
}

func (s tripWritesFail) UpdateOne(ctx context.Context, name, id string, set repository.Document) error {
	if name == models.CollectionTrips {
		return errors.New("store unavailable")
	}
	return s.Store.UpdateOne(ctx, name, id, set)
}

func do(t *testing.T, engine *gin.Engine, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func object(t *testing.T, resp map[string]any, key string) map[string]any {
	t.Helper()
	v, ok := resp[key].(map[string]any)
	require.True(t, ok, "missing %q in %v", key, resp)
	return v
}

func subTrip(client string, cost any) map[string]any {
	return map[string]any{
		"date": "2026-02-01", "end_date": "2026-02-02",
		"origin": "Pune", "destination": "Mumbai",
		"client_name": client, "cargo_weight": 10, "cost": cost,
	}
}

func TestHealthzAndRequestID(t *testing.T) {
	engine := newTestEngine()

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestSubTripRevenueFlow(t *testing.T) {
	engine := newTestEngine()

	code, resp := do(t, engine, http.MethodPost, "/trips", map[string]any{
		"trip_number": "T-1", "truck_id": "x", "driver_id": "y", "start_date": "2026-02-01",
	})
	require.Equal(t, http.StatusCreated, code, resp)
	tripID := object(t, resp, "trip")["id"].(string)
	base := "/trips/" + tripID + "/subtrips"

	code, resp = do(t, engine, http.MethodPost, base, subTrip("Acme", 100))
	require.Equal(t, http.StatusCreated, code, resp)
	firstID := object(t, resp, "subtrip")["id"].(string)

	code, _ = do(t, engine, http.MethodPost, base, subTrip("Beta", "250"))
	require.Equal(t, http.StatusCreated, code)

	revenue := func() float64 {
		code, resp := do(t, engine, http.MethodGet, "/trips/"+tripID, nil)
		require.Equal(t, http.StatusOK, code)
		return object(t, resp, "trip")["revenue"].(float64)
	}
	assert.Equal(t, 350.0, revenue())

	code, _ = do(t, engine, http.MethodPut, base+"/"+firstID, map[string]any{"cost": 150})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 400.0, revenue())

	code, _ = do(t, engine, http.MethodDelete, base+"/"+firstID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 250.0, revenue())

	code, resp = do(t, engine, http.MethodGet, "/client-names", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"Beta"}, resp["client_names"])
}

func TestSubTripErrors(t *testing.T) {
	engine := newTestEngine()
	_, resp := do(t, engine, http.MethodPost, "/trips", map[string]any{
		"trip_number": "T-1", "truck_id": "x", "driver_id": "y", "start_date": "2026-02-01",
	})
	base := "/trips/" + object(t, resp, "trip")["id"].(string) + "/subtrips"

	body := subTrip("Acme", 10)
	delete(body, "cost")
	code, resp := do(t, engine, http.MethodPost, base, body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing required field: cost", resp["error"])

	body = subTrip("Acme", 10)
	body["date"] = "yesterday"
	code, resp = do(t, engine, http.MethodPost, base, body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid value for field: date", resp["error"])

	code, resp = do(t, engine, http.MethodPost, base, subTrip("Acme", -1))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Cost must be ≥ 0", resp["error"])

	code, resp = do(t, engine, http.MethodPost, "/trips/000000000000000000000000/subtrips", subTrip("Acme", 1))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Trip not found", resp["error"])

	code, _ = do(t, engine, http.MethodPut, base+"/nope", map[string]any{"cost": 1})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRecordErrors(t *testing.T) {
	engine := newTestEngine()

	code, resp := do(t, engine, http.MethodGet, "/trucks/unknown", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Truck not found", resp["error"])

	code, resp = do(t, engine, http.MethodPost, "/employees", map[string]any{"employee_number": "E1"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing required field: first_name", resp["error"])

	payment := map[string]any{"client_name": "Acme", "cost": 10, "advance_payment": 0, "balance": 10, "status": "open"}
	code, _ = do(t, engine, http.MethodPost, "/client-payments", payment)
	require.Equal(t, http.StatusCreated, code)
	code, resp = do(t, engine, http.MethodPost, "/client-payments", payment)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Payment for this client already exists", resp["error"])
}

func TestExpiryAlertLifecycle(t *testing.T) {
	engine := newTestEngine()
	today := time.Now().UTC()

	code, resp := do(t, engine, http.MethodPost, "/employees", map[string]any{
		"employee_number": "E-1", "first_name": "Ada", "last_name": "Obi",
		"position": "driver", "email": "ada@example.com", "phone": "123",
		"license_expiry": today.AddDate(0, 0, 10).Format("2006-01-02"),
	})
	require.Equal(t, http.StatusCreated, code, resp)
	empID := object(t, resp, "employee")["id"].(string)

	code, resp = do(t, engine, http.MethodGet, "/dashboard/alerts", nil)
	require.Equal(t, http.StatusOK, code)
	list := resp["alerts"].([]any)
	require.Len(t, list, 1)
	alert := list[0].(map[string]any)
	assert.Equal(t, "license_expiry", alert["type"])
	assert.Equal(t, empID, alert["employee_id"])
	assert.Equal(t, "active", alert["status"])

	// a second evaluation does not duplicate the alert
	_, resp = do(t, engine, http.MethodGet, "/dashboard/alerts", nil)
	assert.Len(t, resp["alerts"], 1)

	code, _ = do(t, engine, http.MethodPut, "/employees/"+empID, map[string]any{
		"license_expiry": today.AddDate(0, 0, 45).Format("2006-01-02"),
	})
	require.Equal(t, http.StatusOK, code)

	_, resp = do(t, engine, http.MethodGet, "/dashboard/alerts", nil)
	assert.Empty(t, resp["alerts"])
}

func TestAnalyticsEndpoints(t *testing.T) {
	engine := newTestEngine()

	for _, days := range []string{"abc", "0", "-3", "366"} {
		code, resp := do(t, engine, http.MethodGet, "/dashboard/analytics?days="+days, nil)
		assert.Equal(t, http.StatusBadRequest, code, days)
		assert.NotEmpty(t, resp["error"])
	}

	code, resp := do(t, engine, http.MethodGet, "/dashboard/analytics?days=7", nil)
	require.Equal(t, http.StatusOK, code)
	payload := object(t, resp, "analytics")
	assert.Len(t, payload["profit_trends"], 8)
	assert.Contains(t, payload, "high_performing_trucks")

	code, resp = do(t, engine, http.MethodGet, "/dashboard/filters", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, object(t, resp, "filters"), "regions")

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/analytics/export?days=7", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())
}

func TestSubTripReconcileFailure(t *testing.T) {
	store := memory.NewStore()
	healthy := newTestEngineWith(store, revenue.NewReconciler(store, nil), time.Now)

	_, resp := do(t, healthy, http.MethodPost, "/trips", map[string]any{
		"trip_number": "T-1", "truck_id": "x", "driver_id": "y", "start_date": "2026-02-01",
	})
	tripID := object(t, resp, "trip")["id"].(string)
	base := "/trips/" + tripID + "/subtrips"
	code, resp := do(t, healthy, http.MethodPost, base, subTrip("Acme", 100))
	require.Equal(t, http.StatusCreated, code, resp)
	firstID := object(t, resp, "subtrip")["id"].(string)

	failing := tripWritesFail{Store: store}
	engine := newTestEngineWith(failing, revenue.NewReconciler(failing, nil), time.Now)

	code, resp = do(t, engine, http.MethodPost, base, subTrip("Beta", 50))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, resp["error"], "store unavailable")

	code, resp = do(t, engine, http.MethodPut, base+"/"+firstID, map[string]any{"cost": 300})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, resp["error"], "store unavailable")

	code, resp = do(t, engine, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp["subtrips"], 2)

	code, resp = do(t, engine, http.MethodDelete, base+"/"+firstID, nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, resp["error"], "store unavailable")

	code, resp = do(t, engine, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp["subtrips"], 1)

	// revenue stays at the last successful reconcile
	code, resp = do(t, engine, http.MethodGet, "/trips/"+tripID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 100.0, object(t, resp, "trip")["revenue"])
}

func TestSubTripUpdateRejectsBlankRequiredField(t *testing.T) {
	engine := newTestEngine()
	_, resp := do(t, engine, http.MethodPost, "/trips", map[string]any{
		"trip_number": "T-1", "truck_id": "x", "driver_id": "y", "start_date": "2026-02-01",
	})
	base := "/trips/" + object(t, resp, "trip")["id"].(string) + "/subtrips"
	_, resp = do(t, engine, http.MethodPost, base, subTrip("Acme", 10))
	subID := object(t, resp, "subtrip")["id"].(string)

	code, resp := do(t, engine, http.MethodPut, base+"/"+subID, map[string]any{"client_name": "  "})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing required field: client_name", resp["error"])
}

func TestExportFilenameUsesClock(t *testing.T) {
	fixed := func() time.Time { return time.Date(2026, 7, 1, 23, 30, 0, 0, time.UTC) }
	store := memory.NewStore()
	engine := newTestEngineWith(store, revenue.NewReconciler(store, nil), fixed)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/analytics/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="fleet-analytics-20260701.xlsx"`, rec.Header().Get("Content-Disposition"))
}
