package tracking_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/reservekit/pkg/notifier"
	"github.com/dmitrymomot/reservekit/pkg/reservation"
	"github.com/dmitrymomot/reservekit/pkg/tracking"
)

func setupHandler(t *testing.T) (*chi.Mux, notifier.Storage) {
	t.Helper()
	storage := notifier.NewMemoryStorage()
	store := reservation.NewMemoryStore()
	svc := tracking.NewService(storage, store)
	r := chi.NewRouter()
	tracking.NewHandler(svc).Routes(r)
	return r, storage
}

func TestHandler_Pixel(t *testing.T) {
	t.Parallel()

	r, storage := setupHandler(t)
	ctx := context.Background()
	require.NoError(t, storage.Create(ctx, notifier.Notification{
		ID: "n-1", Title: "t", Body: "b",
		Category: notifier.CategoryInfo, Priority: notifier.PriorityInfo,
		TrackingToken: "tok-1",
	}))

	req := httptest.NewRequest(http.MethodGet, "/track/tok-1/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	req.Header.Set("User-Agent", "Mozilla/5.0")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/gif", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
	// GIF89a magic bytes.
	assert.Equal(t, []byte("GIF89a"), rec.Body.Bytes()[:6])

	got, err := storage.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, got.EmailOpened)
	assert.Equal(t, "203.0.113.7", got.ClientIP)
	assert.Equal(t, "Mozilla/5.0", got.ClientUserAgent)
}

func TestHandler_View(t *testing.T) {
	t.Parallel()

	r, storage := setupHandler(t)
	require.NoError(t, storage.Create(context.Background(), notifier.Notification{
		ID: "n-1", Title: "New Reservation!", Body: "b",
		Category: notifier.CategoryNewReservation, Priority: notifier.PriorityNormal,
		TrackingToken: "tok-1",
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/track/tok-1/view/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Title        string                 `json:"title"`
		Notification *notifier.Notification `json:"notification"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "New Reservation!", payload.Title)
	require.NotNil(t, payload.Notification)
	assert.True(t, payload.Notification.EmailOpened)
}

func TestHandler_Confirm(t *testing.T) {
	t.Parallel()

	r, storage := setupHandler(t)
	require.NoError(t, storage.Create(context.Background(), notifier.Notification{
		ID: "n-1", Title: "t", Body: "b",
		Category: notifier.CategoryConfirmed, Priority: notifier.PriorityNormal,
		TrackingToken: "tok-1",
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/track/tok-1/confirm/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Confirmed bool `json:"confirmed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.True(t, payload.Confirmed)
}

func TestHandler_UnknownToken(t *testing.T) {
	t.Parallel()

	r, _ := setupHandler(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/track/missing/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_UnknownActionServesPixel(t *testing.T) {
	t.Parallel()

	r, storage := setupHandler(t)
	require.NoError(t, storage.Create(context.Background(), notifier.Notification{
		ID: "n-1", Title: "t", Body: "b",
		Category: notifier.CategoryInfo, Priority: notifier.PriorityInfo,
		TrackingToken: "tok-1",
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/track/tok-1/unsubscribe/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/gif", rec.Header().Get("Content-Type"))
}
