package records

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rpmontada/equinos/internal/config"
	"github.com/rpmontada/equinos/internal/domain/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.RecordsConfig{BaseURL: srv.URL + "/"}, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestAPIClient_ListSchedules(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/escalas", r.URL.Path)
		writeJSON(w, http.StatusOK, `[
			{"id":"1","equinoId":"7","data":"2024-03-10","cargaHoraria":"6","local":"Estádio","cavaleiro":"Sd. Lima"},
			{"id":2,"equinoId":8,"data":"2024-03-11","cargaHoraria":4.5}
		]`)
	})

	got, err := client.ListSchedules(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.Hours(6), got[0].WorkHours)
	assert.Equal(t, "Sd. Lima", got[0].Rider)
	assert.Equal(t, models.Hours(4.5), got[1].WorkHours)
	assert.Equal(t, models.ID("2"), got[1].ID)
	assert.Equal(t, models.ID("8"), got[1].HorseID)
}

func TestAPIClient_ListTreatments(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		writeJSON(w, http.StatusOK, `[{"id":"v1","equinoId":"7","data":"2024-01-01","proximaData":"2025-01-01","produto":"Influenza"}]`)
	})

	vaccines, err := client.ListTreatments(context.Background(), models.KindVaccination)
	require.NoError(t, err)
	require.Len(t, vaccines, 1)
	assert.Equal(t, "2025-01-01", vaccines[0].NextDueDate)

	_, err = client.ListTreatments(context.Background(), models.KindDeworming)
	require.NoError(t, err)

	_, err = client.ListTreatments(context.Background(), models.TreatmentKind("toalete"))
	assert.Error(t, err)

	assert.Equal(t, []string{"/vacinacoes", "/vermifugacoes"}, paths)
}

func TestAPIClient_CreateSchedule(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body models.ScheduleRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, models.ID("7"), body.HorseID)
		body.ID = "42"
		payload, _ := json.Marshal(body)
		writeJSON(w, http.StatusCreated, string(payload))
	})

	created, err := client.CreateSchedule(context.Background(), models.ScheduleRecord{
		HorseID: "7", Date: "2024-03-10", WorkHours: 4, WorkLocation: "Centro",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ID("42"), created.ID)
	assert.Equal(t, models.Hours(4), created.WorkHours)
}

func TestAPIClient_DeleteSchedule(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == "/escalas/5" {
			writeJSON(w, http.StatusOK, `{}`)
			return
		}
		writeJSON(w, http.StatusNotFound, `{}`)
	})

	require.NoError(t, client.DeleteSchedule(context.Background(), "5"))
	assert.ErrorIs(t, client.DeleteSchedule(context.Background(), "6"), ErrNotFound)
	assert.ErrorIs(t, client.DeleteSchedule(context.Background(), " "), ErrNotFound)
}

func TestAPIClient_OpensCircuit(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, http.StatusInternalServerError, `{"error":"boom"}`)
	})

	for i := 0; i < 5; i++ {
		_, err := client.ListHorses(context.Background())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}

	_, err := client.ListHorses(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 5, calls)
}
