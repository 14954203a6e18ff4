package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rpmontada/equinos/internal/domain/models"
	"github.com/rpmontada/equinos/internal/repository/mongodb"
	"github.com/rpmontada/equinos/internal/service/history"
	service "github.com/rpmontada/equinos/internal/service/whatsapp"
	"github.com/rpmontada/equinos/pkg/clients/records"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockWorkload struct {
	mock.Mock
}

func (m *MockWorkload) Monthly(ctx context.Context, yearMonth string) (models.MonthlyWorkload, error) {
	args := m.Called(ctx, yearMonth)
	return args.Get(0).(models.MonthlyWorkload), args.Error(1)
}

func (m *MockWorkload) Annual(ctx context.Context, year int) (models.AnnualWorkload, error) {
	args := m.Called(ctx, year)
	return args.Get(0).(models.AnnualWorkload), args.Error(1)
}

type MockSnapshots struct {
	mock.Mock
}

func (m *MockSnapshots) LatestSnapshot(ctx context.Context, month string) (models.WorkloadSnapshot, error) {
	args := m.Called(ctx, month)
	return args.Get(0).(models.WorkloadSnapshot), args.Error(1)
}

type stubReminders struct {
	rows []models.ReminderRow
	kind models.TreatmentKind
}

func (s *stubReminders) Rows(ctx context.Context, kind models.TreatmentKind) ([]models.ReminderRow, error) {
	s.kind = kind
	return s.rows, nil
}

type stubVisits struct {
	filter history.Filter
}

func (s *stubVisits) Visits(ctx context.Context, filter history.Filter) ([]models.VisitRecord, error) {
	s.filter = filter
	return nil, nil
}

type stubExporter struct {
	rows int
	err  error
}

func (s stubExporter) ExportAnnual(ctx context.Context, annual models.AnnualWorkload) (int, error) {
	return s.rows, s.err
}

type MockMessaging struct {
	mock.Mock
}

func (m *MockMessaging) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	args := m.Called(mode, verifyToken, challenge)
	return args.String(0), args.Error(1)
}

func (m *MockMessaging) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	return m.Called(ctx, payload).Error(0)
}

func (m *MockMessaging) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockMessaging) NotifyGroup(ctx context.Context, message string) error {
	return m.Called(ctx, message).Error(0)
}

func serve(method, path string, body []byte, register func(r *gin.Engine)) *httptest.ResponseRecorder {
	r := gin.New()
	register(r)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWorkloadHandler_Monthly(t *testing.T) {
	svc := new(MockWorkload)
	svc.On("Monthly", mock.Anything, "2024-03").Return(models.MonthlyWorkload{Month: "2024-03", Total: 75, Color: "#fff176"}, nil)
	h := NewWorkloadHandler(svc, nil, nil)
	register := func(r *gin.Engine) { r.GET("/m", h.Monthly) }

	w := serve(http.MethodGet, "/m?mes=2024-03", nil, register)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.MonthlyWorkload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 75.0, got.Total)

	assert.Equal(t, http.StatusBadRequest, serve(http.MethodGet, "/m?mes=2024-3", nil, register).Code)
	assert.Equal(t, http.StatusBadRequest, serve(http.MethodGet, "/m", nil, register).Code)
}

func TestWorkloadHandler_BackendErrors(t *testing.T) {
	svc := new(MockWorkload)
	svc.On("Annual", mock.Anything, 2023).Return(models.AnnualWorkload{}, errors.New("boom"))
	svc.On("Annual", mock.Anything, 2024).Return(models.AnnualWorkload{}, records.ErrUnavailable)
	h := NewWorkloadHandler(svc, nil, nil)
	register := func(r *gin.Engine) { r.GET("/a", h.Annual) }

	assert.Equal(t, http.StatusBadGateway, serve(http.MethodGet, "/a?ano=2023", nil, register).Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(http.MethodGet, "/a?ano=2024", nil, register).Code)
	assert.Equal(t, http.StatusBadRequest, serve(http.MethodGet, "/a?ano=24", nil, register).Code)
}

func TestWorkloadHandler_Archived(t *testing.T) {
	snapshots := new(MockSnapshots)
	snapshots.On("LatestSnapshot", mock.Anything, "2024-02").Return(models.WorkloadSnapshot{ID: "s1", Records: 4}, nil)
	snapshots.On("LatestSnapshot", mock.Anything, "2023-01").Return(models.WorkloadSnapshot{}, mongodb.ErrSnapshotNotFound)
	h := NewWorkloadHandler(new(MockWorkload), snapshots, nil)
	register := func(r *gin.Engine) { r.GET("/arq/:mes", h.Archived) }

	w := serve(http.MethodGet, "/arq/2024-02", nil, register)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"s1"`)
	assert.Equal(t, http.StatusNotFound, serve(http.MethodGet, "/arq/2023-01", nil, register).Code)
	assert.Equal(t, http.StatusBadRequest, serve(http.MethodGet, "/arq/jan", nil, register).Code)

	disabled := NewWorkloadHandler(new(MockWorkload), nil, nil)
	w = serve(http.MethodGet, "/arq/2024-02", nil, func(r *gin.Engine) { r.GET("/arq/:mes", disabled.Archived) })
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReminderHandler_List(t *testing.T) {
	svc := &stubReminders{}
	h := NewReminderHandler(svc, nil)
	register := func(r *gin.Engine) { r.GET("/l", h.List) }

	w := serve(http.MethodGet, "/l?tipo=vermifugacao", nil, register)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.KindDeworming, svc.kind)
	assert.JSONEq(t, `[]`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, serve(http.MethodGet, "/l?tipo=banho", nil, register).Code)
}

func TestVisitHandler_List(t *testing.T) {
	svc := &stubVisits{}
	h := NewVisitHandler(svc, nil)
	register := func(r *gin.Engine) { r.GET("/v", h.List) }

	w := serve(http.MethodGet, "/v?de=2024-01-01&ate=2024-01-31&equino=7", nil, register)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", svc.filter.HorseID)
	assert.Equal(t, "2024-01-31", svc.filter.To.Format(models.DayLayout))

	assert.Equal(t, http.StatusBadRequest, serve(http.MethodGet, "/v?de=ontem", nil, register).Code)
	assert.Equal(t, http.StatusBadRequest, serve(http.MethodGet, "/v?de=2024-02-01&ate=2024-01-01", nil, register).Code)
}

func TestExportHandler_Annual(t *testing.T) {
	svc := new(MockWorkload)
	svc.On("Annual", mock.Anything, 2024).Return(models.AnnualWorkload{Year: 2024}, nil)

	h := NewExportHandler(svc, stubExporter{rows: 12}, nil)
	w := serve(http.MethodPost, "/e?ano=2024", nil, func(r *gin.Engine) { r.POST("/e", h.Annual) })
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"year":2024,"rows":12}`, w.Body.String())

	failing := NewExportHandler(svc, stubExporter{err: errors.New("quota")}, nil)
	w = serve(http.MethodPost, "/e?ano=2024", nil, func(r *gin.Engine) { r.POST("/e", failing.Annual) })
	assert.Equal(t, http.StatusBadGateway, w.Code)

	disabled := NewExportHandler(svc, nil, nil)
	w = serve(http.MethodPost, "/e?ano=2024", nil, func(r *gin.Engine) { r.POST("/e", disabled.Annual) })
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestWebhookHandler(t *testing.T) {
	svc := new(MockMessaging)
	svc.On("VerifyWebhookToken", "subscribe", "segredo", "99").Return("99", nil)
	svc.On("VerifyWebhookToken", "subscribe", "errado", "99").Return("", errors.New("invalid verify token"))
	svc.On("HandleWebhook", mock.Anything, mock.Anything).Return(errors.New("send failed"))
	svc.On("SendOutbound", mock.Anything, models.OutboundMessageRequest{Message: "oi"}).Return(service.ErrNoRecipient)
	svc.On("SendOutbound", mock.Anything, models.OutboundMessageRequest{To: "5561", Message: "oi"}).Return(nil)

	h := NewWebhookHandler(svc, nil)
	register := func(r *gin.Engine) {
		r.GET("/webhook", h.Verify)
		r.POST("/webhook", h.Receive)
		r.POST("/send", h.SendMessage)
	}

	w := serve(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=segredo&hub.challenge=99", nil, register)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "99", w.Body.String())

	w = serve(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=errado&hub.challenge=99", nil, register)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(http.MethodPost, "/webhook", []byte(`{"object":"whatsapp_business_account","entry":[]}`), register)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(http.MethodPost, "/webhook", []byte(`{`), register)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(http.MethodPost, "/send", []byte(`{"message":"oi"}`), register)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(http.MethodPost, "/send", []byte(`{"to":"5561","message":"oi"}`), register)
	assert.Equal(t, http.StatusAccepted, w.Code)

	disabled := NewWebhookHandler(nil, nil)
	w = serve(http.MethodPost, "/send", []byte(`{"message":"oi"}`), func(r *gin.Engine) { r.POST("/send", disabled.SendMessage) })
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
