package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intervention-insights-api/internal/dto"
	"github.com/noah-isme/intervention-insights-api/internal/middleware"
	"github.com/noah-isme/intervention-insights-api/internal/models"
	"github.com/noah-isme/intervention-insights-api/internal/service"
	appErrors "github.com/noah-isme/intervention-insights-api/pkg/errors"
)

type reportServiceMock struct {
	createResp  *dto.ReportJobResponse
	createErr   error
	createReq   dto.ReportRequest
	statusResp  *dto.ReportStatusResponse
	statusErr   error
	statusRole  models.UserRole
	download    *service.ReportDownload
	downloadErr error
}

func (m *reportServiceMock) CreateJob(ctx context.Context, req dto.ReportRequest, actorID string) (*dto.ReportJobResponse, error) {
	m.createReq = req
	return m.createResp, m.createErr
}

func (m *reportServiceMock) GetStatus(ctx context.Context, id string, actorID string, role models.UserRole) (*dto.ReportStatusResponse, error) {
	m.statusRole = role
	return m.statusResp, m.statusErr
}

func (m *reportServiceMock) ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error) {
	return m.download, m.downloadErr
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestReportHandlerGenerateReport(t *testing.T) {
	mockSvc := &reportServiceMock{
		createResp: &dto.ReportJobResponse{ID: "job-1", Status: models.ReportStatusQueued, Progress: 0},
	}
	handler := NewReportHandler(mockSvc, nil)

	payload, _ := json.Marshal(dto.ReportRequest{Type: models.ReportTypeComparison, Format: models.ReportFormatCSV, Demo: true})
	c, w := newGinContext(http.MethodPost, "/analytics/reports", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})

	handler.GenerateReport(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, models.ReportTypeComparison, mockSvc.createReq.Type)
	assert.True(t, mockSvc.createReq.Demo)
}

func TestReportHandlerGenerateReportDisabled(t *testing.T) {
	mockSvc := &reportServiceMock{createErr: appErrors.Clone(appErrors.ErrForbidden, "intervention analytics are disabled")}
	handler := NewReportHandler(mockSvc, nil)

	payload, _ := json.Marshal(dto.ReportRequest{Type: models.ReportTypeEffectiveness, Format: models.ReportFormatPDF})
	c, w := newGinContext(http.MethodPost, "/analytics/reports", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})

	handler.GenerateReport(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReportHandlerGenerateReportInvalidBody(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{}, nil)
	c, w := newGinContext(http.MethodPost, "/analytics/reports", []byte(`{`))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})

	handler.GenerateReport(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandlerReportStatus(t *testing.T) {
	mockSvc := &reportServiceMock{
		statusResp: &dto.ReportStatusResponse{ID: "job-1", Type: models.ReportTypeComparison, Status: models.ReportStatusFinished, Progress: 100},
	}
	handler := NewReportHandler(mockSvc, nil)

	c, w := newGinContext(http.MethodGet, "/analytics/reports/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher", Role: models.RoleStaff})

	handler.ReportStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleStaff, mockSvc.statusRole)
	assert.Contains(t, w.Body.String(), `"type":"comparison"`)
}

func TestReportHandlerDownloadReport(t *testing.T) {
	file, err := os.CreateTemp(t.TempDir(), "report*.csv")
	require.NoError(t, err)
	_, _ = file.WriteString("Intervention,ADHD\n")
	_, _ = file.Seek(0, 0)

	mockSvc := &reportServiceMock{
		download: &service.ReportDownload{
			File:      file,
			Filename:  "comparison.csv",
			Format:    models.ReportFormatCSV,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	handler := NewReportHandler(mockSvc, nil)

	c, w := newGinContext(http.MethodGet, "/export/token", nil)
	c.Params = gin.Params{{Key: "token", Value: "token"}}

	handler.DownloadReport(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "comparison.csv")
	assert.Equal(t, "Intervention,ADHD\n", w.Body.String())
}

func TestReportHandlerDownloadRejected(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{downloadErr: appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")}, nil)
	c, w := newGinContext(http.MethodGet, "/export/bad", nil)
	c.Params = gin.Params{{Key: "token", Value: "bad"}}

	handler.DownloadReport(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
