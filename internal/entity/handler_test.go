package entity

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantix-mfg/qc-admin-api/internal/middleware"
	"github.com/quantix-mfg/qc-admin-api/internal/models"
)

func newHandlerContext(t *testing.T, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func managerSession() *models.SessionUser {
	return &models.SessionUser{ID: 9, Username: "qa.manager", Role: models.RoleManager, IsActive: true}
}

func TestHandlerGetRejectsBadID(t *testing.T) {
	h := NewHandler(newTestService(&storeMock{}))
	c, w := newHandlerContext(t, http.MethodGet, "/sampling-reasons/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	h.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerGetRejectsNegativeID(t *testing.T) {
	h := NewHandler(newTestService(&storeMock{}))
	c, w := newHandlerContext(t, http.MethodGet, "/sampling-reasons/-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "-1"}}

	h.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerCreateWithoutSessionUser(t *testing.T) {
	h := NewHandler(newTestService(&storeMock{}))
	c, w := newHandlerContext(t, http.MethodPost, "/sampling-reasons", CreateInput{Name: "Incoming"})

	h.Create(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlerCreateSucceeds(t *testing.T) {
	h := NewHandler(newTestService(&storeMock{}))
	c, w := newHandlerContext(t, http.MethodPost, "/sampling-reasons", CreateInput{Name: "Incoming"})
	c.Set(middleware.ContextUserKey, managerSession())

	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Success bool          `json:"success"`
		Data    models.Record `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "Incoming", envelope.Data.Name)
}

func TestHandlerCreateInvalidBody(t *testing.T) {
	h := NewHandler(newTestService(&storeMock{}))
	c, w := newHandlerContext(t, http.MethodPost, "/sampling-reasons", nil)
	c.Request.Body = http.NoBody
	c.Set(middleware.ContextUserKey, managerSession())

	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerToggleStatus(t *testing.T) {
	h := NewHandler(newTestService(&storeMock{toggleResp: true}))
	c, w := newHandlerContext(t, http.MethodPatch, "/sampling-reasons/7/status", nil)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Set(middleware.ContextUserKey, managerSession())

	h.ToggleStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_active":true`)
}

func TestHandlerFilterByStatusRejectsUnknown(t *testing.T) {
	h := NewHandler(newTestService(&storeMock{}))
	c, w := newHandlerContext(t, http.MethodGet, "/sampling-reasons/filter/status?status=archived", nil)

	h.FilterByStatus(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerExportUnknownFormat(t *testing.T) {
	h := NewHandler(newTestService(&storeMock{}))
	c, w := newHandlerContext(t, http.MethodGet, "/sampling-reasons/export?format=xlsx", nil)

	h.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerExportCSV(t *testing.T) {
	h := NewHandler(newTestService(&storeMock{}))
	c, w := newHandlerContext(t, http.MethodGet, "/sampling-reasons/export?format=csv", nil)

	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "sampling_reason.csv")
	assert.Contains(t, w.Body.String(), "record")
}

func TestParseOptionsFallsBackOnGarbage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/sampling-reasons?page=abc&limit=-5&isActive=maybe&search=%20pump%20", nil)
	c.Request = req

	opts := ParseOptions(c)
	assert.Equal(t, 0, opts.Page)
	assert.Equal(t, 0, opts.Limit)
	assert.Nil(t, opts.IsActive)
	assert.Equal(t, "pump", opts.Search)
}
