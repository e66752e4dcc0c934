package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/hexfit/gymops-api/internal/dto"
	appErrors "github.com/hexfit/gymops-api/pkg/errors"
)

type reassignerMock struct {
	breakdown   *dto.AvailabilityBreakdown
	response    *dto.ReassignSlotResponse
	err         error
	capturedID  string
	capturedReq dto.ReassignSlotRequest
}

func (m *reassignerMock) CheckAvailability(_ context.Context, slotID string) (*dto.AvailabilityBreakdown, error) {
	m.capturedID = slotID
	return m.breakdown, m.err
}

func (m *reassignerMock) Reassign(_ context.Context, slotID string, req dto.ReassignSlotRequest) (*dto.ReassignSlotResponse, error) {
	m.capturedID = slotID
	m.capturedReq = req
	return m.response, m.err
}

func newAvailabilityRouter(mock *reassignerMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := &AvailabilityHandler{service: mock}
	router := gin.New()
	router.GET("/slots/:id/availability", handler.Availability)
	router.PATCH("/slots/:id/assignee", handler.Reassign)
	return router
}

func TestAvailabilityEndpoint(t *testing.T) {
	mock := &reassignerMock{breakdown: &dto.AvailabilityBreakdown{
		Available:   []dto.Verdict{{CoachID: "coach-1", Available: true}},
		Unavailable: []dto.Verdict{},
	}}
	router := newAvailabilityRouter(mock)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/slots/slot-1/availability", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "slot-1", mock.capturedID)

	var envelope struct {
		Data dto.AvailabilityBreakdown `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Available, 1)
}

func TestAvailabilityEndpointNotFound(t *testing.T) {
	mock := &reassignerMock{err: appErrors.ErrNotFound}
	router := newAvailabilityRouter(mock)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/slots/slot-x/availability", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestReassignEndpointAppliesChange(t *testing.T) {
	mock := &reassignerMock{response: &dto.ReassignSlotResponse{Applied: true}}
	router := newAvailabilityRouter(mock)

	payload, _ := json.Marshal(dto.ReassignSlotRequest{CoachID: strPtr("coach-2"), Version: 3})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/slots/slot-1/assignee", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "slot-1", mock.capturedID)
	require.Equal(t, "coach-2", *mock.capturedReq.CoachID)
	require.Equal(t, 3, mock.capturedReq.Version)
}

func TestReassignEndpointInvalidJSON(t *testing.T) {
	mock := &reassignerMock{}
	router := newAvailabilityRouter(mock)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/slots/slot-1/assignee", bytes.NewReader([]byte(`{"coachId":`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReassignEndpointVersionMismatch(t *testing.T) {
	mock := &reassignerMock{err: appErrors.ErrVersionMismatch}
	router := newAvailabilityRouter(mock)

	payload, _ := json.Marshal(dto.ReassignSlotRequest{Version: 1})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/slots/slot-1/assignee", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
}

func strPtr(s string) *string { return &s }
