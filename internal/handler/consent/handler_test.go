package consent_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swasthlink/health-api/internal/config"
	consenthandler "github.com/swasthlink/health-api/internal/handler/consent"
	"github.com/swasthlink/health-api/internal/model"
	"github.com/swasthlink/health-api/internal/repository/repotest"
	"github.com/swasthlink/health-api/internal/service/access"
	"github.com/swasthlink/health-api/internal/service/consent"
	"github.com/swasthlink/health-api/internal/service/event"
)

type handlerFixture struct {
	engine    *gin.Engine
	patientID uuid.UUID
	doctorID  uuid.UUID
	consents  *repotest.ConsentRepo
}

func newHandlerFixture(t *testing.T, enableCleanup bool) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	patients := repotest.NewPatientRepo()
	doctors := repotest.NewDoctorRepo()
	consents := repotest.NewConsentRepo()
	rels := repotest.NewRelationshipRepo()

	patientID := uuid.New()
	patients.Patients[patientID] = &model.Patient{Base: model.Base{ID: patientID}, FirstName: "Asha"}
	doctorID := uuid.New()
	doctors.Doctors[doctorID] = &model.Doctor{Base: model.Base{ID: doctorID}, FirstName: "Priya", LastName: "Sharma"}

	svc := consent.NewService(
		consents, patients, doctors,
		repotest.NewHospitalRepo(), repotest.NewEncounterRepo(), rels,
		access.NewGateSync(rels, false),
		event.NewService(repotest.NewOutboxRepo()),
		repotest.TxRunner{},
		config.ConsentConfig{DefaultValidityDays: 90},
		nil,
	)

	engine := gin.New()
	consenthandler.NewHandler(svc, enableCleanup).RegisterRoutes(engine.Group("/api/v1"))

	return &handlerFixture{
		engine:    engine,
		patientID: patientID,
		doctorID:  doctorID,
		consents:  consents,
	}
}

func (f *handlerFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func (f *handlerFixture) createConsent(t *testing.T) uuid.UUID {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/consents/request", map[string]interface{}{
		"patient_id": f.patientID,
		"doctor_id":  f.doctorID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data model.Consent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data.ID
}

func TestRequestConsentEndpoint(t *testing.T) {
	f := newHandlerFixture(t, false)

	rec := f.do(t, http.MethodPost, "/api/v1/consents/request", map[string]interface{}{
		"patient_id": f.patientID,
		"doctor_id":  f.doctorID,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Status string        `json:"status"`
		Data   model.Consent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, model.ConsentStatusPending, resp.Data.Status)
	assert.Equal(t, "Dr. Priya Sharma", resp.Data.FacilityName)
}

func TestRequestConsentRepeatedScanReturns201(t *testing.T) {
	f := newHandlerFixture(t, false)

	first := f.createConsent(t)
	second := f.createConsent(t)
	assert.Equal(t, first, second)
}

func TestRequestConsentValidation(t *testing.T) {
	f := newHandlerFixture(t, false)

	rec := f.do(t, http.MethodPost, "/api/v1/consents/request", map[string]interface{}{
		"doctor_id": f.doctorID,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateConsentStatusEndpoint(t *testing.T) {
	f := newHandlerFixture(t, false)
	consentID := f.createConsent(t)

	rec := f.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/consents/%s", consentID), map[string]interface{}{
		"status": "APPROVED",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// DENIED after APPROVED is an illegal transition.
	rec = f.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/consents/%s", consentID), map[string]interface{}{
		"status": "DENIED",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateConsentUnknownID(t *testing.T) {
	f := newHandlerFixture(t, false)

	rec := f.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/consents/%s", uuid.New()), map[string]interface{}{
		"status": "APPROVED",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/v1/consents/not-a-uuid", map[string]interface{}{
		"status": "APPROVED",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteConsentEndpoint(t *testing.T) {
	f := newHandlerFixture(t, false)
	consentID := f.createConsent(t)

	rec := f.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/consents/%s", consentID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, f.consents.Consents)
}

func TestDeleteApprovedConsentRejected(t *testing.T) {
	f := newHandlerFixture(t, false)
	consentID := f.createConsent(t)

	rec := f.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/consents/%s", consentID), map[string]interface{}{
		"status": "APPROVED",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/consents/%s", consentID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListConsentsEndpoint(t *testing.T) {
	f := newHandlerFixture(t, false)
	f.createConsent(t)

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/consents/patient/%s", f.patientID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/consents/patient/%s?status_filter=bogus", f.patientID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCleanupRouteGatedByConfig(t *testing.T) {
	disabled := newHandlerFixture(t, false)
	rec := disabled.do(t, http.MethodDelete, "/api/v1/consents/cleanup/all", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	enabled := newHandlerFixture(t, true)
	enabled.createConsent(t)
	rec = enabled.do(t, http.MethodDelete, "/api/v1/consents/cleanup/all", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, enabled.consents.Consents)
}
