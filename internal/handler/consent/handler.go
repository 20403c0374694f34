package consent

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/swasthlink/health-api/internal/handler"
	"github.com/swasthlink/health-api/internal/model"
	"github.com/swasthlink/health-api/internal/service/consent"
)

type Handler struct {
	service       consent.ConsentService
	enableCleanup bool
}

func NewHandler(service consent.ConsentService, enableCleanup bool) *Handler {
	return &Handler{service: service, enableCleanup: enableCleanup}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	consents := r.Group("/consents")
	{
		consents.POST("/request", h.RequestAccess)
		consents.GET("/patient/:patient_id", h.ListForPatient)
		consents.PATCH("/:consent_id", h.UpdateStatus)
		consents.DELETE("/:consent_id", h.Delete)
		if h.enableCleanup {
			consents.DELETE("/cleanup/all", h.CleanupAll)
		}
	}
}

// RequestAccess creates a consent request when a doctor scans a patient's QR
// code. A request identical to a still-pending one returns that row, also 201.
func (h *Handler) RequestAccess(c *gin.Context) {
	var req model.CreateConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.service.RequestAccess(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(result))
}

func (h *Handler) ListForPatient(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	consents, err := h.service.ListForPatient(c.Request.Context(), patientID, c.Query("status_filter"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(consents))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	consentID, err := uuid.Parse(c.Param("consent_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid consent ID"))
		return
	}

	var req model.UpdateConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.Respond(c.Request.Context(), consentID, req.Status)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) Delete(c *gin.Context) {
	consentID, err := uuid.Parse(c.Param("consent_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid consent ID"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), consentID); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) CleanupAll(c *gin.Context) {
	if err := h.service.CleanupAll(c.Request.Context()); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
