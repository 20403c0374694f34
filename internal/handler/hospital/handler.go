package hospital

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/swasthlink/health-api/internal/handler"
	"github.com/swasthlink/health-api/internal/model"
	"github.com/swasthlink/health-api/internal/service/admission"
)

type Handler struct {
	service admission.AdmissionService
}

func NewHandler(service admission.AdmissionService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	hospitals := r.Group("/hospitals")
	{
		hospitals.POST("/:hospital_id/admit", h.AdmitPatient)
	}
}

// AdmitPatient raises a HOSPITAL_ADMISSION consent for the patient identified
// by Aadhar number. The response keeps the shape hospital clients rely on.
func (h *Handler) AdmitPatient(c *gin.Context) {
	hospitalID, err := uuid.Parse(c.Param("hospital_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid hospital ID"))
		return
	}

	var req model.AdmitPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	consent, alreadyPending, err := h.service.RequestAdmission(c.Request.Context(), hospitalID, req.AadharNumber, req.Reason)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	message := "Admission request sent to patient"
	if alreadyPending {
		message = "Admission request already pending"
	}

	c.JSON(http.StatusOK, model.AdmitPatientResponse{
		Success:   true,
		Message:   message,
		ConsentID: consent.ID,
	})
}
