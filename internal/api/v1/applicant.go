package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hiretrack/hiretrack/internal/api/dto"
	"github.com/hiretrack/hiretrack/internal/logger"
	"github.com/hiretrack/hiretrack/internal/service"
	"github.com/hiretrack/hiretrack/internal/types"
	"github.com/hiretrack/hiretrack/internal/validator"
)

type ApplicantHandler struct {
	sync     service.ApplicantSyncService
	workflow service.WorkflowService
	log      *logger.Logger
}

func NewApplicantHandler(
	sync service.ApplicantSyncService,
	workflow service.WorkflowService,
	log *logger.Logger,
) *ApplicantHandler {
	return &ApplicantHandler{
		sync:     sync,
		workflow: workflow,
		log:      log,
	}
}

// @Summary List applicants
// @Description List the local applicant collection. Counts always cover the whole collection.
// @Tags Applicants
// @Produce json
// @Param filter query types.ApplicantFilter false "Filter"
// @Success 200 {object} dto.ListApplicantsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /applicants [get]
func (h *ApplicantHandler) ListApplicants(c *gin.Context) {
	filter := types.NewDefaultApplicantFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(invalidRequest(err))
		return
	}
	filter.Normalize()

	resp, err := h.sync.ListApplicants(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get an applicant
// @Tags Applicants
// @Produce json
// @Param id path int true "Onboarding record ID"
// @Success 200 {object} dto.ApplicantResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /applicants/{id} [get]
func (h *ApplicantHandler) GetApplicant(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.sync.GetApplicant(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Change application status
// @Description Applies the change locally, confirms it with the backend and reverts through a full refresh on failure
// @Tags Applicants
// @Accept json
// @Produce json
// @Param id path int true "Onboarding record ID"
// @Param request body dto.TransitionRequest true "Target status"
// @Success 200 {object} dto.ApplicantResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 401 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /applicants/{id}/transition [post]
func (h *ApplicantHandler) Transition(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(invalidRequest(err))
		return
	}
	if err := validator.ValidateRequest(&req); err != nil {
		c.Error(err)
		return
	}

	if _, err := h.workflow.Transition(c.Request.Context(), id, req.Status); err != nil {
		c.Error(err)
		return
	}

	resp, err := h.sync.GetApplicant(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Change onboarding status
// @Tags Applicants
// @Accept json
// @Produce json
// @Param id path int true "Onboarding record ID"
// @Param request body dto.UpdateOnboardingRequest true "Onboarding status"
// @Success 200 {object} dto.ApplicantResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /applicants/{id}/onboarding [put]
func (h *ApplicantHandler) UpdateOnboarding(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req dto.UpdateOnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(invalidRequest(err))
		return
	}
	if err := validator.ValidateRequest(&req); err != nil {
		c.Error(err)
		return
	}

	if _, err := h.workflow.UpdateOnboardingStatus(c.Request.Context(), id, req.Status); err != nil {
		c.Error(err)
		return
	}

	resp, err := h.sync.GetApplicant(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
