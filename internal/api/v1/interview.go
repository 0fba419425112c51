package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hiretrack/hiretrack/internal/api/dto"
	"github.com/hiretrack/hiretrack/internal/logger"
	"github.com/hiretrack/hiretrack/internal/service"
	"github.com/hiretrack/hiretrack/internal/validator"
)

type InterviewHandler struct {
	scheduler service.SchedulerService
	sync      service.ApplicantSyncService
	log       *logger.Logger
}

func NewInterviewHandler(
	scheduler service.SchedulerService,
	sync service.ApplicantSyncService,
	log *logger.Logger,
) *InterviewHandler {
	return &InterviewHandler{
		scheduler: scheduler,
		sync:      sync,
		log:       log,
	}
}

// @Summary Get the scheduling session
// @Tags Interviews
// @Produce json
// @Success 200 {object} dto.SchedulerSessionResponse
// @Router /interviews/session [get]
func (h *InterviewHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.Session(c.Request.Context()))
}

// @Summary Open the scheduling session
// @Description Opens the session, seeded with one shortlisted applicant or in applicant selection
// @Tags Interviews
// @Accept json
// @Produce json
// @Param request body dto.OpenSessionRequest false "Seed applicant"
// @Success 200 {object} dto.SchedulerSessionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /interviews/session [post]
func (h *InterviewHandler) OpenSession(c *gin.Context) {
	var req dto.OpenSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(invalidRequest(err))
			return
		}
	}

	resp, err := h.scheduler.OpenForApplicant(c.Request.Context(), req.ApplicantID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Toggle an applicant in the selection
// @Tags Interviews
// @Accept json
// @Produce json
// @Param request body dto.ToggleSelectionRequest true "Applicant"
// @Success 200 {object} dto.SchedulerSessionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /interviews/session/toggle [post]
func (h *InterviewHandler) ToggleSelection(c *gin.Context) {
	var req dto.ToggleSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(invalidRequest(err))
		return
	}
	if err := validator.ValidateRequest(&req); err != nil {
		c.Error(err)
		return
	}

	resp, err := h.scheduler.ToggleSelection(c.Request.Context(), req.ApplicantID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Confirm the selection
// @Tags Interviews
// @Produce json
// @Success 200 {object} dto.SchedulerSessionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /interviews/session/confirm [post]
func (h *InterviewHandler) ConfirmSelection(c *gin.Context) {
	resp, err := h.scheduler.ConfirmSelection(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update the interview form
// @Tags Interviews
// @Accept json
// @Produce json
// @Param request body dto.InterviewForm true "Interview form"
// @Success 200 {object} dto.SchedulerSessionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /interviews/session/form [put]
func (h *InterviewHandler) UpdateForm(c *gin.Context) {
	var form dto.InterviewForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(invalidRequest(err))
		return
	}

	resp, err := h.scheduler.UpdateForm(c.Request.Context(), form)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Submit the scheduling session
// @Description Schedules every selected applicant independently; per-applicant failures are part of the result
// @Tags Interviews
// @Produce json
// @Success 200 {object} dto.InterviewBatchResult
// @Failure 400 {object} ierr.ErrorResponse
// @Router /interviews/session/submit [post]
func (h *InterviewHandler) Submit(c *gin.Context) {
	resp, err := h.scheduler.Submit(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Cancel the scheduling session
// @Tags Interviews
// @Produce json
// @Success 200 {object} dto.SchedulerSessionResponse
// @Router /interviews/session [delete]
func (h *InterviewHandler) CancelSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.Cancel(c.Request.Context()))
}

// @Summary View an applicant's interview
// @Tags Interviews
// @Produce json
// @Param id path int true "Onboarding record ID"
// @Success 200 {object} dto.InterviewDetailResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /applicants/{id}/interview [get]
func (h *InterviewHandler) ViewInterview(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.scheduler.ViewInterview(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Record an interview decision
// @Description Accepting offers the position, rejecting closes the application
// @Tags Interviews
// @Accept json
// @Produce json
// @Param request body dto.DecisionRequest true "Decision"
// @Success 200 {object} dto.ApplicantResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /interviews/decision [post]
func (h *InterviewHandler) Decide(c *gin.Context) {
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(invalidRequest(err))
		return
	}
	if err := validator.ValidateRequest(&req); err != nil {
		c.Error(err)
		return
	}

	if _, err := h.scheduler.Decide(c.Request.Context(), req.ApplicantID, req.Decision); err != nil {
		c.Error(err)
		return
	}

	resp, err := h.sync.GetApplicant(c.Request.Context(), req.ApplicantID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
