package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hiretrack/hiretrack/internal/logger"
	"github.com/hiretrack/hiretrack/internal/service"
)

type ResumeHandler struct {
	resume service.ResumeService
	log    *logger.Logger
}

func NewResumeHandler(resume service.ResumeService, log *logger.Logger) *ResumeHandler {
	return &ResumeHandler{
		resume: resume,
		log:    log,
	}
}

// @Summary Download a resume
// @Description Streams the applicant's resume as an attachment named <Employee_Name>_Resume.<ext>
// @Tags Applicants
// @Produce application/octet-stream
// @Param id path int true "Onboarding record ID"
// @Success 200 {file} file
// @Failure 404 {object} ierr.ErrorResponse
// @Router /applicants/{id}/resume [get]
func (h *ResumeHandler) DownloadResume(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	artifact, err := h.resume.Download(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}
