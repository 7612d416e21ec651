package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/careerhub/internal/auth"
	"github.com/justsurfingit/careerhub/internal/dtos"
	"github.com/justsurfingit/careerhub/internal/services"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

type JobHandler struct {
	LLMService *services.LLMService
	JobService *services.JobService
	Log        *zap.Logger
}

func NewJobHandler(llm *services.LLMService, j *services.JobService, log *zap.Logger) *JobHandler {
	return &JobHandler{LLMService: llm, JobService: j, Log: log}
}

// ParseJob is the POST /jobs/extract endpoint
func (h *JobHandler) ParseJob(c *gin.Context) {
	var req dtos.JobExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	extracted, err := h.LLMService.ExtractJobDetails(c.Request.Context(), req.RawHTML)
	if err != nil {
		respondExtraction(c, h.Log, err)
		return
	}
	writeExtracted(c, extracted)
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.JobCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	job, err := h.JobService.CreateJob(c.Request.Context(), auth.CurrentUser(c).ID, &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	job, err := h.JobService.GetJob(c.Request.Context(), auth.CurrentUser(c).ID, id)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// SearchJobs is GET /jobs. source=remote searches the external catalogue.
func (h *JobHandler) SearchJobs(c *gin.Context) {
	var q dtos.JobSearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if q.Source == "remote" {
		jobs, err := h.JobService.SearchRemote(c.Request.Context(), &q)
		if err != nil {
			if statusFor(err) == http.StatusInternalServerError {
				h.Log.Warn("remote job search failed", zap.Error(err))
				c.JSON(http.StatusBadGateway, gin.H{"error": "remote job search failed"})
				return
			}
			respondError(c, h.Log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"source": "remote", "jobs": jobs})
		return
	}

	jobs, err := h.JobService.Search(c.Request.Context(), auth.CurrentUser(c).ID, &q)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"source": "local", "jobs": jobs})
}

func (h *JobHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dtos.JobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	job, err := h.JobService.UpdateStatus(c.Request.Context(), auth.CurrentUser(c).ID, id, &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Events(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	events, err := h.JobService.Events(c.Request.Context(), auth.CurrentUser(c).ID, id)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func respondExtraction(c *gin.Context, log *zap.Logger, err error) {
	if statusFor(err) != http.StatusInternalServerError {
		respondError(c, log, err)
		return
	}
	log.Warn("AI extraction failed", zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": "AI extraction failed"})
}

// writeExtracted returns the model's JSON as-is. json.RawMessage keeps gin from
// escaping it into a string.
func writeExtracted(c *gin.Context, extracted string) {
	if !gjson.Valid(extracted) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI returned malformed JSON"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    json.RawMessage(extracted),
	})
}
