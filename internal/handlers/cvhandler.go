package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/careerhub/internal/auth"
	"github.com/justsurfingit/careerhub/internal/dtos"
	"github.com/justsurfingit/careerhub/internal/services"
	"go.uber.org/zap"
)

type CVHandler struct {
	CVs      *services.CVService
	Matching *services.MatchingService
	LLM      *services.LLMService
	Log      *zap.Logger
}

func NewCVHandler(cvs *services.CVService, m *services.MatchingService, llm *services.LLMService, log *zap.Logger) *CVHandler {
	return &CVHandler{CVs: cvs, Matching: m, LLM: llm, Log: log}
}

func (h *CVHandler) List(c *gin.Context) {
	cvs, err := h.CVs.List(c.Request.Context(), auth.CurrentUser(c).ID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, cvs)
}

func (h *CVHandler) Create(c *gin.Context) {
	var req dtos.CVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	cv, err := h.CVs.Create(c.Request.Context(), auth.CurrentUser(c).ID, &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, cv)
}

func (h *CVHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	cv, err := h.CVs.Get(c.Request.Context(), auth.CurrentUser(c).ID, id)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, cv)
}

func (h *CVHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dtos.CVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	cv, err := h.CVs.Update(c.Request.Context(), auth.CurrentUser(c).ID, id, &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, cv)
}

func (h *CVHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.CVs.Delete(c.Request.Context(), auth.CurrentUser(c).ID, id); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Extract turns pasted resume text into a CV draft. Nothing is saved.
func (h *CVHandler) Extract(c *gin.Context) {
	var req dtos.CVExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	extracted, err := h.LLM.ExtractCV(c.Request.Context(), req.RawText)
	if err != nil {
		respondExtraction(c, h.Log, err)
		return
	}
	writeExtracted(c, extracted)
}

// Matches is GET /cvs/:id/matches?limit=n.
func (h *CVHandler) Matches(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	res, err := h.Matching.MatchCV(c.Request.Context(), auth.CurrentUser(c).ID, id, limit)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *CVHandler) Match(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	jobID, ok := paramID(c, "jobId")
	if !ok {
		return
	}
	res, err := h.Matching.MatchJob(c.Request.Context(), auth.CurrentUser(c).ID, id, jobID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
