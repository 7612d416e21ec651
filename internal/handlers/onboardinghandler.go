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

type OnboardingHandler struct {
	Onboarding *services.OnboardingService
	Bootstrap  *services.BootstrapService
	Log        *zap.Logger
}

func NewOnboardingHandler(o *services.OnboardingService, b *services.BootstrapService, log *zap.Logger) *OnboardingHandler {
	return &OnboardingHandler{Onboarding: o, Bootstrap: b, Log: log}
}

func (h *OnboardingHandler) Get(c *gin.Context) {
	o, err := h.Onboarding.Get(c.Request.Context(), auth.CurrentUser(c).ID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// Submit is PUT /onboarding/:step.
func (h *OnboardingHandler) Submit(c *gin.Context) {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step"})
		return
	}
	var req dtos.OnboardingStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	o, err := h.Onboarding.Submit(c.Request.Context(), auth.CurrentUser(c).ID, step, &req)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// Load is GET /bootstrap: everything the client needs before its first render.
func (h *OnboardingHandler) Load(c *gin.Context) {
	res, err := h.Bootstrap.Load(c.Request.Context(), auth.CurrentUser(c))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
