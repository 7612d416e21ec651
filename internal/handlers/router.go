package handlers

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/justsurfingit/careerhub/internal/auth"
	"github.com/justsurfingit/careerhub/internal/logger"
	"github.com/justsurfingit/careerhub/internal/models"
	"go.uber.org/zap"
)

// Router groups the handlers and middleware the API is built from.
type Router struct {
	Jobs         *JobHandler
	CVs          *CVHandler
	Auth         *AuthHandler
	Onboarding   *OnboardingHandler
	Autocomplete *AutocompleteHandler
	Sessions     auth.Authenticator
	// External forwards /api/v1/external/*path to the external career API.
	External    gin.HandlerFunc
	CORSOrigins []string
	Log         *zap.Logger
}

// RegisterValidators adds the custom binding tags used by the DTOs.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("jobstatus", func(fl validator.FieldLevel) bool {
		return slices.Contains(models.JobStatuses, fl.Field().String())
	})
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", ClientIDHeader}
	config.ExposeHeaders = []string{logger.RequestIDHeader}
	return config
}

// Engine builds the gin engine with every route mounted.
func (r *Router) Engine() (*gin.Engine, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	e := gin.New()
	e.Use(logger.Middleware(r.Log), gin.Recovery(), cors.New(corsConfig(r.CORSOrigins)))

	api := e.Group("/api/v1")
	{
		api.GET("/health", HealthCheck)

		api.POST("/auth/register", r.Auth.Register)
		api.POST("/auth/login", r.Auth.Login)
		api.GET("/auth/google/login", r.Auth.GoogleLogin)
		api.GET("/auth/google/callback", r.Auth.GoogleCallback)

		// Suggestions are public; signed-in clients are keyed by session.
		api.GET("/autocomplete/:kind", r.Autocomplete.Suggest)
	}

	private := api.Group("", auth.RequireSession(r.Sessions))
	{
		private.POST("/auth/logout", r.Auth.Logout)
		private.GET("/auth/me", r.Auth.Me)
		private.GET("/bootstrap", r.Onboarding.Load)

		// Job Routes
		private.GET("/jobs", r.Jobs.SearchJobs)
		private.POST("/jobs", r.Jobs.CreateJob)
		private.POST("/jobs/extract", r.Jobs.ParseJob)
		private.GET("/jobs/:id", r.Jobs.GetJob)
		private.PATCH("/jobs/:id/status", r.Jobs.UpdateStatus)
		private.GET("/jobs/:id/events", r.Jobs.Events)

		// CV Routes
		private.GET("/cvs", r.CVs.List)
		private.POST("/cvs", r.CVs.Create)
		private.POST("/cvs/extract", r.CVs.Extract)
		private.GET("/cvs/:id", r.CVs.Get)
		private.PUT("/cvs/:id", r.CVs.Update)
		private.DELETE("/cvs/:id", r.CVs.Delete)
		private.GET("/cvs/:id/matches", r.CVs.Matches)
		private.GET("/cvs/:id/matches/:jobId", r.CVs.Match)

		private.GET("/onboarding", r.Onboarding.Get)
		private.PUT("/onboarding/:step", r.Onboarding.Submit)

		if r.External != nil {
			private.Any("/external/*path", r.External)
		}
	}
	return e, nil
}
