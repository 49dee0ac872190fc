package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pacs-worklist-api/internal/middleware"
	"github.com/noah-isme/pacs-worklist-api/internal/models"
)

// Handlers groups every handler mounted under the API prefix.
type Handlers struct {
	Worklist    *WorklistHandler
	Study       *StudyHandler
	Command     *CommandHandler
	Measurement *MeasurementHandler
	Upload      *UploadHandler
	Feedback    *FeedbackHandler
}

// Register mounts the API routes. Signed export links are served without a bearer token.
func Register(api *gin.RouterGroup, h Handlers, auth middleware.TokenValidator) {
	if h.Command != nil {
		api.GET("/exports/:token", h.Command.Download)
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(auth), middleware.Session())
	readers := middleware.RBAC(models.RoleRadiologist, models.RoleTechnologist)

	if h.Worklist != nil {
		wl := secured.Group("/worklist", readers)
		wl.GET("/config", h.Worklist.Config)
		wl.GET("/studies", h.Worklist.List)
		wl.PUT("/filters", h.Worklist.SetFilters)
		wl.DELETE("/filters", h.Worklist.ClearFilters)
		wl.PUT("/page", h.Worklist.ChangePage)
		wl.PUT("/results-per-page", h.Worklist.SetResultsPerPage)
		wl.POST("/rows/:index/toggle", h.Worklist.ToggleRow)
		wl.GET("/notifications", h.Worklist.Notifications)
		wl.DELETE("/session", h.Worklist.EndSession)
	}

	if h.Study != nil {
		secured.GET("/studies/:uid/series", readers, h.Study.Series)
		secured.GET("/studies/:uid/launch", readers, h.Study.Launch)
	}

	if h.Feedback != nil {
		secured.GET("/studies/:uid/feedback", readers, h.Feedback.ListStudy)
		secured.POST("/studies/:uid/feedback", middleware.RBAC(models.RoleRadiologist), h.Feedback.SubmitStudy)
		secured.POST("/display-sets/:uid/feedback", middleware.RBAC(models.RoleRadiologist), h.Feedback.SubmitDisplaySet)
	}

	if h.Command != nil {
		secured.GET("/commands", readers, h.Command.List)
		secured.POST("/commands/:name", middleware.RBAC(models.RoleRadiologist), h.Command.Run)
	}

	if h.Measurement != nil {
		secured.POST("/measurements/upload", middleware.RBAC(models.RoleRadiologist), h.Measurement.Upload)
	}

	if h.Upload != nil {
		secured.POST("/dicom/upload", readers, h.Upload.Upload)
	}
}
