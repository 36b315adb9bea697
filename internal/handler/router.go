package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/preschool-adp-api/internal/middleware"
	"github.com/noah-isme/preschool-adp-api/internal/models"
)

// Handlers bundles everything mounted under the API prefix.
type Handlers struct {
	Options     *OptionHandler
	Curriculum  *CurriculumHandler
	Assignments *AssignmentHandler
	Schedule    *ScheduleHandler
	Exports     *ExportHandler
}

// RegisterRoutes mounts the API. Everything except signed export downloads
// requires a bearer token. Exports is optional.
func RegisterRoutes(api gin.IRouter, auth middleware.TokenValidator, h Handlers) {
	if h.Exports != nil {
		api.GET("/exports/download/:token", h.Exports.Download)
	}

	secured := api.Group("", middleware.JWT(auth))
	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	anyone := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher, models.RoleParent)

	options := secured.Group("/options")
	options.GET("", anyone, h.Options.Categories)
	options.GET("/:category", anyone, h.Options.List)
	options.POST("", admin, h.Options.Create)
	options.GET("/item/:id", anyone, h.Options.Get)
	options.PUT("/item/:id", admin, h.Options.Update)
	options.DELETE("/item/:id", admin, h.Options.Deactivate)

	curriculum := secured.Group("/curriculum")
	curriculum.GET("/templates", staff, h.Curriculum.ListTemplates)
	curriculum.POST("/templates", admin, h.Curriculum.CreateTemplate)
	curriculum.GET("/templates/:id", staff, h.Curriculum.GetTemplate)
	curriculum.PUT("/templates/:id", admin, h.Curriculum.UpdateTemplate)
	curriculum.DELETE("/templates/:id", admin, h.Curriculum.DeactivateTemplate)
	curriculum.GET("/templates/:id/items", staff, h.Curriculum.ListItems)
	curriculum.POST("/templates/:id/items", admin, h.Curriculum.CreateItem)
	curriculum.POST("/templates/:id/assignments", admin, h.Assignments.Assign)
	curriculum.GET("/items/:id", staff, h.Curriculum.GetItem)
	curriculum.PUT("/items/:id", admin, h.Curriculum.UpdateItem)
	curriculum.GET("/time-slots", staff, h.Curriculum.ListTimeSlots)
	curriculum.POST("/time-slots", admin, h.Curriculum.CreateTimeSlot)
	curriculum.PUT("/time-slots/:id", admin, h.Curriculum.UpdateTimeSlot)
	curriculum.DELETE("/time-slots/:id", admin, h.Curriculum.DeactivateTimeSlot)
	curriculum.DELETE("/assignments/:id", admin, h.Assignments.Deactivate)
	curriculum.POST("/executions", staff, h.Schedule.Record)
	curriculum.POST("/executions/status", staff, h.Schedule.QuickStatus)

	classes := secured.Group("/classes/:id/curriculum")
	classes.GET("/assignments", staff, h.Assignments.ListForClass)
	classes.GET("/due", staff, h.Schedule.Due)
	classes.GET("/week", staff, h.Schedule.Week)
	classes.GET("/executions", staff, h.Schedule.Executions)

	if h.Exports != nil {
		exports := secured.Group("/exports")
		exports.POST("", staff, h.Exports.Create)
		exports.GET("/:id", anyone, h.Exports.Status)
	}
}
