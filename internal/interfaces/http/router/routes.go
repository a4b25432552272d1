package router

import (
	"github.com/gin-gonic/gin"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/interfaces/http/handler"
	"github.com/logidocs/backend/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers mounted under the versioned API group
type Handlers struct {
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Shipment    *handler.ShipmentHandler
	Document    *handler.DocumentHandler
	GeneralInfo *handler.GeneralInfoHandler
	Audit       *handler.AuditHandler
	Dashboard   *handler.DashboardHandler
	System      *handler.SystemHandler
}

// Guards are optional per-route middleware supplied by the server
type Guards struct {
	// LoginRateLimit throttles credential checks. Nil disables it.
	LoginRateLimit gin.HandlerFunc
}

// APIGroups builds the domain route groups of the API
func APIGroups(h Handlers, g Guards) []*DomainGroup {
	login := chain(g.LoginRateLimit, h.Auth.Login)

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/login", login...)
	auth.POST("/refresh", h.Auth.RefreshToken)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.GetCurrentUser)
	auth.PUT("/password", h.Auth.ChangePassword)

	users := NewDomainGroup("users", "/users").Use(middleware.RequireAdmin())
	users.POST("", h.User.Create)
	users.GET("", h.User.List)
	users.GET("/:id", h.User.GetByID)
	users.POST("/:id/enable", h.User.Enable)
	users.POST("/:id/disable", h.User.Disable)

	shipments := NewDomainGroup("shipments", "/shipments")
	shipments.POST("", h.Shipment.Create)
	shipments.GET("", h.Shipment.List)
	shipments.GET("/:pro", h.Shipment.Get)
	shipments.PUT("/:pro", h.Shipment.Update)
	shipments.PUT("/:pro/trucking-status",
		middleware.RequireDepartment(shared.DepartmentTrucking), h.Shipment.UpdateTruckingStatus)
	shipments.POST("/:pro/complete", h.Shipment.Complete)
	shipments.POST("/:pro/cancel", h.Shipment.Cancel)
	shipments.GET("/:pro/remarks", h.Shipment.ListRemarks)
	shipments.POST("/:pro/remarks", h.Shipment.AddRemark)
	shipments.PUT("/:pro/remarks/:remarkId", h.Shipment.EditRemark)
	shipments.DELETE("/:pro/remarks/:remarkId", h.Shipment.DeleteRemark)
	shipments.GET("/:pro/documents", h.Document.ListByShipment)
	shipments.POST("/:pro/documents", h.Document.Create)
	shipments.POST("/:pro/documents/upload", h.Document.Upload)
	shipments.GET("/:pro/general-info", h.GeneralInfo.Get)
	shipments.GET("/:pro/general-info/pdf", h.GeneralInfo.PDF)

	containers := shipments.Group("containers", "/:pro/containers").
		Use(middleware.RequireDepartment(shared.DepartmentShipment))
	containers.POST("", h.Shipment.AddContainer)
	containers.PUT("/:containerId", h.Shipment.UpdateContainer)
	containers.DELETE("/:containerId", h.Shipment.RemoveContainer)

	documentTypes := NewDomainGroup("document-types", "/document-types")
	documentTypes.GET("", h.Document.Types)

	documents := NewDomainGroup("documents", "/documents")
	documents.GET("", h.Document.List)
	documents.POST("/validate", h.Document.Validate)
	documents.GET("/:id", h.Document.Get)
	documents.PUT("/:id", h.Document.Update)
	documents.DELETE("/:id", h.Document.Delete)
	documents.PUT("/:id/file", h.Document.ReplaceFile)
	documents.GET("/:id/preview", h.Document.Preview)
	documents.POST("/:id/items/import", h.Document.ImportItems)

	review := documents.Group("review", "/:id").
		Use(middleware.RequireDepartment(shared.DepartmentVerifier))
	review.POST("/verify", h.Document.Verify)
	review.POST("/reject", h.Document.Reject)

	auditLogs := NewDomainGroup("audit-logs", "/audit-logs")
	auditLogs.GET("", h.Audit.List)
	auditLogs.GET("/since", h.Audit.Since)
	auditLogs.GET("/stream", h.Audit.Stream)

	dashboard := NewDomainGroup("dashboard", "/dashboard")
	dashboard.GET("/summary", h.Dashboard.Summary)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)

	return []*DomainGroup{auth, users, shipments, documentTypes, documents, auditLogs, dashboard, system}
}

// chain prepends guard to the handler when it is set
func chain(guard gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if guard == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{guard, h}
}
