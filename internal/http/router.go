package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/snipsnap/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Every route under /api other than the auth endpoints sits behind the gate.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(newCORSMiddleware(cfg.AllowedOrigins))
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	// Public auth routes: register, login, logout
	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router)
	}

	api := router.Group("/api")
	api.Use(cfg.Gate.Handler())

	if cfg.AuthController != nil {
		api.POST("/auth/check", cfg.AuthController.CheckAuth)
	}

	if cfg.Snips != nil {
		snipsController := NewSnipsController(cfg.Snips, cfg.Collections, cfg.Contacts, cfg.Activity)
		api.GET("/snips", snipsController.ListSnips)
		api.GET("/snips/init", snipsController.InitEditor)
		api.GET("/snips/:id", snipsController.GetSnip)
		api.POST("/snips", snipsController.CreateSnip)
		api.PATCH("/snips/:id", snipsController.UpdateSnip)
		api.DELETE("/snips/:id", snipsController.DeleteSnip)
		api.GET("/shared", snipsController.ListShared)
		api.GET("/shared/:id", snipsController.GetShared)
	}

	if cfg.Collections != nil {
		collectionsController := NewCollectionsController(cfg.Collections, cfg.Snips, cfg.Activity)
		api.GET("/collections", collectionsController.ListCollections)
		api.POST("/collections", collectionsController.CreateCollection)
		api.PATCH("/collections/:id", collectionsController.RenameCollection)
		api.DELETE("/collections/:id", collectionsController.DeleteCollection)
		api.GET("/collections/:id/snips", collectionsController.ListCollectionSnips)
	}

	if cfg.Contacts != nil {
		contactsController := NewContactsController(cfg.Contacts, cfg.Activity)
		api.GET("/contacts", contactsController.ListContacts)
		api.POST("/contacts", contactsController.AddContact)
		api.DELETE("/contacts/:id", contactsController.DeleteContact)
	}

	if cfg.Accounts != nil {
		settingsController := NewSettingsController(cfg.Accounts, cfg.Activity, cfg.SecureCookies)
		api.GET("/settings", settingsController.GetSettings)
		api.PATCH("/settings", settingsController.UpdateSettings)
		api.PATCH("/settings/password", settingsController.ChangePassword)
		api.DELETE("/account", settingsController.DeleteAccount)
	}

	if cfg.ActivityReader != nil {
		auditController := NewAuditController(cfg.ActivityReader)
		api.GET("/activity", auditController.GetActivity)
	}

	return router
}
