package http

import (
	"github.com/gin-gonic/gin"

	"pettech-backend/internal/bootstrap"
	"pettech-backend/internal/transport/http/handler"
	"pettech-backend/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.MaxMultipartMemory = app.Config.MaxUploadBytes()
	router.Use(
		middleware.RequestID(app.Logger),
		middleware.CORS(app.Config.App.CORSOrigins),
		middleware.Metrics(app.Metrics),
		gin.Logger(),
		gin.Recovery(),
	)

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(app.Metrics.Handler()))
	router.Static("/uploads", app.Classifier.Store().Dir())

	registrationHandler := handler.NewRegistrationHandler(app.Registration)
	appointmentHandler := handler.NewAppointmentHandler(app.Appointments)
	uploadHandler := handler.NewUploadHandler(app.Classifier, app.Config.ImageURL, app.Config.MaxUploadBytes())

	router.POST("/save_user_registration_details", registrationHandler.Register)
	router.POST("/verify_login", registrationHandler.VerifyLogin)
	router.POST("/save_appointment/", appointmentHandler.Save)
	router.POST("/upload", uploadHandler.Upload)

	return router
}
