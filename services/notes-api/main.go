package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hd-notes/notes-backend/pkg/apihelpers"
	"github.com/hd-notes/notes-backend/pkg/oauth"
	smtp_client "github.com/hd-notes/notes-backend/pkg/smtp-client"
	usermanagement "github.com/hd-notes/notes-backend/pkg/user-management"
	"github.com/hd-notes/notes-backend/services/notes-api/apihandlers"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var conf NotesApiConfig

func main() {
	smtpClients, err := smtp_client.NewSmtpClients(conf.SmtpConfig)
	if err != nil {
		slog.Error("Error setting up SMTP clients", slog.String("error", err.Error()))
		return
	}

	googleClient := oauth.NewGoogleClient(conf.GoogleOAuth)

	authService := usermanagement.NewService(
		usermanagement.ServiceConfig{OTPTTL: otpTTL},
		userDBService,
		smtpClients,
		googleClient,
	)

	// Start webserver
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.GinConfig.AllowOrigins,
		AllowMethods:     []string{"POST", "GET", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Content-Length"},
		ExposeHeaders:    []string{"Authorization", "Content-Type", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Add handlers
	router.GET("/", apihandlers.HealthCheckHandle)
	v1Root := router.Group("/v1")

	v1APIHandlers := apihandlers.NewHTTPHandler(
		conf.UserManagementConfig.UserJWTConfig.SignKey,
		userJWTExpiresIn,
		authService,
		noteDBService,
	)
	v1APIHandlers.AddAuthAPI(v1Root)
	v1APIHandlers.AddNotesAPI(v1Root)

	// Start the server
	slog.Info("Starting Notes API on port " + conf.GinConfig.Port)
	if !conf.GinConfig.MTLS.Use {
		err := router.Run(":" + conf.GinConfig.Port)
		if err != nil {
			slog.Error("Exited Notes API", slog.String("error", err.Error()))
			return
		}
	} else {
		// Create tls config for mutual TLS
		tlsConfig, err := apihelpers.LoadTLSConfig(conf.GinConfig.MTLS.CertificatePaths)
		if err != nil {
			slog.Error("Error loading TLS config.", slog.String("error", err.Error()))
			return
		}

		server := &http.Server{
			Addr:      ":" + conf.GinConfig.Port,
			Handler:   router,
			TLSConfig: tlsConfig,
		}

		err = server.ListenAndServeTLS(conf.GinConfig.MTLS.CertificatePaths.ServerCertPath, conf.GinConfig.MTLS.CertificatePaths.ServerKeyPath)
		if err != nil {
			slog.Error("Exited Notes API", slog.String("error", err.Error()))
			return
		}
	}
}
