package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/hd-notes/notes-backend/pkg/apihelpers"
	"github.com/hd-notes/notes-backend/pkg/db"
	"github.com/hd-notes/notes-backend/pkg/oauth"
	smtp_client "github.com/hd-notes/notes-backend/pkg/smtp-client"
	usermanagement "github.com/hd-notes/notes-backend/pkg/user-management"
	"github.com/hd-notes/notes-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	noteDB "github.com/hd-notes/notes-backend/pkg/db/note"
	userDB "github.com/hd-notes/notes-backend/pkg/db/user"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_NOTES_DB_USERNAME    = "NOTES_DB_USERNAME"
	ENV_NOTES_DB_PASSWORD    = "NOTES_DB_PASSWORD"
	ENV_USER_JWT_SIGN_KEY    = "USER_JWT_SIGN_KEY"
	ENV_GOOGLE_CLIENT_SECRET = "GOOGLE_CLIENT_SECRET"
	ENV_SMTP_PASSWORD        = "SMTP_PASSWORD"
)

type NotesApiConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`

		// Mutual TLS configs
		MTLS struct {
			Use              bool                        `json:"use" yaml:"use"`
			CertificatePaths apihelpers.CertificatePaths `json:"certificate_paths" yaml:"certificate_paths"`
		} `json:"mtls" yaml:"mtls"`
	} `json:"gin_config" yaml:"gin_config"`

	// user management configs
	UserManagementConfig struct {
		UserJWTConfig struct {
			SignKey   string `json:"sign_key" yaml:"sign_key"`
			ExpiresIn string `json:"expires_in" yaml:"expires_in"`
		} `json:"user_jwt_config" yaml:"user_jwt_config"`
		OtpTTL string `json:"otp_ttl" yaml:"otp_ttl"`
	} `json:"user_management_config" yaml:"user_management_config"`

	// DB configs
	DBConfigs struct {
		NotesDB db.DBConfigYaml `json:"notes_db" yaml:"notes_db"`
	} `json:"db_configs" yaml:"db_configs"`

	// SMTP configs for sending verification codes
	SmtpConfig smtp_client.SmtpServerList `json:"smtp_config" yaml:"smtp_config"`

	// Google OAuth configs
	GoogleOAuth oauth.GoogleConfig `json:"google_oauth" yaml:"google_oauth"`
}

var (
	userDBService *userDB.UserDBService
	noteDBService *noteDB.NoteDBService

	userJWTExpiresIn time.Duration
	otpTTL           time.Duration
)

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(
		conf.Logging.LogLevel,
		conf.Logging.IncludeSrc,
		conf.Logging.LogToFile,
		conf.Logging.Filename,
		conf.Logging.MaxSize,
		conf.Logging.MaxAge,
		conf.Logging.MaxBackups,
		conf.Logging.CompressOldLogs,
	)

	// Override secrets from environment variables
	secretsOverride()

	parseDurations()

	// Init DBs
	initDBs()

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_NOTES_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.NotesDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_NOTES_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.NotesDB.Password = dbPassword
	}

	if signKey := os.Getenv(ENV_USER_JWT_SIGN_KEY); signKey != "" {
		conf.UserManagementConfig.UserJWTConfig.SignKey = signKey
	}

	if clientSecret := os.Getenv(ENV_GOOGLE_CLIENT_SECRET); clientSecret != "" {
		conf.GoogleOAuth.ClientSecret = clientSecret
	}

	if smtpPassword := os.Getenv(ENV_SMTP_PASSWORD); smtpPassword != "" {
		for i := range conf.SmtpConfig.Servers {
			conf.SmtpConfig.Servers[i].SetPassword(smtpPassword)
		}
	}
}

func parseDurations() {
	var err error
	userJWTExpiresIn, err = utils.ParseDurationString(conf.UserManagementConfig.UserJWTConfig.ExpiresIn)
	if err != nil {
		slog.Error("failed to parse user JWT expiry", slog.String("error", err.Error()))
		panic(err)
	}

	otpTTL, err = utils.ParseDurationStringWithDefault(conf.UserManagementConfig.OtpTTL, usermanagement.DefaultOTPTTL)
	if err != nil {
		slog.Error("failed to parse OTP TTL", slog.String("error", err.Error()))
		panic(err)
	}
}

func initDBs() {
	var err error
	userDBService, err = userDB.NewUserDBService(db.DBConfigFromYamlObj(conf.DBConfigs.NotesDB))
	if err != nil {
		slog.Error("Error connecting to User DB", slog.String("error", err.Error()))
		panic(err)
	}

	noteDBService, err = noteDB.NewNoteDBService(db.DBConfigFromYamlObj(conf.DBConfigs.NotesDB))
	if err != nil {
		slog.Error("Error connecting to Note DB", slog.String("error", err.Error()))
		panic(err)
	}
}
