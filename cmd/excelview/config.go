package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ideamans/excelview"
	"github.com/ideamans/excelview/adapters/firestore"
)

const (
	cfgKeyBackend     = "backend"
	cfgKeyUID         = "uid"
	cfgKeySQLitePath  = "sqlite.path"
	cfgKeySettleDelay = "settle_delay"
	cfgKeyBatchSize   = "batch_size"
	cfgKeyLogLevel    = "log.level"

	cfgKeyFirebaseAPIKey      = "firebase.api_key"
	cfgKeyFirebaseAuthDomain  = "firebase.auth_domain"
	cfgKeyFirebaseProjectID   = "firebase.project_id"
	cfgKeyFirebaseAppID       = "firebase.app_id"
	cfgKeyFirebaseSenderID    = "firebase.messaging_sender_id"
	cfgKeyFirebaseCredentials = "firebase.credentials_file"

	backendFirestore = "firestore"
	backendSQLite    = "sqlite"
)

// envBindings maps config keys to the environment variables that set them
var envBindings = map[string]string{
	cfgKeyBackend:             "EXCELVIEW_BACKEND",
	cfgKeyUID:                 "EXCELVIEW_UID",
	cfgKeySQLitePath:          "EXCELVIEW_SQLITE_PATH",
	cfgKeySettleDelay:         "EXCELVIEW_SETTLE_DELAY",
	cfgKeyBatchSize:           "EXCELVIEW_BATCH_SIZE",
	cfgKeyLogLevel:            "EXCELVIEW_LOG_LEVEL",
	cfgKeyFirebaseAPIKey:      "FIREBASE_API_KEY",
	cfgKeyFirebaseAuthDomain:  "FIREBASE_AUTH_DOMAIN",
	cfgKeyFirebaseProjectID:   "FIREBASE_PROJECT_ID",
	cfgKeyFirebaseAppID:       "FIREBASE_APP_ID",
	cfgKeyFirebaseSenderID:    "FIREBASE_MESSAGING_SENDER_ID",
	cfgKeyFirebaseCredentials: "GOOGLE_APPLICATION_CREDENTIALS",
}

// settings is the resolved configuration of one CLI invocation
type settings struct {
	Backend     string
	UID         string
	SQLitePath  string
	SettleDelay time.Duration
	BatchSize   int
	LogLevel    string
	Firebase    firestore.Config
}

// newViper creates a viper instance with defaults and environment bindings.
// Precedence is flag > environment > config file > default.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, backendFirestore)
	v.SetDefault(cfgKeySQLitePath, defaultSQLitePath())
	v.SetDefault(cfgKeySettleDelay, excelview.DefaultSettleDelay)
	v.SetDefault(cfgKeyBatchSize, excelview.DefaultBatchSize)
	v.SetDefault(cfgKeyLogLevel, "warn")

	for key, env := range envBindings {
		// BindEnv only fails when called without a key
		_ = v.BindEnv(key, env)
	}
	return v
}

// loadSettings reads the optional config file and resolves every key
func loadSettings(v *viper.Viper, configFile string) (*settings, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	s := &settings{
		Backend:     strings.ToLower(strings.TrimSpace(v.GetString(cfgKeyBackend))),
		UID:         strings.TrimSpace(v.GetString(cfgKeyUID)),
		SQLitePath:  v.GetString(cfgKeySQLitePath),
		SettleDelay: v.GetDuration(cfgKeySettleDelay),
		BatchSize:   v.GetInt(cfgKeyBatchSize),
		LogLevel:    v.GetString(cfgKeyLogLevel),
		Firebase: firestore.Config{
			APIKey:            v.GetString(cfgKeyFirebaseAPIKey),
			AuthDomain:        v.GetString(cfgKeyFirebaseAuthDomain),
			ProjectID:         v.GetString(cfgKeyFirebaseProjectID),
			AppID:             v.GetString(cfgKeyFirebaseAppID),
			MessagingSenderID: v.GetString(cfgKeyFirebaseSenderID),
			CredentialsFile:   v.GetString(cfgKeyFirebaseCredentials),
		},
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *settings) validate() error {
	switch s.Backend {
	case backendFirestore:
		if err := s.Firebase.Validate(); err != nil {
			return err
		}
	case backendSQLite:
		if s.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite.path is empty", excelview.ErrMissingConnection)
		}
	default:
		return fmt.Errorf("unknown backend %q (valid: %s, %s)", s.Backend, backendFirestore, backendSQLite)
	}

	engineConfig := s.engineConfig()
	return engineConfig.Validate()
}

func (s *settings) engineConfig() *excelview.Config {
	return &excelview.Config{
		BatchSize:   s.BatchSize,
		SettleDelay: s.SettleDelay,
	}
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "excelview.db"
	}
	return filepath.Join(home, ".excelview", "excelview.db")
}
