package firebase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/example/parlour/internal/config"
)

// ErrNotConfigured is returned when FIREBASE_PROJECT_ID is empty.
var ErrNotConfigured = errors.New("FIREBASE_PROJECT_ID must be set")

// CredentialsOption picks the service-account source, in order: credentials
// file, base64 JSON, inline client email and private key. A nil option means
// Application Default Credentials.
func CredentialsOption(cfg *config.Config) (option.ClientOption, error) {
	switch {
	case cfg.GoogleApplicationCredentials != "":
		return option.WithCredentialsFile(cfg.GoogleApplicationCredentials), nil
	case cfg.FirebaseServiceAccountJSONBase64 != "":
		jsonKey, err := base64.StdEncoding.DecodeString(cfg.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is not a valid base64 string: %w", err)
		}
		return option.WithCredentialsJSON(jsonKey), nil
	case cfg.FirebaseClientEmail != "" && cfg.FirebasePrivateKey != "":
		jsonKey, err := json.Marshal(map[string]string{
			"type":         "service_account",
			"project_id":   cfg.FirebaseProjectID,
			"client_email": cfg.FirebaseClientEmail,
			"private_key":  cfg.FirebasePrivateKey,
			"token_uri":    "https://oauth2.googleapis.com/token",
		})
		if err != nil {
			return nil, fmt.Errorf("encode service account: %w", err)
		}
		return option.WithCredentialsJSON(jsonKey), nil
	default:
		return nil, nil
	}
}

// AppConfig maps the Firebase settings onto the Admin SDK app config.
func AppConfig(cfg *config.Config) *firebase.Config {
	return &firebase.Config{
		ProjectID:   cfg.FirebaseProjectID,
		DatabaseURL: cfg.FirebaseDatabaseURL,
	}
}

// InitFirebase initializes the Firebase Admin SDK app for the configured project.
func InitFirebase(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	if cfg.FirebaseProjectID == "" {
		return nil, ErrNotConfigured
	}
	opt, err := CredentialsOption(cfg)
	if err != nil {
		return nil, err
	}

	conf := AppConfig(cfg)
	var opts []option.ClientOption
	if opt != nil {
		opts = append(opts, opt)
	}
	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	return app, nil
}
