package firestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
)

// Scopes requested for Firestore access
var Scopes = []string{
	"https://www.googleapis.com/auth/datastore",
	"https://www.googleapis.com/auth/cloud-platform",
}

var (
	// ErrNotServiceAccount is returned for credential files of any other kind
	ErrNotServiceAccount = errors.New("credentials are not a service account key")

	// ErrProjectMismatch is returned when the key belongs to another project
	ErrProjectMismatch = errors.New("service account key belongs to a different project")
)

// serviceAccountKey holds the fields of a key file needed to sign tokens
type serviceAccountKey struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`
}

// parseServiceAccountKey decodes a key file and checks it can sign tokens
func parseServiceAccountKey(data []byte) (*serviceAccountKey, error) {
	var key serviceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("failed to parse service account JSON: %w", err)
	}
	if key.Type != "service_account" {
		return nil, fmt.Errorf("%w: type %q", ErrNotServiceAccount, key.Type)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, fmt.Errorf("%w: client_email and private_key are required", ErrNotServiceAccount)
	}
	return &key, nil
}

// ClientOptions resolves the credentials for config. Against the emulator
// (FIRESTORE_EMULATOR_HOST set) none are needed. Otherwise the key file in
// config, then GOOGLE_APPLICATION_CREDENTIALS, then Application Default
// Credentials are used. A key file must be a service account key of
// config.ProjectID.
func ClientOptions(ctx context.Context, config Config) ([]option.ClientOption, error) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") != "" {
		return nil, nil
	}

	path := config.CredentialsFile
	if path == "" {
		path = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if path == "" {
		ts, err := google.DefaultTokenSource(ctx, Scopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to get default token source: %w", err)
		}
		return []option.ClientOption{option.WithTokenSource(ts)}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	key, err := parseServiceAccountKey(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if key.ProjectID != "" && config.ProjectID != "" && key.ProjectID != config.ProjectID {
		return nil, fmt.Errorf("%w: key is for %q, store is %q", ErrProjectMismatch, key.ProjectID, config.ProjectID)
	}

	return []option.ClientOption{option.WithTokenSource(keyTokenSource(ctx, key))}, nil
}

// keyTokenSource signs JWTs with the key. Tokens are fetched on first use.
func keyTokenSource(ctx context.Context, key *serviceAccountKey) oauth2.TokenSource {
	tokenURL := key.TokenURI
	if tokenURL == "" {
		tokenURL = google.JWTTokenURL
	}
	cfg := &jwt.Config{
		Email:        key.ClientEmail,
		PrivateKey:   []byte(key.PrivateKey),
		PrivateKeyID: key.PrivateKeyID,
		Scopes:       Scopes,
		TokenURL:     tokenURL,
	}
	return cfg.TokenSource(ctx)
}
