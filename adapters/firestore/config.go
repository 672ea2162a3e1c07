package firestore

import (
	"fmt"
	"strings"

	"github.com/ideamans/excelview"
)

// Config holds the web-app connection parameters of the Firebase project
// plus an optional service account key for server-side access
type Config struct {
	APIKey            string
	AuthDomain        string
	ProjectID         string
	AppID             string
	MessagingSenderID string

	// CredentialsFile is a service account JSON key. When empty,
	// GOOGLE_APPLICATION_CREDENTIALS and then Application Default Credentials are used.
	CredentialsFile string
}

// Validate reports every missing connection parameter at once
func (c *Config) Validate() error {
	var missing []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"apiKey", c.APIKey},
		{"authDomain", c.AuthDomain},
		{"projectId", c.ProjectID},
		{"appId", c.AppID},
		{"messagingSenderId", c.MessagingSenderID},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", excelview.ErrMissingConnection, strings.Join(missing, ", "))
	}
	return nil
}
