// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging); AppConfig is
// everything specific to this application.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Presentation
	SiteName string
	// Base URL for invite and password-reset links
	BaseURL string
	// Mailbox that receives profile-correction requests
	SecretariatEmail string

	// Identity provider (Firebase Auth admin REST surface)
	FirebaseProjectID       string
	FirebaseCredentialsFile string

	// Email dispatch
	MailProvider string // "ses" or "noop"
	MailFrom     string
	MailFromName string
	SESRegion    string
	SESAccessKey string
	SESSecretKey string

	// WhatsApp dispatch (Twilio); empty SID disables sending
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromPhone  string

	// Photo storage configuration
	StorageType      string // "local" or "s3"
	StorageLocalPath string
	StorageLocalURL  string
	StorageS3Region  string
	StorageS3Bucket  string
	StorageS3Prefix  string

	// Invite link lifetime
	InviteExpiry time.Duration
}
