// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for MemberHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, base_url, etc.
//   - Environment variables: MEMBERHUB_MONGO_URI, MEMBERHUB_BASE_URL, etc.
//   - Command-line flags: --mongo_uri, --base_url, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "memberhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "site_name", Default: "MemberHub", Desc: "Display name used in notifications"},
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for invite and reset links"},
	{Name: "secretariat_email", Default: "", Desc: "Mailbox that receives profile-correction requests"},

	// Identity provider
	{Name: "firebase_project_id", Default: "", Desc: "Firebase project id for the identity provider"},
	{Name: "firebase_credentials_file", Default: "", Desc: "Path to the Firebase service-account JSON"},

	// Email dispatch
	{Name: "mail_provider", Default: "noop", Desc: "Email backend: 'ses' or 'noop'"},
	{Name: "mail_from", Default: "noreply@memberhub.local", Desc: "From email address"},
	{Name: "mail_from_name", Default: "MemberHub", Desc: "From display name"},
	{Name: "ses_region", Default: "", Desc: "AWS region for SES"},
	{Name: "ses_access_key", Default: "", Desc: "AWS access key id for SES"},
	{Name: "ses_secret_key", Default: "", Desc: "AWS secret access key for SES"},

	// WhatsApp dispatch
	{Name: "twilio_account_sid", Default: "", Desc: "Twilio account SID (empty disables WhatsApp)"},
	{Name: "twilio_auth_token", Default: "", Desc: "Twilio auth token"},
	{Name: "twilio_from_phone", Default: "", Desc: "Twilio WhatsApp sender phone (E.164)"},

	// Photo storage
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads/photos", Desc: "Local storage path for member photos"},
	{Name: "storage_local_url", Default: "/files/photos", Desc: "URL prefix for serving local files"},
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "photos/", Desc: "S3 key prefix"},

	// Invites
	{Name: "invite_expiry", Default: "168h", Desc: "Invite link lifetime (e.g., 168h for 7 days)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MEMBERHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SiteName:         appValues.String("site_name"),
		BaseURL:          appValues.String("base_url"),
		SecretariatEmail: appValues.String("secretariat_email"),

		FirebaseProjectID:       appValues.String("firebase_project_id"),
		FirebaseCredentialsFile: appValues.String("firebase_credentials_file"),

		MailProvider: appValues.String("mail_provider"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),
		SESRegion:    appValues.String("ses_region"),
		SESAccessKey: appValues.String("ses_access_key"),
		SESSecretKey: appValues.String("ses_secret_key"),

		TwilioAccountSID: appValues.String("twilio_account_sid"),
		TwilioAuthToken:  appValues.String("twilio_auth_token"),
		TwilioFromPhone:  appValues.String("twilio_from_phone"),

		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),
		StorageS3Region:  appValues.String("storage_s3_region"),
		StorageS3Bucket:  appValues.String("storage_s3_bucket"),
		StorageS3Prefix:  appValues.String("storage_s3_prefix"),

		InviteExpiry: appValues.Duration("invite_expiry", 7*24*time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.FirebaseProjectID == "" {
		return fmt.Errorf("firebase_project_id is required")
	}
	if appCfg.FirebaseCredentialsFile == "" {
		return fmt.Errorf("firebase_credentials_file is required")
	}

	if appCfg.MailProvider == "ses" {
		if appCfg.SESRegion == "" || appCfg.SESAccessKey == "" || appCfg.SESSecretKey == "" {
			return fmt.Errorf("mail_provider 'ses' requires ses_region, ses_access_key, and ses_secret_key")
		}
	}

	if appCfg.StorageType == "s3" && appCfg.StorageS3Bucket == "" {
		return fmt.Errorf("storage_type 's3' requires storage_s3_bucket")
	}

	if appCfg.InviteExpiry <= 0 {
		return fmt.Errorf("invite_expiry must be positive")
	}

	return nil
}
