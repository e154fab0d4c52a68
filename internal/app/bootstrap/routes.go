// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"os"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	healthfeature "github.com/ibbtech/memberhub/internal/app/features/health"
	invitesfeature "github.com/ibbtech/memberhub/internal/app/features/invites"
	membersfeature "github.com/ibbtech/memberhub/internal/app/features/members"
	ministriesfeature "github.com/ibbtech/memberhub/internal/app/features/ministries"
	"github.com/ibbtech/memberhub/internal/app/service/reconcile"
	invitestore "github.com/ibbtech/memberhub/internal/app/store/invites"
	memberstore "github.com/ibbtech/memberhub/internal/app/store/members"
	"github.com/ibbtech/memberhub/internal/app/system/auth"
	"github.com/ibbtech/memberhub/internal/app/system/identity"
	"github.com/ibbtech/memberhub/internal/app/system/notify"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. MemberHub builds the identity provider,
// the notification senders, and the photo blob store, wires them into the
// reconciliation service, and mounts the feature routers behind bearer-token
// authentication.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	ctx := context.Background()

	creds, err := os.ReadFile(appCfg.FirebaseCredentialsFile)
	if err != nil {
		logger.Error("reading Firebase credentials failed", zap.Error(err))
		return nil, err
	}
	idp, err := identity.NewFirebase(ctx, appCfg.FirebaseProjectID, creds, logger)
	if err != nil {
		logger.Error("identity provider init failed", zap.Error(err))
		return nil, err
	}

	mailer := notify.NewMailer(notify.MailerConfig{
		Provider:    appCfg.MailProvider,
		FromAddress: appCfg.MailFrom,
		FromName:    appCfg.MailFromName,
		SES: notify.SESConfig{
			Region:          appCfg.SESRegion,
			AccessKeyID:     appCfg.SESAccessKey,
			SecretAccessKey: appCfg.SESSecretKey,
		},
	}, logger)

	whatsapp := notify.NewWhatsAppSender(notify.TwilioConfig{
		AccountSID: appCfg.TwilioAccountSID,
		AuthToken:  appCfg.TwilioAuthToken,
		FromPhone:  appCfg.TwilioFromPhone,
	}, logger)

	blobs, err := buildBlobStore(ctx, appCfg, logger)
	if err != nil {
		logger.Error("blob store init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	members := memberstore.New(db)
	invites := invitestore.New(db, appCfg.InviteExpiry)

	svc := reconcile.New(members, invites, idp, mailer, whatsapp, blobs, reconcile.Config{
		SiteName:         appCfg.SiteName,
		BaseURL:          appCfg.BaseURL,
		SecretariatEmail: appCfg.SecretariatEmail,
	}, logger)

	r := chi.NewRouter()

	// Global auth middleware: resolves the bearer token to a Principal when
	// present. Route groups decide whether a principal is required.
	r.Use(auth.Authenticate(idp, members, logger))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Member photos stored locally are served directly.
	if appCfg.StorageType == "local" || appCfg.StorageType == "" {
		r.Handle(appCfg.StorageLocalURL+"/*",
			fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	membersHandler := membersfeature.NewHandler(db, svc, logger)
	r.Mount("/members", membersfeature.Routes(membersHandler))

	invitesHandler := invitesfeature.NewHandler(db, svc, appCfg.InviteExpiry, logger)
	r.Mount("/invites", invitesfeature.Routes(invitesHandler))

	ministriesHandler := ministriesfeature.NewHandler(db, logger)
	r.Mount("/ministries", ministriesfeature.Routes(ministriesHandler))

	return r, nil
}
