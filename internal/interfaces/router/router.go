package router

import (
	appsvc "slackvite/internal/application/applications"
	authsvc "slackvite/internal/application/auth"
	"slackvite/internal/application/emails"
	healthsvc "slackvite/internal/application/health"
	"slackvite/internal/application/notify"
	"slackvite/internal/config"
	"slackvite/internal/infrastructure/database"
	"slackvite/internal/infrastructure/slack"
	apphandler "slackvite/internal/interfaces/handlers/applications"
	authhandler "slackvite/internal/interfaces/handlers/auth"
	healthhandler "slackvite/internal/interfaces/handlers/health"
	publichandler "slackvite/internal/interfaces/handlers/public"
	"slackvite/internal/interfaces/views"
	"slackvite/internal/middleware"
	"slackvite/internal/pkg/markdown"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the collaborators behind the routes. CreateApp builds them from config;
// tests pass fakes for the Slack and mail edges.
type Deps struct {
	DB             *gorm.DB
	Rdb            *redis.Client
	Session        middleware.SessionConfig
	Teams          slack.TeamSource
	Chat           notify.Chat
	NotifyChannel  string
	Identity       authsvc.IdentityProvider
	Mailer         appsvc.Mailer
	Site           views.Site
	SlackPinger    healthsvc.SlackPinger
	HealthAdminKey string
}

// CreateApp wires the production app from config.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	rdb := redis.NewClient(opts)

	admin := &slack.Client{Token: cfg.SlackAdminToken, BaseURL: cfg.SlackAPIURL}
	oauth := slack.NewOAuth(cfg.SlackKey, cfg.SlackSecret, cfg.OAuthRedirectURL, cfg.SlackAPIURL)

	var mailer appsvc.Mailer
	if cfg.UseEmail() {
		m := &emails.Mailer{From: cfg.MailFrom}
		switch {
		case cfg.SendGridAPIKey != "":
			m.Sender = &emails.SendGridClient{APIKey: cfg.SendGridAPIKey}
		case cfg.SendinblueAPIKey != "":
			m.Sender = &emails.BrevoClient{APIKey: cfg.SendinblueAPIKey}
		}
		mailer = m
	}

	app := New(Deps{
		DB:  db,
		Rdb: rdb,
		Session: middleware.SessionConfig{
			Secret:       cfg.SessionSecret,
			IsProduction: cfg.IsProduction(),
		},
		Teams:         admin,
		Chat:          admin,
		NotifyChannel: cfg.SlackNotifyChannel,
		Identity:      oauth,
		Mailer:        mailer,
		Site: views.Site{
			CodeOfConduct: cfg.CodeOfConduct,
			LoginURL:      oauth.AuthCodeURL(""),
		},
		SlackPinger:    admin,
		HealthAdminKey: cfg.HealthAdminKey,
	})
	return app, db, rdb, nil
}

// New registers middleware and routes on a fresh Fiber app.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.NewErrorHandler(d.Rdb),
		EnableTrustedProxyCheck: true,
	})

	codeOfConductURL := ""
	if markdown.IsURL(d.Site.CodeOfConduct) {
		codeOfConductURL = d.Site.CodeOfConduct
	}
	workflow := &appsvc.Service{
		DB:               d.DB,
		Notifier:         &notify.Notifier{Chat: d.Chat, Channel: d.NotifyChannel},
		Mailer:           d.Mailer,
		CodeOfConductURL: codeOfConductURL,
	}
	logins := &authsvc.Service{DB: d.DB, Provider: d.Identity}

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.HealthMarker(d.Rdb))

	hh := &healthhandler.Handlers{
		Rdb:            d.Rdb,
		DB:             &database.Pinger{DB: d.DB},
		Slack:          d.SlackPinger,
		HealthAdminKey: d.HealthAdminKey,
	}
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/health/reset", hh.Reset)

	app.Use(middleware.Session(d.Session, d.Rdb))
	app.Use(middleware.TeamScope(d.Teams))
	app.Use(middleware.LoadMember(logins))

	ph := &publichandler.Handlers{Applications: workflow, Site: d.Site}
	app.Get("/", ph.Index)
	app.Post("/", ph.Submit)

	ah := &authhandler.Handlers{Service: logins}
	app.Get("/oauth", ah.OAuth)
	app.Get("/logout", middleware.RequireAuth(logins), ah.Logout)

	aph := &apphandler.Handlers{Service: workflow, Site: d.Site}
	admin := app.Group("/applications", middleware.RequireAuth(logins))
	admin.Get("/:state?", aph.List)
	admin.Post("/", aph.Decide)

	return app
}
