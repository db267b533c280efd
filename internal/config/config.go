package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const defaultSlackAPIURL = "https://slack.com/api"

// Config holds application configuration (env + Viper).
type Config struct {
	Env                string
	Port               string
	LogLevel           string
	DatabaseURL        string // DATABASE_URI
	RedisURL           string // session store and health counters
	SlackKey           string // OAuth client id
	SlackSecret        string // OAuth client secret
	SlackAdminToken    string // admin credential for team.info, chat.postMessage, users.admin.invite
	SlackNotifyChannel string
	SlackAPIURL        string
	OAuthRedirectURL   string
	SessionSecret      string // SECRET_SESSION_KEY, signs the session cookie
	MailFrom           string // EMAIL_FROM; empty disables email entirely
	SendinblueAPIKey   string
	SendGridAPIKey     string
	CodeOfConduct      string // URL or markdown text shown on pages
	HealthAdminKey     string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	return &Config{
		Env:                env,
		Port:               withDefault(viper.GetString("PORT"), "8080"),
		LogLevel:           withDefault(viper.GetString("LOG_LEVEL"), "info"),
		DatabaseURL:        viper.GetString("DATABASE_URI"),
		RedisURL:           viper.GetString("REDIS_URL"),
		SlackKey:           viper.GetString("SLACK_KEY"),
		SlackSecret:        viper.GetString("SLACK_SECRET"),
		SlackAdminToken:    viper.GetString("SLACK_ADMIN_TOKEN"),
		SlackNotifyChannel: viper.GetString("SLACK_NOTIFY_CHANNEL"),
		SlackAPIURL:        strings.TrimRight(withDefault(viper.GetString("SLACK_API_URL"), defaultSlackAPIURL), "/"),
		OAuthRedirectURL:   viper.GetString("OAUTH_REDIRECT_URL"),
		SessionSecret:      viper.GetString("SECRET_SESSION_KEY"),
		MailFrom:           strings.TrimSpace(viper.GetString("EMAIL_FROM")),
		SendinblueAPIKey:   viper.GetString("SENDINBLUE_API_KEY"),
		SendGridAPIKey:     viper.GetString("SENDGRID_API_KEY"),
		CodeOfConduct:      viper.GetString("CODE_OF_CONDUCT"),
		HealthAdminKey:     viper.GetString("HEALTH_ADMIN_KEY"),
	}, nil
}

// UseEmail reports whether outbound email is enabled. A sender address is the switch.
func (c *Config) UseEmail() bool {
	return c.MailFrom != ""
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate reports every required key that is missing.
func (c *Config) Validate() error {
	var missing []string
	for _, req := range []struct {
		key, val string
	}{
		{"DATABASE_URI", c.DatabaseURL},
		{"REDIS_URL", c.RedisURL},
		{"SLACK_KEY", c.SlackKey},
		{"SLACK_SECRET", c.SlackSecret},
		{"SLACK_ADMIN_TOKEN", c.SlackAdminToken},
		{"SLACK_NOTIFY_CHANNEL", c.SlackNotifyChannel},
		{"SECRET_SESSION_KEY", c.SessionSecret},
	} {
		if strings.TrimSpace(req.val) == "" {
			missing = append(missing, req.key)
		}
	}
	if c.UseEmail() && c.SendinblueAPIKey == "" && c.SendGridAPIKey == "" {
		missing = append(missing, "SENDINBLUE_API_KEY or SENDGRID_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func withDefault(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}
