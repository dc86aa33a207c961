package walletauth

import (
	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
)

// EnvConfig implements Config from environment variables.
type EnvConfig struct {
	OrganizationID   string `env:"WALLET_AUTH_ORGANIZATION_ID"`
	AppName          string `env:"WALLET_AUTH_APP_NAME" envDefault:"wallet-auth"`
	RedirectTemplate string `env:"WALLET_AUTH_REDIRECT_TEMPLATE" envDefault:"/email-authorization?userEmail=%s&continueWith=email&credentialBundle=%s"`
	DashboardRoute   string `env:"WALLET_AUTH_DASHBOARD_ROUTE" envDefault:"/dashboard"`
	ProfileRoute     string `env:"WALLET_AUTH_PROFILE_ROUTE" envDefault:"/dashboard/user/profile"`
	EmailAuthRoute   string `env:"WALLET_AUTH_EMAIL_ROUTE" envDefault:"/email-authorization"`
	HomeRoute        string `env:"WALLET_AUTH_HOME_ROUTE" envDefault:"/"`
	DatabaseDSN      string `env:"WALLET_AUTH_DATABASE_DSN"`
}

var _ Config = (*EnvConfig)(nil)

// LoadEnvConfig parses configuration from the process environment.
func LoadEnvConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to parse environment config")
	}
	return cfg, nil
}

func (c *EnvConfig) GetOrganizationID() string   { return c.OrganizationID }
func (c *EnvConfig) GetAppName() string          { return c.AppName }
func (c *EnvConfig) GetRedirectTemplate() string { return c.RedirectTemplate }
func (c *EnvConfig) GetDashboardRoute() string   { return c.DashboardRoute }
func (c *EnvConfig) GetProfileRoute() string     { return c.ProfileRoute }
func (c *EnvConfig) GetEmailAuthRoute() string   { return c.EmailAuthRoute }
func (c *EnvConfig) GetHomeRoute() string        { return c.HomeRoute }
func (c *EnvConfig) GetDatabaseDSN() string      { return c.DatabaseDSN }
