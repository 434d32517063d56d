// internal/config/model.go
//
// Typed settings model for Promgen.
//
// Context
// -------
// Field tags carry the historical setting names (`SECRET_KEY`, `DEBUG`,
// …) so the `django` override block of the operator config file, the
// environment, and the embedded defaults all address the same keys.
// `internal/config/loader.go` fills this struct from a koanf tree and
// validates it before anyone else sees it.
//
// Notes
// -----
//   - Struct tags use `koanf:"…"`.  Koanf ignores `yaml` tags unless told
//     otherwise.
//   - `Paths`, `Database`, `Extra`, and `Namespace` are derived at runtime.
//     The config file must not try to set them.
//   - Oxford commas, two spaces after periods.  No em-dash.

package config

//
// Nested sections
//

// Template mirrors one entry of the TEMPLATES setting.
type Template struct {
	Backend string          `koanf:"BACKEND"  yaml:"BACKEND"  validate:"required"`
	Dirs    []string        `koanf:"DIRS"     yaml:"DIRS"`
	AppDirs bool            `koanf:"APP_DIRS" yaml:"APP_DIRS"`
	Options TemplateOptions `koanf:"OPTIONS"  yaml:"OPTIONS"`
}

// TemplateOptions holds the context processors run for every render.
type TemplateOptions struct {
	ContextProcessors []string `koanf:"context_processors" yaml:"context_processors"`
}

// PasswordValidator names one password validation rule.
type PasswordValidator struct {
	Name string `koanf:"NAME" yaml:"NAME" validate:"required"`
}

// RESTFramework holds API defaults.
type RESTFramework struct {
	AuthenticationClasses []string `koanf:"DEFAULT_AUTHENTICATION_CLASSES" yaml:"DEFAULT_AUTHENTICATION_CLASSES"`
	PermissionClasses     []string `koanf:"DEFAULT_PERMISSION_CLASSES"     yaml:"DEFAULT_PERMISSION_CLASSES"`
	FilterBackends        []string `koanf:"DEFAULT_FILTER_BACKENDS"        yaml:"DEFAULT_FILTER_BACKENDS"`
}

// ErrorReporting is filled when SENTRY_DSN is present.  Integrations names
// the two hooks the runtime wires: the HTTP handler and the task queue.
type ErrorReporting struct {
	Enabled      bool
	DSN          string
	Release      string
	Environment  string
	Integrations []string
}

// Database is derived from DATABASE_URL.
type Database struct {
	Engine string // "mysql", "sqlite", …
	DSN    string // driver-specific connection string
	Name   string // schema name or file path
}

// Paths is resolved at runtime.
type Paths struct {
	BaseDir    string // PROMGEN_BASE_DIR or discovered
	DotEnv     string // <base>/.env, whether or not it exists
	ConfigFile string // external YAML path, whether or not it exists
}

//
// Root aggregate
//

// Config is the immutable result of Assemble.  Build it once at startup
// and hand the pointer to every consumer.
type Config struct {
	SecretKey string `koanf:"SECRET_KEY" validate:"required"`
	Debug     bool   `koanf:"DEBUG"`

	// PROMGEN is the operator config file minus its `django` block.
	Promgen map[string]any `koanf:"PROMGEN"`

	DefaultGroup string   `koanf:"PROMGEN_DEFAULT_GROUP" validate:"required"`
	Scheme       string   `koanf:"PROMGEN_SCHEME"        validate:"oneof=http https"`
	AllowedHosts []string `koanf:"ALLOWED_HOSTS"         validate:"min=1,dive,required"`
	ListenAddr   string   `koanf:"LISTEN_ADDR"           validate:"required"`

	InstalledApps []string `koanf:"INSTALLED_APPS" validate:"dive,required"`
	Middleware    []string `koanf:"MIDDLEWARE"     validate:"dive,required"`
	InternalIPs   []string `koanf:"INTERNAL_IPS"   validate:"dive,ip"`

	SocialAuthRaiseExceptions bool   `koanf:"SOCIAL_AUTH_RAISE_EXCEPTIONS"`
	LoginURL                  string `koanf:"LOGIN_URL"`
	LoginRedirectURL          string `koanf:"LOGIN_REDIRECT_URL"`
	LogoutRedirectURL         string `koanf:"LOGOUT_REDIRECT_URL"`
	RootURLConf               string `koanf:"ROOT_URLCONF"`

	Templates              []Template          `koanf:"TEMPLATES"                validate:"dive"`
	DatabaseURL            string              `koanf:"DATABASE_URL"             validate:"required"`
	AuthPasswordValidators []PasswordValidator `koanf:"AUTH_PASSWORD_VALIDATORS" validate:"dive"`
	RESTFramework          RESTFramework       `koanf:"REST_FRAMEWORK"`
	LanguageCode           string              `koanf:"LANGUAGE_CODE"            validate:"required"`
	TimeZone               string              `koanf:"TIME_ZONE"                validate:"required"`
	UseI18N                bool                `koanf:"USE_I18N"`
	UseL10N                bool                `koanf:"USE_L10N"`
	UseTZ                  bool                `koanf:"USE_TZ"`
	StaticURL              string              `koanf:"STATIC_URL"               validate:"required,startswith=/,endswith=/"`
	StaticRoot             string              `koanf:"STATIC_ROOT"              validate:"required"`
	SiteID                 int                 `koanf:"SITE_ID"                  validate:"min=1"`
	GeoIPDatabase          string              `koanf:"GEOIP_DATABASE"`
	CeleryBrokerURL        string              `koanf:"CELERY_BROKER_URL"        validate:"required_without=CeleryTaskAlwaysEager"`
	CeleryTaskAlwaysEager  bool                `koanf:"CELERY_TASK_ALWAYS_EAGER"`
	CeleryTaskWorkers      int                 `koanf:"CELERY_TASK_WORKERS"      validate:"min=1"`

	ErrorReporting ErrorReporting `koanf:"-"`
	Database       Database       `koanf:"-"`
	Paths          Paths          `koanf:"-"`

	// Extra holds override keys that match no field above.
	Extra map[string]any `koanf:"-"`
	// Namespace is the flat name → value view of every assembled setting.
	Namespace map[string]any `koanf:"-"`
}

// Installed reports whether app appears in INSTALLED_APPS.
func (c *Config) Installed(app string) bool {
	for _, a := range c.InstalledApps {
		if a == app {
			return true
		}
	}
	return false
}

// HasMiddleware reports whether name appears in MIDDLEWARE.
func (c *Config) HasMiddleware(name string) bool {
	for _, m := range c.Middleware {
		if m == name {
			return true
		}
	}
	return false
}
