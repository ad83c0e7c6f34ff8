package portfolio

import "github.com/goliatone/go-portfolio/internal/runtimeconfig"

var (
	ErrServerAddrRequired       = runtimeconfig.ErrServerAddrRequired
	ErrDatabaseDriverUnknown    = runtimeconfig.ErrDatabaseDriverUnknown
	ErrDatabaseDSNRequired      = runtimeconfig.ErrDatabaseDSNRequired
	ErrAuthAdminIncomplete      = runtimeconfig.ErrAuthAdminIncomplete
	ErrAuthSecretRequired       = runtimeconfig.ErrAuthSecretRequired
	ErrAuthSessionMaxAgeInvalid = runtimeconfig.ErrAuthSessionMaxAgeInvalid
	ErrAuthLoginRateInvalid     = runtimeconfig.ErrAuthLoginRateInvalid
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
	ErrEventsURLRequired        = runtimeconfig.ErrEventsURLRequired
	ErrExportDestinationUnknown = runtimeconfig.ErrExportDestinationUnknown
	ErrExportBucketRequired     = runtimeconfig.ErrExportBucketRequired
)

type (
	Config         = runtimeconfig.Config
	ServerConfig   = runtimeconfig.ServerConfig
	DatabaseConfig = runtimeconfig.DatabaseConfig
	AuthConfig     = runtimeconfig.AuthConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	EventsConfig   = runtimeconfig.EventsConfig
	ExportConfig   = runtimeconfig.ExportConfig
	SiteConfig     = runtimeconfig.SiteConfig
	LoadOptions    = runtimeconfig.LoadOptions
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig layers a YAML or TOML file, a dotenv file and environment
// variables over DefaultConfig.
func LoadConfig(opts LoadOptions) (Config, error) {
	return runtimeconfig.Load(opts)
}
