package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultAuthURL    = "https://cloud.ouraring.com/oauth/authorize"
	DefaultTokenURL   = "https://api.ouraring.com/oauth/token"
	DefaultAPIBaseURL = "https://api.ouraring.com/v2"
	DefaultDeltaTable = "hive_metastore.default.oura_events"

	BackendSQLite    = "sqlite"
	BackendWarehouse = "warehouse"

	// LocalSecretKey is the cookie key used in local environments without APP_SECRET_KEY.
	LocalSecretKey = "ourastream-local-dev"
)

type Config struct {
	Environment   string
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Oura          OuraConfig
	Storage       StorageConfig
	Polling       PollingConfig
	Prune         PruneConfig
	Hub           HubConfig
	Sink          SinkConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Path      string
	LogTiming bool
}

type AuthConfig struct {
	SecretKey    string
	SecureCookie bool
}

type OuraConfig struct {
	ClientID            string
	ClientSecret        string
	WebhookSecret       string
	RedirectURI         string
	AuthURL             string
	TokenURL            string
	APIBaseURL          string
	APIRatePerSecond    float64
	InitialRefreshToken string
}

type StorageConfig struct {
	Backend    string
	Databricks DatabricksConfig
}

type DatabricksConfig struct {
	Host     string
	HTTPPath string
	Token    string
	Table    string
}

// Complete reports whether every value the statement client needs is present.
func (d DatabricksConfig) Complete() bool {
	return d.Host != "" && d.HTTPPath != "" && d.Token != ""
}

type PollingConfig struct {
	Enabled      bool
	Interval     time.Duration
	LookbackDays int
	DataTypes    []string
}

type PruneConfig struct {
	RetentionDays int
	Interval      time.Duration
}

type HubConfig struct {
	MaxPending int
}

type SinkConfig struct {
	ServerEndpoint string
	WorkspaceURL   string
	ClientID       string
	ClientSecret   string
	TableName      string
	QueueSize      int
}

// Configured reports whether the streaming sink has enough settings to connect.
func (s SinkConfig) Configured() bool {
	return s.ServerEndpoint != "" && s.WorkspaceURL != "" && s.ClientID != "" &&
		s.ClientSecret != "" && s.TableName != ""
}

type ObservabilityConfig struct {
	Enabled           bool
	OTLPEndpoint      string
	OTLPTraceHeaders  map[string]string
	OTLPMetricHeaders map[string]string
	ServiceName       string
	ServiceVer        string
	SamplingRatio     float64
	MetricsConsole    bool
}

func Load() (Config, error) {
	return load(true)
}

// LoadForTool loads config for CLI tools that do not require the app secret.
func LoadForTool() (Config, error) {
	return load(false)
}

func load(requireSecret bool) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("oura_env", "")
	v.SetDefault("app_env", "")
	v.SetDefault("go_env", "")
	v.SetDefault("oura_port", 8000)
	v.SetDefault("oura_db_path", "data/ourastream")
	v.SetDefault("oura_db_timing", false)
	v.SetDefault("oura_secure_cookie", false)
	v.SetDefault("oura_client_id", "")
	v.SetDefault("oura_client_secret", "")
	v.SetDefault("oura_webhook_secret", "")
	v.SetDefault("oura_redirect_uri", "")
	v.SetDefault("oura_auth_url", DefaultAuthURL)
	v.SetDefault("oura_token_url", DefaultTokenURL)
	v.SetDefault("oura_api_base_url", DefaultAPIBaseURL)
	v.SetDefault("oura_api_rate_per_second", 5.0)
	v.SetDefault("oura_initial_refresh_token", "")
	v.SetDefault("storage_backend", BackendSQLite)
	v.SetDefault("databricks_host", "")
	v.SetDefault("databricks_http_path", "")
	v.SetDefault("databricks_token", "")
	v.SetDefault("delta_table", DefaultDeltaTable)
	v.SetDefault("polling_enabled", false)
	v.SetDefault("polling_interval_seconds", 300)
	v.SetDefault("poll_lookback_days", 1)
	v.SetDefault("poll_data_types", "daily_sleep")
	v.SetDefault("prune_retention_days", 30)
	v.SetDefault("prune_interval_hours", 24)
	v.SetDefault("oura_hub_max_pending", 0)
	v.SetDefault("zerobus_server_endpoint", "")
	v.SetDefault("databricks_workspace_url", "")
	v.SetDefault("databricks_client_id", "")
	v.SetDefault("databricks_client_secret", "")
	v.SetDefault("zerobus_table_name", "")
	v.SetDefault("zerobus_queue_size", 256)
	v.SetDefault("oura_otel_enabled", false)
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_exporter_otlp_headers", "")
	v.SetDefault("otel_exporter_otlp_traces_headers", "")
	v.SetDefault("otel_exporter_otlp_metrics_headers", "")
	v.SetDefault("otel_service_name", "ourastream")
	v.SetDefault("oura_version", "dev")
	v.SetDefault("otel_service_version", "")
	v.SetDefault("oura_otel_sampling_ratio", 1.0)
	v.SetDefault("oura_otel_metrics_console", false)

	env := resolveEnvironment(v)
	port := v.GetInt("oura_port")
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid OURA_PORT: %d", port)
	}

	samplingRatio := v.GetFloat64("oura_otel_sampling_ratio")
	if samplingRatio < 0 {
		samplingRatio = 0
	}
	if samplingRatio > 1 {
		samplingRatio = 1
	}

	redirectURI := strings.TrimSpace(v.GetString("oura_redirect_uri"))
	if redirectURI == "" {
		redirectURI = fmt.Sprintf("http://localhost:%d/auth/callback", port)
	}

	ratePerSecond := v.GetFloat64("oura_api_rate_per_second")
	if ratePerSecond <= 0 {
		ratePerSecond = 5
	}

	pollInterval := v.GetInt("polling_interval_seconds")
	if pollInterval <= 0 {
		pollInterval = 300
	}
	lookback := v.GetInt("poll_lookback_days")
	if lookback < 0 {
		lookback = 1
	}
	retention := v.GetInt("prune_retention_days")
	if retention <= 0 {
		retention = 30
	}
	pruneHours := v.GetInt("prune_interval_hours")
	if pruneHours <= 0 {
		pruneHours = 24
	}
	maxPending := v.GetInt("oura_hub_max_pending")
	if maxPending < 0 {
		maxPending = 0
	}
	queueSize := v.GetInt("zerobus_queue_size")
	if queueSize <= 0 {
		queueSize = 256
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("storage_backend")))
	if backend == "" {
		backend = BackendSQLite
	}
	table := strings.TrimSpace(v.GetString("delta_table"))
	if table == "" {
		table = DefaultDeltaTable
	}

	serviceName := strings.TrimSpace(v.GetString("otel_service_name"))
	if serviceName == "" {
		serviceName = "ourastream"
	}
	serviceVersion := strings.TrimSpace(v.GetString("oura_version"))
	if serviceVersion == "" {
		serviceVersion = strings.TrimSpace(v.GetString("otel_service_version"))
	}
	if serviceVersion == "" {
		serviceVersion = "dev"
	}

	otlpEndpoint := strings.TrimSpace(v.GetString("otel_exporter_otlp_endpoint"))
	otlpCommonHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_headers"))
	otlpTraceHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_traces_headers"))
	otlpMetricHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_metrics_headers"))
	metricsConsole := v.GetBool("oura_otel_metrics_console")
	otelEnabled := v.GetBool("oura_otel_enabled") || otlpEndpoint != "" || metricsConsole

	cfg := Config{
		Environment: env,
		Server:      ServerConfig{Port: port},
		Database: DatabaseConfig{
			Path:      strings.TrimSpace(v.GetString("oura_db_path")),
			LogTiming: v.GetBool("oura_db_timing"),
		},
		Auth: AuthConfig{
			SecretKey:    strings.TrimSpace(v.GetString("app_secret_key")),
			SecureCookie: v.GetBool("oura_secure_cookie"),
		},
		Oura: OuraConfig{
			ClientID:            strings.TrimSpace(v.GetString("oura_client_id")),
			ClientSecret:        strings.TrimSpace(v.GetString("oura_client_secret")),
			WebhookSecret:       v.GetString("oura_webhook_secret"),
			RedirectURI:         redirectURI,
			AuthURL:             strings.TrimSpace(v.GetString("oura_auth_url")),
			TokenURL:            strings.TrimSpace(v.GetString("oura_token_url")),
			APIBaseURL:          strings.TrimRight(strings.TrimSpace(v.GetString("oura_api_base_url")), "/"),
			APIRatePerSecond:    ratePerSecond,
			InitialRefreshToken: strings.TrimSpace(v.GetString("oura_initial_refresh_token")),
		},
		Storage: StorageConfig{
			Backend: backend,
			Databricks: DatabricksConfig{
				Host:     strings.TrimSpace(v.GetString("databricks_host")),
				HTTPPath: strings.TrimSpace(v.GetString("databricks_http_path")),
				Token:    strings.TrimSpace(v.GetString("databricks_token")),
				Table:    table,
			},
		},
		Polling: PollingConfig{
			Enabled:      v.GetBool("polling_enabled"),
			Interval:     time.Duration(pollInterval) * time.Second,
			LookbackDays: lookback,
			DataTypes:    splitList(v.GetString("poll_data_types")),
		},
		Prune: PruneConfig{
			RetentionDays: retention,
			Interval:      time.Duration(pruneHours) * time.Hour,
		},
		Hub: HubConfig{MaxPending: maxPending},
		Sink: SinkConfig{
			ServerEndpoint: strings.TrimSpace(v.GetString("zerobus_server_endpoint")),
			WorkspaceURL:   strings.TrimRight(strings.TrimSpace(v.GetString("databricks_workspace_url")), "/"),
			ClientID:       strings.TrimSpace(v.GetString("databricks_client_id")),
			ClientSecret:   strings.TrimSpace(v.GetString("databricks_client_secret")),
			TableName:      strings.TrimSpace(v.GetString("zerobus_table_name")),
			QueueSize:      queueSize,
		},
		Observability: ObservabilityConfig{
			Enabled:           otelEnabled,
			OTLPEndpoint:      otlpEndpoint,
			OTLPTraceHeaders:  mergeHeaderMaps(otlpCommonHeaders, otlpTraceHeaders),
			OTLPMetricHeaders: mergeHeaderMaps(otlpCommonHeaders, otlpMetricHeaders),
			ServiceName:       serviceName,
			ServiceVer:        serviceVersion,
			SamplingRatio:     samplingRatio,
			MetricsConsole:    metricsConsole,
		},
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/ourastream"
	}
	if requireSecret && !cfg.IsLocalDevelopment() && cfg.Auth.SecretKey == "" {
		return Config{}, fmt.Errorf("APP_SECRET_KEY is required outside local/dev environments")
	}
	if cfg.IsLocalDevelopment() && cfg.Auth.SecretKey == "" {
		cfg.Auth.SecretKey = LocalSecretKey
	}

	return cfg, nil
}

func splitList(raw string) []string {
	out := make([]string, 0, 4)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseOTLPHeaders(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pair := strings.SplitN(part, "=", 2)
		if len(pair) != 2 {
			continue
		}
		key := strings.TrimSpace(pair[0])
		value := strings.TrimSpace(pair[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mergeHeaderMaps(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func (c Config) IsLocalDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "", "local", "dev", "development", "test":
		return true
	default:
		return false
	}
}

func resolveEnvironment(v *viper.Viper) string {
	for _, key := range []string{"oura_env", "app_env", "go_env"} {
		value := strings.TrimSpace(v.GetString(key))
		if value != "" {
			return strings.ToLower(value)
		}
	}
	return ""
}
