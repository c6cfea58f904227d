package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/shopaccounts/internal/flagx"
	"github.com/dmitrijs2005/shopaccounts/internal/timex"
)

// JsonConfig is the JSON file shape of Config. Durations use timex.Duration
// so both "10s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrGRPC   string         `json:"endpoint_addr_grpc"`
	DatabaseDSN        string         `json:"database_dsn"`
	RunMigrations      bool           `json:"run_migrations"`
	SecretKey          string         `json:"secret_key"`
	PasswordHashScheme string         `json:"password_hash_scheme"`
	LogLevel           string         `json:"log_level"`
	SMTPHost           string         `json:"smtp_host"`
	SMTPPort           int            `json:"smtp_port"`
	SMTPUsername       string         `json:"smtp_username"`
	SMTPPassword       string         `json:"smtp_password"`
	SMTPFrom           string         `json:"smtp_from"`
	SMTPTimeout        timex.Duration `json:"smtp_timeout"`
	MailTemplateSource string         `json:"mail_template_source"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	S3Prefix           string         `json:"s3_prefix"`
	OTLPEndpoint       string         `json:"otlp_endpoint"`
	ServiceName        string         `json:"service_name"`
	ShutdownTimeout    timex.Duration `json:"shutdown_timeout"`
}

func toJsonConfig(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrGRPC:   c.EndpointAddrGRPC,
		DatabaseDSN:        c.DatabaseDSN,
		RunMigrations:      c.RunMigrations,
		SecretKey:          c.SecretKey,
		PasswordHashScheme: c.PasswordHashScheme,
		LogLevel:           c.LogLevel,
		SMTPHost:           c.SMTPHost,
		SMTPPort:           c.SMTPPort,
		SMTPUsername:       c.SMTPUsername,
		SMTPPassword:       c.SMTPPassword,
		SMTPFrom:           c.SMTPFrom,
		SMTPTimeout:        timex.Duration{Duration: c.SMTPTimeout},
		MailTemplateSource: c.MailTemplateSource,
		S3RootUser:         c.S3RootUser,
		S3RootPassword:     c.S3RootPassword,
		S3Bucket:           c.S3Bucket,
		S3Region:           c.S3Region,
		S3BaseEndpoint:     c.S3BaseEndpoint,
		S3Prefix:           c.S3Prefix,
		OTLPEndpoint:       c.OTLPEndpoint,
		ServiceName:        c.ServiceName,
		ShutdownTimeout:    timex.Duration{Duration: c.ShutdownTimeout},
	}
}

func (j *JsonConfig) apply(c *Config) {
	c.EndpointAddrGRPC = j.EndpointAddrGRPC
	c.DatabaseDSN = j.DatabaseDSN
	c.RunMigrations = j.RunMigrations
	c.SecretKey = j.SecretKey
	c.PasswordHashScheme = j.PasswordHashScheme
	c.LogLevel = j.LogLevel
	c.SMTPHost = j.SMTPHost
	c.SMTPPort = j.SMTPPort
	c.SMTPUsername = j.SMTPUsername
	c.SMTPPassword = j.SMTPPassword
	c.SMTPFrom = j.SMTPFrom
	c.SMTPTimeout = j.SMTPTimeout.Duration
	c.MailTemplateSource = j.MailTemplateSource
	c.S3RootUser = j.S3RootUser
	c.S3RootPassword = j.S3RootPassword
	c.S3Bucket = j.S3Bucket
	c.S3Region = j.S3Region
	c.S3BaseEndpoint = j.S3BaseEndpoint
	c.S3Prefix = j.S3Prefix
	c.OTLPEndpoint = j.OTLPEndpoint
	c.ServiceName = j.ServiceName
	c.ShutdownTimeout = j.ShutdownTimeout.Duration
}

// parseJson overlays values from the JSON file named by -c / -config (or
// SHOPACCOUNTS_CONFIG). Keys missing from the file keep their current
// value. An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile(EnvPrefix + "CONFIG")

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := toJsonConfig(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}
	c.apply(config)
}
