package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/shopaccounts/internal/flagx"
)

var knownFlags = []string{
	"-a", "-d", "-s", "-u", "-p", "-b", "-g", "-e",
	"-migrate", "-hash-scheme", "-log-level",
	"-smtp-host", "-smtp-port", "-smtp-user", "-smtp-password", "-smtp-from", "-smtp-timeout",
	"-template-source", "-s3-prefix", "-otlp-endpoint", "-service-name", "-shutdown-timeout",
}

// parseFlags populates Config fields from command-line flags.
//
// Short forms kept from earlier releases:
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Only the flags listed in knownFlags are parsed; the rest of os.Args is
// left to other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3Prefix, "s3-prefix", config.S3Prefix, "S3 key prefix for mail templates")

	fs.BoolVar(&config.RunMigrations, "migrate", config.RunMigrations, "apply database migrations on start")
	fs.StringVar(&config.PasswordHashScheme, "hash-scheme", config.PasswordHashScheme, "password hash scheme (sha256, argon2id)")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	fs.StringVar(&config.SMTPHost, "smtp-host", config.SMTPHost, "SMTP host")
	fs.IntVar(&config.SMTPPort, "smtp-port", config.SMTPPort, "SMTP port")
	fs.StringVar(&config.SMTPUsername, "smtp-user", config.SMTPUsername, "SMTP username")
	fs.StringVar(&config.SMTPPassword, "smtp-password", config.SMTPPassword, "SMTP password")
	fs.StringVar(&config.SMTPFrom, "smtp-from", config.SMTPFrom, "sender address of outgoing mail")
	fs.DurationVar(&config.SMTPTimeout, "smtp-timeout", config.SMTPTimeout, "SMTP dial and send timeout")

	fs.StringVar(&config.MailTemplateSource, "template-source", config.MailTemplateSource, "mail template source (db, s3)")
	fs.StringVar(&config.OTLPEndpoint, "otlp-endpoint", config.OTLPEndpoint, "OTLP/HTTP traces endpoint")
	fs.StringVar(&config.ServiceName, "service-name", config.ServiceName, "service name reported to tracing")
	fs.DurationVar(&config.ShutdownTimeout, "shutdown-timeout", config.ShutdownTimeout, "graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
