package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// caller's access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// Role names known to the service.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// MailUserRegistration is the template name used for self-registration mails.
const MailUserRegistration = "userRegistration"

// DefaultLocale is the last locale tried when resolving a mail template.
const DefaultLocale = "en"
