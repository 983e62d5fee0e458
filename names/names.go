package names

const (
	CacheRedis             = "primary"
	DatabasePrimary        = "primary"
	HttpAdminServer        = "admin"
	HttpPublicServer       = "public"
	FlagRepository         = "flag"
	OverrideRepository     = "override"
	SubscriptionRepository = "subscription"
	VersionRepository      = "version"
	RateLimitRepository    = "rate_limit"
	FlagService            = "flag"
	AdminService           = "admin"
)
