package PublicHTTP

// statusResponse is the resolution verdict for one flag and one user. The
// verdict is always present: failures upstream resolve to enabled=false.
type statusResponse struct {
	FlagKey          string `json:"flag_key"`
	Enabled          bool   `json:"enabled"`
	UserID           string `json:"user_id"`
	SubscriptionTier string `json:"subscription_tier"`
}

// versionResponse carries the advisory config version clients poll to decide
// when to drop their local caches.
type versionResponse struct {
	Version int64 `json:"version"`
}
