package dto

// Principal identifies the subject a flag is resolved for.
type Principal struct {
	UserID string
	Tier   Tier
}
