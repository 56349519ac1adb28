package repository

// BlacklistRepository defines access to blocked emails and IP addresses
type BlacklistRepository interface {
	IsEmailBlacklisted(email string) (bool, error)
	IsIPBlacklisted(ip string) (bool, error)
	AddEmail(email string) error
	AddIP(ip string) error
}
