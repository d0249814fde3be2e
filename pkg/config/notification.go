package config

// NotificationsConfig controls the optional webhook message sent after a
// scan. SkipEmptyRun suppresses it when no duplicate groups were found.
type NotificationsConfig struct {
	Detailed     bool
	SkipEmptyRun bool `yaml:"skip_empty_run" koanf:"skip_empty_run"`
	Service      NotificationService
}

// NotificationService holds one webhook URL per supported service.
type NotificationService struct {
	Discord string
}
