package config

// AppConfig holds the application configuration
type AppConfig struct {
	DBURL              string
	RedisAddress       string
	BearerToken        string
	ClassifierEndpoint string
}

// GetBearerToken returns the BearerToken from the config
func (c *AppConfig) GetBearerToken() string {
	return c.BearerToken
}

// GetClassifierEndpoint returns the eye-image classifier endpoint URL
func (c *AppConfig) GetClassifierEndpoint() string {
	return c.ClassifierEndpoint
}
