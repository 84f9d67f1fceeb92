package domain

// Credentials API key pair for the exchange account.
// The secret key never leaves local signature computation and must not be logged.
type Credentials struct {
	APIKey    string `json:"api_key"`
	SecretKey string `json:"secret_key"`
}

// IsComplete reports whether both fields are set.
func (c Credentials) IsComplete() bool {
	return c.APIKey != "" && c.SecretKey != ""
}
