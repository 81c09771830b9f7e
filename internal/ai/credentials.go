package ai

import "strings"

const ProviderGemini = "gemini"

// Credentials identify the generative AI account a request runs under.
// Users configure their own key; a server-wide key may back requests
// that arrive without one.
type Credentials struct {
	APIKey   string
	Provider string
}

func (c Credentials) Validate() error {
	provider := strings.ToLower(strings.TrimSpace(c.Provider))
	if provider == "" {
		provider = ProviderGemini
	}
	if provider != ProviderGemini {
		return ErrUnsupportedProvider
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// WithFallback fills a missing API key from the server default, leaving
// explicit per-user keys untouched.
func (c Credentials) WithFallback(serverKey string) Credentials {
	if strings.TrimSpace(c.APIKey) == "" {
		c.APIKey = serverKey
	}
	if strings.TrimSpace(c.Provider) == "" {
		c.Provider = ProviderGemini
	}
	return c
}
