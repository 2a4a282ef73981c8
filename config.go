package console

import "time"

// Config holds console options
type Config interface {
	GetBaseURL() string
	GetHTTPTimeout() time.Duration
	GetStoreDSN() string
	GetContextKey() string
	GetLoginRoute() string
	GetLoadingView() string
}

// SimpleConfig is a plain-struct Config for consumers that do not bring
// their own configuration container.
type SimpleConfig struct {
	BaseURL     string
	HTTPTimeout time.Duration
	StoreDSN    string
	ContextKey  string
	LoginRoute  string
	LoadingView string
}

func (c SimpleConfig) GetBaseURL() string {
	if c.BaseURL == "" {
		return "http://localhost:8000"
	}
	return c.BaseURL
}

func (c SimpleConfig) GetHTTPTimeout() time.Duration {
	if c.HTTPTimeout <= 0 {
		return 10 * time.Second
	}
	return c.HTTPTimeout
}

func (c SimpleConfig) GetStoreDSN() string {
	if c.StoreDSN == "" {
		return "file:console_credentials.db"
	}
	return c.StoreDSN
}

func (c SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "current_user"
	}
	return c.ContextKey
}

func (c SimpleConfig) GetLoginRoute() string {
	if c.LoginRoute == "" {
		return "/login"
	}
	return c.LoginRoute
}

func (c SimpleConfig) GetLoadingView() string {
	if c.LoadingView == "" {
		return "loading"
	}
	return c.LoadingView
}
