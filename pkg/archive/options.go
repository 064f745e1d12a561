package archive

import (
	"fmt"
	"net/url"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Options controls one archiving run. The zero value verifies TLS, uses
// no proxy, applies no timeout, and keeps failed references in place.
type Options struct {
	// SkipTLSVerify accepts invalid certificates and hostname
	// mismatches. Dangerous; off by default.
	SkipTLSVerify bool
	// Proxy routes all fetches through the given endpoint.
	Proxy *ProxyConfig
	// Timeout applies to each fetch individually, not the whole run.
	Timeout time.Duration
	// UserAgent overrides the default browser user agent string.
	UserAgent string
	// StripFailed removes references whose fetch failed instead of
	// leaving the original external reference in place.
	StripFailed bool
}

// ProxyConfig describes a proxy endpoint for the fetcher.
type ProxyConfig struct {
	Scheme   string // http, https, or socks5
	Host     string
	Port     int
	Username string
	Password string
}

// URL renders the proxy as an endpoint URL string.
func (p *ProxyConfig) URL() string {
	u := &url.URL{
		Scheme: p.Scheme,
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
	}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	return u.String()
}

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	return o
}

// Validate rejects unsupported option values before any network I/O.
func (o Options) Validate() error {
	if o.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout %v", ErrUnsupportedOption, o.Timeout)
	}
	if p := o.Proxy; p != nil {
		switch p.Scheme {
		case "http", "https", "socks5":
		default:
			return fmt.Errorf("%w: proxy scheme %q", ErrUnsupportedOption, p.Scheme)
		}
		if p.Host == "" {
			return fmt.Errorf("%w: proxy host is empty", ErrUnsupportedOption)
		}
		if p.Port <= 0 || p.Port > 65535 {
			return fmt.Errorf("%w: proxy port %d", ErrUnsupportedOption, p.Port)
		}
	}
	return nil
}
