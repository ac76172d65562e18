package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// EndpointValidator checks the RCSB endpoint URLs taken from configuration.
type EndpointValidator struct {
	// AllowInsecure permits plain http
	AllowInsecure bool
	// AllowLocalhost permits loopback hosts, e.g. a local mirror or test server
	AllowLocalhost bool
	MaxLength      int
}

// NewEndpointValidator requires https on a public host.
func NewEndpointValidator() *EndpointValidator {
	return &EndpointValidator{
		AllowInsecure:  false,
		AllowLocalhost: false,
		MaxLength:      2048,
	}
}

// NewPermissiveEndpointValidator accepts local http mirrors.
func NewPermissiveEndpointValidator() *EndpointValidator {
	return &EndpointValidator{
		AllowInsecure:  true,
		AllowLocalhost: true,
		MaxLength:      2048,
	}
}

// ValidateAndNormalize validates an endpoint URL and returns it without a
// trailing slash.
func (v *EndpointValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	switch parsed.Scheme {
	case "https":
	case "http":
		if !v.AllowInsecure {
			return "", fmt.Errorf("endpoint must use https")
		}
	default:
		return "", fmt.Errorf("URL must use http or https protocol")
	}

	if parsed.Host == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}
	if err := v.validateHost(parsed.Host); err != nil {
		return "", err
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return "", fmt.Errorf("endpoint must not carry a query or fragment")
	}

	parsed.Path = strings.TrimRight(parsed.Path, "/")
	return parsed.String(), nil
}

func (v *EndpointValidator) validateHost(host string) error {
	hostname := host
	if strings.Contains(host, ":") {
		var err error
		hostname, _, err = net.SplitHostPort(host)
		if err != nil {
			return fmt.Errorf("invalid host format: %w", err)
		}
	}

	if v.AllowLocalhost {
		return nil
	}
	if isLocalhost(hostname) {
		return fmt.Errorf("localhost endpoints are not permitted")
	}
	if ip := net.ParseIP(hostname); ip != nil && (ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()) {
		return fmt.Errorf("private IP addresses are not permitted")
	}
	return nil
}

func isLocalhost(hostname string) bool {
	return hostname == "localhost" ||
		hostname == "127.0.0.1" ||
		hostname == "::1" ||
		strings.HasSuffix(hostname, ".localhost")
}
