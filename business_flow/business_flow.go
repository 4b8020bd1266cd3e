// Package businessflow contains the business logic for the application.
package businessflow

import (
	"github.com/amirphl/ugc-creator-finder/config"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for audit logging and request tracking
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// redisKey namespaces a cache key suffix with the configured prefix
func redisKey(cfg config.CacheConfig, suffix string) string {
	if cfg.RedisPrefix == "" {
		return suffix
	}
	return cfg.RedisPrefix + ":" + suffix
}
