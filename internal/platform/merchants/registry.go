package merchants

import (
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"payrelay/internal/platform/config"
)

// Tenant is one merchant's resolved configuration. Built once at startup and
// immutable afterwards.
type Tenant struct {
	Key              string
	APIKey           string
	ClientID         string
	ClientSecret     string
	MerchantID       string
	ProviderAPIKey   string
	SourceCode       string
	WebhookSecret    string
	RequireSignature bool
}

type Registry struct {
	byTenantKey map[string]*Tenant
	byAPIKey    map[string]*Tenant
}

// NewRegistry builds the tenant set from the merchants.* key space. Tenants
// missing OAuth credentials are dropped with a warning. A tenant without an
// inbound api key gets a generated one, logged openly; it changes on every
// restart because nothing here is persisted.
func NewRegistry(cfg map[string]config.MerchantConfig) *Registry {
	r := &Registry{
		byTenantKey: make(map[string]*Tenant),
		byAPIKey:    make(map[string]*Tenant),
	}

	// Deterministic build order so collision handling is stable.
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		mc := cfg[key]
		if mc.ClientID == "" || mc.ClientSecret == "" {
			log.Warn().Str("tenant", key).Msg("merchant missing oauth credentials, skipping")
			continue
		}

		apiKey := mc.APIKey
		if apiKey == "" {
			apiKey = "key_" + uuid.New().String()
			log.Info().Str("tenant", key).Str("api_key", apiKey).
				Msg("merchant has no api key configured, generated one for this process")
		}

		if _, exists := r.byAPIKey[apiKey]; exists {
			log.Warn().Str("tenant", key).Msg("duplicate api key across merchants, skipping")
			continue
		}

		t := &Tenant{
			Key:              key,
			APIKey:           apiKey,
			ClientID:         mc.ClientID,
			ClientSecret:     mc.ClientSecret,
			MerchantID:       mc.MerchantID,
			ProviderAPIKey:   mc.ProviderAPIKey,
			SourceCode:       mc.SourceCode,
			WebhookSecret:    mc.WebhookSecret,
			RequireSignature: mc.RequireSignature,
		}
		r.byTenantKey[key] = t
		r.byAPIKey[apiKey] = t
	}

	if len(r.byTenantKey) == 0 {
		log.Warn().Msg("no merchants resolved from configuration")
	}

	return r
}

func (r *Registry) ByAPIKey(key string) (*Tenant, bool) {
	t, ok := r.byAPIKey[key]
	return t, ok
}

func (r *Registry) ByTenantKey(key string) (*Tenant, bool) {
	t, ok := r.byTenantKey[key]
	return t, ok
}

func (r *Registry) All() []*Tenant {
	tenants := make([]*Tenant, 0, len(r.byTenantKey))
	for _, t := range r.byTenantKey {
		tenants = append(tenants, t)
	}
	sort.Slice(tenants, func(i, j int) bool { return tenants[i].Key < tenants[j].Key })
	return tenants
}

func (r *Registry) Len() int {
	return len(r.byTenantKey)
}
