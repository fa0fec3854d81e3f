package external

import (
	"context"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/application/port"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/config"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
)

// ConfigSettingsProvider serves the provider identity from application
// configuration. The pipeline snapshots the returned profile onto each
// transmission, so config edits only affect future batches.
type ConfigSettingsProvider struct {
	cfg *config.Config
}

// NewConfigSettingsProvider creates a settings provider backed by the
// loaded configuration
func NewConfigSettingsProvider(cfg *config.Config) *ConfigSettingsProvider {
	return &ConfigSettingsProvider{cfg: cfg}
}

// ProviderProfile returns the issuer identity for new transmissions
func (p *ConfigSettingsProvider) ProviderProfile(ctx context.Context) (entity.ProviderProfile, error) {
	return p.cfg.ProviderProfile(), nil
}

// TransmitterName returns the name reported in the transmission header
func (p *ConfigSettingsProvider) TransmitterName(ctx context.Context) (string, error) {
	return p.cfg.Transmitter.Name, nil
}

var _ port.SettingsProvider = (*ConfigSettingsProvider)(nil)
