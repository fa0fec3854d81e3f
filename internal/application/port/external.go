package port

import (
	"context"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
)

// SettingsProvider supplies the provider/transmitter configuration. It is
// read at generation time and snapshotted onto the transmission; the
// pipeline never writes settings.
type SettingsProvider interface {
	ProviderProfile(ctx context.Context) (entity.ProviderProfile, error)
	TransmitterName(ctx context.Context) (string, error)
}
