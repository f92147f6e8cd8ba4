package playback

import (
	"context"
	"fmt"

	"github.com/julianstephens/alarmist/internal/audio"
	apperrors "github.com/julianstephens/alarmist/internal/errors"
	"github.com/julianstephens/alarmist/internal/models"
)

// Strategy is one layer of the sound fallback chain. Stop must be safe to call
// whether or not Start ran or succeeded, and any number of times.
type Strategy interface {
	Name() string
	Start(ctx context.Context, alarm models.Alarm) error
	Stop() error
}

// DeviceFunc opens the shared audio output.
type DeviceFunc func() (audio.Device, error)

// SystemPlayerFunc locates an external audio player.
type SystemPlayerFunc func() (audio.SystemPlayer, error)

func layerError(layer string, err error) error {
	return fmt.Errorf("%s layer: %w: %v", layer, apperrors.ErrPlayback, err)
}
