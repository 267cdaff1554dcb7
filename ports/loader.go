package ports

import (
	"voxreport/domain/volume"
)

// VolumeLoader loads a volumetric map from a resolved filesystem path.
//
// Implementations must return an error wrapping core.ErrMapNotFound when the
// path does not exist, and core.ErrMapUnreadable for files that exist but
// cannot be decoded; callers branch on that distinction per statistic mode.
type VolumeLoader interface {
	Load(path string) (*volume.Volume, error)
}
