package models

import (
	"time"

	"gorm.io/datatypes"
)

// ProfileKey is the well-known key under which the institute profile is
// stored. The profile is an unversioned JSON document; its absence means
// first-run.
const ProfileKey = "userProfile"

// ProfileDocument is a durably stored JSON blob keyed by name.
type ProfileDocument struct {
	Key       string         `gorm:"primaryKey;size:64" json:"key"`
	Data      datatypes.JSON `gorm:"type:jsonb" json:"data"`
	UpdatedAt time.Time      `json:"updated_at"`
}
