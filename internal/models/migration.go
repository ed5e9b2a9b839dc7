package models

import (
	"time"
)

// SchemaMigration records a migration file that has been applied
type SchemaMigration struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Version    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"version"`
	ExecutedAt time.Time `gorm:"autoCreateTime" json:"executed_at"`
}

// TableName ensures consistent table naming
func (SchemaMigration) TableName() string {
	return "schema_migrations"
}
