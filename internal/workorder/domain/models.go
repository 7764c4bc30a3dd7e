// Package domain contains persistence models for work orders.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/trueup/internal/lifecycle"
	"gorm.io/datatypes"
)

// WorkOrder is a unit of work between an owner and a counterparty. Status
// only moves along the lifecycle package's edge table.
type WorkOrder struct {
	ID             snowflake.ID      `gorm:"primaryKey"`
	OwnerID        snowflake.ID      `gorm:"not null;index"`
	CounterpartyID snowflake.ID      `gorm:"index"`
	Title          string            `gorm:"type:text"`
	Status         lifecycle.Status  `gorm:"type:text;not null"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (WorkOrder) TableName() string { return "work_orders" }
