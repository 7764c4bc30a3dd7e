package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindByPaymentIntentID(ctx context.Context, db *gorm.DB, paymentIntentID string) (*Invoice, error)
	ListByParticipant(ctx context.Context, db *gorm.DB, principalID snowflake.ID) ([]Invoice, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
}
