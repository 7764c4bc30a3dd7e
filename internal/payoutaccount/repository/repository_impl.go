package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	payoutdomain "github.com/smallbiznis/trueup/internal/payoutaccount/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() payoutdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, account *payoutdomain.PayoutAccount) error {
	return db.WithContext(ctx).Create(account).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*payoutdomain.PayoutAccount, error) {
	var account payoutdomain.PayoutAccount
	err := db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *repo) FindByOwnerID(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) (*payoutdomain.PayoutAccount, error) {
	var account payoutdomain.PayoutAccount
	err := db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *repo) ListIDs(ctx context.Context, db *gorm.DB) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).Model(&payoutdomain.PayoutAccount{}).Pluck("id", &ids).Error
	return ids, err
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	return db.WithContext(ctx).
		Model(&payoutdomain.PayoutAccount{}).
		Where("id = ?", id).
		Updates(fields).Error
}
