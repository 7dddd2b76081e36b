package qrcode

import (
	"context"

	"gorm.io/gorm"

	types "github.com/yungbote/qrcodes-backend/internal/domain"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
)

type QRCodeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rec *types.QRCode) (*types.QRCode, error)
	// GetByID returns nil, nil when the record does not exist.
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.QRCode, error)
	// ListByShop returns the shop's records ordered by id descending.
	ListByShop(ctx context.Context, tx *gorm.DB, shop string) ([]*types.QRCode, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, shop string, id uint, updates map[string]interface{}) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, shop string, id uint) (bool, error)
	IncrementScans(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}

type qrCodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQRCodeRepo(db *gorm.DB, baseLog *logger.Logger) QRCodeRepo {
	repoLog := baseLog.With("repo", "QRCodeRepo")
	return &qrCodeRepo{db: db, log: repoLog}
}

func (r *qrCodeRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *qrCodeRepo) Create(ctx context.Context, tx *gorm.DB, rec *types.QRCode) (*types.QRCode, error) {
	if err := r.conn(tx).WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *qrCodeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.QRCode, error) {
	var results []*types.QRCode
	if err := r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *qrCodeRepo) ListByShop(ctx context.Context, tx *gorm.DB, shop string) ([]*types.QRCode, error) {
	results := []*types.QRCode{}
	if err := r.conn(tx).WithContext(ctx).
		Where("shop = ?", shop).
		Order("id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *qrCodeRepo) UpdateFields(ctx context.Context, tx *gorm.DB, shop string, id uint, updates map[string]interface{}) (bool, error) {
	if len(updates) == 0 {
		return false, nil
	}
	res := r.conn(tx).WithContext(ctx).
		Model(&types.QRCode{}).
		Where("id = ? AND shop = ?", id, shop).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *qrCodeRepo) Delete(ctx context.Context, tx *gorm.DB, shop string, id uint) (bool, error) {
	res := r.conn(tx).WithContext(ctx).
		Where("id = ? AND shop = ?", id, shop).
		Delete(&types.QRCode{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *qrCodeRepo) IncrementScans(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&types.QRCode{}).
		Where("id = ?", id).
		UpdateColumn("scans", gorm.Expr("scans + ?", 1))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
