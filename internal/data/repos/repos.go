package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/qrcodes-backend/internal/data/repos/qrcode"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
)

type QRCodeRepo = qrcode.QRCodeRepo

func NewQRCodeRepo(db *gorm.DB, baseLog *logger.Logger) QRCodeRepo {
	return qrcode.NewQRCodeRepo(db, baseLog)
}
