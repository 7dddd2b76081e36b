package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/qrcodes-backend/internal/data/repos"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
)

type Repos struct {
	QRCode repos.QRCodeRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		QRCode: repos.NewQRCodeRepo(db, log),
	}
}
