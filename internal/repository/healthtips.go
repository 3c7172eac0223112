package repository

import (
	"github.com/AnshRaj112/healthtips-backend/internal/models"
)

const HealthTipsCollection = "healthtips"

type HealthTips = Collection[models.HealthTip, *models.HealthTip]

func NewHealthTips(src Source, opts ...Option) (*HealthTips, error) {
	coll, err := src.Collection(HealthTipsCollection)
	if err != nil {
		return nil, err
	}
	return NewCollection[models.HealthTip](coll, opts...), nil
}
