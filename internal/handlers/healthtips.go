package handlers

import (
	"github.com/AnshRaj112/healthtips-backend/internal/models"
	"github.com/AnshRaj112/healthtips-backend/internal/validation"
)

type HealthTipHandler = Resource[models.HealthTip]

func NewHealthTipHandler(store Store[models.HealthTip]) *HealthTipHandler {
	return &HealthTipHandler{
		store:    store,
		name:     "healthtip",
		title:    "Healthtip",
		plural:   "health tips",
		validate: validation.HealthTip,
		decode:   validation.DecodeHealthTip,
		fields:   validation.HealthTipUpdate,
	}
}
