package analyzer

import (
	"github.com/anime-shed/photo-inspector-go/pkg/models"
)

// TechnicalReport is an alias to the shared models.TechnicalReport
type TechnicalReport = models.TechnicalReport
