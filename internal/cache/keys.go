package cache

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/slabscan/pkg/models"
)

func NarrativeKey(scanID uuid.UUID, lang models.Language) string {
	return fmt.Sprintf("slabscan:narrative:%s:%s", scanID, lang)
}

func JobKey(jobID uuid.UUID) string {
	return fmt.Sprintf("slabscan:job:%s", jobID)
}

func RateLimitKey(clientID string) string {
	return fmt.Sprintf("slabscan:ratelimit:%s", clientID)
}
