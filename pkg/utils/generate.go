package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// ==================== UUID & TOKEN ====================

func GenerateSessionToken() uuid.UUID {
	return uuid.New()
}

// ==================== REFERENCE NUMBER ====================

// GenerateReference returns "{PREFIX}-{6 digits}-{3 digits}": the last six
// digits of the current unix millisecond clock followed by a random 000-999.
// It is not collision free; the bookings table carries a unique index.
func GenerateReference(prefix string) string {
	return generateReferenceAt(prefix, time.Now(), rand.Intn(1000))
}

func generateReferenceAt(prefix string, now time.Time, random int) string {
	suffix := now.UnixMilli() % 1_000_000
	return fmt.Sprintf("%s-%06d-%03d", prefix, suffix, random%1000)
}
