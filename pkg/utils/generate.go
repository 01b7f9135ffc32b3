package utils

import (
	"github.com/google/uuid"
)

// ==================== UUID & TOKEN ====================

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

func GenerateSessionToken() uuid.UUID {
	return uuid.New()
}

// IdempotencyKey builds a stable key for a remote operation on a resource
func IdempotencyKey(operation string, id uuid.UUID) string {
	return operation + "-" + id.String()
}
