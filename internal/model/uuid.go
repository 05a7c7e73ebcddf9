package model

import "github.com/google/uuid"

// GenerateGUID creates the guid Chromium expects on every bookmark node.
func GenerateGUID() string {
	return uuid.New().String()
}
