package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerateTrackingNumber returns the first four characters of the order id,
// uppercased, followed by four random uppercase hex characters.
func GenerateTrackingNumber(orderID primitive.ObjectID) (string, error) {
	suffix := make([]byte, 2)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("tracking number entropy: %w", err)
	}
	prefix := orderID.Hex()[:4]
	return strings.ToUpper(prefix + hex.EncodeToString(suffix)), nil
}

// NextTrackingNumber generates a tracking number that differs from previous.
func NextTrackingNumber(orderID primitive.ObjectID, previous string) (string, error) {
	for {
		tn, err := GenerateTrackingNumber(orderID)
		if err != nil {
			return "", err
		}
		if tn != previous {
			return tn, nil
		}
	}
}
