// internal/services/cart_metadata.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/javajoker/blob-shop/internal/models"
)

const (
	// CartMetadataKey holds the cart snapshot in checkout session metadata.
	CartMetadataKey = "cart"

	cartMetadataVersion = 1

	// Stripe rejects metadata values longer than 500 characters.
	maxMetadataValueLength = 500
)

var errCartMetadataTooLarge = errors.New("encoded cart exceeds metadata value limit")

type cartEnvelope struct {
	Version int                 `json:"v"`
	Items   models.CartSnapshot `json:"items"`
}

// EncodeCartMetadata serializes the cart into a versioned envelope.
func EncodeCartMetadata(items models.CartSnapshot) (string, error) {
	b, err := json.Marshal(cartEnvelope{Version: cartMetadataVersion, Items: items})
	if err != nil {
		return "", fmt.Errorf("failed to encode cart metadata: %w", err)
	}
	if len(b) > maxMetadataValueLength {
		return "", errCartMetadataTooLarge
	}
	return string(b), nil
}

// DecodeCartMetadata accepts the v1 envelope and the earlier bare array.
func DecodeCartMetadata(raw string) (models.CartSnapshot, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("cart metadata is empty")
	}

	if strings.HasPrefix(raw, "[") {
		var items models.CartSnapshot
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, fmt.Errorf("failed to decode legacy cart metadata: %w", err)
		}
		return items, nil
	}

	var envelope cartEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode cart metadata: %w", err)
	}
	if envelope.Version != cartMetadataVersion {
		return nil, fmt.Errorf("unsupported cart metadata version %d", envelope.Version)
	}
	return envelope.Items, nil
}
