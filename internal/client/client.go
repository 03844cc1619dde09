package client

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Tier classifies a client for freight discount purposes.
type Tier string

const (
	TierBronze Tier = "BRONZE"
	TierSilver Tier = "SILVER"
	TierGold   Tier = "GOLD"
)

// ParseTier normalises a stored tier value. Unknown values are rejected so a
// bad row cannot silently price freight as BRONZE.
func ParseTier(value string) (Tier, error) {
	switch Tier(strings.ToUpper(strings.TrimSpace(value))) {
	case TierBronze:
		return TierBronze, nil
	case TierSilver:
		return TierSilver, nil
	case TierGold:
		return TierGold, nil
	default:
		return "", fmt.Errorf("client: unknown tier %q", value)
	}
}

// Client represents a registered buyer. Tier is immutable input to pricing.
type Client struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Tier  Tier      `json:"tier"`
}
