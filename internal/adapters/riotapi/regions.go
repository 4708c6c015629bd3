package riotapi

import (
	"fmt"
	"strings"

	"github.com/Amund211/riftlight/internal/domain"
)

// Routing regions serve account-v1 and match-v5
var routingRegions = map[string]bool{
	"americas": true,
	"europe":   true,
	"asia":     true,
	"sea":      true,
}

// Platforms serve summoner-v4 and league-v4, mapped to their routing region
var platforms = map[string]string{
	"br1":  "americas",
	"la1":  "americas",
	"la2":  "americas",
	"na1":  "americas",
	"eun1": "europe",
	"euw1": "europe",
	"me1":  "europe",
	"ru":   "europe",
	"tr1":  "europe",
	"jp1":  "asia",
	"kr":   "asia",
	"oc1":  "sea",
	"sg2":  "sea",
	"tw2":  "sea",
	"vn2":  "sea",
}

func NormalizeRegion(region string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(region))
	if !routingRegions[normalized] {
		return "", fmt.Errorf("%w: unknown region '%s'", domain.ErrValidation, region)
	}
	return normalized, nil
}

func NormalizePlatform(platform string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(platform))
	if _, ok := platforms[normalized]; !ok {
		return "", fmt.Errorf("%w: unknown platform '%s'", domain.ErrValidation, platform)
	}
	return normalized, nil
}

// RegionForPlatform returns the routing region serving the given platform
func RegionForPlatform(platform string) (string, error) {
	normalized, err := NormalizePlatform(platform)
	if err != nil {
		return "", err
	}
	return platforms[normalized], nil
}
