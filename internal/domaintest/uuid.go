package domaintest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// NewPUUID returns a random opaque player id
func NewPUUID(t *testing.T) string {
	id, err := uuid.NewRandom()
	require.NoError(t, err)
	return "puuid-" + id.String()
}
