package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sutura/pkg/domain"
	dErrors "sutura/pkg/domain-errors"
)

var jwtService = NewService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)
var testActor = domain.Actor{
	ID:     domain.NewActorID(),
	Role:   domain.RoleAgent,
	Region: "Dakar",
	Name:   "Awa Diop",
}
var expiresIn = time.Hour

func Test_GenerateAccessToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(testActor, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, testActor.ID.String(), claims.Subject)
	assert.Equal(t, "agent", claims.Role)
	assert.Equal(t, "Dakar", claims.Region)
	assert.Equal(t, "Awa Diop", claims.Name)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthenticated))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(testActor, -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthenticated))
	assert.Contains(t, err.Error(), "expired")
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	other := NewService("another-signing-key", "test-issuer", "test-audience")
	token, err := other.GenerateAccessToken(testActor, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthenticated))
}

func Test_ValidateToken_WrongAudience(t *testing.T) {
	other := NewService("test-signing-key", "test-issuer", "another-audience")
	token, err := other.GenerateAccessToken(testActor, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthenticated))
}

func Test_ActorFromToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(testActor, expiresIn)
	require.NoError(t, err)

	actor, err := jwtService.ActorFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, testActor, actor)
}

func Test_ActorFromToken_UnsupportedRole(t *testing.T) {
	// Sign a token whose role claim is outside the closed role set; the
	// actor reconstruction must reject it rather than pass it downstream.
	forged := testActor
	forged.Role = domain.Role("root")
	token, err := jwtService.GenerateAccessToken(forged, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ActorFromToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthenticated))
}

func Test_ActorFromToken_MissingRegion(t *testing.T) {
	regionless := testActor
	regionless.Region = ""
	token, err := jwtService.GenerateAccessToken(regionless, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ActorFromToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthenticated))
}
