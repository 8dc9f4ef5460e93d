package services

import (
	"context"
	"testing"

	"achievement-wordle/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountVerify(t *testing.T) {
	ctx := context.Background()
	platform := newStubPlatform()
	platform.profiles["Scott"] = true
	svc := NewAccountService(newTestDB(t), platform, nil)

	assert.True(t, svc.Verify(ctx, "Scott"))
	assert.True(t, svc.Verify(ctx, "  Scott "))
	assert.False(t, svc.Verify(ctx, "Nobody"))
	assert.False(t, svc.Verify(ctx, ""))

	platform.down = true
	assert.False(t, svc.Verify(ctx, "Scott"))
}

func TestAccountLinkAndRelink(t *testing.T) {
	ctx := context.Background()
	platform := newStubPlatform()
	platform.profiles["Scott"] = true
	platform.profiles["Jamiras"] = true
	svc := NewAccountService(newTestDB(t), platform, nil)

	svc.Now = fixedClock("2024-03-01T10:00:00Z")
	link, err := svc.Link(ctx, "p1", "Scott")
	require.NoError(t, err)
	assert.Equal(t, "Scott", link.ExternalUsername)
	assert.True(t, link.Verified)
	require.NotNil(t, link.LastVerifiedAt)
	firstLinkedAt := link.LinkedAt

	svc.Now = fixedClock("2024-03-05T10:00:00Z")
	relinked, err := svc.Link(ctx, "p1", "Jamiras")
	require.NoError(t, err)
	assert.Equal(t, link.ID, relinked.ID)
	assert.Equal(t, "Jamiras", relinked.ExternalUsername)
	assert.True(t, firstLinkedAt.Equal(relinked.LinkedAt))
	assert.True(t, relinked.LastVerifiedAt.After(firstLinkedAt))

	got, err := svc.Lookup(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Jamiras", got.ExternalUsername)
}

func TestAccountLinkUnknownUserLeavesStateAlone(t *testing.T) {
	ctx := context.Background()
	platform := newStubPlatform()
	platform.profiles["Scott"] = true
	svc := NewAccountService(newTestDB(t), platform, nil)

	_, err := svc.Link(ctx, "p1", "Scott")
	require.NoError(t, err)

	_, err = svc.Link(ctx, "p1", "Nobody")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	assert.Contains(t, apperrors.UserMessage(err), `"Nobody" could not be found`)

	link, err := svc.Lookup(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Scott", link.ExternalUsername)

	_, err = svc.Link(ctx, "p2", "Nobody")
	require.Error(t, err)
	missing, err := svc.Lookup(ctx, "p2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAccountLinkRequiresInput(t *testing.T) {
	svc := NewAccountService(newTestDB(t), newStubPlatform(), nil)
	_, err := svc.Link(context.Background(), "p1", "  ")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))
	_, err = svc.Link(context.Background(), "", "Scott")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))
}
