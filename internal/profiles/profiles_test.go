package profiles

import (
	"context"
	"testing"

	"github.com/angelmondragon/streamflix-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilesAreScopedToOwner(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)
	ctx := context.Background()

	kids, err := svc.Create(ctx, 1, ProfileInput{Name: " Kids "})
	require.NoError(t, err)
	assert.Equal(t, "Kids", kids.Name)
	_, err = svc.Create(ctx, 2, ProfileInput{Name: "Other"})
	require.NoError(t, err)

	mine, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	_, err = svc.Get(ctx, 2, kids.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = svc.Update(ctx, 2, kids.ID, ProfileInput{Name: "Hijack"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	renamed, err := svc.Update(ctx, 1, kids.ID, ProfileInput{Name: "Family"})
	require.NoError(t, err)
	assert.Equal(t, "Family", renamed.Name)

	require.NoError(t, svc.Delete(ctx, 1, kids.ID))
	mine, err = svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
