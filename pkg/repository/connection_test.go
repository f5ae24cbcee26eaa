package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/haven-lab/lifeline/pkg/domain/interfaces"
	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

func runConnectionRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and Get round-trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		incidentID := types.NewIncidentID()
		created, err := repo.Connection().Create(ctx, &model.Connection{
			IncidentID: incidentID,
			Channel:    types.ChannelChat,
			StartedAt:  time.Now().UTC(),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID.String()).NotEqual("")

		retrieved, err := repo.Connection().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.IncidentID).Equal(incidentID)
		gt.Value(t, retrieved.Channel).Equal(types.ChannelChat)
	})

	t.Run("Get returns ErrNotFound for unknown ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Connection().Get(ctx, types.NewConnectionID())
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("Update persists close-out fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		started := time.Now().UTC().Add(-3 * time.Minute)
		created, err := repo.Connection().Create(ctx, &model.Connection{
			IncidentID: types.NewIncidentID(),
			Channel:    types.ChannelCall,
			StartedAt:  started,
		})
		gt.NoError(t, err).Required()

		ended := time.Now().UTC()
		created.Outcome = types.OutcomeResolved
		created.EndedAt = &ended
		created.DurationSeconds = int64(ended.Sub(started).Seconds())
		created.Rating = 5

		updated, err := repo.Connection().Update(ctx, created)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Outcome).Equal(types.OutcomeResolved)
		gt.Value(t, updated.EndedAt).NotNil()
		gt.Value(t, updated.Rating).Equal(5)
	})

	t.Run("ListByIncident returns oldest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		incidentID := types.NewIncidentID()
		base := time.Now().UTC()

		second, err := repo.Connection().Create(ctx, &model.Connection{
			IncidentID: incidentID,
			Channel:    types.ChannelChat,
			StartedAt:  base.Add(time.Minute),
		})
		gt.NoError(t, err).Required()

		first, err := repo.Connection().Create(ctx, &model.Connection{
			IncidentID: incidentID,
			Channel:    types.ChannelCall,
			StartedAt:  base,
		})
		gt.NoError(t, err).Required()

		_, err = repo.Connection().Create(ctx, &model.Connection{
			IncidentID: types.NewIncidentID(),
			Channel:    types.ChannelChat,
			StartedAt:  base,
		})
		gt.NoError(t, err).Required()

		list, err := repo.Connection().ListByIncident(ctx, incidentID)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(2)
		gt.Value(t, list[0].ID).Equal(first.ID)
		gt.Value(t, list[1].ID).Equal(second.ID)
	})
}

func TestConnectionRepository_Memory(t *testing.T) {
	runConnectionRepositoryTest(t, newMemoryRepo)
}

func TestConnectionRepository_Firestore(t *testing.T) {
	runConnectionRepositoryTest(t, newFirestoreRepo)
}
