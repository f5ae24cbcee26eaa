package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/haven-lab/lifeline/pkg/domain/interfaces"
	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

func runIncidentLogRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Append assigns ID and preserves detail", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		incidentID := types.NewIncidentID()
		entry, err := repo.IncidentLog().Append(ctx, &model.IncidentLogEntry{
			IncidentID: incidentID,
			Action:     "CREATED",
			Detail:     map[string]any{"crisis_type": "PANIC_ATTACK"},
			Actor:      "subject-1",
			CreatedAt:  time.Now().UTC(),
		})
		gt.NoError(t, err).Required()

		gt.Value(t, entry.ID.String()).NotEqual("")
		gt.Value(t, entry.Action).Equal("CREATED")
		gt.Value(t, entry.Detail["crisis_type"]).Equal("PANIC_ATTACK")
	})

	t.Run("ListByIncident returns oldest first per incident", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		incidentID := types.NewIncidentID()
		base := time.Now().UTC()

		_, err := repo.IncidentLog().Append(ctx, &model.IncidentLogEntry{
			IncidentID: incidentID,
			Action:     "FOLLOWUP_SCHEDULED",
			Actor:      "system",
			CreatedAt:  base.Add(time.Second),
		})
		gt.NoError(t, err).Required()

		_, err = repo.IncidentLog().Append(ctx, &model.IncidentLogEntry{
			IncidentID: incidentID,
			Action:     "CREATED",
			Actor:      "subject-2",
			CreatedAt:  base,
		})
		gt.NoError(t, err).Required()

		_, err = repo.IncidentLog().Append(ctx, &model.IncidentLogEntry{
			IncidentID: types.NewIncidentID(),
			Action:     "CREATED",
			Actor:      "subject-3",
			CreatedAt:  base,
		})
		gt.NoError(t, err).Required()

		entries, err := repo.IncidentLog().ListByIncident(ctx, incidentID)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(2)
		gt.Value(t, entries[0].Action).Equal("CREATED")
		gt.Value(t, entries[1].Action).Equal("FOLLOWUP_SCHEDULED")
	})
}

func TestIncidentLogRepository_Memory(t *testing.T) {
	runIncidentLogRepositoryTest(t, newMemoryRepo)
}

func TestIncidentLogRepository_Firestore(t *testing.T) {
	runIncidentLogRepositoryTest(t, newFirestoreRepo)
}
