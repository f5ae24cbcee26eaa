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

func runIncidentRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns ID and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Incident().Create(ctx, &model.Incident{
			SubjectID:       "subject-1",
			CrisisType:      types.CrisisPanicAttack,
			UrgencyLevel:    types.UrgencyModerate,
			Status:          types.IncidentStatusActive,
			Description:     "breathing trouble during a meeting",
			TriggerKeywords: []string{"panic"},
		})
		gt.NoError(t, err).Required()

		gt.Value(t, created.ID.String()).NotEqual("")
		gt.Bool(t, created.CreatedAt.IsZero()).False()
		gt.Bool(t, created.UpdatedAt.IsZero()).False()

		second, err := repo.Incident().Create(ctx, &model.Incident{
			SubjectID:    "subject-1",
			CrisisType:   types.CrisisBurnout,
			UrgencyLevel: types.UrgencyLow,
			Status:       types.IncidentStatusActive,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, second.ID).NotEqual(created.ID)
	})

	t.Run("Get retrieves existing incident", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Incident().Create(ctx, &model.Incident{
			SubjectID:    "subject-2",
			CrisisType:   types.CrisisSelfHarm,
			UrgencyLevel: types.UrgencyHigh,
			Status:       types.IncidentStatusActive,
			Location:     "Austin, TX",
		})
		gt.NoError(t, err).Required()

		retrieved, err := repo.Incident().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.CrisisType).Equal(types.CrisisSelfHarm)
		gt.Value(t, retrieved.Location).Equal("Austin, TX")
	})

	t.Run("Get returns ErrNotFound for unknown ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Incident().Get(ctx, types.NewIncidentID())
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("Update persists status and keeps CreatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Incident().Create(ctx, &model.Incident{
			SubjectID:    "subject-3",
			CrisisType:   types.CrisisSevereDistress,
			UrgencyLevel: types.UrgencyModerate,
			Status:       types.IncidentStatusActive,
		})
		gt.NoError(t, err).Required()

		created.Status = types.IncidentStatusResolved
		created.Resolution = "talked through with a listener"
		updated, err := repo.Incident().Update(ctx, created)
		gt.NoError(t, err).Required()

		gt.Value(t, updated.Status).Equal(types.IncidentStatusResolved)
		gt.Value(t, updated.Resolution).Equal("talked through with a listener")
		gt.Bool(t, updated.CreatedAt.Equal(created.CreatedAt)).True()
	})

	t.Run("ListBySubject returns newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first, err := repo.Incident().Create(ctx, &model.Incident{
			SubjectID:    "subject-4",
			CrisisType:   types.CrisisBurnout,
			UrgencyLevel: types.UrgencyLow,
			Status:       types.IncidentStatusActive,
		})
		gt.NoError(t, err).Required()

		time.Sleep(10 * time.Millisecond)

		second, err := repo.Incident().Create(ctx, &model.Incident{
			SubjectID:    "subject-4",
			CrisisType:   types.CrisisPanicAttack,
			UrgencyLevel: types.UrgencyModerate,
			Status:       types.IncidentStatusActive,
		})
		gt.NoError(t, err).Required()

		_, err = repo.Incident().Create(ctx, &model.Incident{
			SubjectID:    "someone-else",
			CrisisType:   types.CrisisBurnout,
			UrgencyLevel: types.UrgencyLow,
			Status:       types.IncidentStatusActive,
		})
		gt.NoError(t, err).Required()

		list, err := repo.Incident().ListBySubject(ctx, "subject-4")
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(2)
		gt.Value(t, list[0].ID).Equal(second.ID)
		gt.Value(t, list[1].ID).Equal(first.ID)
	})

	t.Run("ListDueFollowUps filters status, deadline and completion", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		now := time.Now().UTC()
		past := now.Add(-time.Hour)
		future := now.Add(time.Hour)

		due, err := repo.Incident().Create(ctx, &model.Incident{
			SubjectID:        "subject-5",
			CrisisType:       types.CrisisSelfHarm,
			UrgencyLevel:     types.UrgencyHigh,
			Status:           types.IncidentStatusFollowUpPending,
			FollowUpDeadline: &past,
		})
		gt.NoError(t, err).Required()

		_, err = repo.Incident().Create(ctx, &model.Incident{
			SubjectID:        "subject-5",
			CrisisType:       types.CrisisSelfHarm,
			UrgencyLevel:     types.UrgencyHigh,
			Status:           types.IncidentStatusFollowUpPending,
			FollowUpDeadline: &future,
		})
		gt.NoError(t, err).Required()

		_, err = repo.Incident().Create(ctx, &model.Incident{
			SubjectID:        "subject-5",
			CrisisType:       types.CrisisSelfHarm,
			UrgencyLevel:     types.UrgencyHigh,
			Status:           types.IncidentStatusResolved,
			FollowUpDeadline: &past,
		})
		gt.NoError(t, err).Required()

		list, err := repo.Incident().ListDueFollowUps(ctx, now)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1)
		gt.Value(t, list[0].ID).Equal(due.ID)
	})

	t.Run("MarkFollowUpComplete is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		past := time.Now().UTC().Add(-time.Minute)
		created, err := repo.Incident().Create(ctx, &model.Incident{
			SubjectID:        "subject-6",
			CrisisType:       types.CrisisSubstanceAbuse,
			UrgencyLevel:     types.UrgencyHigh,
			Status:           types.IncidentStatusFollowUpPending,
			FollowUpDeadline: &past,
		})
		gt.NoError(t, err).Required()

		marked, err := repo.Incident().MarkFollowUpComplete(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, marked).True()

		marked, err = repo.Incident().MarkFollowUpComplete(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, marked).False()

		list, err := repo.Incident().ListDueFollowUps(ctx, time.Now().UTC())
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(0)
	})
}

func TestIncidentRepository_Memory(t *testing.T) {
	runIncidentRepositoryTest(t, newMemoryRepo)
}

func TestIncidentRepository_Firestore(t *testing.T) {
	runIncidentRepositoryTest(t, newFirestoreRepo)
}
