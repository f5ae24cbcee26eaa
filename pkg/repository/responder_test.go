package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/haven-lab/lifeline/pkg/domain/interfaces"
	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

func runResponderRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	newResponder := func(subjectID string) *model.Responder {
		return &model.Responder{
			SubjectID:         subjectID,
			TrainingCompleted: true,
			IsActive:          true,
			IsAvailable:       true,
			Specializations:   []types.CrisisType{types.CrisisPanicAttack},
			Languages:         []string{"en"},
			Region:            "TX",
			City:              "Austin",
		}
	}

	t.Run("Create applies default caseload cap", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Responder().Create(ctx, newResponder("vol-1"))
		gt.NoError(t, err).Required()

		gt.Value(t, created.ID.String()).NotEqual("")
		gt.Value(t, created.MaxConcurrentCases).Equal(model.DefaultMaxConcurrentCases)
		gt.Value(t, created.CurrentCaseCount).Equal(0)
	})

	t.Run("GetBySubject returns nil for unknown subject", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		responder, err := repo.Responder().GetBySubject(ctx, "nobody")
		gt.NoError(t, err).Required()
		gt.Value(t, responder).Nil()

		_, err = repo.Responder().Create(ctx, newResponder("vol-2"))
		gt.NoError(t, err).Required()

		responder, err = repo.Responder().GetBySubject(ctx, "vol-2")
		gt.NoError(t, err).Required()
		gt.Value(t, responder).NotNil()
		gt.Value(t, responder.SubjectID).Equal("vol-2")
	})

	t.Run("ListBySpecialization pre-filters dispatch eligibility", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		eligible, err := repo.Responder().Create(ctx, newResponder("vol-3"))
		gt.NoError(t, err).Required()

		untrained := newResponder("vol-4")
		untrained.TrainingCompleted = false
		_, err = repo.Responder().Create(ctx, untrained)
		gt.NoError(t, err).Required()

		unavailable := newResponder("vol-5")
		unavailable.IsAvailable = false
		_, err = repo.Responder().Create(ctx, unavailable)
		gt.NoError(t, err).Required()

		otherSpec := newResponder("vol-6")
		otherSpec.Specializations = []types.CrisisType{types.CrisisBurnout}
		_, err = repo.Responder().Create(ctx, otherSpec)
		gt.NoError(t, err).Required()

		list, err := repo.Responder().ListBySpecialization(ctx, types.CrisisPanicAttack)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1)
		gt.Value(t, list[0].ID).Equal(eligible.ID)
	})

	t.Run("Reserve stops at the responder's cap", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		responder := newResponder("vol-7")
		responder.MaxConcurrentCases = 2
		created, err := repo.Responder().Create(ctx, responder)
		gt.NoError(t, err).Required()

		first, err := repo.Responder().Reserve(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, first.CurrentCaseCount).Equal(1)

		second, err := repo.Responder().Reserve(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, second.CurrentCaseCount).Equal(2)

		_, err = repo.Responder().Reserve(ctx, created.ID)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, interfaces.ErrCapacityExhausted)).True()
	})

	t.Run("Reserve never oversubscribes under concurrency", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		responder := newResponder("vol-8")
		responder.MaxConcurrentCases = 1
		created, err := repo.Responder().Create(ctx, responder)
		gt.NoError(t, err).Required()

		const attempts = 8
		results := make([]error, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, results[i] = repo.Responder().Reserve(ctx, created.ID)
			}(i)
		}
		wg.Wait()

		var succeeded int
		for _, err := range results {
			if err == nil {
				succeeded++
			} else {
				gt.Bool(t, errors.Is(err, interfaces.ErrCapacityExhausted)).True()
			}
		}
		gt.Value(t, succeeded).Equal(1)

		final, err := repo.Responder().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, final.CurrentCaseCount).Equal(1)
	})

	t.Run("Release clamps at zero", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Responder().Create(ctx, newResponder("vol-9"))
		gt.NoError(t, err).Required()

		released, err := repo.Responder().Release(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, released.CurrentCaseCount).Equal(0)

		_, err = repo.Responder().Reserve(ctx, created.ID)
		gt.NoError(t, err).Required()
		released, err = repo.Responder().Release(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, released.CurrentCaseCount).Equal(0)
	})

	t.Run("RecordRating keeps a running average", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Responder().Create(ctx, newResponder("vol-10"))
		gt.NoError(t, err).Required()

		rated, err := repo.Responder().RecordRating(ctx, created.ID, 5)
		gt.NoError(t, err).Required()
		gt.Number(t, rated.AverageRating).Equal(5.0)
		gt.Value(t, rated.TotalCasesHandled).Equal(1)

		rated, err = repo.Responder().RecordRating(ctx, created.ID, 4)
		gt.NoError(t, err).Required()
		gt.Number(t, rated.AverageRating).Equal(4.5)
		gt.Value(t, rated.TotalCasesHandled).Equal(2)

		rated, err = repo.Responder().RecordRating(ctx, created.ID, 3)
		gt.NoError(t, err).Required()
		gt.Number(t, rated.AverageRating).Equal(4.0)
		gt.Value(t, rated.TotalCasesHandled).Equal(3)
	})
}

func TestResponderRepository_Memory(t *testing.T) {
	runResponderRepositoryTest(t, newMemoryRepo)
}

func TestResponderRepository_Firestore(t *testing.T) {
	runResponderRepositoryTest(t, newFirestoreRepo)
}
