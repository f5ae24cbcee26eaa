package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/haven-lab/lifeline/pkg/domain/interfaces"
	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

func runResourceRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	newResource := func(name string) *model.Resource {
		return &model.Resource{
			Name:             name,
			ChannelType:      types.ChannelCall,
			CrisisCategories: []types.CrisisType{types.CrisisSuicideRisk},
			Phone:            "988",
			Available24x7:    true,
			Languages:        []string{"en"},
			IsVerified:       true,
			IsActive:         true,
		}
	}

	t.Run("Create defaults the country", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Resource().Create(ctx, newResource("National Lifeline"))
		gt.NoError(t, err).Required()

		gt.Value(t, created.ID.String()).NotEqual("")
		gt.Value(t, created.Country).Equal(model.DefaultCountry)
	})

	t.Run("ListByCategory skips inactive and other categories", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		active, err := repo.Resource().Create(ctx, newResource("Crisis Line"))
		gt.NoError(t, err).Required()

		inactive := newResource("Closed Line")
		inactive.IsActive = false
		_, err = repo.Resource().Create(ctx, inactive)
		gt.NoError(t, err).Required()

		other := newResource("Recovery Chat")
		other.CrisisCategories = []types.CrisisType{types.CrisisSubstanceAbuse}
		_, err = repo.Resource().Create(ctx, other)
		gt.NoError(t, err).Required()

		list, err := repo.Resource().ListByCategory(ctx, types.CrisisSuicideRisk)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1)
		gt.Value(t, list[0].ID).Equal(active.ID)
	})

	t.Run("ListNational requires verified default-country resources without region", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		national, err := repo.Resource().Create(ctx, newResource("988 Lifeline"))
		gt.NoError(t, err).Required()

		regional := newResource("Austin Crisis Center")
		regional.Region = "TX"
		regional.City = "Austin"
		_, err = repo.Resource().Create(ctx, regional)
		gt.NoError(t, err).Required()

		unverified := newResource("Unverified Line")
		unverified.IsVerified = false
		_, err = repo.Resource().Create(ctx, unverified)
		gt.NoError(t, err).Required()

		list, err := repo.Resource().ListNational(ctx, types.CrisisSuicideRisk)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1)
		gt.Value(t, list[0].ID).Equal(national.ID)
	})

	t.Run("IncrementUsage bumps every given counter", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first, err := repo.Resource().Create(ctx, newResource("Line A"))
		gt.NoError(t, err).Required()
		second, err := repo.Resource().Create(ctx, newResource("Line B"))
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Resource().IncrementUsage(ctx, []types.ResourceID{first.ID, second.ID}))
		gt.NoError(t, repo.Resource().IncrementUsage(ctx, []types.ResourceID{first.ID}))

		got, err := repo.Resource().Get(ctx, first.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.UsageCount).Equal(int64(2))

		got, err = repo.Resource().Get(ctx, second.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.UsageCount).Equal(int64(1))
	})

	t.Run("IncrementUsage rejects unknown IDs without partial writes", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Resource().Create(ctx, newResource("Line C"))
		gt.NoError(t, err).Required()

		err = repo.Resource().IncrementUsage(ctx, []types.ResourceID{created.ID, types.NewResourceID()})
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()

		got, err := repo.Resource().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.UsageCount).Equal(int64(0))
	})
}

func TestResourceRepository_Memory(t *testing.T) {
	runResourceRepositoryTest(t, newMemoryRepo)
}

func TestResourceRepository_Firestore(t *testing.T) {
	runResourceRepositoryTest(t, newFirestoreRepo)
}
