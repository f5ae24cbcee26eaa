package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

type resourceRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newResourceRepository(client *firestore.Client) *resourceRepository {
	return &resourceRepository{client: client}
}

func (r *resourceRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_resources"
	}
	return "resources"
}

func (r *resourceRepository) Create(ctx context.Context, resource *model.Resource) (*model.Resource, error) {
	now := time.Now().UTC()
	created := *resource
	created.ID = types.NewResourceID()
	if created.Country == "" {
		created.Country = model.DefaultCountry
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	_, err := r.client.Collection(r.collection()).Doc(created.ID.String()).Set(ctx, &created)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create resource", goerr.V("id", created.ID))
	}
	return &created, nil
}

func (r *resourceRepository) Get(ctx context.Context, id types.ResourceID) (*model.Resource, error) {
	doc, err := r.client.Collection(r.collection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "resource not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get resource", goerr.V("id", id))
	}

	var resource model.Resource
	if err := doc.DataTo(&resource); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal resource", goerr.V("id", id))
	}
	return &resource, nil
}

func (r *resourceRepository) Update(ctx context.Context, resource *model.Resource) (*model.Resource, error) {
	docRef := r.client.Collection(r.collection()).Doc(resource.ID.String())

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "resource not found", goerr.V("id", resource.ID))
		}
		return nil, goerr.Wrap(err, "failed to get resource", goerr.V("id", resource.ID))
	}

	updated := *resource
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, &updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update resource", goerr.V("id", resource.ID))
	}
	return &updated, nil
}

func (r *resourceRepository) ListByCategory(ctx context.Context, crisisType types.CrisisType) ([]*model.Resource, error) {
	iter := r.client.Collection(r.collection()).
		Where("IsActive", "==", true).
		Where("CrisisCategories", "array-contains", crisisType.String()).
		Documents(ctx)
	defer iter.Stop()

	return collectResources(iter)
}

func (r *resourceRepository) ListNational(ctx context.Context, crisisType types.CrisisType) ([]*model.Resource, error) {
	iter := r.client.Collection(r.collection()).
		Where("IsActive", "==", true).
		Where("IsVerified", "==", true).
		Where("Country", "==", model.DefaultCountry).
		Where("Region", "==", "").
		Where("CrisisCategories", "array-contains", crisisType.String()).
		Documents(ctx)
	defer iter.Stop()

	return collectResources(iter)
}

func (r *resourceRepository) ListActive(ctx context.Context) ([]*model.Resource, error) {
	iter := r.client.Collection(r.collection()).
		Where("IsActive", "==", true).
		Documents(ctx)
	defer iter.Stop()

	return collectResources(iter)
}

// IncrementUsage updates all counters in a single transaction so a
// partially applied batch can never be observed.
func (r *resourceRepository) IncrementUsage(ctx context.Context, ids []types.ResourceID) error {
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		type pending struct {
			ref   *firestore.DocumentRef
			count int64
		}
		updates := make([]pending, 0, len(ids))

		for _, id := range ids {
			docRef := r.client.Collection(r.collection()).Doc(id.String())
			doc, err := tx.Get(docRef)
			if err != nil {
				if status.Code(err) == codes.NotFound {
					return goerr.Wrap(ErrNotFound, "resource not found", goerr.V("id", id))
				}
				return goerr.Wrap(err, "failed to get resource", goerr.V("id", id))
			}

			count, err := doc.DataAt("UsageCount")
			if err != nil {
				return goerr.Wrap(err, "failed to read usage count", goerr.V("id", id))
			}
			current, ok := count.(int64)
			if !ok {
				return goerr.New("usage count is not of type int64", goerr.V("id", id), goerr.V("value", count))
			}
			updates = append(updates, pending{ref: docRef, count: current + 1})
		}

		now := time.Now().UTC()
		for _, u := range updates {
			if err := tx.Update(u.ref, []firestore.Update{
				{Path: "UsageCount", Value: u.count},
				{Path: "UpdatedAt", Value: now},
			}); err != nil {
				return goerr.Wrap(err, "failed to update usage count")
			}
		}
		return nil
	})
}

func collectResources(iter *firestore.DocumentIterator) ([]*model.Resource, error) {
	resources := []*model.Resource{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate resources")
		}

		var resource model.Resource
		if err := doc.DataTo(&resource); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal resource")
		}
		resources = append(resources, &resource)
	}
	return resources, nil
}
