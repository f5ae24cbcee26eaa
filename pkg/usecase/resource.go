package usecase

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"

	"github.com/haven-lab/lifeline/pkg/domain/interfaces"
	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
	"github.com/haven-lab/lifeline/pkg/utils/async"
	"github.com/haven-lab/lifeline/pkg/utils/logging"
)

// DefaultResourceLimit is the number of resources returned when the
// caller does not ask for more.
const DefaultResourceLimit = 5

// ResourceUseCase ranks support resources for a crisis
type ResourceUseCase struct {
	repo interfaces.Repository
}

// ForCrisis returns up to limit active resources for the crisis type,
// narrowed by location ("city, region") and language when given. When
// nothing matches the narrowed filter, national-level resources are
// returned as a fallback. Usage counters of the primary result are
// bumped asynchronously; a failing counter update never affects the
// returned result.
func (uc *ResourceUseCase) ForCrisis(ctx context.Context, crisisType types.CrisisType, location, language string, limit int) ([]*model.Resource, error) {
	if limit <= 0 {
		limit = DefaultResourceLimit
	}

	candidates, err := uc.repo.Resource().ListByCategory(ctx, crisisType)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list resources by category")
	}

	city, region := model.ParseLocation(location)

	matched := make([]*model.Resource, 0, len(candidates))
	for _, resource := range candidates {
		if location != "" && !resource.MatchesLocation(city, region) {
			continue
		}
		if language != "" && !resource.Speaks(language) {
			continue
		}
		matched = append(matched, resource)
	}

	if len(matched) == 0 {
		return uc.national(ctx, crisisType, limit)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.IsVerified != b.IsVerified {
			return a.IsVerified
		}
		if a.Available24x7 != b.Available24x7 {
			return a.Available24x7
		}
		return a.UsageCount > b.UsageCount
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}

	ids := make([]types.ResourceID, len(matched))
	for i, resource := range matched {
		ids[i] = resource.ID
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		if err := uc.repo.Resource().IncrementUsage(ctx, ids); err != nil {
			return goerr.Wrap(err, "failed to increment resource usage counters")
		}
		return nil
	})

	return matched, nil
}

// national is the fallback path: active, verified, national-level
// resources for the type. Usage counters are NOT bumped here.
func (uc *ResourceUseCase) national(ctx context.Context, crisisType types.CrisisType, limit int) ([]*model.Resource, error) {
	resources, err := uc.repo.Resource().ListNational(ctx, crisisType)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list national resources")
	}

	sort.SliceStable(resources, func(i, j int) bool {
		a, b := resources[i], resources[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.Available24x7 && !b.Available24x7
	})

	if len(resources) > limit {
		resources = resources[:limit]
	}
	if len(resources) == 0 {
		logging.From(ctx).Warn("no resources available, even nationally",
			"crisis_type", crisisType,
		)
	}
	return resources, nil
}

// Search applies arbitrary filters over all active resources. Unlike
// ForCrisis it is unbounded, does not fall back, and does not touch
// usage counters; ties rank by average rating instead of usage.
func (uc *ResourceUseCase) Search(ctx context.Context, filters model.ResourceFilters) ([]*model.Resource, error) {
	resources, err := uc.repo.Resource().ListActive(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list active resources")
	}

	matched := make([]*model.Resource, 0, len(resources))
	for _, resource := range resources {
		if filters.CrisisType != "" && !resource.Covers(filters.CrisisType) {
			continue
		}
		if filters.ChannelType != "" && resource.ChannelType != filters.ChannelType {
			continue
		}
		if filters.Language != "" && !resource.Speaks(filters.Language) {
			continue
		}
		if filters.Region != "" && !resource.MatchesLocation("", filters.Region) {
			continue
		}
		if filters.Available24x7 != nil && resource.Available24x7 != *filters.Available24x7 {
			continue
		}
		if filters.VerifiedOnly && !resource.IsVerified {
			continue
		}
		matched = append(matched, resource)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.IsVerified != b.IsVerified {
			return a.IsVerified
		}
		if a.Available24x7 != b.Available24x7 {
			return a.Available24x7
		}
		return a.AverageRating > b.AverageRating
	})

	return matched, nil
}

// emergencyDirectory is the static emergency-contacts table. It is a
// fixed directory, not subject to any matching logic.
var emergencyDirectory = []model.EmergencyContact{
	{Name: "Emergency Services", Number: "911", Available24x7: true},
	{Name: "Suicide & Crisis Lifeline", Number: "988", Available24x7: true},
	{Name: "Crisis Text Line", Number: "741741", Available24x7: true},
	{Name: "Domestic Violence Hotline", Number: "1-800-799-7233", Available24x7: true},
	{Name: "SAMHSA Substance Abuse Helpline", Number: "1-800-662-4357", Available24x7: true},
	{Name: "Poison Control", Number: "1-800-222-1222", Available24x7: true},
}

// EmergencyContacts returns the static emergency directory
func (uc *ResourceUseCase) EmergencyContacts() []model.EmergencyContact {
	contacts := make([]model.EmergencyContact, len(emergencyDirectory))
	copy(contacts, emergencyDirectory)
	return contacts
}
