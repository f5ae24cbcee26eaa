package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/haven-lab/lifeline/pkg/domain/interfaces"
	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/model/auth"
	"github.com/haven-lab/lifeline/pkg/domain/types"
	"github.com/haven-lab/lifeline/pkg/service/detect"
	"github.com/haven-lab/lifeline/pkg/utils/async"
	"github.com/haven-lab/lifeline/pkg/utils/errutil"
	"github.com/haven-lab/lifeline/pkg/utils/logging"
)

// immediateResourceLimit is the resource count returned for IMMEDIATE
// incidents; everything else gets DefaultResourceLimit.
const immediateResourceLimit = 10

// Audit action names recorded against incidents
const (
	actionCreated            = "CREATED"
	actionUpdated            = "UPDATED"
	actionVolunteerConnected = "VOLUNTEER_CONNECTED"
	actionFollowUpScheduled  = "FOLLOWUP_SCHEDULED"
	actionResourceAccessed   = "RESOURCE_ACCESSED"
)

// IncidentUseCase drives the incident lifecycle: intake, urgency
// assessment, resource matching, responder dispatch, follow-up
// scheduling and resolution.
type IncidentUseCase struct {
	repo      interfaces.Repository
	detector  *detect.Detector
	notifier  interfaces.Notifier
	now       func() time.Time
	responder *ResponderUseCase
	resource  *ResourceUseCase
}

// CreateIncidentInput is the intake request for a new incident
type CreateIncidentInput struct {
	SubjectID         string
	CrisisType        types.CrisisType
	UrgencyLevel      types.UrgencyLevel // empty = derive
	Description       string
	Location          string
	ContactNumber     string
	PreferredLanguage string
	TriggerKeywords   []string
}

// IncidentResponse is the full intake result: the persisted incident
// plus everything the caller needs to act on it.
type IncidentResponse struct {
	Incident          *model.Incident
	Resources         []*model.Resource
	Responder         *model.Responder
	NextSteps         []string
	EmergencyContacts []model.EmergencyContact
}

// Create opens a new incident. When no urgency is supplied it is
// derived from the description via the detector, falling back to the
// static per-type default. Resources are always matched; a responder is
// dispatched unless the incident is IMMEDIATE (those go straight to
// emergency guidance). A follow-up is scheduled according to urgency,
// and moderators are alerted for IMMEDIATE/HIGH incidents.
func (uc *IncidentUseCase) Create(ctx context.Context, input CreateIncidentInput) (*IncidentResponse, error) {
	if !input.CrisisType.IsValid() {
		return nil, goerr.New("invalid crisis type", goerr.V("crisis_type", input.CrisisType))
	}

	urgency := input.UrgencyLevel
	triggerKeywords := input.TriggerKeywords
	if urgency == "" {
		derived, matched := uc.deriveUrgency(ctx, input.CrisisType, input.Description)
		urgency = derived
		if len(triggerKeywords) == 0 {
			triggerKeywords = matched
		}
	}

	language := input.PreferredLanguage
	if language == "" {
		language = "en"
	}

	incident := &model.Incident{
		SubjectID:         input.SubjectID,
		CrisisType:        input.CrisisType,
		UrgencyLevel:      urgency,
		Status:            types.IncidentStatusActive,
		Description:       input.Description,
		Location:          input.Location,
		ContactNumber:     input.ContactNumber,
		PreferredLanguage: language,
		TriggerKeywords:   triggerKeywords,
	}

	created, err := uc.repo.Incident().Create(ctx, incident)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create incident")
	}

	uc.audit(ctx, created.ID, actionCreated, map[string]any{
		"crisis_type":   created.CrisisType,
		"urgency_level": created.UrgencyLevel,
	}, created.SubjectID)

	resourceLimit := DefaultResourceLimit
	if urgency == types.UrgencyImmediate {
		resourceLimit = immediateResourceLimit
	}
	resources, err := uc.resource.ForCrisis(ctx, created.CrisisType, created.Location, created.PreferredLanguage, resourceLimit)
	if err != nil {
		// Resource matching is an enrichment; its failure must not
		// lose the already-created incident.
		errutil.Handle(ctx, err, "resource matching failed during incident creation")
		resources = nil
	}

	var responder *model.Responder
	if urgency != types.UrgencyImmediate {
		responder, err = uc.responder.FindAvailable(ctx, created.CrisisType, created.Location, created.PreferredLanguage)
		if err != nil {
			errutil.Handle(ctx, err, "responder dispatch failed during incident creation")
			responder = nil
		}
		if responder != nil {
			created, err = uc.connect(ctx, created, responder)
			if err != nil {
				return nil, err
			}
		}
	}

	created, err = uc.scheduleFollowUp(ctx, created)
	if err != nil {
		return nil, err
	}

	if urgency == types.UrgencyImmediate || urgency == types.UrgencyHigh {
		uc.notifyModerators(ctx, created)
	}

	return &IncidentResponse{
		Incident:          created,
		Resources:         resources,
		Responder:         responder,
		NextSteps:         nextStepsFor(created.CrisisType, created.UrgencyLevel),
		EmergencyContacts: uc.resource.EmergencyContacts(),
	}, nil
}

// deriveUrgency maps a high-confidence detection onto urgency, falling
// back to the static per-type default table.
func (uc *IncidentUseCase) deriveUrgency(ctx context.Context, crisisType types.CrisisType, description string) (types.UrgencyLevel, []string) {
	if description != "" {
		detection := uc.detector.Detect(ctx, description)
		if detection.Detected && detection.Confidence > 0.8 {
			switch detection.CrisisType {
			case types.CrisisSuicideRisk:
				return types.UrgencyImmediate, detection.MatchedKeywords
			case types.CrisisSelfHarm, types.CrisisMedicalEmergency:
				return types.UrgencyHigh, detection.MatchedKeywords
			}
		}
		if detection.Detected {
			return types.DefaultUrgencyFor(crisisType), detection.MatchedKeywords
		}
	}
	return types.DefaultUrgencyFor(crisisType), nil
}

// connect records the responder reservation against the incident:
// a CHAT connection, the responder reference, and the IN_PROGRESS
// transition.
func (uc *IncidentUseCase) connect(ctx context.Context, incident *model.Incident, responder *model.Responder) (*model.Incident, error) {
	_, err := uc.repo.Connection().Create(ctx, &model.Connection{
		IncidentID:  incident.ID,
		ResponderID: responder.ID,
		Channel:     types.ChannelChat,
		StartedAt:   uc.now(),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create responder connection", goerr.V(IncidentIDKey, incident.ID))
	}

	incident.ResponderID = responder.ID
	incident.Status = types.IncidentStatusInProgress
	updated, err := uc.repo.Incident().Update(ctx, incident)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to attach responder to incident", goerr.V(IncidentIDKey, incident.ID))
	}

	uc.audit(ctx, incident.ID, actionVolunteerConnected, map[string]any{
		"responder_id": responder.ID,
	}, "system")

	return updated, nil
}

// scheduleFollowUp stamps the urgency-based follow-up deadline. The
// FOLLOWUP_PENDING status never downgrades an incident a responder
// connection already moved to IN_PROGRESS.
func (uc *IncidentUseCase) scheduleFollowUp(ctx context.Context, incident *model.Incident) (*model.Incident, error) {
	deadline := uc.now().Add(incident.UrgencyLevel.FollowUpAfter())
	incident.FollowUpDeadline = &deadline
	if types.IncidentStatusFollowUpPending.Rank() > incident.Status.Rank() {
		incident.Status = types.IncidentStatusFollowUpPending
	}

	updated, err := uc.repo.Incident().Update(ctx, incident)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to schedule follow-up", goerr.V(IncidentIDKey, incident.ID))
	}

	uc.audit(ctx, incident.ID, actionFollowUpScheduled, map[string]any{
		"deadline": deadline,
	}, "system")

	return updated, nil
}

func (uc *IncidentUseCase) notifyModerators(ctx context.Context, incident *model.Incident) {
	if uc.notifier == nil {
		return
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		if err := uc.notifier.NotifyModerators(ctx, incident); err != nil {
			return goerr.Wrap(err, "failed to notify moderators", goerr.V(IncidentIDKey, incident.ID))
		}
		return nil
	})
}

// Update applies status/resolution changes. Resolving an incident
// stamps the resolution fields and releases its responder's caseload
// slot.
func (uc *IncidentUseCase) Update(ctx context.Context, id types.IncidentID, update model.IncidentUpdate, actor string) (*model.Incident, error) {
	incident, err := uc.getIncident(ctx, id)
	if err != nil {
		return nil, err
	}

	prior := *incident
	detail := map[string]any{}

	if update.Status != nil {
		if !incident.Status.CanTransitionTo(*update.Status) {
			return nil, goerr.Wrap(ErrInvalidTransition, "cannot transition incident",
				goerr.V(IncidentIDKey, id),
				goerr.V("from", incident.Status),
				goerr.V("to", *update.Status),
			)
		}
		incident.Status = *update.Status
		detail["status"] = map[string]any{"from": prior.Status, "to": incident.Status}
	}
	if update.Resolution != nil {
		incident.Resolution = *update.Resolution
		detail["resolution"] = *update.Resolution
	}

	if update.Status != nil && *update.Status == types.IncidentStatusResolved {
		now := uc.now()
		incident.ResolvedAt = &now
		incident.ResolvedBy = actor
	}

	updated, err := uc.repo.Incident().Update(ctx, incident)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update incident", goerr.V(IncidentIDKey, id))
	}

	uc.audit(ctx, id, actionUpdated, detail, actor)

	if prior.ResponderID != "" && updated.Status == types.IncidentStatusResolved {
		if err := uc.responder.Release(ctx, prior.ResponderID); err != nil {
			errutil.Handle(ctx, err, "failed to release responder on resolution")
		}
	}

	return updated, nil
}

// Get retrieves an incident, enforcing visibility: the requester must
// be the incident's subject or hold an elevated role.
func (uc *IncidentUseCase) Get(ctx context.Context, id types.IncidentID) (*model.Incident, error) {
	incident, err := uc.getIncident(ctx, id)
	if err != nil {
		return nil, err
	}

	identity, err := auth.FromContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrNotAuthorized, "no caller identity", goerr.V(IncidentIDKey, id))
	}
	if identity.Sub != incident.SubjectID && !identity.Elevated() {
		return nil, goerr.Wrap(ErrNotAuthorized, "caller may not view incident",
			goerr.V(IncidentIDKey, id),
			goerr.V("caller", identity.Sub),
		)
	}

	return incident, nil
}

// CreateConnectionInput describes a caller-initiated contact record
type CreateConnectionInput struct {
	IncidentID  types.IncidentID
	ResponderID types.ResponderID
	ResourceID  types.ResourceID
	Channel     types.ConnectionChannel
}

// CreateConnection records a contact attempt against an incident, for
// a resource or responder reference supplied by the caller.
func (uc *IncidentUseCase) CreateConnection(ctx context.Context, input CreateConnectionInput) (*model.Connection, error) {
	if _, err := uc.getIncident(ctx, input.IncidentID); err != nil {
		return nil, err
	}
	if !input.Channel.IsValid() {
		return nil, goerr.New("invalid connection channel", goerr.V("channel", input.Channel))
	}

	conn, err := uc.repo.Connection().Create(ctx, &model.Connection{
		IncidentID:  input.IncidentID,
		ResponderID: input.ResponderID,
		ResourceID:  input.ResourceID,
		Channel:     input.Channel,
		StartedAt:   uc.now(),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create connection", goerr.V(IncidentIDKey, input.IncidentID))
	}

	uc.audit(ctx, input.IncidentID, actionResourceAccessed, map[string]any{
		"connection_id": conn.ID,
		"resource_id":   input.ResourceID,
		"responder_id":  input.ResponderID,
		"channel":       input.Channel,
	}, "system")

	return conn, nil
}

// CloseConnection concludes a contact: outcome, notes, optional rating
// and feedback. EndedAt is stamped exactly when the outcome is
// supplied. A rating on a responder connection feeds the responder's
// running average.
func (uc *IncidentUseCase) CloseConnection(ctx context.Context, id types.ConnectionID, close model.ConnectionClose) (*model.Connection, error) {
	conn, err := uc.repo.Connection().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrConnectionNotFound, "connection not found", goerr.V(ConnectionIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get connection", goerr.V(ConnectionIDKey, id))
	}

	if close.Rating != 0 && (close.Rating < 1 || close.Rating > 5) {
		return nil, goerr.Wrap(ErrInvalidRating, "rating out of range", goerr.V("rating", close.Rating))
	}

	if close.Outcome != "" {
		if !close.Outcome.IsValid() {
			return nil, goerr.New("invalid connection outcome", goerr.V("outcome", close.Outcome))
		}
		now := uc.now()
		conn.Outcome = close.Outcome
		conn.EndedAt = &now
		conn.DurationSeconds = int64(now.Sub(conn.StartedAt).Seconds())
	}
	if close.Rating != 0 {
		conn.Rating = close.Rating
	}
	if close.Feedback != "" {
		conn.Feedback = close.Feedback
	}
	if close.Notes != "" {
		conn.Notes = close.Notes
	}

	updated, err := uc.repo.Connection().Update(ctx, conn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update connection", goerr.V(ConnectionIDKey, id))
	}

	if close.Rating != 0 && conn.ResponderID != "" {
		if _, err := uc.repo.Responder().RecordRating(ctx, conn.ResponderID, close.Rating); err != nil {
			errutil.Handle(ctx, err, "failed to record responder rating")
		}
	}

	return updated, nil
}

// History returns the audit trail of an incident, oldest first
func (uc *IncidentUseCase) History(ctx context.Context, id types.IncidentID) ([]*model.IncidentLogEntry, error) {
	if _, err := uc.getIncident(ctx, id); err != nil {
		return nil, err
	}
	entries, err := uc.repo.IncidentLog().ListByIncident(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list incident log entries", goerr.V(IncidentIDKey, id))
	}
	return entries, nil
}

func (uc *IncidentUseCase) getIncident(ctx context.Context, id types.IncidentID) (*model.Incident, error) {
	incident, err := uc.repo.Incident().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrIncidentNotFound, "incident not found", goerr.V(IncidentIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get incident", goerr.V(IncidentIDKey, id))
	}
	return incident, nil
}

// audit appends one log entry, best-effort. A broken audit sink never
// fails the operation that triggered it.
func (uc *IncidentUseCase) audit(ctx context.Context, incidentID types.IncidentID, action string, detail map[string]any, actor string) {
	_, err := uc.repo.IncidentLog().Append(ctx, &model.IncidentLogEntry{
		IncidentID: incidentID,
		Action:     action,
		Detail:     detail,
		Actor:      actor,
		CreatedAt:  uc.now(),
	})
	if err != nil {
		logging.From(ctx).Error("failed to write incident log entry",
			"incident_id", incidentID,
			"action", action,
			"error", err,
		)
	}
}
