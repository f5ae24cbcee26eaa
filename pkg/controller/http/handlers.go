package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
	"github.com/haven-lab/lifeline/pkg/usecase"
	"github.com/haven-lab/lifeline/pkg/utils/errutil"
	"github.com/haven-lab/lifeline/pkg/utils/safe"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to marshal response"), "http response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(ctx, w, data)
}

func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrIncidentNotFound),
		errors.Is(err, usecase.ErrConnectionNotFound),
		errors.Is(err, usecase.ErrResponderNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrResponderExists),
		errors.Is(err, usecase.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, usecase.ErrRoleNotPermitted),
		errors.Is(err, usecase.ErrNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, usecase.ErrTrainingIncomplete),
		errors.Is(err, usecase.ErrInvalidRating):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		errutil.Handle(ctx, err, "http request failed")
	}
	respondJSON(ctx, w, status, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return goerr.Wrap(err, "invalid request body")
	}
	return nil
}

// --- incident handlers ---

type createIncidentRequest struct {
	CrisisType        string   `json:"crisis_type"`
	UrgencyLevel      string   `json:"urgency_level,omitempty"`
	Description       string   `json:"description,omitempty"`
	Location          string   `json:"location,omitempty"`
	ContactNumber     string   `json:"contact_number,omitempty"`
	PreferredLanguage string   `json:"preferred_language,omitempty"`
	TriggerKeywords   []string `json:"trigger_keywords,omitempty"`
}

type incidentBody struct {
	ID                string     `json:"id"`
	SubjectID         string     `json:"subject_id"`
	CrisisType        string     `json:"crisis_type"`
	UrgencyLevel      string     `json:"urgency_level"`
	Status            string     `json:"status"`
	Description       string     `json:"description,omitempty"`
	Location          string     `json:"location,omitempty"`
	PreferredLanguage string     `json:"preferred_language,omitempty"`
	TriggerKeywords   []string   `json:"trigger_keywords,omitempty"`
	ResponderID       string     `json:"responder_id,omitempty"`
	FollowUpDeadline  *time.Time `json:"follow_up_deadline,omitempty"`
	Resolution        string     `json:"resolution,omitempty"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func toIncidentBody(in *model.Incident) incidentBody {
	return incidentBody{
		ID:                in.ID.String(),
		SubjectID:         in.SubjectID,
		CrisisType:        in.CrisisType.String(),
		UrgencyLevel:      in.UrgencyLevel.String(),
		Status:            in.Status.String(),
		Description:       in.Description,
		Location:          in.Location,
		PreferredLanguage: in.PreferredLanguage,
		TriggerKeywords:   in.TriggerKeywords,
		ResponderID:       in.ResponderID.String(),
		FollowUpDeadline:  in.FollowUpDeadline,
		Resolution:        in.Resolution,
		ResolvedAt:        in.ResolvedAt,
		CreatedAt:         in.CreatedAt,
	}
}

type responderBody struct {
	ID                string   `json:"id"`
	Specializations   []string `json:"specializations"`
	Languages         []string `json:"languages"`
	Region            string   `json:"region,omitempty"`
	City              string   `json:"city,omitempty"`
	TrainingCompleted bool     `json:"training_completed"`
	IsActive          bool     `json:"is_active"`
	IsAvailable       bool     `json:"is_available"`
	CurrentCaseCount  int      `json:"current_case_count"`
	TotalCasesHandled int      `json:"total_cases_handled"`
	AverageRating     float64  `json:"average_rating"`
}

func toResponderBody(in *model.Responder) responderBody {
	specs := make([]string, len(in.Specializations))
	for i, s := range in.Specializations {
		specs[i] = s.String()
	}
	return responderBody{
		ID:                in.ID.String(),
		Specializations:   specs,
		Languages:         in.Languages,
		Region:            in.Region,
		City:              in.City,
		TrainingCompleted: in.TrainingCompleted,
		IsActive:          in.IsActive,
		IsAvailable:       in.IsAvailable,
		CurrentCaseCount:  in.CurrentCaseCount,
		TotalCasesHandled: in.TotalCasesHandled,
		AverageRating:     in.AverageRating,
	}
}

type resourceBody struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ChannelType   string   `json:"channel_type"`
	Categories    []string `json:"categories"`
	Phone         string   `json:"phone,omitempty"`
	WhatsApp      string   `json:"whatsapp,omitempty"`
	Email         string   `json:"email,omitempty"`
	Website       string   `json:"website,omitempty"`
	Available24x7 bool     `json:"available_24x7"`
	Languages     []string `json:"languages"`
	Country       string   `json:"country"`
	Region        string   `json:"region,omitempty"`
	City          string   `json:"city,omitempty"`
	IsVerified    bool     `json:"is_verified"`
}

func toResourceBody(in *model.Resource) resourceBody {
	categories := make([]string, len(in.CrisisCategories))
	for i, c := range in.CrisisCategories {
		categories[i] = c.String()
	}
	return resourceBody{
		ID:            in.ID.String(),
		Name:          in.Name,
		ChannelType:   in.ChannelType.String(),
		Categories:    categories,
		Phone:         in.Phone,
		WhatsApp:      in.WhatsApp,
		Email:         in.Email,
		Website:       in.Website,
		Available24x7: in.Available24x7,
		Languages:     in.Languages,
		Country:       in.Country,
		Region:        in.Region,
		City:          in.City,
		IsVerified:    in.IsVerified,
	}
}

type emergencyContactBody struct {
	Name          string `json:"name"`
	Number        string `json:"number"`
	Available24x7 bool   `json:"available_24x7"`
}

type createIncidentResponse struct {
	Incident          incidentBody           `json:"incident"`
	Resources         []resourceBody         `json:"resources"`
	Responder         *responderBody         `json:"responder,omitempty"`
	NextSteps         []string               `json:"next_steps"`
	EmergencyContacts []emergencyContactBody `json:"emergency_contacts"`
}

func (s *Server) createIncident(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := identityFrom(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req createIncidentRequest
	if err := decodeBody(r, &req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if !types.CrisisType(req.CrisisType).IsValid() {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid crisis_type"})
		return
	}

	resp, err := s.uc.Incident.Create(ctx, usecase.CreateIncidentInput{
		SubjectID:         identity.Sub,
		CrisisType:        types.CrisisType(req.CrisisType),
		UrgencyLevel:      types.UrgencyLevel(req.UrgencyLevel),
		Description:       req.Description,
		Location:          req.Location,
		ContactNumber:     req.ContactNumber,
		PreferredLanguage: req.PreferredLanguage,
		TriggerKeywords:   req.TriggerKeywords,
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	body := createIncidentResponse{
		Incident:          toIncidentBody(resp.Incident),
		Resources:         make([]resourceBody, 0, len(resp.Resources)),
		NextSteps:         resp.NextSteps,
		EmergencyContacts: make([]emergencyContactBody, 0, len(resp.EmergencyContacts)),
	}
	for _, res := range resp.Resources {
		body.Resources = append(body.Resources, toResourceBody(res))
	}
	if resp.Responder != nil {
		rb := toResponderBody(resp.Responder)
		body.Responder = &rb
	}
	for _, ec := range resp.EmergencyContacts {
		body.EmergencyContacts = append(body.EmergencyContacts, emergencyContactBody(ec))
	}

	respondJSON(ctx, w, http.StatusCreated, body)
}

func (s *Server) getIncident(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	incident, err := s.uc.Incident.Get(ctx, types.IncidentID(chi.URLParam(r, "incidentID")))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toIncidentBody(incident))
}

type updateIncidentRequest struct {
	Status     *string `json:"status,omitempty"`
	Resolution *string `json:"resolution,omitempty"`
}

func (s *Server) updateIncident(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := identityFrom(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req updateIncidentRequest
	if err := decodeBody(r, &req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	update := model.IncidentUpdate{Resolution: req.Resolution}
	if req.Status != nil {
		status := types.IncidentStatus(*req.Status)
		if !status.IsValid() {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		update.Status = &status
	}

	incident, err := s.uc.Incident.Update(ctx, types.IncidentID(chi.URLParam(r, "incidentID")), update, identity.Sub)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toIncidentBody(incident))
}

type logEntryBody struct {
	Action    string         `json:"action"`
	Detail    map[string]any `json:"detail,omitempty"`
	Actor     string         `json:"actor"`
	CreatedAt time.Time      `json:"created_at"`
}

func (s *Server) incidentHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := s.uc.Incident.History(ctx, types.IncidentID(chi.URLParam(r, "incidentID")))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	body := make([]logEntryBody, 0, len(entries))
	for _, e := range entries {
		body = append(body, logEntryBody{
			Action:    e.Action,
			Detail:    e.Detail,
			Actor:     e.Actor,
			CreatedAt: e.CreatedAt,
		})
	}

	respondJSON(ctx, w, http.StatusOK, body)
}

// --- connection handlers ---

type createConnectionRequest struct {
	ResponderID string `json:"responder_id,omitempty"`
	ResourceID  string `json:"resource_id,omitempty"`
	Channel     string `json:"channel"`
}

type connectionBody struct {
	ID              string     `json:"id"`
	IncidentID      string     `json:"incident_id"`
	ResponderID     string     `json:"responder_id,omitempty"`
	ResourceID      string     `json:"resource_id,omitempty"`
	Channel         string     `json:"channel"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationSeconds int64      `json:"duration_seconds,omitempty"`
	Outcome         string     `json:"outcome,omitempty"`
	Rating          int        `json:"rating,omitempty"`
}

func toConnectionBody(in *model.Connection) connectionBody {
	return connectionBody{
		ID:              in.ID.String(),
		IncidentID:      in.IncidentID.String(),
		ResponderID:     in.ResponderID.String(),
		ResourceID:      in.ResourceID.String(),
		Channel:         in.Channel.String(),
		StartedAt:       in.StartedAt,
		EndedAt:         in.EndedAt,
		DurationSeconds: in.DurationSeconds,
		Outcome:         in.Outcome.String(),
		Rating:          in.Rating,
	}
}

func (s *Server) createConnection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createConnectionRequest
	if err := decodeBody(r, &req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	conn, err := s.uc.Incident.CreateConnection(ctx, usecase.CreateConnectionInput{
		IncidentID:  types.IncidentID(chi.URLParam(r, "incidentID")),
		ResponderID: types.ResponderID(req.ResponderID),
		ResourceID:  types.ResourceID(req.ResourceID),
		Channel:     types.ConnectionChannel(req.Channel),
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, toConnectionBody(conn))
}

type closeConnectionRequest struct {
	Outcome  string `json:"outcome,omitempty"`
	Rating   int    `json:"rating,omitempty"`
	Feedback string `json:"feedback,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

func (s *Server) closeConnection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req closeConnectionRequest
	if err := decodeBody(r, &req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	conn, err := s.uc.Incident.CloseConnection(ctx, types.ConnectionID(chi.URLParam(r, "connectionID")), model.ConnectionClose{
		Outcome:  types.ConnectionOutcome(req.Outcome),
		Rating:   req.Rating,
		Feedback: req.Feedback,
		Notes:    req.Notes,
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toConnectionBody(conn))
}

// --- responder handlers ---

type registerResponderRequest struct {
	Specializations []string `json:"specializations"`
	Languages       []string `json:"languages"`
	Region          string   `json:"region,omitempty"`
	City            string   `json:"city,omitempty"`
}

func (s *Server) registerResponder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := identityFrom(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req registerResponderRequest
	if err := decodeBody(r, &req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	specs := make([]types.CrisisType, len(req.Specializations))
	for i, sp := range req.Specializations {
		specs[i] = types.CrisisType(sp)
	}

	responder, err := s.uc.Responder.Register(ctx, identity.Sub, identity.Role, specs, req.Languages, req.Region, req.City)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, toResponderBody(responder))
}

func (s *Server) completeTraining(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	responder, err := s.uc.Responder.CompleteTraining(ctx, types.ResponderID(chi.URLParam(r, "responderID")))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toResponderBody(responder))
}

func (s *Server) approveResponder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := identityFrom(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if !identity.Elevated() {
		respondError(ctx, w, goerr.Wrap(usecase.ErrNotAuthorized, "approval requires an elevated role"))
		return
	}

	responder, err := s.uc.Responder.Approve(ctx, types.ResponderID(chi.URLParam(r, "responderID")))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toResponderBody(responder))
}

type availabilityRequest struct {
	Available bool `json:"available"`
}

func (s *Server) updateAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req availabilityRequest
	if err := decodeBody(r, &req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	responder, err := s.uc.Responder.UpdateAvailability(ctx, types.ResponderID(chi.URLParam(r, "responderID")), req.Available)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toResponderBody(responder))
}

// --- resource handlers ---

func (s *Server) searchResources(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filters := model.ResourceFilters{
		CrisisType:   types.CrisisType(q.Get("crisis_type")),
		ChannelType:  types.ConnectionChannel(q.Get("channel")),
		Language:     q.Get("language"),
		Region:       q.Get("region"),
		VerifiedOnly: q.Get("verified") == "true",
	}
	if v := q.Get("available_24x7"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid available_24x7"})
			return
		}
		filters.Available24x7 = &b
	}

	resources, err := s.uc.Resource.Search(ctx, filters)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	body := make([]resourceBody, 0, len(resources))
	for _, res := range resources {
		body = append(body, toResourceBody(res))
	}

	respondJSON(ctx, w, http.StatusOK, body)
}

func (s *Server) emergencyContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	contacts := s.uc.Resource.EmergencyContacts()
	body := make([]emergencyContactBody, 0, len(contacts))
	for _, c := range contacts {
		body = append(body, emergencyContactBody(c))
	}

	respondJSON(ctx, w, http.StatusOK, body)
}

// --- detection handlers ---

type detectRequest struct {
	Text string `json:"text"`
}

type detectResponse struct {
	Detected              bool     `json:"detected"`
	CrisisType            string   `json:"crisis_type,omitempty"`
	MatchedKeywords       []string `json:"matched_keywords,omitempty"`
	Confidence            float64  `json:"confidence"`
	Priority              string   `json:"priority,omitempty"`
	SuggestedAction       string   `json:"suggested_action,omitempty"`
	ShowResources         bool     `json:"show_resources"`
	HasEmergencyNumbers   bool     `json:"has_emergency_numbers"`
	HasHelplineReferences bool     `json:"has_helpline_references"`
}

func (s *Server) detect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req detectRequest
	if err := decodeBody(r, &req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	detection := s.uc.Detector().Detect(ctx, req.Text)
	refs := s.uc.Detector().DetectReferences(req.Text)

	respondJSON(ctx, w, http.StatusOK, detectResponse{
		Detected:              detection.Detected,
		CrisisType:            detection.CrisisType.String(),
		MatchedKeywords:       detection.MatchedKeywords,
		Confidence:            detection.Confidence,
		Priority:              detection.Priority.String(),
		SuggestedAction:       detection.SuggestedAction,
		ShowResources:         detection.ShowResources,
		HasEmergencyNumbers:   refs.HasEmergencyNumbers,
		HasHelplineReferences: refs.HasHelplineReferences,
	})
}

type analyzeRequest struct {
	Messages []struct {
		Content   string    `json:"content"`
		Timestamp time.Time `json:"timestamp"`
	} `json:"messages"`
}

type analyzeResponse struct {
	Escalating     bool   `json:"escalating"`
	RiskLevel      string `json:"risk_level"`
	Recommendation string `json:"recommendation"`
}

func (s *Server) analyzeConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req analyzeRequest
	if err := decodeBody(r, &req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	messages := make([]model.Message, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = model.Message{Content: m.Content, Timestamp: m.Timestamp}
	}

	insight := s.uc.Detector().AnalyzeConversation(ctx, messages)

	respondJSON(ctx, w, http.StatusOK, analyzeResponse{
		Escalating:     insight.Escalating,
		RiskLevel:      insight.RiskLevel.String(),
		Recommendation: insight.Recommendation,
	})
}
