package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	httpctrl "github.com/haven-lab/lifeline/pkg/controller/http"
	"github.com/haven-lab/lifeline/pkg/domain/interfaces"
	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
	"github.com/haven-lab/lifeline/pkg/repository/memory"
	"github.com/haven-lab/lifeline/pkg/usecase"
	"github.com/haven-lab/lifeline/pkg/utils/logging"
)

func TestMain(m *testing.M) {
	logging.Quiet()
	m.Run()
}

func setupServer(repo interfaces.Repository) http.Handler {
	uc := usecase.New(repo)
	return httpctrl.New(uc)
}

// executeRequest sends a JSON request through the handler as the given
// caller. Empty sub means an unauthenticated request.
func executeRequest(t *testing.T, handler http.Handler, method, path, sub string, role types.Role, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		gt.NoError(t, err).Required()
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if sub != "" {
		req.Header.Set("X-Lifeline-Sub", sub)
	}
	if role != "" {
		req.Header.Set("X-Lifeline-Role", string(role))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst)).Required()
}

func TestHealthEndpoint(t *testing.T) {
	handler := setupServer(memory.New())

	rec := executeRequest(t, handler, http.MethodGet, "/health", "", "", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var body map[string]string
	parseJSON(t, rec, &body)
	gt.Value(t, body["status"]).Equal("ok")
}

func TestAuthenticationRequired(t *testing.T) {
	handler := setupServer(memory.New())

	t.Run("missing subject header", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodGet, "/api/emergency-contacts", "", "", nil)
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("invalid role header", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodGet, "/api/emergency-contacts", "subj-1", "OVERLORD", nil)
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("role defaults to subject", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodGet, "/api/emergency-contacts", "subj-1", "", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
	})
}

func TestIncidentEndpoints(t *testing.T) {
	repo := memory.New()
	handler := setupServer(repo)

	t.Run("create incident", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodPost, "/api/incidents", "subj-1", types.RoleSubject, map[string]any{
			"crisis_type": "PANIC_ATTACK",
			"description": "having a panic attack and I can't calm down",
			"location":    "Austin, TX",
		})
		gt.Value(t, rec.Code).Equal(http.StatusCreated)

		var body struct {
			Incident struct {
				ID           string `json:"id"`
				SubjectID    string `json:"subject_id"`
				CrisisType   string `json:"crisis_type"`
				UrgencyLevel string `json:"urgency_level"`
				Status       string `json:"status"`
			} `json:"incident"`
			NextSteps         []string `json:"next_steps"`
			EmergencyContacts []struct {
				Name   string `json:"name"`
				Number string `json:"number"`
			} `json:"emergency_contacts"`
		}
		parseJSON(t, rec, &body)

		gt.Value(t, body.Incident.SubjectID).Equal("subj-1")
		gt.Value(t, body.Incident.CrisisType).Equal("PANIC_ATTACK")
		gt.Value(t, body.Incident.UrgencyLevel).Equal("MODERATE")
		gt.Array(t, body.EmergencyContacts).Length(6)
		gt.Number(t, len(body.NextSteps)).GreaterOrEqual(1)

		t.Run("owner can fetch it back", func(t *testing.T) {
			rec := executeRequest(t, handler, http.MethodGet, "/api/incidents/"+body.Incident.ID, "subj-1", types.RoleSubject, nil)
			gt.Value(t, rec.Code).Equal(http.StatusOK)
		})

		t.Run("stranger gets forbidden", func(t *testing.T) {
			rec := executeRequest(t, handler, http.MethodGet, "/api/incidents/"+body.Incident.ID, "subj-2", types.RoleSubject, nil)
			gt.Value(t, rec.Code).Equal(http.StatusForbidden)
		})

		t.Run("moderator can read and resolve", func(t *testing.T) {
			rec := executeRequest(t, handler, http.MethodPost, "/api/incidents/"+body.Incident.ID+"/status", "mod-1", types.RoleModerator, map[string]any{
				"status":     "RESOLVED",
				"resolution": "subject connected with local therapist",
			})
			gt.Value(t, rec.Code).Equal(http.StatusOK)

			var updated struct {
				Status     string `json:"status"`
				Resolution string `json:"resolution"`
			}
			parseJSON(t, rec, &updated)
			gt.Value(t, updated.Status).Equal("RESOLVED")
			gt.Value(t, updated.Resolution).Equal("subject connected with local therapist")
		})

		t.Run("resolving twice conflicts on reopen", func(t *testing.T) {
			rec := executeRequest(t, handler, http.MethodPost, "/api/incidents/"+body.Incident.ID+"/status", "mod-1", types.RoleModerator, map[string]any{
				"status": "ACTIVE",
			})
			gt.Value(t, rec.Code).Equal(http.StatusConflict)
		})

		t.Run("history lists audit entries", func(t *testing.T) {
			rec := executeRequest(t, handler, http.MethodGet, "/api/incidents/"+body.Incident.ID+"/history", "subj-1", types.RoleSubject, nil)
			gt.Value(t, rec.Code).Equal(http.StatusOK)

			var entries []struct {
				Action string `json:"action"`
				Actor  string `json:"actor"`
			}
			parseJSON(t, rec, &entries)
			gt.Number(t, len(entries)).GreaterOrEqual(2)
			gt.Value(t, entries[0].Action).Equal("CREATED")
		})
	})

	t.Run("invalid crisis type", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodPost, "/api/incidents", "subj-3", types.RoleSubject, map[string]any{
			"crisis_type": "BAD_HAIR_DAY",
		})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unknown incident is 404", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodGet, "/api/incidents/"+types.NewIncidentID().String(), "mod-1", types.RoleModerator, nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/incidents", bytes.NewReader([]byte("{not json")))
		req.Header.Set("X-Lifeline-Sub", "subj-4")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestResponderEndpoints(t *testing.T) {
	repo := memory.New()
	handler := setupServer(repo)

	registerBody := map[string]any{
		"specializations": []string{"SELF_HARM"},
		"languages":       []string{"en"},
		"region":          "TX",
		"city":            "Austin",
	}

	t.Run("subjects cannot register", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodPost, "/api/responders", "subj-1", types.RoleSubject, registerBody)
		gt.Value(t, rec.Code).Equal(http.StatusForbidden)
	})

	rec := executeRequest(t, handler, http.MethodPost, "/api/responders", "vol-1", types.RoleResponder, registerBody)
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	var responder struct {
		ID          string `json:"id"`
		IsActive    bool   `json:"is_active"`
		IsAvailable bool   `json:"is_available"`
	}
	parseJSON(t, rec, &responder)
	gt.Value(t, responder.IsActive).Equal(false)

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodPost, "/api/responders", "vol-1", types.RoleResponder, registerBody)
		gt.Value(t, rec.Code).Equal(http.StatusConflict)
	})

	t.Run("approval requires elevated role", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodPost, "/api/responders/"+responder.ID+"/approve", "vol-1", types.RoleResponder, nil)
		gt.Value(t, rec.Code).Equal(http.StatusForbidden)
	})

	t.Run("availability before onboarding is 400", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodPost, "/api/responders/"+responder.ID+"/availability", "vol-1", types.RoleResponder, map[string]any{
			"available": true,
		})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("full onboarding flow", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodPost, "/api/responders/"+responder.ID+"/training-complete", "vol-1", types.RoleResponder, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		rec = executeRequest(t, handler, http.MethodPost, "/api/responders/"+responder.ID+"/approve", "admin-1", types.RoleAdmin, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		rec = executeRequest(t, handler, http.MethodPost, "/api/responders/"+responder.ID+"/availability", "vol-1", types.RoleResponder, map[string]any{
			"available": true,
		})
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var available struct {
			IsAvailable bool `json:"is_available"`
		}
		parseJSON(t, rec, &available)
		gt.Value(t, available.IsAvailable).Equal(true)
	})
}

func TestResourceEndpoints(t *testing.T) {
	repo := memory.New()
	handler := setupServer(repo)

	_, err := repo.Resource().Create(context.Background(), &model.Resource{
		Name:             "Crisis Chat",
		ChannelType:      types.ChannelChat,
		CrisisCategories: []types.CrisisType{types.CrisisSevereDistress},
		Languages:        []string{"en"},
		Available24x7:    true,
		IsVerified:       true,
		IsActive:         true,
	})
	gt.NoError(t, err).Required()

	t.Run("search by crisis type", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodGet, "/api/resources?crisis_type=SEVERE_DISTRESS", "subj-1", types.RoleSubject, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resources []struct {
			Name string `json:"name"`
		}
		parseJSON(t, rec, &resources)
		gt.Array(t, resources).Length(1)
		gt.Value(t, resources[0].Name).Equal("Crisis Chat")
	})

	t.Run("search with no match is empty list", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodGet, "/api/resources?crisis_type=BURNOUT", "subj-1", types.RoleSubject, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resources []any
		parseJSON(t, rec, &resources)
		gt.Array(t, resources).Length(0)
	})

	t.Run("invalid availability filter is 400", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodGet, "/api/resources?available_24x7=maybe", "subj-1", types.RoleSubject, nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("emergency contacts directory", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodGet, "/api/emergency-contacts", "subj-1", types.RoleSubject, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var contacts []struct {
			Number string `json:"number"`
		}
		parseJSON(t, rec, &contacts)
		gt.Array(t, contacts).Length(6)
		gt.Value(t, contacts[0].Number).Equal("911")
	})
}

func TestDetectionEndpoints(t *testing.T) {
	handler := setupServer(memory.New())

	t.Run("detect crisis keywords", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodPost, "/api/detect", "subj-1", types.RoleSubject, map[string]any{
			"text": "I want to kill myself",
		})
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var body struct {
			Detected        bool     `json:"detected"`
			CrisisType      string   `json:"crisis_type"`
			Confidence      float64  `json:"confidence"`
			MatchedKeywords []string `json:"matched_keywords"`
			ShowResources   bool     `json:"show_resources"`
		}
		parseJSON(t, rec, &body)

		gt.Value(t, body.Detected).Equal(true)
		gt.Value(t, body.CrisisType).Equal("SUICIDE_RISK")
		gt.Number(t, body.Confidence).Equal(0.9)
		gt.Array(t, body.MatchedKeywords).Has("kill myself")
		gt.Value(t, body.ShowResources).Equal(true)
	})

	t.Run("benign text", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodPost, "/api/detect", "subj-1", types.RoleSubject, map[string]any{
			"text": "what a lovely day",
		})
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var body struct {
			Detected   bool    `json:"detected"`
			Confidence float64 `json:"confidence"`
		}
		parseJSON(t, rec, &body)
		gt.Value(t, body.Detected).Equal(false)
		gt.Number(t, body.Confidence).Equal(0.0)
	})

	t.Run("analyze short conversation", func(t *testing.T) {
		rec := executeRequest(t, handler, http.MethodPost, "/api/analyze", "subj-1", types.RoleSubject, map[string]any{
			"messages": []map[string]any{
				{"content": "hello"},
			},
		})
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var body struct {
			Escalating bool   `json:"escalating"`
			RiskLevel  string `json:"risk_level"`
		}
		parseJSON(t, rec, &body)
		gt.Value(t, body.Escalating).Equal(false)
		gt.Value(t, body.RiskLevel).Equal("LOW")
	})
}
