package detect

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

// conversationWindow is the number of trailing messages analyzed
const conversationWindow = 5

// AnalyzeConversation runs the detector over the trailing window of a
// conversation and infers whether the situation is escalating, plus a
// coarse risk level. The per-message detector calls run concurrently;
// results are reassembled in the original message order so the outcome
// is independent of completion order.
func (d *Detector) AnalyzeConversation(ctx context.Context, messages []model.Message) *model.ConversationInsight {
	if len(messages) < 2 {
		return &model.ConversationInsight{
			Escalating:     false,
			RiskLevel:      types.RiskLow,
			Recommendation: "Continue monitoring",
		}
	}

	window := messages
	if len(window) > conversationWindow {
		window = window[len(window)-conversationWindow:]
	}

	detections := make([]*model.Detection, len(window))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, msg := range window {
		eg.Go(func() error {
			detections[i] = d.Detect(egCtx, msg.Content)
			return nil
		})
	}
	// Detect never returns an error; the group is used purely for the
	// fan-out/join.
	_ = eg.Wait()

	var sum float64
	suicideSignal := false
	for _, det := range detections {
		sum += det.Confidence
		if det.Detected && det.CrisisType == types.CrisisSuicideRisk {
			suicideSignal = true
		}
	}
	avg := sum / float64(len(detections))

	escalating := len(detections) > 2 &&
		detections[len(detections)-1].Confidence > detections[0].Confidence

	switch {
	case avg > 0.7 || suicideSignal:
		return &model.ConversationInsight{
			Escalating:     escalating,
			RiskLevel:      types.RiskHigh,
			Recommendation: "Immediate intervention required",
		}
	case avg > 0.4 || escalating:
		return &model.ConversationInsight{
			Escalating:     escalating,
			RiskLevel:      types.RiskModerate,
			Recommendation: "Proactive support recommended",
		}
	default:
		return &model.ConversationInsight{
			Escalating:     escalating,
			RiskLevel:      types.RiskLow,
			Recommendation: "Continue monitoring",
		}
	}
}
