package detect_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
	"github.com/haven-lab/lifeline/pkg/service/detect"
)

func messagesOf(contents ...string) []model.Message {
	base := time.Now().UTC()
	messages := make([]model.Message, len(contents))
	for i, content := range contents {
		messages[i] = model.Message{
			Content:   content,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return messages
}

func TestAnalyzeConversationTooShort(t *testing.T) {
	d := detect.New()
	ctx := context.Background()

	insight := d.AnalyzeConversation(ctx, messagesOf("I am completely burned out"))
	gt.Bool(t, insight.Escalating).False()
	gt.Value(t, insight.RiskLevel).Equal(types.RiskLow)
	gt.Value(t, insight.Recommendation).Equal("Continue monitoring")
}

func TestAnalyzeConversationEscalating(t *testing.T) {
	d := detect.New()
	ctx := context.Background()

	// Self-harm statements with per-message confidences
	// [0.1, 0.2, 0.9, 0.3, 1.0]: avg = 0.5, last > first.
	insight := d.AnalyzeConversation(ctx, messagesOf(
		"there is a razor on the shelf",
		"the cutting started again",
		"I cut myself and hurt myself, it is self harm",
		"struggling with self harm",
		"I cut myself, hurt myself and burned myself, it is self harm",
	))

	gt.Bool(t, insight.Escalating).True()
	gt.Value(t, insight.RiskLevel).Equal(types.RiskModerate)
	gt.Value(t, insight.Recommendation).Equal("Proactive support recommended")
}

func TestAnalyzeConversationSuicideSignalForcesHigh(t *testing.T) {
	d := detect.New()
	ctx := context.Background()

	// One suicide-risk detection outweighs a low average confidence.
	insight := d.AnalyzeConversation(ctx, messagesOf(
		"the weather is nice today",
		"sometimes I want to die",
		"anyway how was your weekend",
	))

	gt.Value(t, insight.RiskLevel).Equal(types.RiskHigh)
	gt.Value(t, insight.Recommendation).Equal("Immediate intervention required")
}

func TestAnalyzeConversationWindow(t *testing.T) {
	d := detect.New()
	ctx := context.Background()

	// Only the trailing five messages count; the alarming opener falls
	// outside the window.
	insight := d.AnalyzeConversation(ctx, messagesOf(
		"I want to die",
		"sorry, wrong chat",
		"the weather is nice today",
		"going for a walk",
		"lunch was great",
		"see you tomorrow",
	))

	gt.Value(t, insight.RiskLevel).Equal(types.RiskLow)
	gt.Bool(t, insight.Escalating).False()
}

func TestAnalyzeConversationCalmBaseline(t *testing.T) {
	d := detect.New()
	ctx := context.Background()

	insight := d.AnalyzeConversation(ctx, messagesOf(
		"good morning",
		"the meeting moved to three",
	))

	gt.Bool(t, insight.Escalating).False()
	gt.Value(t, insight.RiskLevel).Equal(types.RiskLow)
}
