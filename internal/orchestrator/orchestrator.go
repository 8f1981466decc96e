package orchestrator

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"health-bot/internal/chart"
	"health-bot/internal/history"
	"health-bot/internal/line"
	"health-bot/internal/llm"
	"health-bot/internal/record"
)

const (
	altPrefix     = "/alt "
	fallbackReply = "Sorry, I'm currently busy. Please try again shortly."

	caloriePrompt = "Estimate the total caloric content of the food in this image. " +
		"Answer with a single number of kilocalories."
)

var defaultTriggers = []string{
	"book an appointment",
	"make an appointment",
	"urgent",
	"emergency",
	"please call",
}

// Platform is the slice of the messaging API the orchestrator needs:
// replying to an event and downloading inbound message content.
type Platform interface {
	Reply(ctx context.Context, replyToken string, messages []line.OutMessage) error
	GetContent(ctx context.Context, messageID string) ([]byte, error)
}

// RecordStore is the slice of the patient record store the orchestrator
// needs. Update must serialize concurrent mutations per user.
type RecordStore interface {
	Load(userID string) (record.Record, error)
	Update(userID string, fn func(*record.Record)) (record.Record, error)
}

// Orchestrator decides which reply-generation path applies to an event:
// routing override, alternate-backend prefix, default chat completion, or
// vision calorie estimation. Every event that reaches it results in exactly
// one reply attempt.
type Orchestrator struct {
	platform     Platform
	records      RecordStore
	history      *history.Manager
	defaultLLM   llm.Client
	altLLM       llm.Client
	vision       llm.VisionClient
	systemPrompt string
	clinicPhone  string
	triggers     []string
	chartDir     string
	chartBaseURL string
	aiTimeout    time.Duration
}

type Options struct {
	Platform     Platform
	Records      RecordStore
	History      *history.Manager
	DefaultLLM   llm.Client
	AltLLM       llm.Client
	Vision       llm.VisionClient
	SystemPrompt string
	ClinicPhone  string
	Triggers     []string
	ChartDir     string
	ChartBaseURL string
	AITimeout    time.Duration
}

func New(opts Options) *Orchestrator {
	triggers := opts.Triggers
	if len(triggers) == 0 {
		triggers = defaultTriggers
	}
	timeout := opts.AITimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Orchestrator{
		platform:     opts.Platform,
		records:      opts.Records,
		history:      opts.History,
		defaultLLM:   opts.DefaultLLM,
		altLLM:       opts.AltLLM,
		vision:       opts.Vision,
		systemPrompt: opts.SystemPrompt,
		clinicPhone:  opts.ClinicPhone,
		triggers:     triggers,
		chartDir:     opts.ChartDir,
		chartBaseURL: opts.ChartBaseURL,
		aiTimeout:    timeout,
	}
}

// HandleEvent processes one authenticated, non-duplicate message event.
// Failures never escape: the worst outcome for the user is the fixed
// fallback reply.
func (o *Orchestrator) HandleEvent(ctx context.Context, ev line.Event) {
	switch ev.Message.Type {
	case line.MessageTypeText:
		o.handleText(ctx, ev)
	case line.MessageTypeImage:
		o.handleImage(ctx, ev)
	default:
		log.Printf("skipping message type %q from %s", ev.Message.Type, ev.Source.UserID)
	}
}

func (o *Orchestrator) handleText(ctx context.Context, ev line.Event) {
	userID := ev.Source.UserID
	text := strings.TrimSpace(ev.Message.Text)

	// 1. Deterministic routing override: high-value intents get a fixed
	// reply with zero latency and zero hallucination risk.
	if o.matchesTrigger(text) {
		reply := fmt.Sprintf("For appointments and urgent matters, please call us at %s.", o.clinicPhone)
		o.mirrorTurns(userID, text, reply)
		o.persistTurns(userID, text, reply)
		o.dispatch(ctx, ev.ReplyToken, line.NewTextMessage(reply))
		return
	}

	// 2. Explicit model-switch prefix: remainder goes to the alternate
	// backend, its answer is the reply verbatim.
	if rest, ok := strings.CutPrefix(text, altPrefix); ok {
		reply := o.generateAlt(ctx, strings.TrimSpace(rest))
		o.mirrorTurns(userID, text, reply)
		o.persistTurns(userID, text, reply)
		o.dispatch(ctx, ev.ReplyToken, line.NewTextMessage(reply))
		return
	}

	// 3. Metric logging command, e.g. "weight 72.5".
	if metric, value, ok := parseMetricCommand(text); ok {
		o.handleMetric(ctx, ev, metric, value)
		return
	}

	// 4. Default path: persona + accumulated context, default backend.
	o.handleChat(ctx, ev, text)
}

func (o *Orchestrator) handleChat(ctx context.Context, ev line.Event, text string) {
	userID := ev.Source.UserID

	rec, err := o.records.Load(userID)
	if err != nil {
		log.Printf("failed to load record for %s: %v", userID, err)
		// proceed with an empty record: the user still gets a reply
	}
	o.seedHistory(userID, rec)
	o.history.AppendUser(userID, text)

	var contextMsgs []llm.Message
	if o.systemPrompt != "" {
		contextMsgs = append(contextMsgs, llm.Message{Role: "system", Content: o.systemPrompt})
	}
	contextMsgs = append(contextMsgs, o.history.Get(userID)...)

	reply := fallbackReply
	genCtx, cancel := context.WithTimeout(ctx, o.aiTimeout)
	resp, err := o.defaultLLM.Generate(genCtx, contextMsgs)
	cancel()
	if err != nil {
		log.Printf("failed to generate reply for %s: %v", userID, err)
	} else {
		reply = resp.Content
	}

	o.history.AppendAssistant(userID, reply)
	saved := o.persistTurns(userID, text, reply)

	msgs := []line.OutMessage{line.NewTextMessage(reply)}
	// Prepend the weight chart when the user has tracked data, so progress
	// stays visible in the conversation.
	if series := saved.Metric("weight"); len(series) > 0 {
		if img, ok := o.publishChart(userID, "weight", series); ok {
			msgs = append([]line.OutMessage{img}, msgs...)
		}
	}
	o.dispatch(ctx, ev.ReplyToken, msgs...)
}

func (o *Orchestrator) handleMetric(ctx context.Context, ev line.Event, metric string, value float64) {
	userID := ev.Source.UserID

	saved, err := o.records.Update(userID, func(r *record.Record) {
		r.AppendHistory("user", ev.Message.Text)
		r.AppendMetric(metric, value)
	})
	if err != nil {
		log.Printf("failed to save %s sample for %s: %v", metric, userID, err)
	}

	reply := fmt.Sprintf("Logged %s: %s.", metric, strconv.FormatFloat(value, 'f', -1, 64))
	msgs := []line.OutMessage{line.NewTextMessage(reply)}
	if series := saved.Metric(metric); len(series) > 0 {
		if img, ok := o.publishChart(userID, metric, series); ok {
			msgs = append([]line.OutMessage{img}, msgs...)
		}
	}
	o.dispatch(ctx, ev.ReplyToken, msgs...)
}

func (o *Orchestrator) handleImage(ctx context.Context, ev line.Event) {
	userID := ev.Source.UserID

	content, err := o.platform.GetContent(ctx, ev.Message.ID)
	if err != nil {
		log.Printf("failed to download content %s: %v", ev.Message.ID, err)
		o.dispatch(ctx, ev.ReplyToken, line.NewTextMessage(fallbackReply))
		return
	}

	genCtx, cancel := context.WithTimeout(ctx, o.aiTimeout)
	resp, err := o.vision.DescribeImage(genCtx, caloriePrompt, content)
	cancel()
	if err != nil {
		log.Printf("failed to estimate calories for %s: %v", userID, err)
		o.dispatch(ctx, ev.ReplyToken, line.NewTextMessage(fallbackReply))
		return
	}

	value, parsed := ParseCalories(resp.Content)
	if _, err := o.records.Update(userID, func(r *record.Record) {
		r.AppendCalories(value, parsed)
	}); err != nil {
		log.Printf("failed to save calories for %s: %v", userID, err)
	}

	var reply string
	if parsed {
		reply = fmt.Sprintf("That looks like roughly %d kcal. I've added it to your log.", value)
	} else {
		reply = "I couldn't estimate the calories from that photo, so I logged it as 0. " +
			"Try a clearer shot of the whole plate."
	}
	o.dispatch(ctx, ev.ReplyToken, line.NewTextMessage(reply))
}

// generateAlt runs the alternate backend; its output is used verbatim.
func (o *Orchestrator) generateAlt(ctx context.Context, prompt string) string {
	if o.altLLM == nil {
		return fallbackReply
	}
	genCtx, cancel := context.WithTimeout(ctx, o.aiTimeout)
	defer cancel()
	resp, err := o.altLLM.Generate(genCtx, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		log.Printf("alternate backend failed: %v", err)
		return fallbackReply
	}
	return resp.Content
}

// seedHistory reconstructs the in-memory context from the durable record the
// first time a user shows up after a restart.
func (o *Orchestrator) seedHistory(userID string, rec record.Record) {
	if o.history.Seeded(userID) {
		return
	}
	msgs := make([]llm.Message, 0, len(rec.History))
	for _, e := range rec.History {
		msgs = append(msgs, llm.Message{Role: e.Role, Content: e.Text})
	}
	o.history.Seed(userID, msgs)
}

// mirrorTurns keeps an already-seeded in-memory session in step with turns
// produced outside the default chat path.
func (o *Orchestrator) mirrorTurns(userID, userText, assistantText string) {
	if !o.history.Seeded(userID) {
		return
	}
	o.history.AppendUser(userID, userText)
	o.history.AppendAssistant(userID, assistantText)
}

// persistTurns appends both conversation turns to the durable record and
// returns the saved record. Storage failure is logged, not propagated: the
// user still gets their reply.
func (o *Orchestrator) persistTurns(userID, userText, assistantText string) record.Record {
	saved, err := o.records.Update(userID, func(r *record.Record) {
		r.AppendHistory("user", userText)
		r.AppendHistory("assistant", assistantText)
	})
	if err != nil {
		log.Printf("failed to persist turns for %s: %v", userID, err)
	}
	return saved
}

// publishChart renders the series, stores the PNG under the public chart
// dir and returns an image message referencing it.
func (o *Orchestrator) publishChart(userID, metric string, series []float64) (line.ImageMessage, bool) {
	img, err := chart.Render(series, metric)
	if err != nil {
		log.Printf("failed to render %s chart for %s: %v", metric, userID, err)
		return line.ImageMessage{}, false
	}
	name := fmt.Sprintf("%s_%s_%d.png", sanitize(userID), metric, time.Now().UnixNano())
	if err := os.MkdirAll(o.chartDir, 0o755); err != nil {
		log.Printf("failed to ensure chart dir: %v", err)
		return line.ImageMessage{}, false
	}
	if err := os.WriteFile(filepath.Join(o.chartDir, name), img, 0o644); err != nil {
		log.Printf("failed to store chart %s: %v", name, err)
		return line.ImageMessage{}, false
	}
	return line.NewImageMessage(o.chartBaseURL + "/" + name), true
}

// dispatch sends the reply. Reply tokens are single-use and short-lived:
// one attempt, failure is logged and terminal for the event.
func (o *Orchestrator) dispatch(ctx context.Context, replyToken string, msgs ...line.OutMessage) {
	if err := o.platform.Reply(ctx, replyToken, msgs); err != nil {
		log.Printf("failed to dispatch reply: %v", err)
	}
}

func (o *Orchestrator) matchesTrigger(text string) bool {
	lower := strings.ToLower(text)
	for _, t := range o.triggers {
		if t != "" && strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// parseMetricCommand recognizes "weight 72.5", "fat 18.3", "exercise 45".
func parseMetricCommand(text string) (string, float64, bool) {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) != 2 {
		return "", 0, false
	}
	switch fields[0] {
	case "weight", "fat", "exercise":
	default:
		return "", 0, false
	}
	value, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || value < 0 {
		return "", 0, false
	}
	return fields[0], value, true
}

func sanitize(userID string) string {
	var b strings.Builder
	for _, r := range userID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}
