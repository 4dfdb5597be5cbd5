package usecase

import (
	"strings"
	"time"

	"DeskStream/internal/domain/models"
	"DeskStream/pkg/util"

	"github.com/google/uuid"
)

// Defaults for absent identity fields.
const (
	UnknownAgent     = "UNKNOWN"
	DefaultRationale = "Optimizing framework..."
)

// Normalizer turns validated envelopes into one audit entry and, when the
// event carries a decision, one instrument patch. It holds no state.
type Normalizer struct {
	badges *BadgeTable
	now    func() time.Time
	newID  func() string
}

type NormalizerOption func(*Normalizer)

// WithClock overrides the capture clock.
func WithClock(now func() time.Time) NormalizerOption {
	return func(n *Normalizer) { n.now = now }
}

// WithIDGenerator overrides entry id generation.
func WithIDGenerator(gen func() string) NormalizerOption {
	return func(n *Normalizer) { n.newID = gen }
}

func NewNormalizer(badges *BadgeTable, opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		badges: badges,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize routes env for scope.
func (n *Normalizer) Normalize(scope string, env models.Envelope) models.Routed {
	captured := n.now()
	ticker := normalizeTicker(env.Ticker)
	agent := strings.TrimSpace(env.Agent)
	if agent == "" {
		agent = UnknownAgent
	}
	rationale := env.Content
	if strings.TrimSpace(rationale) == "" {
		rationale = DefaultRationale
	}
	signal := env.Signal
	if !env.HasSignal {
		signal = models.SignalNeutral
	}

	routed := models.Routed{
		Entry: models.AuditLogEntry{
			ID:         n.newID(),
			Timestamp:  util.FormatCapture(captured),
			CapturedAt: captured,
			Scope:      scope,
			Ticker:     ticker,
			AgentID:    agent,
			Badge:      n.badges.Lookup(agent),
			Signal:     signal,
			Confidence: env.Confidence,
			Magnitude:  env.Magnitude,
			Rationale:  rationale,
		},
	}

	if env.CarriesDecision() {
		routed.Instrument = &models.InstrumentUpdate{
			Ticker: ticker,
			Patch:  patchFrom(env),
		}
	}
	return routed
}

func patchFrom(env models.Envelope) models.InstrumentPatch {
	p := models.InstrumentPatch{
		Price:        env.Price,
		AltmanZ:      env.AltmanZ,
		TargetWeight: env.TargetWeight,
		RSI:          env.RSI,
		Factors:      env.Factors,
	}
	if env.HasScore {
		score := env.Score
		p.Score = &score
	}
	if env.HasSignal {
		sig := env.Signal
		p.Signal = &sig
	}
	return p
}

func normalizeTicker(t string) string {
	t = strings.ToUpper(strings.TrimSpace(t))
	if t == "" {
		return models.SystemTicker
	}
	return t
}
