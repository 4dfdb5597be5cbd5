package models

// SystemTicker labels scope-wide events that carry no instrument.
const SystemTicker = "SYSTEM"

// Neutral values substituted for absent numeric fields.
const (
	DefaultScore      = 50.0
	DefaultConfidence = 0.0
	DefaultMagnitude  = 0.0
)

// WireEvent is the producer-defined JSON shape as it arrives on the feed.
// Pointers distinguish an absent field from its zero value.
type WireEvent struct {
	Ticker     *string  `json:"ticker" validate:"omitempty,max=32"`
	Agent      *string  `json:"agent" validate:"omitempty,max=64"`
	Signal     *string  `json:"signal" validate:"omitempty,oneof=bullish bearish neutral"`
	Score      *float64 `json:"score"`
	Confidence *float64 `json:"confidence"`
	Magnitude  *float64 `json:"magnitude"`
	Content    *string  `json:"content"`

	Price        *float64     `json:"price"`
	AltmanZ      *float64     `json:"altmanZ"`
	TargetWeight *float64     `json:"targetWeight"`
	RSI          *float64     `json:"rsi"`
	Factors      *WireFactors `json:"factors"`
}

type WireFactors struct {
	Value    *float64 `json:"value"`
	Quality  *float64 `json:"quality"`
	Momentum *float64 `json:"momentum"`
	Growth   *float64 `json:"growth"`
	Risk     *float64 `json:"risk"`
}

// Envelope is a validated event. Defaults are already resolved; HasScore and
// HasSignal keep track of what the producer actually sent.
type Envelope struct {
	Ticker     string
	Agent      string
	Signal     Signal
	HasSignal  bool
	Score      float64
	HasScore   bool
	Confidence float64
	Magnitude  float64
	Content    string

	Price        *float64
	AltmanZ      *float64
	TargetWeight *float64
	RSI          *float64
	Factors      FactorsPatch
}

// CarriesDecision reports whether the event should touch instrument state.
func (e Envelope) CarriesDecision() bool {
	return e.HasScore || e.HasSignal
}
