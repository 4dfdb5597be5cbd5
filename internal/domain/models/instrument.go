package models

// Neutral seed values for instruments that have not been updated yet.
const (
	NeutralFactor = 50.0
	NeutralRSI    = 50.0
)

type Factors struct {
	Value    float64 `json:"value"`
	Quality  float64 `json:"quality"`
	Momentum float64 `json:"momentum"`
	Growth   float64 `json:"growth"`
	Risk     float64 `json:"risk"`
}

// InstrumentState is the distilled decision state of one ticker.
type InstrumentState struct {
	Ticker       string  `json:"ticker"`
	Price        float64 `json:"price"`
	Score        float64 `json:"score"`
	Signal       Signal  `json:"signal"`
	Factors      Factors `json:"factors"`
	AltmanZ      float64 `json:"altmanZ"`
	TargetWeight float64 `json:"targetWeight"`
	RSI          float64 `json:"rsi"`
}

// NewInstrumentState returns the placeholder state for ticker.
func NewInstrumentState(ticker string) InstrumentState {
	return InstrumentState{
		Ticker: ticker,
		Score:  DefaultScore,
		Signal: SignalNeutral,
		Factors: Factors{
			Value:    NeutralFactor,
			Quality:  NeutralFactor,
			Momentum: NeutralFactor,
			Growth:   NeutralFactor,
			Risk:     NeutralFactor,
		},
		RSI: NeutralRSI,
	}
}

type FactorsPatch struct {
	Value    *float64 `json:"value,omitempty"`
	Quality  *float64 `json:"quality,omitempty"`
	Momentum *float64 `json:"momentum,omitempty"`
	Growth   *float64 `json:"growth,omitempty"`
	Risk     *float64 `json:"risk,omitempty"`
}

// IsEmpty is true when no factor is set.
func (f FactorsPatch) IsEmpty() bool {
	return f.Value == nil && f.Quality == nil && f.Momentum == nil && f.Growth == nil && f.Risk == nil
}

// InstrumentPatch is a partial update: nil fields are left untouched.
type InstrumentPatch struct {
	Price        *float64     `json:"price,omitempty"`
	Score        *float64     `json:"score,omitempty"`
	Signal       *Signal      `json:"signal,omitempty"`
	Factors      FactorsPatch `json:"factors"`
	AltmanZ      *float64     `json:"altmanZ,omitempty"`
	TargetWeight *float64     `json:"targetWeight,omitempty"`
	RSI          *float64     `json:"rsi,omitempty"`
}

// Apply overwrites the fields present in p. Applying the same patch twice
// yields the same state as applying it once.
func (s *InstrumentState) Apply(p InstrumentPatch) {
	setIf(&s.Price, p.Price)
	setIf(&s.Score, p.Score)
	if p.Signal != nil {
		s.Signal = *p.Signal
	}
	setIf(&s.AltmanZ, p.AltmanZ)
	setIf(&s.TargetWeight, p.TargetWeight)
	setIf(&s.RSI, p.RSI)

	setIf(&s.Factors.Value, p.Factors.Value)
	setIf(&s.Factors.Quality, p.Factors.Quality)
	setIf(&s.Factors.Momentum, p.Factors.Momentum)
	setIf(&s.Factors.Growth, p.Factors.Growth)
	setIf(&s.Factors.Risk, p.Factors.Risk)
}

func setIf(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// InstrumentUpdate routes a patch to its ticker.
type InstrumentUpdate struct {
	Ticker string          `json:"ticker"`
	Patch  InstrumentPatch `json:"patch"`
}

// Routed is everything one validated event turns into.
type Routed struct {
	Entry      AuditLogEntry     `json:"entry"`
	Instrument *InstrumentUpdate `json:"instrument,omitempty"`
}
