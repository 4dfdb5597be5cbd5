package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"DeskStream/internal/domain/models"

	"github.com/go-playground/validator/v10"
)

// DoneSentinel is the literal payload that ends a stream.
const DoneSentinel = "[DONE]"

// MismatchBanner heads every schema warning shown to the operator.
const MismatchBanner = "Protocol Version Mismatch Detected"

var (
	// ErrStreamComplete is returned for the completion sentinel.
	ErrStreamComplete = errors.New("gate: stream complete")
	// ErrNoise is returned for payloads that are not JSON at all.
	ErrNoise = errors.New("gate: unparsable payload")
)

// SchemaError is a payload that parsed but does not have the event shape.
// Pattern is a stable key for deduplicating warnings.
type SchemaError struct {
	Pattern string
	Message string
}

func (e *SchemaError) Error() string {
	return "gate: schema mismatch (" + e.Pattern + "): " + e.Message
}

// Gate validates raw payloads into envelopes.
type Gate struct {
	validate *validator.Validate
}

func NewGate() *Gate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Gate{validate: v}
}

// Validate classifies raw. It returns an envelope with defaults resolved,
// or exactly one of ErrStreamComplete, ErrNoise or *SchemaError.
func (g *Gate) Validate(raw string) (models.Envelope, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == DoneSentinel {
		return models.Envelope{}, ErrStreamComplete
	}

	b := []byte(trimmed)
	if !json.Valid(b) {
		return models.Envelope{}, ErrNoise
	}
	if kind := topLevelKind(b); kind != "object" {
		return models.Envelope{}, &SchemaError{
			Pattern: "shape:" + kind,
			Message: fmt.Sprintf("expected an object, got %s", kind),
		}
	}

	var ev models.WireEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return models.Envelope{}, decodeMismatch(err)
	}

	if ev.Signal != nil {
		if sig, ok := models.ParseSignal(*ev.Signal); ok {
			folded := string(sig)
			ev.Signal = &folded
		}
	}
	if err := g.validate.Struct(&ev); err != nil {
		return models.Envelope{}, validationMismatch(err)
	}

	return envelope(ev), nil
}

func envelope(ev models.WireEvent) models.Envelope {
	env := models.Envelope{
		Score:        models.DefaultScore,
		Confidence:   models.DefaultConfidence,
		Magnitude:    models.DefaultMagnitude,
		Price:        ev.Price,
		AltmanZ:      ev.AltmanZ,
		TargetWeight: ev.TargetWeight,
		RSI:          ev.RSI,
	}
	if ev.Ticker != nil {
		env.Ticker = *ev.Ticker
	}
	if ev.Agent != nil {
		env.Agent = *ev.Agent
	}
	if ev.Content != nil {
		env.Content = *ev.Content
	}
	if ev.Signal != nil {
		env.Signal = models.Signal(*ev.Signal)
		env.HasSignal = true
	}
	if ev.Score != nil {
		env.Score = *ev.Score
		env.HasScore = true
	}
	if ev.Confidence != nil {
		env.Confidence = *ev.Confidence
	}
	if ev.Magnitude != nil {
		env.Magnitude = *ev.Magnitude
	}
	if f := ev.Factors; f != nil {
		env.Factors = models.FactorsPatch{
			Value:    f.Value,
			Quality:  f.Quality,
			Momentum: f.Momentum,
			Growth:   f.Growth,
			Risk:     f.Risk,
		}
	}
	return env
}

func topLevelKind(b []byte) string {
	switch b[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

func decodeMismatch(err error) *SchemaError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "root"
		}
		return &SchemaError{
			Pattern: "type:" + field,
			Message: fmt.Sprintf("%s must be %s, got %s", field, typeErr.Type.Kind(), typeErr.Value),
		}
	}
	return &SchemaError{Pattern: "decode", Message: err.Error()}
}

func validationMismatch(err error) *SchemaError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &SchemaError{Pattern: "invalid", Message: err.Error()}
	}

	fe := fieldErrs[0]
	var msg string
	switch fe.Tag() {
	case "oneof":
		msg = fmt.Sprintf("%s must be one of %s, got %q", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		msg = fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
	return &SchemaError{Pattern: "field:" + fe.Field() + ":" + fe.Tag(), Message: msg}
}

// IsMismatch reports whether err is a schema mismatch and returns it.
func IsMismatch(err error) (*SchemaError, bool) {
	var se *SchemaError
	ok := errors.As(err, &se)
	return se, ok
}

// Describe renders the operator-facing warning for a mismatch.
func Describe(se *SchemaError) string {
	if se == nil || se.Message == "" {
		return MismatchBanner
	}
	return MismatchBanner + ": " + se.Message
}
