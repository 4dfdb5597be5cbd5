package models

// LogRequest filters the audit log view.
type LogRequest struct {
	Limit  int    `query:"limit" default:"200" validate:"gte=1,lte=200"`
	Ticker string `query:"ticker" validate:"omitempty,max=32"`
}

type InstrumentRequest struct {
	Ticker string `param:"ticker" validate:"required,max=32"`
}
