package model

import "time"

// PricePoint is one trading day's closing price for an instrument.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// InstrumentPrice is a stored closing price row.
type InstrumentPrice struct {
	ID         string    `json:"id"`
	Instrument string    `json:"instrument"`
	Date       time.Time `json:"date"`
	Close      float64   `json:"close"`
	Source     string    `json:"source"`
}

// InstrumentSince is an instrument together with the date it was first ordered.
type InstrumentSince struct {
	Instrument string    `json:"instrument"`
	FirstDate  time.Time `json:"firstDate"`
}
