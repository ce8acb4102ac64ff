package models

import (
	"testing"
	"time"

	"github.com/insightdelivered/statement-extractor/internal/securities"
)

func validBuy() *Transaction {
	return &Transaction{
		Type:     Buy,
		Date:     time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		Amount:   204660,
		Currency: "USD",
		Shares:   500000,
		Security: &securities.Ref{Ticker: "VEQT.TO"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Transaction)
		ok     bool
	}{
		{"valid buy", func(*Transaction) {}, true},
		{"missing date", func(tx *Transaction) { tx.Date = time.Time{} }, false},
		{"negative amount", func(tx *Transaction) { tx.Amount = -1 }, false},
		{"zero amount is allowed", func(tx *Transaction) { tx.Amount = 0 }, true},
		{"missing currency", func(tx *Transaction) { tx.Currency = "" }, false},
		{"unknown type", func(tx *Transaction) { tx.Type = "TRANSFER" }, false},
		{"security without shares", func(tx *Transaction) { tx.Shares = 0 }, false},
		{"negative shares", func(tx *Transaction) { tx.Shares = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validBuy()
			tt.mutate(tx)
			err := tx.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestFormatMinor(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{2069, "20.69"},
		{1000000, "10000.00"},
		{-204650, "-2046.50"},
	}
	for _, tt := range tests {
		if got := FormatMinor(tt.in); got != tt.want {
			t.Errorf("FormatMinor(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatShares(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{290000, "29"},
		{500000, "50"},
		{125000, "12.5"},
		{10005000, "1000.5"},
		{1, "0.0001"},
	}
	for _, tt := range tests {
		if got := FormatShares(tt.in); got != tt.want {
			t.Errorf("FormatShares(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
