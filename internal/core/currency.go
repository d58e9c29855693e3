// Package core defines the domain model of the ledger engine.
//
// This file holds the closed set of supported currencies. Keeping the
// set closed means an unsupported code is a validation error at the
// boundary, never a silently accepted map key deeper in the engine.
package core

import (
	"sort"
	"strings"
)

// CurrencyCode is an ISO-4217 code restricted to the supported set.
type CurrencyCode string

const (
	CHF CurrencyCode = "CHF"
	EUR CurrencyCode = "EUR"
	GBP CurrencyCode = "GBP"
	JPY CurrencyCode = "JPY"
	MXN CurrencyCode = "MXN"
	USD CurrencyCode = "USD"
)

var supportedCurrencies = map[CurrencyCode]struct{}{
	CHF: {},
	EUR: {},
	GBP: {},
	JPY: {},
	MXN: {},
	USD: {},
}

// ParseCurrency parses a currency code, case-insensitively, rejecting
// anything outside the supported set.
func ParseCurrency(s string) (CurrencyCode, error) {
	c := CurrencyCode(strings.ToUpper(strings.TrimSpace(s)))
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

func (c CurrencyCode) Validate() error {
	if _, ok := supportedCurrencies[c]; !ok {
		return ErrUnsupportedCurrency
	}
	return nil
}

// SupportedCurrencies returns the full supported set, sorted.
func SupportedCurrencies() []CurrencyCode {
	codes := make([]CurrencyCode, 0, len(supportedCurrencies))
	for c := range supportedCurrencies {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
