package db

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestDecimalRoundTrip(t *testing.T) {
	for _, raw := range []string{"0", "19.99", "1500", "0.01", "-4.5"} {
		in := decimal.RequireFromString(raw)
		stored, err := ToDecimal128(in)
		if err != nil {
			t.Fatalf("to decimal128 %s: %v", raw, err)
		}
		out, err := FromDecimal128(stored)
		if err != nil {
			t.Fatalf("from decimal128 %s: %v", raw, err)
		}
		if !out.Equal(in) {
			t.Fatalf("round trip mismatch: %s != %s", out, in)
		}
	}
}

func TestFromDecimal128ZeroValue(t *testing.T) {
	out, err := FromDecimal128(bson.Decimal128{})
	if err != nil || !out.IsZero() {
		t.Fatalf("expected zero, got %s err=%v", out, err)
	}
}
