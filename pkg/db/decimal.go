package db

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ToDecimal128 converts an exact decimal amount into its BSON representation.
func ToDecimal128(d decimal.Decimal) (bson.Decimal128, error) {
	out, err := bson.ParseDecimal128(d.String())
	if err != nil {
		return bson.Decimal128{}, fmt.Errorf("convert %s to decimal128: %w", d.String(), err)
	}
	return out, nil
}

// FromDecimal128 converts a stored BSON decimal back to an exact decimal. A zero-value
// Decimal128 (missing field) decodes as zero.
func FromDecimal128(d bson.Decimal128) (decimal.Decimal, error) {
	if d == (bson.Decimal128{}) {
		return decimal.Zero, nil
	}
	out, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse decimal128 %s: %w", d.String(), err)
	}
	return out, nil
}
