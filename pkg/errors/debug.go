package errors

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	MongoCodes   []int    `json:"mongo_codes,omitempty"`
	MongoLabels  []string `json:"mongo_labels,omitempty"`
	MongoMessage string   `json:"mongo_message,omitempty"`
	DuplicateKey bool     `json:"duplicate_key,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	d.DuplicateKey = mongo.IsDuplicateKeyError(err)

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, writeErr := range we.WriteErrors {
			d.MongoCodes = append(d.MongoCodes, writeErr.Code)
			if d.MongoMessage == "" {
				d.MongoMessage = writeErr.Message
			}
		}
		d.MongoLabels = we.Labels
		return d
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		d.MongoCodes = append(d.MongoCodes, int(ce.Code))
		d.MongoLabels = ce.Labels
		d.MongoMessage = ce.Message
		return d
	}

	return d
}
