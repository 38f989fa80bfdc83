package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
	"github.com/studiosite/studiosite-backend/pkg/logger"
	"github.com/studiosite/studiosite-backend/pkg/types"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", got)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode success envelope: %v", err)
	}
	if !body.Success {
		t.Fatal("expected success flag")
	}
	if body.Data.(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWriteListAndMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteList(w, []string{}, 0)
	if !strings.Contains(w.Body.String(), `"count":0`) {
		t.Fatalf("expected zero count to be present, got %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	WriteMessage(w, http.StatusCreated, "Plan added to category successfully", nil)
	if w.Code != http.StatusCreated || !strings.Contains(w.Body.String(), "Plan added") {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "bad input").
		WithDetails(map[string]string{"field": "demo"})
	WriteError(context.Background(), nil, w, err)

	if got := w.Code; got != http.StatusBadRequest {
		t.Fatalf("expected status 400 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error != "Bad Request" || body.Message != "bad input" {
		t.Fatalf("unexpected envelope %+v", body)
	}
	if body.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", body.Code)
	}
	if body.Details == nil {
		t.Fatalf("expected details in public payload")
	}
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Code != string(pkgerrors.CodeInternal) || body.Message != "internal server error" {
		t.Fatalf("unexpected envelope %+v", body)
	}
	if body.Details != nil {
		t.Fatalf("details should be omitted for internal errors")
	}
}

func TestWriteErrorHidesDriverMessagesAndLogsThem(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: &buf})
	driverErr := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 91, Message: "shutdown in progress"}}}

	w := httptest.NewRecorder()
	WriteError(context.Background(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, driverErr, "insert user"))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "shutdown in progress") || strings.Contains(w.Body.String(), "insert user") {
		t.Fatalf("driver detail leaked: %s", w.Body.String())
	}
	logged := buf.String()
	if !strings.Contains(logged, "request.error") || !strings.Contains(logged, `"mongo_codes":[91]`) {
		t.Fatalf("expected mongo codes in log, got %s", logged)
	}
}
