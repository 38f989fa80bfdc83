package pagination

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestNormalizeLimit(t *testing.T) {
	if NormalizeLimit(0) != DefaultLimit {
		t.Fatalf("expected default limit")
	}
	if NormalizeLimit(1000) != MaxLimit {
		t.Fatalf("expected max limit")
	}
	if LimitWithBuffer(10) != 11 {
		t.Fatalf("expected buffered limit")
	}
}

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2026, 3, 4, 5, 6, 7, 8, time.UTC), ID: bson.NewObjectID()}
	out, err := ParseCursor(EncodeCursor(in))
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) || out.ID != in.ID {
		t.Fatalf("cursor mismatch: %+v vs %+v", out, in)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	if c, err := ParseCursor(""); err != nil || c != nil {
		t.Fatalf("empty cursor should be nil, got %v %v", c, err)
	}
	if _, err := ParseCursor("!!!"); err == nil {
		t.Fatal("expected invalid base64 to fail")
	}
}

func TestCursorAfterFilter(t *testing.T) {
	var nilCursor *Cursor
	if len(nilCursor.After()) != 0 {
		t.Fatal("nil cursor should produce empty filter")
	}
	c := &Cursor{CreatedAt: time.Now(), ID: bson.NewObjectID()}
	if _, ok := c.After()["$or"]; !ok {
		t.Fatal("expected $or keyset filter")
	}
}
