package event

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/webitel/hangman-client/internal/domain/model"
)

func TestScreenEventSurvivesTheBus(t *testing.T) {
	sid := uuid.New()
	ev := NewScreenEvent(sid, model.Screen{MaskedWord: "_ _ t", Message: "hi"})

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := DecodeScreenEvent(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.GetID() != ev.GetID() || got.GetSessionID() != sid {
		t.Errorf("identity lost: %s/%s", got.GetID(), got.GetSessionID())
	}
	if got.Screen().MaskedWord != "_ _ t" || got.Screen().Message != "hi" {
		t.Errorf("screen = %+v", got.Screen())
	}
	if got.GetKind() != ScreenRendered || got.GetPriority() != PriorityHigh {
		t.Errorf("kind/priority = %v/%v", got.GetKind(), got.GetPriority())
	}
}

func TestDecodeScreenEventRejectsMissingSession(t *testing.T) {
	if _, err := DecodeScreenEvent([]byte(`{"id":"x"}`)); err == nil {
		t.Fatal("expected error")
	}
	if _, err := DecodeScreenEvent([]byte(`nope`)); err == nil {
		t.Fatal("expected error")
	}
}
