package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func validEvent() WorkloadEvent {
	return WorkloadEvent{
		TrainerUsername:  "john.doe",
		TrainerFirstName: "John",
		TrainerLastName:  "Doe",
		IsActive:         true,
		TrainingDate:     NewCivilDate(2025, time.January, 15),
		TrainingDuration: 60,
		ActionType:       ActionAdd,
	}
}

func TestValidateAcceptsWellFormedEvent(t *testing.T) {
	if err := validEvent().Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateRejectsMalformedEvents(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*WorkloadEvent)
	}{
		{"missing username", func(e *WorkloadEvent) { e.TrainerUsername = "" }},
		{"blank username", func(e *WorkloadEvent) { e.TrainerUsername = "   " }},
		{"missing first name", func(e *WorkloadEvent) { e.TrainerFirstName = "" }},
		{"missing last name", func(e *WorkloadEvent) { e.TrainerLastName = "" }},
		{"missing date", func(e *WorkloadEvent) { e.TrainingDate = CivilDate{} }},
		{"zero duration", func(e *WorkloadEvent) { e.TrainingDuration = 0 }},
		{"negative duration", func(e *WorkloadEvent) { e.TrainingDuration = -10 }},
		{"unknown action", func(e *WorkloadEvent) { e.ActionType = "UPSERT" }},
		{"empty action", func(e *WorkloadEvent) { e.ActionType = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event := validEvent()
			tc.mutate(&event)
			err := event.Validate()
			if !errors.Is(err, ErrMalformedEvent) {
				t.Fatalf("expected ErrMalformedEvent, got %v", err)
			}
		})
	}
}

func TestEventWireFormat(t *testing.T) {
	raw := `{
		"trainerUsername": "john.doe",
		"trainerFirstName": "John",
		"trainerLastName": "Doe",
		"isActive": true,
		"trainingDate": "2025-01-15",
		"trainingDuration": 60,
		"actionType": "ADD"
	}`

	var event WorkloadEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if event.TrainerUsername != "john.doe" {
		t.Fatalf("unexpected username %q", event.TrainerUsername)
	}
	if event.TrainingDate.Year != 2025 || event.TrainingDate.Month != time.January || event.TrainingDate.Day != 15 {
		t.Fatalf("unexpected date %v", event.TrainingDate)
	}
	if err := event.Validate(); err != nil {
		t.Fatalf("decoded event should validate: %v", err)
	}

	out, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(out, &fields); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	for _, key := range []string{"trainerUsername", "trainerFirstName", "trainerLastName", "isActive", "trainingDate", "trainingDuration", "actionType"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("missing wire field %q in %s", key, out)
		}
	}
	if string(fields["trainingDate"]) != `"2025-01-15"` {
		t.Fatalf("unexpected trainingDate encoding: %s", fields["trainingDate"])
	}
}

func TestCivilDateRejectsGarbage(t *testing.T) {
	var d CivilDate
	if err := json.Unmarshal([]byte(`"not-a-date"`), &d); err == nil {
		t.Fatal("expected error for invalid date string")
	}
}
