// Package notifier is the producer-facing entry point: the profile-management
// domain logic calls it when a training session is created or cancelled.
// Failures surface only the publish step; the triggering business operation
// has already committed and must not be rolled back.
package notifier

import (
	"context"

	"example.com/workload/internal/domain"
)

// TrainerSnapshot carries the trainer's profile fields as of the moment the
// domain action happened.
type TrainerSnapshot struct {
	Username  string
	FirstName string
	LastName  string
	IsActive  bool
}

// Notifier hands a workload change to the aggregation side. Implementations
// are interchangeable per deployment: queue-based or synchronous HTTP.
type Notifier interface {
	NotifyWorkloadChange(ctx context.Context, trainer TrainerSnapshot, date domain.CivilDate, durationMinutes int, action domain.ActionType) error
}

func buildEvent(trainer TrainerSnapshot, date domain.CivilDate, durationMinutes int, action domain.ActionType) domain.WorkloadEvent {
	return domain.WorkloadEvent{
		TrainerUsername:  trainer.Username,
		TrainerFirstName: trainer.FirstName,
		TrainerLastName:  trainer.LastName,
		IsActive:         trainer.IsActive,
		TrainingDate:     date,
		TrainingDuration: durationMinutes,
		ActionType:       action,
	}
}
