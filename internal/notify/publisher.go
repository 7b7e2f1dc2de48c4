package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cureveda/schedule-service/internal/schedule"
)

// Publisher broadcasts change events after successful mutations. It
// implements schedule.Notifier. Publishing is best-effort: a failed
// publish is logged and dropped, never surfaced to the mutating caller,
// since listeners re-fetch from the store anyway.
type Publisher struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewPublisher(rdb *redis.Client, log zerolog.Logger) *Publisher {
	return &Publisher{
		rdb: rdb,
		log: log.With().Str("component", "change-publisher").Logger(),
	}
}

var _ schedule.Notifier = (*Publisher)(nil)

func (p *Publisher) AppointmentChanged(ctx context.Context, op string, a *schedule.Appointment) {
	ev := ChangeEvent{
		Collection: CollectionAppointments,
		Op:         op,
		RecordID:   a.ID.String(),
		DoctorID:   a.DoctorID,
		At:         time.Now(),
	}
	if op == OpUpdate || op == OpDelete {
		ev.OldDoctorID = a.DoctorID
	}
	p.publish(ctx, ev)
}

func (p *Publisher) SlotChanged(ctx context.Context, op string, sl *schedule.ManualScheduleSlot) {
	ev := ChangeEvent{
		Collection: CollectionSlots,
		Op:         op,
		RecordID:   sl.ID.String(),
		DoctorID:   sl.DoctorID,
		At:         time.Now(),
	}
	if op == OpUpdate || op == OpDelete {
		ev.OldDoctorID = sl.DoctorID
	}
	p.publish(ctx, ev)
}

func (p *Publisher) publish(ctx context.Context, ev ChangeEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.log.Error().Err(err).Str("collection", ev.Collection).Msg("marshal change event")
		return
	}
	if err := p.rdb.Publish(ctx, channelFor(ev.Collection), payload).Err(); err != nil {
		p.log.Warn().Err(err).Str("collection", ev.Collection).Str("op", ev.Op).
			Msg("publish change event")
	}
}
