package notify

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watchedDoctor = "dr.sharma@cureveda.example"

func TestChangeEventMatches(t *testing.T) {
	tests := []struct {
		name string
		ev   ChangeEvent
		want bool
	}{
		{"new row owner", ChangeEvent{DoctorID: watchedDoctor}, true},
		{"old row owner", ChangeEvent{OldDoctorID: watchedDoctor}, true},
		{"other doctor", ChangeEvent{DoctorID: "other@x", OldDoctorID: "other@x"}, false},
		{"no owner at all", ChangeEvent{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ev.Matches(watchedDoctor))
		})
	}

	assert.False(t, ChangeEvent{DoctorID: watchedDoctor}.Matches(""),
		"empty watched id never matches")
}

func TestDecodeEventRejectsBadPayload(t *testing.T) {
	_, err := decodeEvent("{not json")
	require.Error(t, err)

	ev, err := decodeEvent(`{"collection":"appointments","op":"update","doctor_id":"d@x"}`)
	require.NoError(t, err)
	assert.Equal(t, CollectionAppointments, ev.Collection)
	assert.Equal(t, "d@x", ev.DoctorID)
}

func eventMessage(t *testing.T, ev ChangeEvent) *redis.Message {
	t.Helper()
	payload, err := json.Marshal(ev)
	require.NoError(t, err)
	return &redis.Message{Channel: channelFor(ev.Collection), Payload: string(payload)}
}

func TestListenerDebouncesBursts(t *testing.T) {
	var fired atomic.Int32
	l := NewListener(nil, watchedDoctor, 30*time.Millisecond, func() { fired.Add(1) }, zerolog.Nop())

	msgs := make(chan *redis.Message, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.loop(ctx, msgs)
	}()

	// A burst of relevant changes collapses into one re-merge.
	for i := 0; i < 3; i++ {
		msgs <- eventMessage(t, ChangeEvent{Collection: CollectionAppointments, Op: OpUpdate, DoctorID: watchedDoctor})
	}

	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)

	// A later isolated change triggers again.
	msgs <- eventMessage(t, ChangeEvent{Collection: CollectionSlots, Op: OpDelete, OldDoctorID: watchedDoctor})
	assert.Eventually(t, func() bool { return fired.Load() == 2 }, time.Second, 5*time.Millisecond)

	close(msgs)
	<-done
	assert.Equal(t, int32(2), fired.Load())
}

func TestListenerIgnoresOtherDoctors(t *testing.T) {
	var fired atomic.Int32
	l := NewListener(nil, watchedDoctor, 10*time.Millisecond, func() { fired.Add(1) }, zerolog.Nop())

	msgs := make(chan *redis.Message, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.loop(ctx, msgs)
	}()

	msgs <- eventMessage(t, ChangeEvent{Collection: CollectionAppointments, Op: OpInsert, DoctorID: "other@x"})
	msgs <- &redis.Message{Channel: channelFor(CollectionAppointments), Payload: "{broken"}

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, fired.Load())

	close(msgs)
	<-done
}
