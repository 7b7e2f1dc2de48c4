package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces bursts of change events before triggering a
// re-merge, giving the store a settling window without delaying isolated
// events by much.
const DefaultDebounce = 500 * time.Millisecond

// Listener watches both change-feed channels for one doctor and invokes
// the supplied callback after relevant mutations. Events for other
// doctors are filtered out client-side. Close always unsubscribes.
type Listener struct {
	rdb      *redis.Client
	doctorID string
	debounce time.Duration
	onChange func()
	log      zerolog.Logger

	pubsub *redis.PubSub
}

func NewListener(rdb *redis.Client, doctorID string, debounce time.Duration, onChange func(), log zerolog.Logger) *Listener {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Listener{
		rdb:      rdb,
		doctorID: doctorID,
		debounce: debounce,
		onChange: onChange,
		log:      log.With().Str("component", "change-listener").Str("doctor_id", doctorID).Logger(),
	}
}

// Start subscribes to both collections and begins dispatching in a
// background goroutine. It returns once the subscription is confirmed.
func (l *Listener) Start(ctx context.Context) error {
	l.pubsub = l.rdb.Subscribe(ctx, channelFor(CollectionAppointments), channelFor(CollectionSlots))

	// Force the subscribe round trip so a dead Redis fails here, not
	// silently in the goroutine.
	if _, err := l.pubsub.Receive(ctx); err != nil {
		_ = l.pubsub.Close()
		l.pubsub = nil
		return fmt.Errorf("subscribe change feed: %w", err)
	}

	go l.loop(ctx, l.pubsub.Channel())
	return nil
}

// Close tears the subscription down. Safe to call more than once and
// required on teardown; the dispatch goroutine exits when the message
// channel closes.
func (l *Listener) Close() error {
	if l.pubsub == nil {
		return nil
	}
	err := l.pubsub.Close()
	l.pubsub = nil
	return err
}

func (l *Listener) loop(ctx context.Context, msgs <-chan *redis.Message) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case msg, ok := <-msgs:
			if !ok {
				if timer != nil {
					timer.Stop()
				}
				return
			}
			ev, err := decodeEvent(msg.Payload)
			if err != nil {
				l.log.Warn().Err(err).Str("channel", msg.Channel).Msg("bad change event payload")
				continue
			}
			if !ev.Matches(l.doctorID) {
				continue
			}
			l.log.Debug().Str("collection", ev.Collection).Str("op", ev.Op).Msg("relevant change received")
			if timer == nil {
				timer = time.NewTimer(l.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(l.debounce)
			}
		case <-fire:
			timer = nil
			fire = nil
			l.onChange()
		}
	}
}

func decodeEvent(payload string) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ChangeEvent{}, fmt.Errorf("decode change event: %w", err)
	}
	return ev, nil
}
