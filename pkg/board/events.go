package board

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// BoardEvent is published to the board_events channel after every committed
// mutation. Subscribers treat events as hints and re-read the Board; the
// committed hash is the source of truth.
type BoardEvent struct {
	FeatureID string    `json:"feature_id"`
	Action    Action    `json:"action"`
	FlowState FlowState `json:"flow_state"`
	Cycle     int       `json:"cycle"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Subscription represents an active Pub/Sub subscription to board events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *BoardEvent
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of board events. The channel is closed when the
// subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *BoardEvent {
	return s.events
}

// Errors returns the channel of subscription errors. Errors are non-fatal;
// the subscription continues and the offending message is skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and cleans up resources. Implements io.Closer.
// Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeBoardEvents subscribes to board mutation events for this instance.
// Events are delivered on a buffered channel (size 10); Redis Pub/Sub is
// at-most-once, so a slow subscriber may miss events.
func (s *Store) SubscribeBoardEvents(ctx context.Context) (*Subscription, error) {
	channel := BoardEventsChannel(s.instanceName)
	pubsub := s.rdb.Subscribe(ctx, channel)

	eventsChan := make(chan *BoardEvent, 10)
	errorsChan := make(chan error, 10)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event BoardEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal board event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}
