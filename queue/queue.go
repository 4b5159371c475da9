package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/xraph/resque"
	"github.com/xraph/resque/job"
	"github.com/xraph/resque/keyspace"
	"github.com/xraph/resque/store"
)

// Service performs queue operations against one keyspace.
type Service struct {
	store  Store
	keys   keyspace.Keyspace
	logger *slog.Logger
}

// NewService creates a queue service. A nil logger discards output.
func NewService(s Store, keys keyspace.Keyspace, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: s, keys: keys, logger: logger}
}

// Push registers queue and appends p to its tail.
func (s *Service) Push(ctx context.Context, queue string, p *job.Payload) error {
	if queue == "" {
		return fmt.Errorf("%w: empty queue name", resque.ErrInvalidArgument)
	}
	b, err := p.Encode()
	if err != nil {
		return err
	}
	if err := s.store.SAdd(ctx, s.keys.Queues(), queue); err != nil {
		return fmt.Errorf("resque/queue: push %s: register: %w", queue, err)
	}
	if err := s.store.RPush(ctx, s.keys.Queue(queue), b); err != nil {
		return fmt.Errorf("resque/queue: push %s: %w", queue, err)
	}
	return nil
}

// Pop removes and returns the head of queue. ok is false when the queue
// is empty, and also when the head was not a valid payload: such entries
// are consumed and dropped with a debug log line.
func (s *Service) Pop(ctx context.Context, queue string) (p *job.Payload, ok bool, err error) {
	b, err := s.store.LPop(ctx, s.keys.Queue(queue))
	if errors.Is(err, store.ErrNil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("resque/queue: pop %s: %w", queue, err)
	}
	p, err = job.DecodePayload(b)
	if err != nil {
		s.logger.Debug("dropping malformed payload",
			slog.String("queue", queue),
			slog.String("error", err.Error()),
		)
		return nil, false, nil
	}
	return p, true, nil
}

// Peek returns up to count payloads starting at start without removing
// them. Malformed entries are skipped.
func (s *Service) Peek(ctx context.Context, queue string, start, count int64) ([]*job.Payload, error) {
	if count <= 0 {
		return []*job.Payload{}, nil
	}
	raw, err := s.store.LRange(ctx, s.keys.Queue(queue), start, start+count-1)
	if err != nil {
		return nil, fmt.Errorf("resque/queue: peek %s: %w", queue, err)
	}
	out := make([]*job.Payload, 0, len(raw))
	for _, b := range raw {
		p, err := job.DecodePayload(b)
		if err != nil {
			s.logger.Debug("skipping malformed payload",
				slog.String("queue", queue),
				slog.String("error", err.Error()),
			)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Clear deletes every pending payload of queue and returns how many were
// removed. The queue stays registered.
func (s *Service) Clear(ctx context.Context, queue string) (int64, error) {
	key := s.keys.Queue(queue)
	n, err := s.store.LLen(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("resque/queue: clear %s: %w", queue, err)
	}
	if err := s.store.Del(ctx, key); err != nil {
		return 0, fmt.Errorf("resque/queue: clear %s: %w", queue, err)
	}
	return n, nil
}

// Size returns the number of pending payloads; 0 for unknown queues.
func (s *Service) Size(ctx context.Context, queue string) (int64, error) {
	n, err := s.store.LLen(ctx, s.keys.Queue(queue))
	if err != nil {
		return 0, fmt.Errorf("resque/queue: size %s: %w", queue, err)
	}
	return n, nil
}

// List returns every registered queue name, sorted.
func (s *Service) List(ctx context.Context) ([]string, error) {
	names, err := s.store.SMembers(ctx, s.keys.Queues())
	if err != nil {
		return nil, fmt.Errorf("resque/queue: list: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	sort.Strings(names)
	return names, nil
}

// RemoveQueue unregisters queue and deletes its pending payloads.
func (s *Service) RemoveQueue(ctx context.Context, queue string) error {
	if err := s.store.SRem(ctx, s.keys.Queues(), queue); err != nil {
		return fmt.Errorf("resque/queue: remove %s: %w", queue, err)
	}
	if err := s.store.Del(ctx, s.keys.Queue(queue)); err != nil {
		return fmt.Errorf("resque/queue: remove %s: %w", queue, err)
	}
	return nil
}
