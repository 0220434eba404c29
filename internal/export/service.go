package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/pricedesk/pricedesk/internal/pricelist"
	"github.com/pricedesk/pricedesk/jobs"
)

// Export states reported by Status.
const (
	StatePending = "pending"
	StateReady   = "ready"
	StateFailed  = "failed"
)

const (
	busyKey         = "export:busy"
	statusKeyPrefix = "export:status:"
	busyTTL         = 10 * time.Minute
	statusTTL       = 24 * time.Hour
)

var (
	// ErrBusy rejects a trigger while an export is in flight. Requests
	// are rejected, never queued behind the running one.
	ErrBusy = errors.New("export already in progress")
	// ErrUnknownExport indicates no status exists for the id.
	ErrUnknownExport = errors.New("unknown export")
)

// Status describes one export run.
type Status struct {
	ID    string `json:"id"`
	State string `json:"state"`
	File  string `json:"file,omitempty"`
	Error string `json:"error,omitempty"`
}

// Enqueuer is the slice of the Asynq client the service uses.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Service coordinates export runs: one at a time, tracked in Redis,
// executed by the worker.
type Service struct {
	logger *slog.Logger
	rdb    *redis.Client
	queue  Enqueuer
}

// NewService constructs a Service.
func NewService(logger *slog.Logger, rdb *redis.Client, queue Enqueuer) *Service {
	return &Service{logger: logger, rdb: rdb, queue: queue}
}

// Trigger freezes the given view state into a task and enqueues it.
// While the busy flag is set any further trigger returns ErrBusy.
func (s *Service) Trigger(ctx context.Context, filter pricelist.Filter, fontSize int) (string, error) {
	id := uuid.NewString()
	ok, err := s.rdb.SetNX(ctx, busyKey, id, busyTTL).Result()
	if err != nil {
		return "", fmt.Errorf("export: set busy flag: %w", err)
	}
	if !ok {
		return "", ErrBusy
	}

	// The pending status goes in before the task so a fast worker's
	// MarkReady can never be clobbered by a late pending write.
	if err := s.setStatus(ctx, Status{ID: id, State: StatePending}); err != nil {
		s.clearBusy(ctx)
		return "", fmt.Errorf("export: record status: %w", err)
	}

	task, err := jobs.NewPriceListExportTask(jobs.PriceListExportPayload{
		ExportID:   id,
		Search:     filter.Search,
		Category:   filter.Category,
		ShowHidden: filter.ShowHidden,
		FontSize:   fontSize,
	})
	if err == nil {
		_, err = s.queue.Enqueue(task)
	}
	if err != nil {
		if serr := s.setStatus(ctx, Status{ID: id, State: StateFailed, Error: err.Error()}); serr != nil {
			s.logger.Warn("record export status failed", "export_id", id, "error", serr)
		}
		s.clearBusy(ctx)
		return "", fmt.Errorf("export: enqueue: %w", err)
	}
	return id, nil
}

// Status reports the state of one export run.
func (s *Service) Status(ctx context.Context, id string) (Status, error) {
	raw, err := s.rdb.Get(ctx, statusKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Status{}, ErrUnknownExport
	}
	if err != nil {
		return Status{}, fmt.Errorf("export: read status: %w", err)
	}
	var st Status
	if err := json.Unmarshal(raw, &st); err != nil {
		return Status{}, fmt.Errorf("export: decode status: %w", err)
	}
	return st, nil
}

// MarkReady records a finished run and releases the busy flag.
func (s *Service) MarkReady(ctx context.Context, id, file string) error {
	defer s.clearBusy(ctx)
	return s.setStatus(ctx, Status{ID: id, State: StateReady, File: file})
}

// MarkFailed records a failed run and releases the busy flag. The
// failure is surfaced exactly once through the status.
func (s *Service) MarkFailed(ctx context.Context, id, msg string) error {
	defer s.clearBusy(ctx)
	return s.setStatus(ctx, Status{ID: id, State: StateFailed, Error: msg})
}

func (s *Service) setStatus(ctx context.Context, st Status) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, statusKeyPrefix+st.ID, raw, statusTTL).Err()
}

func (s *Service) clearBusy(ctx context.Context) {
	if err := s.rdb.Del(ctx, busyKey).Err(); err != nil {
		s.logger.Warn("clear export busy flag failed", "error", err)
	}
}
