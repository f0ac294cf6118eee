package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/domain/lane"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
	"github.com/taskwell/taskwell-api/internal/store"
)

// BoardService moves tasks across the status lanes while preserving the
// dense 0..n-1 ordering invariant inside every lane.
type BoardService interface {
	// Reorder atomically moves one task into a target lane at the
	// position given by orderedIDs, reindexes the target lane, and
	// repairs the source lane when the move crossed lanes. Returns the
	// full task list on success.
	//
	// The payload is rejected as a whole (ErrInconsistentOrder) when the
	// moved ID is absent from orderedIDs or any other listed ID is not a
	// member of the target lane; nothing is partially applied.
	// Duplicate IDs are silently de-duplicated, keeping the first
	// occurrence.
	//
	// A reorder that drags a recurring task into the done lane is also
	// the status transition that completes it, so the recurrence
	// successor is spawned inside the same transaction.
	Reorder(ctx context.Context, movedTaskID uuid.UUID, toStatus domain.TaskStatus, orderedIDs []uuid.UUID) ([]*domain.Task, error)

	// RepairLane reindexes one lane to a dense 0..n-1 sequence. Used as
	// a standalone repair after operations that leave gaps, such as a
	// task deletion.
	RepairLane(ctx context.Context, status domain.TaskStatus) error
}

// boardService implements BoardService.
type boardService struct {
	tasks      store.TaskStore
	activity   store.ActivityStore
	transactor store.Transactor
	logger     *slog.Logger
	now        func() time.Time
}

// NewBoardService creates a new BoardService.
func NewBoardService(
	tasks store.TaskStore,
	activity store.ActivityStore,
	transactor store.Transactor,
	logger *slog.Logger,
) (BoardService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if activity == nil {
		return nil, domain.NewValidationError("activity", "cannot be nil", domain.ErrValidation)
	}
	if transactor == nil {
		return nil, domain.NewValidationError("transactor", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &boardService{
		tasks:      tasks,
		activity:   activity,
		transactor: transactor,
		logger:     logger.With(slog.String("component", "board_service")),
		now:        time.Now,
	}, nil
}

// Reorder implements BoardService.Reorder
func (s *boardService) Reorder(
	ctx context.Context,
	movedTaskID uuid.UUID,
	toStatus domain.TaskStatus,
	orderedIDs []uuid.UUID,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !toStatus.IsValid() {
		return nil, domain.NewValidationError("to_status", "is not a known lane", domain.ErrInvalidStatus)
	}

	ids := lane.Dedupe(orderedIDs)
	movedListed := false
	for _, id := range ids {
		if id == movedTaskID {
			movedListed = true
			break
		}
	}
	if !movedListed {
		return nil, fmt.Errorf("%w: moved task %s is not in the ordering", ErrInconsistentOrder, movedTaskID)
	}

	var items []*domain.Task
	err := s.transactor.Transact(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txActivity := s.activity.WithTx(tx)

		moved, err := txTasks.GetByID(ctx, movedTaskID)
		if err != nil {
			return err
		}
		prevStatus := moved.Status

		members, err := txTasks.ListByStatus(ctx, toStatus)
		if err != nil {
			return err
		}

		// Membership check: every listed ID other than the moved task
		// must already live in the target lane. IDs from another lane,
		// or absent from the store entirely, poison the whole request.
		inLane := make(map[uuid.UUID]struct{}, len(members))
		for _, m := range members {
			inLane[m.ID] = struct{}{}
		}
		for _, id := range ids {
			if id == movedTaskID {
				continue
			}
			if _, ok := inLane[id]; !ok {
				return fmt.Errorf("%w: task %s is not in lane %q", ErrInconsistentOrder, id, toStatus)
			}
		}

		now := s.now().UTC()
		if err := s.applyTransition(moved, toStatus, now); err != nil {
			return err
		}
		if err := txTasks.Update(ctx, moved); err != nil {
			return err
		}

		// Use the single moved instance inside the member set so its
		// updated fields flow into the new sequence.
		full := make([]*domain.Task, 0, len(members)+1)
		for _, m := range members {
			if m.ID == moved.ID {
				continue
			}
			full = append(full, m)
		}
		full = append(full, moved)

		seq := lane.Sequence(ids, full)
		for _, changed := range lane.Apply(seq) {
			if err := txTasks.SetLanePlacement(ctx, changed.ID, toStatus, changed.LaneOrder); err != nil {
				return err
			}
		}

		if prevStatus != toStatus {
			if err := repairLane(ctx, txTasks, prevStatus); err != nil {
				return err
			}
		}

		detail, _ := json.Marshal(map[string]string{
			"from": string(prevStatus),
			"to":   string(toStatus),
		})
		audit := domain.NewActivityEntry("task", moved.ID, "reorder", detail)
		if err := txActivity.Record(ctx, audit); err != nil {
			return err
		}

		if !prevStatus.IsTerminal() && toStatus.IsTerminal() {
			if _, err := spawnSuccessor(ctx, txTasks, moved, now); err != nil {
				return err
			}
		}

		items, err = txTasks.List(ctx)
		return err
	})
	if err != nil {
		log.Warn("reorder rejected",
			slog.String("task_id", movedTaskID.String()),
			slog.String("to_status", string(toStatus)),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("lane reorder applied",
		slog.String("task_id", movedTaskID.String()),
		slog.String("to_status", string(toStatus)),
		slog.Int("ordered_ids", len(ids)))
	return items, nil
}

// RepairLane implements BoardService.RepairLane
func (s *boardService) RepairLane(ctx context.Context, status domain.TaskStatus) error {
	if !status.IsValid() {
		return domain.NewValidationError("status", "is not a known lane", domain.ErrInvalidStatus)
	}

	return s.transactor.Transact(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return repairLane(ctx, s.tasks.WithTx(tx), status)
	})
}

// applyTransition moves a task to a new lane, maintaining the completion
// timestamp: entering the terminal lane stamps it, leaving clears it.
func (s *boardService) applyTransition(task *domain.Task, toStatus domain.TaskStatus, now time.Time) error {
	from := task.Status
	task.Status = toStatus
	task.UpdatedAt = now

	switch {
	case !from.IsTerminal() && toStatus.IsTerminal():
		completed := now
		task.CompletedAt = &completed
	case from.IsTerminal() && !toStatus.IsTerminal():
		task.CompletedAt = nil
	}
	return nil
}

// repairLane reindexes one lane to a dense 0..n-1 sequence using the
// canonical tie-break chain. Shared by the reorder transaction and the
// standalone repairs run after deletes and cross-lane patches.
func repairLane(ctx context.Context, tasks store.TaskStore, status domain.TaskStatus) error {
	members, err := tasks.ListByStatus(ctx, status)
	if err != nil {
		return err
	}
	for _, changed := range lane.Reindex(members) {
		if err := tasks.SetLanePlacement(ctx, changed.ID, status, changed.LaneOrder); err != nil {
			return err
		}
	}
	return nil
}

// spawnSuccessor creates the next occurrence of a recurring task that
// just crossed into the done lane. It fires only on the crossing edge:
// callers guard on the previous status so updates that keep a task in
// the terminal lane never spawn again. The successor lands at the tail
// of the todo lane. Returns nil without error for non-recurring tasks.
func spawnSuccessor(ctx context.Context, tasks store.TaskStore, completed *domain.Task, now time.Time) (*domain.Task, error) {
	next := completed.NextOccurrence(now)
	if next == nil {
		return nil, nil
	}

	tail, err := tasks.CountByStatus(ctx, next.Status)
	if err != nil {
		return nil, err
	}
	next.LaneOrder = tail

	if err := tasks.Create(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}
