package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/quintaverde/taskroster/internal/models"
	"github.com/quintaverde/taskroster/internal/repository"
	"github.com/quintaverde/taskroster/internal/utils"
)

// ReconcileStats summarizes the mutations one reconciliation applied.
type ReconcileStats struct {
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Orphaned int `json:"orphaned"`
	Matched  int `json:"matched"`
}

// Total returns the number of rows written.
func (s ReconcileStats) Total() int {
	return s.Created + s.Updated + s.Orphaned
}

func (s *ReconcileStats) add(other ReconcileStats) {
	s.Created += other.Created
	s.Updated += other.Updated
	s.Orphaned += other.Orphaned
	s.Matched += other.Matched
}

// targetKey is the reconciliation triple. Dates are keyed by their
// YYYY-MM-DD form so driver-dependent time zones cannot split equal days;
// a zero collaborator id marks the orphan slot (row ids start at 1).
type targetKey struct {
	taskID         uint64
	due            string
	collaboratorID uint64
}

func keyFor(taskID uint64, dueDate time.Time, collaboratorID *uint64) targetKey {
	key := targetKey{taskID: taskID, due: utils.DateKey(dueDate)}
	if collaboratorID != nil {
		key.collaboratorID = *collaboratorID
	}
	return key
}

type poolKey struct {
	taskID uint64
	due    string
}

// reconciler converges the persisted assignment rows for one run onto the
// desired target set with minimal churn. Rows are reused whenever possible
// so that completion history and evidence stay attached; rows that lost
// their target are demoted to orphans, never deleted.
type reconciler struct {
	repo repository.AssignmentRepository
}

// reconcile applies the target set against the existing rows for the same
// task ids and date range as a single transaction. An empty target set
// degenerates into a pure unassign-everyone pass.
func (r *reconciler) reconcile(targets map[targetKey]Target, taskIDs []uint64, start, end time.Time) (ReconcileStats, error) {
	existing, err := r.repo.ListForTasksInRange(taskIDs, start, end)
	if err != nil {
		return ReconcileStats{}, fmt.Errorf("failed to load existing assignments: %w", err)
	}

	var stats ReconcileStats
	err = r.repo.InTransaction(func(repo repository.AssignmentRepository) error {
		var txErr error
		stats, txErr = r.converge(repo, targets, existing)
		return txErr
	})
	if err != nil {
		return ReconcileStats{}, err
	}
	return stats, nil
}

func (r *reconciler) converge(repo repository.AssignmentRepository, targets map[targetKey]Target, existing []models.TaskAssignment) (ReconcileStats, error) {
	stats := ReconcileStats{}

	existingByKey := make(map[targetKey]*models.TaskAssignment, len(existing))
	pools := make(map[poolKey][]*models.TaskAssignment)
	matched := make(map[uint64]struct{})

	for i := range existing {
		row := &existing[i]
		existingByKey[keyFor(row.TaskDefinitionID, row.DueDate, row.CollaboratorID)] = row
		pk := poolKey{taskID: row.TaskDefinitionID, due: utils.DateKey(row.DueDate)}
		pools[pk] = append(pools[pk], row)
	}

	for _, target := range sortedTargets(targets) {
		key := keyFor(target.TaskDefinitionID, target.DueDate, target.CollaboratorID)
		if row, ok := existingByKey[key]; ok {
			matched[row.ID] = struct{}{}
			stats.Matched++
			continue
		}

		pool := pools[poolKey{taskID: target.TaskDefinitionID, due: key.due}]

		if target.CollaboratorID != nil {
			if row := firstUnmatched(pool, matched, func(row *models.TaskAssignment) bool {
				return row.CollaboratorID == nil
			}); row != nil {
				// Repurpose the orphan in place: same row id, new owner.
				delete(existingByKey, keyFor(row.TaskDefinitionID, row.DueDate, row.CollaboratorID))
				row.CollaboratorID = target.CollaboratorID
				if err := repo.UpdateCollaborator(row); err != nil {
					return stats, fmt.Errorf("failed to repurpose assignment %d: %w", row.ID, err)
				}
				matched[row.ID] = struct{}{}
				existingByKey[keyFor(row.TaskDefinitionID, row.DueDate, row.CollaboratorID)] = row
				stats.Updated++
				continue
			}
		}

		if target.CollaboratorID == nil {
			if row := firstUnmatched(pool, matched, nil); row != nil && row.CollaboratorID != nil {
				delete(existingByKey, keyFor(row.TaskDefinitionID, row.DueDate, row.CollaboratorID))
				if err := demoteToOrphan(repo, row); err != nil {
					return stats, err
				}
				matched[row.ID] = struct{}{}
				existingByKey[keyFor(row.TaskDefinitionID, row.DueDate, nil)] = row
				stats.Orphaned++
				continue
			}
		}

		created := &models.TaskAssignment{
			TaskDefinitionID: target.TaskDefinitionID,
			DueDate:          target.DueDate,
			CollaboratorID:   target.CollaboratorID,
		}
		if err := repo.Create(created); err != nil {
			return stats, fmt.Errorf("failed to create assignment: %w", err)
		}
		matched[created.ID] = struct{}{}
		existingByKey[keyFor(created.TaskDefinitionID, created.DueDate, created.CollaboratorID)] = created
		pk := poolKey{taskID: created.TaskDefinitionID, due: key.due}
		pools[pk] = append(pools[pk], created)
		stats.Created++
	}

	// Everything that kept its collaborator without a target backing it is
	// demoted; unmatched orphans stay as they are.
	for i := range existing {
		row := &existing[i]
		if _, ok := matched[row.ID]; ok {
			continue
		}
		if row.CollaboratorID == nil {
			continue
		}
		if err := demoteToOrphan(repo, row); err != nil {
			return stats, err
		}
		stats.Orphaned++
	}

	return stats, nil
}

// demoteToOrphan clears the collaborator while recording who was displaced.
func demoteToOrphan(repo repository.AssignmentRepository, row *models.TaskAssignment) error {
	row.PreviousCollaboratorID = row.CollaboratorID
	row.CollaboratorID = nil
	if err := repo.UpdateCollaborator(row); err != nil {
		return fmt.Errorf("failed to orphan assignment %d: %w", row.ID, err)
	}
	return nil
}

// sortedTargets orders targets by due date, then task id, then collaborator
// id. The ordering is what makes reusable-row claims deterministic when two
// targets on the same (task, date) could both want the same row.
func sortedTargets(targets map[targetKey]Target) []Target {
	sorted := make([]Target, 0, len(targets))
	for _, target := range targets {
		sorted = append(sorted, target)
	}
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		if a.TaskDefinitionID != b.TaskDefinitionID {
			return a.TaskDefinitionID < b.TaskDefinitionID
		}
		return collaboratorOrZero(a.CollaboratorID) < collaboratorOrZero(b.CollaboratorID)
	})
	return sorted
}

func collaboratorOrZero(id *uint64) uint64 {
	if id == nil {
		return 0
	}
	return *id
}

func firstUnmatched(pool []*models.TaskAssignment, matched map[uint64]struct{}, accept func(*models.TaskAssignment) bool) *models.TaskAssignment {
	for _, row := range pool {
		if _, ok := matched[row.ID]; ok {
			continue
		}
		if accept != nil && !accept(row) {
			continue
		}
		return row
	}
	return nil
}
