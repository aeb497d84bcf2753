package repository

import (
	"time"

	"github.com/quintaverde/taskroster/internal/database"
	"github.com/quintaverde/taskroster/internal/models"
	"github.com/quintaverde/taskroster/internal/utils"
	"gorm.io/gorm"
)

// GormAssignmentRepository is a GORM implementation of AssignmentRepository
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// Create creates a new assignment row
func (r *GormAssignmentRepository) Create(assignment *models.TaskAssignment) error {
	return r.db.Create(assignment).Error
}

// FindByID finds an assignment by ID with optional preloading
func (r *GormAssignmentRepository) FindByID(id uint64, preload ...string) (*models.TaskAssignment, error) {
	var assignment models.TaskAssignment
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&assignment, id).Error; err != nil {
		return nil, err
	}

	return &assignment, nil
}

// List retrieves assignments with filtering and pagination
func (r *GormAssignmentRepository) List(filter AssignmentFilter) ([]models.TaskAssignment, int64, error) {
	var assignments []models.TaskAssignment

	query := r.db.Model(&models.TaskAssignment{})

	if filter.TaskDefinitionID != nil {
		query = query.Where("task_assignments.task_definition_id = ?", *filter.TaskDefinitionID)
	}
	if filter.CollaboratorID != nil {
		query = query.Where("task_assignments.collaborator_id = ?", *filter.CollaboratorID)
	}
	if filter.OrphansOnly {
		query = query.Where("task_assignments.collaborator_id IS NULL")
	}
	if filter.DueDateFrom != nil {
		query = query.Where("task_assignments.due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("task_assignments.due_date <= ?", *filter.DueDateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("task_assignments.due_date, task_assignments.task_definition_id, task_assignments.id")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.Preload("TaskDefinition").Preload("Collaborator").Find(&assignments).Error; err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}

// ListForTasksInRange returns every assignment for the given task ids with a
// due date inside [start, end], in the deterministic order reconciliation
// walks them.
func (r *GormAssignmentRepository) ListForTasksInRange(taskIDs []uint64, start, end time.Time) ([]models.TaskAssignment, error) {
	if len(taskIDs) == 0 {
		return []models.TaskAssignment{}, nil
	}

	var assignments []models.TaskAssignment
	err := r.db.
		Where("task_definition_id IN ?", taskIDs).
		Where("due_date BETWEEN ? AND ?", start, end).
		Order("due_date, task_definition_id, id").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}

	return assignments, nil
}

// UpdateCollaborator persists only the collaborator ownership fields,
// leaving completion state and evidence untouched.
func (r *GormAssignmentRepository) UpdateCollaborator(assignment *models.TaskAssignment) error {
	return r.db.Model(assignment).
		Select("collaborator_id", "previous_collaborator_id", "updated_at").
		Updates(map[string]interface{}{
			"collaborator_id":          assignment.CollaboratorID,
			"previous_collaborator_id": assignment.PreviousCollaboratorID,
			"updated_at":               time.Now(),
		}).Error
}

// UpdateCompletion persists only the completion fields.
func (r *GormAssignmentRepository) UpdateCompletion(assignment *models.TaskAssignment) error {
	return r.db.Model(assignment).
		Select("completed_on", "completion_note", "updated_at").
		Updates(map[string]interface{}{
			"completed_on":    assignment.CompletedOn,
			"completion_note": assignment.CompletionNote,
			"updated_at":      time.Now(),
		}).Error
}

// AddEvidence attaches an evidence record to an assignment
func (r *GormAssignmentRepository) AddEvidence(evidence *models.TaskAssignmentEvidence) error {
	return r.db.Create(evidence).Error
}

// InTransaction runs fn against a repository bound to a single transaction.
func (r *GormAssignmentRepository) InTransaction(fn func(repo AssignmentRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormAssignmentRepository{db: tx})
	})
}
