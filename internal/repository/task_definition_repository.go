package repository

import (
	"github.com/quintaverde/taskroster/internal/database"
	"github.com/quintaverde/taskroster/internal/models"
	"github.com/quintaverde/taskroster/internal/utils"
	"gorm.io/gorm"
)

// GormTaskDefinitionRepository is a GORM implementation of TaskDefinitionRepository
type GormTaskDefinitionRepository struct {
	db *gorm.DB
}

// NewTaskDefinitionRepository creates a new TaskDefinitionRepository
func NewTaskDefinitionRepository(db *gorm.DB) TaskDefinitionRepository {
	return &GormTaskDefinitionRepository{db: db}
}

// Create creates a new task definition
func (r *GormTaskDefinitionRepository) Create(task *models.TaskDefinition) error {
	return r.db.Create(task).Error
}

// FindByID finds a task definition by ID with optional preloading
func (r *GormTaskDefinitionRepository) FindByID(id uint64, preload ...string) (*models.TaskDefinition, error) {
	var task models.TaskDefinition
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves task definitions with filtering and pagination
func (r *GormTaskDefinitionRepository) List(filter TaskDefinitionFilter) ([]models.TaskDefinition, int64, error) {
	var tasks []models.TaskDefinition

	query := r.db.Model(&models.TaskDefinition{})

	if filter.StatusID != nil {
		query = query.Where("task_definitions.status_id = ?", *filter.StatusID)
	}
	if filter.CategoryID != nil {
		query = query.Where("task_definitions.category_id = ?", *filter.CategoryID)
	}
	if filter.TaskType != nil {
		query = query.Where("task_definitions.task_type = ?", *filter.TaskType)
	}
	if filter.ActiveOnly {
		query = query.Joins("JOIN task_statuses ON task_statuses.id = task_definitions.status_id").
			Where("task_statuses.is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("task_definitions.display_order, task_definitions.id")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.Preload("Status").Preload("Category").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListActive returns every definition whose status is active, preloading the
// relations the synchronizer reads: position rooms for scope matching and
// the pinned collaborator for the fallback policy.
func (r *GormTaskDefinitionRepository) ListActive() ([]models.TaskDefinition, error) {
	var tasks []models.TaskDefinition
	err := r.db.
		Joins("JOIN task_statuses ON task_statuses.id = task_definitions.status_id").
		Where("task_statuses.is_active = ?", true).
		Preload("Position").
		Preload("Collaborator").
		Preload("Farms").
		Preload("Buildings").
		Preload("Rooms").
		Order("task_definitions.id").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates a task definition
func (r *GormTaskDefinitionRepository) Update(task *models.TaskDefinition) error {
	return r.db.Save(task).Error
}

// ReplaceScope replaces the farm/building/room scope sets of a definition
func (r *GormTaskDefinitionRepository) ReplaceScope(task *models.TaskDefinition, farmIDs, buildingIDs, roomIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		farms := make([]models.Farm, len(farmIDs))
		for i, id := range farmIDs {
			farms[i] = models.Farm{ID: id}
		}
		if err := tx.Model(task).Association("Farms").Replace(farms); err != nil {
			return err
		}

		buildings := make([]models.Building, len(buildingIDs))
		for i, id := range buildingIDs {
			buildings[i] = models.Building{ID: id}
		}
		if err := tx.Model(task).Association("Buildings").Replace(buildings); err != nil {
			return err
		}

		rooms := make([]models.Room, len(roomIDs))
		for i, id := range roomIDs {
			rooms[i] = models.Room{ID: id}
		}
		return tx.Model(task).Association("Rooms").Replace(rooms)
	})
}

// FindStatusByID finds a task status row
func (r *GormTaskDefinitionRepository) FindStatusByID(id uint64) (*models.TaskStatus, error) {
	var status models.TaskStatus
	if err := r.db.First(&status, id).Error; err != nil {
		return nil, err
	}
	return &status, nil
}
