package database

import (
	"fmt"
	"log"

	"github.com/quintaverde/taskroster/internal/models"
	"gorm.io/gorm"
)

func Migrate() error {
	return MigrateDatabase(DB)
}

// MigrateDatabase runs schema migrations and index creation on the given
// connection.
func MigrateDatabase(db *gorm.DB) error {
	log.Println("Running database migrations...")
	err := db.AutoMigrate(
		&models.Farm{},
		&models.Building{},
		&models.Room{},
		&models.Operator{},
		&models.PositionDefinition{},
		&models.ShiftCalendar{},
		&models.ShiftAssignment{},
		&models.TaskStatus{},
		&models.TaskCategory{},
		&models.TaskDefinition{},
		&models.TaskAssignment{},
		&models.TaskAssignmentEvidence{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	log.Println("Database migrations completed")
	return nil
}

// AddIndexes creates the partial unique indexes that back the assignment
// uniqueness invariants: one row per (task, due date, collaborator) when the
// collaborator is set, one orphan per (task, due date) when it is null.
// Partial indexes need a WHERE clause, which AutoMigrate cannot express;
// postgres and sqlite support them, mysql does not, so on mysql the
// reconciler's in-memory keying stands alone.
func AddIndexes(db *gorm.DB) error {
	if db.Dialector.Name() == "mysql" {
		return nil
	}

	indexes := []struct {
		name string
		sql  string
	}{
		{
			"idx_task_assignments_task_due_collaborator",
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_task_assignments_task_due_collaborator
			 ON task_assignments (task_definition_id, due_date, collaborator_id)
			 WHERE collaborator_id IS NOT NULL`,
		},
		{
			"idx_task_assignments_task_due_orphan",
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_task_assignments_task_due_orphan
			 ON task_assignments (task_definition_id, due_date)
			 WHERE collaborator_id IS NULL`,
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
