package models

import "time"

// TaskAssignment is one persisted (task, due date, collaborator) pairing.
// CollaboratorID is nil for an orphan row: the task was due but nobody
// matched its scope. The synchronizer owns CollaboratorID and
// PreviousCollaboratorID on the dates it manages; CompletedOn and
// CompletionNote belong to the task-execution subsystem and are never
// written by reconciliation. Rows are orphaned instead of deleted so that
// completion history and evidence survive roster churn.
type TaskAssignment struct {
	ID                     uint64     `gorm:"primarykey" json:"id"`
	TaskDefinitionID       uint64     `gorm:"not null;index" json:"task_definition_id"`
	DueDate                time.Time  `gorm:"type:date;not null;index" json:"due_date"`
	CollaboratorID         *uint64    `gorm:"index" json:"collaborator_id"`
	PreviousCollaboratorID *uint64    `json:"previous_collaborator_id"`
	CompletedOn            *time.Time `gorm:"type:date" json:"completed_on"`
	CompletionNote         string     `gorm:"type:text" json:"completion_note"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`

	// Relations
	TaskDefinition       TaskDefinition           `gorm:"foreignKey:TaskDefinitionID" json:"task_definition,omitempty"`
	Collaborator         *Operator                `gorm:"foreignKey:CollaboratorID" json:"collaborator,omitempty"`
	PreviousCollaborator *Operator                `gorm:"foreignKey:PreviousCollaboratorID" json:"previous_collaborator,omitempty"`
	Evidence             []TaskAssignmentEvidence `gorm:"foreignKey:AssignmentID" json:"evidence,omitempty"`
}

// IsOrphan reports whether the row is due but unassigned.
func (a *TaskAssignment) IsOrphan() bool {
	return a.CollaboratorID == nil
}

// TaskAssignmentEvidence is a completion artifact attached to an assignment.
type TaskAssignmentEvidence struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	AssignmentID uint64    `gorm:"not null;index" json:"assignment_id"`
	StorageKey   string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"storage_key"`
	MediaType    string    `gorm:"type:varchar(20);not null" json:"media_type"`
	Note         string    `gorm:"type:text" json:"note"`
	ContentType  string    `gorm:"type:varchar(100)" json:"content_type"`
	FileSize     int64     `json:"file_size"`
	UploadedByID *uint64   `json:"uploaded_by_id"`
	UploadedAt   time.Time `json:"uploaded_at"`

	// Relations
	Assignment TaskAssignment `gorm:"foreignKey:AssignmentID" json:"-"`
	UploadedBy *Operator      `gorm:"foreignKey:UploadedByID" json:"uploaded_by,omitempty"`
}
