package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/quintaverde/taskroster/internal/errors"
	"github.com/quintaverde/taskroster/internal/models"
	"gorm.io/gorm"
)

// RequireTaskDefinition loads the task definition named by the :id route
// parameter, with its scope relations, and stores it in the context under
// "task_definition".
func RequireTaskDefinition(db func() *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param("id")
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task definition ID")
			c.Abort()
			return
		}

		var task models.TaskDefinition
		if err := db().
			Preload("Status").
			Preload("Category").
			Preload("Position").
			Preload("Collaborator").
			Preload("Farms").
			Preload("Buildings").
			Preload("Rooms").
			First(&task, id).Error; err != nil {
			apierrors.NotFound(c, "Task definition not found")
			c.Abort()
			return
		}

		c.Set("task_definition", task)
		c.Next()
	}
}

// GetTaskDefinition retrieves the definition loaded by RequireTaskDefinition
func GetTaskDefinition(c *gin.Context) (models.TaskDefinition, bool) {
	value, exists := c.Get("task_definition")
	if !exists {
		return models.TaskDefinition{}, false
	}
	task, ok := value.(models.TaskDefinition)
	return task, ok
}
