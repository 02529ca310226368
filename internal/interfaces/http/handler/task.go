package handler

import (
	"github.com/gin-gonic/gin"
	productionapp "github.com/spicemill/stockledger/internal/application/production"
)

// TaskHandler handles production task endpoints
type TaskHandler struct {
	BaseHandler
	taskService *productionapp.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *productionapp.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Create creates a production task
//
// Task numbers default to TASK001, TASK002 and so on.
func (h *TaskHandler) Create(c *gin.Context) {
	var req productionapp.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, task)
}

func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

// List lists production tasks
func (h *TaskHandler) List(c *gin.Context) {
	var filter productionapp.TaskListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	tasks, err := h.taskService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tasks)
}

// Update updates a production task
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req productionapp.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

// ChangeStatus changes a task's status
//
// Completing a task utilises its assigned quantity once.
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req productionapp.ChangeTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	task, err := h.taskService.ChangeStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
