package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasktracker/task-api/internal/api/metrics"
	"github.com/tasktracker/task-api/internal/core/domain"
	"github.com/tasktracker/task-api/internal/core/ports"
)

const maxIdempotencyKeyLen = 255

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create handles POST /api/tasks.
//
// @Summary      Create a task
// @Description  Admins may set userId to create a task for another user; for everyone else it is ignored.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string             false  "Replays the original task when repeated"
// @Param        body             body      createTaskRequest  true   "Task"
// @Success      201              {object}  Envelope{data=taskResponse}
// @Success      200              {object}  Envelope{data=taskResponse}
// @Failure      400              {object}  Envelope
// @Failure      401              {object}  Envelope
// @Failure      404              {object}  Envelope
// @Failure      409              {object}  Envelope
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	key := c.Request().Header.Get("Idempotency-Key")
	if len(key) > maxIdempotencyKeyLen {
		return invalid("Idempotency-Key", "idempotency key is too long")
	}

	result, err := h.service.Create(c.Request().Context(), ports.CreateTaskInput{
		Title:          req.Title,
		Description:    req.Description.Value,
		Status:         domain.TaskStatus(req.Status.orEmpty()),
		UserID:         req.UserID.orEmpty(),
		IdempotencyKey: key,
	}, actor)
	if err != nil {
		return err
	}

	if result.AlreadyExisted {
		metrics.IdempotentReplaysTotal.Inc()
		return respond(c, http.StatusOK, "Task already created", toTaskResponse(result.Task))
	}

	metrics.TasksCreatedTotal.WithLabelValues(string(result.Task.Status)).Inc()
	return respond(c, http.StatusCreated, "Task created successfully", toTaskResponse(result.Task))
}

// List handles GET /api/tasks.
//
// @Summary      List visible tasks, newest first
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "PENDING, IN_PROGRESS or COMPLETED"
// @Param        userId  query     string  false  "Owner filter, admins only"
// @Success      200     {object}  Envelope{data=[]taskResponse}
// @Failure      400     {object}  Envelope
// @Failure      401     {object}  Envelope
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var q listTasksQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	tasks, err := h.service.List(c.Request().Context(), ports.ListTasksInput{
		Status: domain.TaskStatus(q.Status),
		UserID: q.UserID,
	}, actor)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", toTaskResponses(tasks))
}

// Get handles GET /api/tasks/:id.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  Envelope{data=taskResponse}
// @Failure      401  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	task, err := h.service.Get(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", toTaskResponse(task))
}

// Update handles PATCH /api/tasks/:id.
//
// @Summary      Update a task
// @Description  Only the fields present are changed; a null description clears it.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task id"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  Envelope{data=taskResponse}
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /api/tasks/{id} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.service.Update(c.Request().Context(), c.Param("id"), req.toInput(), actor)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Task updated successfully", toTaskResponse(task))
}

// Delete handles DELETE /api/tasks/:id.
//
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  Envelope
// @Failure      401  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), actor); err != nil {
		return err
	}

	metrics.TasksDeletedTotal.Inc()
	return respond(c, http.StatusOK, "Task deleted successfully", nil)
}
