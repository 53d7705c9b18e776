package handler

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/tasktracker/task-api/internal/core/domain"
	"github.com/tasktracker/task-api/internal/core/ports"
)

// optionalString tells an absent JSON field apart from an explicit null.
type optionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON is only invoked when the key is present, null included.
func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// IsNull reports whether the field was sent as an explicit null.
func (o optionalString) IsNull() bool {
	return o.Set && o.Value == nil
}

func (o optionalString) orEmpty() string {
	if o.Value == nil {
		return ""
	}
	return *o.Value
}

func (o optionalString) toPort() ports.OptionalString {
	return ports.OptionalString{Set: o.Set, Value: o.Value}
}

// nullChecker is implemented by requests whose optional fields may be
// omitted but not sent as null.
type nullChecker interface {
	nullFields() []string
}

func nullFields(fields map[string]optionalString) []string {
	var out []string
	for name, f := range fields {
		if f.IsNull() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// --- Request types ---

type createTaskRequest struct {
	Title       string         `json:"title"       validate:"required,max=255"`
	Description optionalString `json:"description" validate:"omitnil,max=1000"`
	Status      optionalString `json:"status"      validate:"omitnil,oneof=PENDING IN_PROGRESS COMPLETED"`
	UserID      optionalString `json:"userId"      validate:"omitnil,uuid"`
}

func (r createTaskRequest) nullFields() []string {
	return nullFields(map[string]optionalString{
		"description": r.Description,
		"status":      r.Status,
		"userId":      r.UserID,
	})
}

// Description is the only field an update may set to null.
type updateTaskRequest struct {
	Title       optionalString `json:"title"       validate:"omitnil,min=1,max=255"`
	Description optionalString `json:"description" validate:"omitnil,max=1000"`
	Status      optionalString `json:"status"      validate:"omitnil,oneof=PENDING IN_PROGRESS COMPLETED"`
}

func (r updateTaskRequest) nullFields() []string {
	return nullFields(map[string]optionalString{
		"title":  r.Title,
		"status": r.Status,
	})
}

type listTasksQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
	UserID string `query:"userId" validate:"omitempty,uuid"`
}

func (r updateTaskRequest) toInput() ports.UpdateTaskInput {
	in := ports.UpdateTaskInput{
		Title:       r.Title.Value,
		Description: r.Description.toPort(),
	}
	if r.Status.Value != nil {
		s := domain.TaskStatus(*r.Status.Value)
		in.Status = &s
	}
	return in
}

// --- Response types ---

type taskResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	UserID      string  `json:"userId"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:   t.UpdatedAt.UTC().Format(timeLayout),
	}
}

func toTaskResponses(tasks []*domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}
