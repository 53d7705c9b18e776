package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/tasktracker/task-api/internal/core/domain"
	"github.com/tasktracker/task-api/internal/core/ports"
)

func TestByIDFilter(t *testing.T) {
	assert.Equal(t, bson.M{"_id": "t1"}, byIDFilter("t1", ""))
	assert.Equal(t, bson.M{"_id": "t1", "user_id": "u1"}, byIDFilter("t1", "u1"))
}

func TestListFilter(t *testing.T) {
	cases := []struct {
		name string
		in   ports.TaskFilter
		want bson.M
	}{
		{"empty", ports.TaskFilter{}, bson.M{}},
		{"owner", ports.TaskFilter{OwnerID: "u1"}, bson.M{"user_id": "u1"}},
		{"status", ports.TaskFilter{Status: domain.StatusPending}, bson.M{"status": "PENDING"}},
		{"both", ports.TaskFilter{OwnerID: "u1", Status: domain.StatusCompleted}, bson.M{"user_id": "u1", "status": "COMPLETED"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, listFilter(tc.in))
		})
	}
}

func TestListSort_BreaksTiesOnID(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}, listSort)
}

func TestUpdateDoc_LeavesOwnerAndCreatedAt(t *testing.T) {
	desc := "d"
	task := &domain.Task{
		ID: "t1", Title: "x", Description: &desc, Status: domain.StatusInProgress,
		UserID: "u1", CreatedAt: time.Unix(1, 0), UpdatedAt: time.Unix(2, 0),
	}
	set := updateDoc(task)["$set"].(bson.M)

	assert.NotContains(t, set, "user_id")
	assert.NotContains(t, set, "created_at")
	assert.NotContains(t, set, "_id")
	assert.Equal(t, "IN_PROGRESS", set["status"])
}

func taskDoc(id, owner string, created time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: "task " + id},
		{Key: "description", Value: nil},
		{Key: "status", Value: "PENDING"},
		{Key: "user_id", Value: owner},
		{Key: "created_at", Value: created},
		{Key: "updated_at", Value: created},
	}
}

func TestTaskRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "tasktracker.tasks"
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mt.Run("find by id decodes document", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, taskDoc("t1", "u1", created)))
		repo := &TaskRepository{col: mt.Coll}

		got, err := repo.FindByID(context.Background(), "t1", "u1")
		require.NoError(mt, err)
		assert.Equal(mt, "t1", got.ID)
		assert.Equal(mt, "u1", got.UserID)
		assert.Equal(mt, domain.StatusPending, got.Status)
		assert.Nil(mt, got.Description)
		assert.True(mt, got.CreatedAt.Equal(created))
	})

	mt.Run("find by id missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := &TaskRepository{col: mt.Coll}

		_, err := repo.FindByID(context.Background(), "nope", "")
		assert.ErrorIs(mt, err, domain.ErrTaskNotFound)
	})

	mt.Run("list keeps store order", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			taskDoc("newer", "u1", created.Add(time.Hour)),
			taskDoc("older", "u1", created),
		))
		repo := &TaskRepository{col: mt.Coll}

		got, err := repo.List(context.Background(), ports.TaskFilter{OwnerID: "u1"})
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "newer", got[0].ID)
		assert.Equal(mt, "older", got[1].ID)
	})

	mt.Run("list sorts by created_at then _id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := &TaskRepository{col: mt.Coll}

		_, err := repo.List(context.Background(), ports.TaskFilter{})
		require.NoError(mt, err)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		elems, err := evt.Command.Lookup("sort").Document().Elements()
		require.NoError(mt, err)
		require.Len(mt, elems, 2)
		assert.Equal(mt, "created_at", elems[0].Key())
		assert.Equal(mt, "_id", elems[1].Key())
	})

	mt.Run("list empty is not nil", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := &TaskRepository{col: mt.Coll}

		got, err := repo.List(context.Background(), ports.TaskFilter{})
		require.NoError(mt, err)
		assert.NotNil(mt, got)
		assert.Empty(mt, got)
	})

	mt.Run("update with no match", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		repo := &TaskRepository{col: mt.Coll}

		err := repo.Update(context.Background(), &domain.Task{ID: "gone", Status: domain.StatusPending})
		assert.ErrorIs(mt, err, domain.ErrTaskNotFound)
	})

	mt.Run("update matched", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		repo := &TaskRepository{col: mt.Coll}

		err := repo.Update(context.Background(), &domain.Task{ID: "t1", Status: domain.StatusCompleted})
		assert.NoError(mt, err)
	})

	mt.Run("delete with no match", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		repo := &TaskRepository{col: mt.Coll}

		assert.ErrorIs(mt, repo.Delete(context.Background(), "gone"), domain.ErrTaskNotFound)
	})

	mt.Run("delete by owner reports count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}))
		repo := &TaskRepository{col: mt.Coll}

		n, err := repo.DeleteByOwner(context.Background(), "u1")
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), n)
	})
}
