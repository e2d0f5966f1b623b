package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"barterhub/internal/models"
	"barterhub/internal/repositories/interfaces"
	"barterhub/internal/utils"
)

func newMockT(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func namespace(mt *mtest.T, collection string) string {
	return mt.DB.Name() + "." + collection
}

func TestBarterRepositoryCreate(t *testing.T) {
	mt := newMockT(t)

	mt.Run("stores a pending request", func(mt *mtest.T) {
		repo := NewBarterRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		barter := &models.BarterRequest{SenderID: primitive.NewObjectID(), ReceiverID: primitive.NewObjectID()}
		require.NoError(t, repo.Create(context.Background(), barter))

		assert.False(t, barter.ID.IsZero())
		assert.Equal(t, models.BarterStatusPending, barter.Status)
		assert.False(t, barter.CreatedAt.IsZero())
	})

	mt.Run("duplicate pending tuple", func(mt *mtest.T) {
		repo := NewBarterRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: barter_requests index: uniq_pending_tuple",
		}))

		err := repo.Create(context.Background(), &models.BarterRequest{})
		assert.ErrorIs(t, err, interfaces.ErrDuplicate)
	})
}

func TestBarterRepositoryUpdateIfStatus(t *testing.T) {
	mt := newMockT(t)

	mt.Run("applies the update when the status matches", func(mt *mtest.T) {
		repo := NewBarterRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "status", Value: "accepted"},
		}}))

		accepted := models.BarterStatusAccepted
		barter, err := repo.UpdateIfStatus(context.Background(), id, []models.BarterStatus{models.BarterStatusPending}, interfaces.BarterUpdate{Status: &accepted})
		require.NoError(t, err)
		assert.Equal(t, id, barter.ID)
		assert.Equal(t, models.BarterStatusAccepted, barter.Status)
	})

	mt.Run("reports a lost race", func(mt *mtest.T) {
		repo := NewBarterRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		cancelled := models.BarterStatusCancelled
		_, err := repo.UpdateIfStatus(context.Background(), primitive.NewObjectID(), []models.BarterStatus{models.BarterStatusPending}, interfaces.BarterUpdate{Status: &cancelled})
		assert.ErrorIs(t, err, interfaces.ErrStatusChanged)
	})
}

func TestBarterRepositoryGetByID(t *testing.T) {
	mt := newMockT(t)

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewBarterRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt, BarterCollection), mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
	})
}

func TestBarterRepositoryCountStatusesForUser(t *testing.T) {
	mt := newMockT(t)

	mt.Run("decodes grouped rows", func(mt *mtest.T) {
		repo := NewBarterRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt, BarterCollection), mtest.FirstBatch,
			bson.D{{Key: "status", Value: "pending"}, {Key: "sent", Value: true}, {Key: "count", Value: int32(2)}},
			bson.D{{Key: "status", Value: "completed"}, {Key: "sent", Value: false}, {Key: "count", Value: int32(1)}},
		))

		rows, err := repo.CountStatusesForUser(context.Background(), primitive.NewObjectID())
		require.NoError(t, err)
		assert.Equal(t, []models.BarterStatusCount{
			{Status: models.BarterStatusPending, Sent: true, Count: 2},
			{Status: models.BarterStatusCompleted, Sent: false, Count: 1},
		}, rows)
	})
}

func TestBarterRepositoryCompletedParticipants(t *testing.T) {
	mt := newMockT(t)

	mt.Run("merges senders and receivers", func(mt *mtest.T) {
		repo := NewBarterRepository(mt.DB)
		a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "values", Value: bson.A{a, b}}),
			mtest.CreateSuccessResponse(bson.E{Key: "values", Value: bson.A{b, c}}),
		)

		ids, err := repo.CompletedParticipants(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []primitive.ObjectID{a, b, c}, ids)
	})
}

func TestReviewRepository(t *testing.T) {
	mt := newMockT(t)

	mt.Run("summary", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt, ReviewCollection), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: nil}, {Key: "average_rating", Value: 3.5}, {Key: "total_reviews", Value: int32(2)}},
		))

		summary, err := repo.SummaryForReviewee(context.Background(), primitive.NewObjectID())
		require.NoError(t, err)
		assert.Equal(t, models.RatingSummary{AverageRating: 3.5, TotalReviews: 2}, summary)
	})

	mt.Run("summary without reviews", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt, ReviewCollection), mtest.FirstBatch))

		summary, err := repo.SummaryForReviewee(context.Background(), primitive.NewObjectID())
		require.NoError(t, err)
		assert.Zero(t, summary)
	})

	mt.Run("duplicate review", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		err := repo.Create(context.Background(), &models.Review{ReviewerID: primitive.NewObjectID(), BarterID: primitive.NewObjectID(), Rating: 4})
		assert.ErrorIs(t, err, interfaces.ErrDuplicate)
	})
	mt.Run("list surfaces a failed batch", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		ns := namespace(mt, ReviewCollection)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(2)}}),
			mtest.CreateCursorResponse(42, ns, mtest.FirstBatch, bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "rating", Value: int32(5)}}),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 43, Name: "CursorNotFound", Message: "cursor not found"}),
		)

		params := utils.NewPaginationParams(1, 10)
		_, _, err := repo.ListByReviewee(context.Background(), primitive.NewObjectID(), params)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to iterate reviews")
	})
}

func TestNotificationRepositoryMarkAsRead(t *testing.T) {
	mt := newMockT(t)

	mt.Run("not the recipient", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(0)}, bson.E{Key: "nModified", Value: int32(0)}))

		err := repo.MarkAsRead(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
	})

	mt.Run("marks all", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(3)}, bson.E{Key: "nModified", Value: int32(3)}))

		count, err := repo.MarkAllAsRead(context.Background(), primitive.NewObjectID())
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}

func TestConversationRepositoryGetOrCreate(t *testing.T) {
	mt := newMockT(t)

	mt.Run("returns the upserted conversation", func(mt *mtest.T) {
		repo := NewConversationRepository(mt.DB)
		a, b, barterID := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "participants", Value: bson.A{a, b}},
			{Key: "barter_id", Value: barterID},
		}}))

		conversation, err := repo.GetOrCreate(context.Background(), b, a, &barterID)
		require.NoError(t, err)
		assert.Equal(t, id, conversation.ID)
		require.NotNil(t, conversation.BarterID)
		assert.Equal(t, barterID, *conversation.BarterID)
	})
}

func TestOrderedPair(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	assert.Equal(t, orderedPair(a, b), orderedPair(b, a))
}
