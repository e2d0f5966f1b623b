package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"barterhub/internal/models"
)

func TestHandleBarterAcceptedLinksConversation(t *testing.T) {
	barters := newMemBarterRepo()
	conversations := &memConversationRepo{}
	svc := NewConversationService(conversations, barters)

	barter := barters.put(models.BarterRequest{
		SenderID:   primitive.NewObjectID(),
		ReceiverID: primitive.NewObjectID(),
		Status:     models.BarterStatusAccepted,
	})
	event := models.NewBarterEvent(models.EventBarterAccepted, barter, barter.ReceiverID)

	require.NoError(t, svc.HandleBarterAccepted(context.Background(), event))
	// redelivery reuses the thread
	require.NoError(t, svc.HandleBarterAccepted(context.Background(), event))

	require.Len(t, conversations.conversations, 1)
	stored, err := barters.GetByID(context.Background(), barter.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ConversationID)
	assert.Equal(t, conversations.conversations[0].ID, *stored.ConversationID)
}

func TestHandleBarterAcceptedIgnoresOtherStatuses(t *testing.T) {
	conversations := &memConversationRepo{}
	svc := NewConversationService(conversations, newMemBarterRepo())

	barter := &models.BarterRequest{ID: primitive.NewObjectID(), Status: models.BarterStatusCancelled}
	require.NoError(t, svc.HandleBarterAccepted(context.Background(), models.NewBarterEvent(models.EventBarterCancelled, barter, barter.SenderID)))

	assert.Empty(t, conversations.conversations)
}
