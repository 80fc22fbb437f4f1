package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/havenline/vent-api/apperrors"
	"github.com/havenline/vent-api/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newConversationFixture(t *testing.T) (*engineFixture, string) {
	t.Helper()
	f := newEngineFixture(t)
	f.createUser(t, "alice", "Alice")
	f.createUser(t, "bob", "Bob")
	f.createUser(t, "mallory", "Mallory")
	f.createPost(t, "vent-1", "bob", models.PostCategoryVent)
	return f, f.openConversation(t, "alice", "bob", "vent-1")
}

func TestPostMessage(t *testing.T) {
	f, conversationID := newConversationFixture(t)
	ctx := context.Background()

	message, err := f.engine.PostMessage(ctx, conversationID, "bob", "thank you for writing")
	require.NoError(t, err)
	assert.NotZero(t, message.ID)
	assert.Equal(t, models.MessageSent, message.Status)
	assert.Equal(t, "bob", message.SenderID)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.MessagesPosted))

	// alice has the acceptance notice plus the new message notice
	notifications := f.notificationsFor(t, "alice")
	require.Len(t, notifications, 2)
	var found bool
	for _, n := range notifications {
		if n.RelatedContentType != nil && *n.RelatedContentType == models.RelatedMessage {
			found = true
			assert.Equal(t, strconv.FormatUint(uint64(message.ID), 10), *n.RelatedContentID)
		}
	}
	assert.True(t, found, "expected a message notification for the other participant")
}

func TestPostMessageErrors(t *testing.T) {
	f, conversationID := newConversationFixture(t)
	ctx := context.Background()

	_, err := f.engine.PostMessage(ctx, "missing", "alice", "hello")
	assertAppError(t, err, apperrors.KindNotFound, apperrors.CodeConversationNotFound)

	_, err = f.engine.PostMessage(ctx, conversationID, "mallory", "hello")
	assertAppError(t, err, apperrors.KindForbidden, apperrors.CodeNotAParticipant)

	_, err = f.engine.PostMessage(ctx, conversationID, "alice", " \n ")
	assertAppError(t, err, apperrors.KindValidation, apperrors.CodeValidation)
}

func TestListMessagesMarksCounterpartRead(t *testing.T) {
	f, conversationID := newConversationFixture(t)
	ctx := context.Background()

	_, err := f.engine.PostMessage(ctx, conversationID, "alice", "are you around?")
	require.NoError(t, err)
	reply, err := f.engine.PostMessage(ctx, conversationID, "bob", "yes")
	require.NoError(t, err)

	messages, err := f.engine.ListMessages(ctx, conversationID, "bob")
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "alice", messages[0].SenderID, "initial message comes first")
	assert.Equal(t, "are you around?", messages[1].Content)
	assert.Equal(t, "yes", messages[2].Content)

	for _, m := range messages {
		if m.SenderID == "alice" {
			assert.Equal(t, models.MessageRead, m.Status)
		}
	}
	assert.Equal(t, models.MessageSent, messages[2].Status, "own messages are untouched")

	var stored models.Message
	require.NoError(t, f.db.First(&stored, reply.ID).Error)
	assert.Equal(t, models.MessageSent, stored.Status)

	var unread int64
	f.db.Model(&models.Message{}).Where("sender_id = ? AND status <> ?", "alice", models.MessageRead).Count(&unread)
	assert.Zero(t, unread)
	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.MessagesMarkedRead))

	// Listing again returns the same content and changes nothing further.
	again, err := f.engine.ListMessages(ctx, conversationID, "bob")
	require.NoError(t, err)
	require.Len(t, again, 3)
	for i := range messages {
		assert.Equal(t, messages[i].ID, again[i].ID)
		assert.Equal(t, messages[i].Content, again[i].Content)
		assert.Equal(t, messages[i].Status, again[i].Status)
	}
	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.MessagesMarkedRead))
}

// A counterpart message committed after the thread was read but before the
// read marker was written must stay unread.
func TestListMessagesLeavesUnreturnedMessagesUnread(t *testing.T) {
	f, conversationID := newConversationFixture(t)
	ctx := context.Background()

	var late models.Message
	armed := true
	require.NoError(t, f.db.Callback().Query().After("gorm:query").Register("test:late_message", func(db *gorm.DB) {
		if !armed || db.Statement.Table != "messages" {
			return
		}
		armed = false
		late = models.Message{ConversationID: conversationID, SenderID: "alice", Content: "one more thing", Status: models.MessageSent}
		if err := db.Session(&gorm.Session{NewDB: true}).Create(&late).Error; err != nil {
			db.AddError(err)
		}
	}))

	messages, err := f.engine.ListMessages(ctx, conversationID, "bob")
	require.NoError(t, err)
	require.NotZero(t, late.ID)
	require.Len(t, messages, 1)
	assert.Equal(t, models.MessageRead, messages[0].Status)

	var stored models.Message
	require.NoError(t, f.db.First(&stored, late.ID).Error)
	assert.Equal(t, models.MessageSent, stored.Status)

	var first models.Message
	require.NoError(t, f.db.First(&first, messages[0].ID).Error)
	assert.Equal(t, models.MessageRead, first.Status)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.MessagesMarkedRead))
}

func TestThreadOrderFollowsMessageID(t *testing.T) {
	f, conversationID := newConversationFixture(t)
	ctx := context.Background()

	// Written by an instance whose clock runs behind.
	skewed := models.Message{
		ConversationID: conversationID,
		SenderID:       "bob",
		Content:        "written second",
		Status:         models.MessageSent,
		CreatedAt:      time.Now().Add(-time.Hour),
	}
	require.NoError(t, f.db.Create(&skewed).Error)

	messages, err := f.engine.ListMessages(ctx, conversationID, "alice")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Less(t, messages[0].ID, messages[1].ID)
	assert.Equal(t, skewed.ID, messages[1].ID)

	summaries, err := f.engine.ListConversations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.NotNil(t, summaries[0].LastMessage)
	assert.Equal(t, skewed.ID, summaries[0].LastMessage.ID)
}

func TestListMessagesErrors(t *testing.T) {
	f, conversationID := newConversationFixture(t)
	ctx := context.Background()

	_, err := f.engine.ListMessages(ctx, "missing", "alice")
	assertAppError(t, err, apperrors.KindNotFound, apperrors.CodeConversationNotFound)

	_, err = f.engine.ListMessages(ctx, conversationID, "mallory")
	assertAppError(t, err, apperrors.KindForbidden, apperrors.CodeNotAParticipant)

	// A refused read must not flip anything.
	var read int64
	f.db.Model(&models.Message{}).Where("status = ?", models.MessageRead).Count(&read)
	assert.Zero(t, read)
}

func TestUpdateMessageStatus(t *testing.T) {
	f, conversationID := newConversationFixture(t)
	ctx := context.Background()

	message, err := f.engine.PostMessage(ctx, conversationID, "alice", "checking in")
	require.NoError(t, err)

	tests := []struct {
		name    string
		userID  string
		status  string
		want    models.MessageStatus
		kind    apperrors.Kind
		errCode string
	}{
		{name: "Sender cannot update own message", userID: "alice", status: "read", kind: apperrors.KindForbidden, errCode: apperrors.CodeCannotUpdateOwnMessage},
		{name: "Sender is refused before the status is parsed", userID: "alice", status: "bogus", kind: apperrors.KindForbidden, errCode: apperrors.CodeCannotUpdateOwnMessage},
		{name: "Outsider is refused", userID: "mallory", status: "read", kind: apperrors.KindForbidden, errCode: apperrors.CodeNotAParticipant},
		{name: "Unknown status", userID: "bob", status: "bogus", kind: apperrors.KindValidation, errCode: apperrors.CodeInvalidStatus},
		{name: "Advance to delivered", userID: "bob", status: "delivered", want: models.MessageDelivered},
		{name: "Same status is a no-op", userID: "bob", status: "delivered", want: models.MessageDelivered},
		{name: "Cannot move backwards", userID: "bob", status: "sent", kind: apperrors.KindValidation, errCode: apperrors.CodeInvalidStatusTransition},
		{name: "Advance to read", userID: "bob", status: "READ", want: models.MessageRead},
		{name: "Read is final", userID: "bob", status: "delivered", kind: apperrors.KindValidation, errCode: apperrors.CodeInvalidStatusTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := f.engine.UpdateMessageStatus(ctx, message.ID, tt.userID, tt.status)
			if tt.errCode != "" {
				assertAppError(t, err, tt.kind, tt.errCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, updated.Status)

			var stored models.Message
			require.NoError(t, f.db.First(&stored, message.ID).Error)
			assert.Equal(t, tt.want, stored.Status)
		})
	}

	_, err = f.engine.UpdateMessageStatus(ctx, 9999, "bob", "read")
	assertAppError(t, err, apperrors.KindNotFound, apperrors.CodeMessageNotFound)
}

func TestUpdateMessageStatusSkipsForward(t *testing.T) {
	f, conversationID := newConversationFixture(t)
	message, err := f.engine.PostMessage(context.Background(), conversationID, "bob", "hi")
	require.NoError(t, err)

	updated, err := f.engine.UpdateMessageStatus(context.Background(), message.ID, "alice", "read")
	require.NoError(t, err)
	assert.Equal(t, models.MessageRead, updated.Status)
}

func TestListConversations(t *testing.T) {
	f, firstID := newConversationFixture(t)
	f.createUser(t, "dave", "")
	f.createPost(t, "vent-d", "dave", models.PostCategoryVent)
	secondID := f.openConversation(t, "alice", "dave", "vent-d")
	ctx := context.Background()

	// Pin activity times so the ordering is deterministic.
	base := time.Now().Add(-time.Hour)
	require.NoError(t, f.db.Model(&models.Message{}).Where("conversation_id = ?", firstID).Update("created_at", base).Error)
	require.NoError(t, f.db.Model(&models.Message{}).Where("conversation_id = ?", secondID).Update("created_at", base.Add(time.Minute)).Error)

	summaries, err := f.engine.ListConversations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, secondID, summaries[0].ID, "most recent activity first")
	assert.Equal(t, "dave", summaries[0].OtherUserID)
	assert.Equal(t, unknownUserName, summaries[0].OtherUserName)
	assert.Equal(t, firstID, summaries[1].ID)
	assert.Equal(t, "Bob", summaries[1].OtherUserName)
	require.NotNil(t, summaries[1].LastMessage)
	assert.Zero(t, summaries[1].UnreadCount, "alice authored the only message")

	bobView, err := f.engine.ListConversations(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bobView, 1)
	assert.Equal(t, "Alice", bobView[0].OtherUserName)
	assert.Equal(t, int64(1), bobView[0].UnreadCount)

	_, err = f.engine.ListMessages(ctx, firstID, "bob")
	require.NoError(t, err)
	bobView, err = f.engine.ListConversations(ctx, "bob")
	require.NoError(t, err)
	assert.Zero(t, bobView[0].UnreadCount)

	empty, err := f.engine.ListConversations(ctx, "mallory")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
