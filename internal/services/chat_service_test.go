package services

import (
	"testing"

	"freelancehub/internal/models"
	"freelancehub/internal/repositories"
	"freelancehub/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatService(pusher Pusher) ChatService {
	_, projectRepo, _, _, notificationRepo := newRepos()
	return NewChatService(repositories.NewMessageRepository(), projectRepo, notificationRepo, pusher)
}

func TestSendMessageDeliversToConnectedReceiver(t *testing.T) {
	db := newTestDB(t)
	pusher := newFakePusher()
	svc := newChatService(pusher)

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)
	project := createProject(t, db, client.ID, models.ProjectStatusInProgress)
	assignFreelancer(t, db, project, freelancer.ID)

	pusher.Connected[freelancer.ID] = true

	msg, err := svc.SendMessage(db, client.ID, project.ID, freelancer.ID, "hello there")
	require.NoError(t, err)
	assert.False(t, msg.IsRead)

	pushes := pusher.pushesFor(freelancer.ID)
	require.Len(t, pushes, 1)
	env, ok := pushes[0].Payload.(WSMessageEnvelope)
	require.True(t, ok)
	assert.Equal(t, "new_message", env.Type)
	assert.Equal(t, "hello there", env.Message.Content)

	// persisted regardless of delivery
	var count int64
	require.NoError(t, db.Model(&models.Message{}).Where("project_id = ?", project.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSendMessageOfflineReceiverStillPersists(t *testing.T) {
	db := newTestDB(t)
	pusher := newFakePusher()
	svc := newChatService(pusher)

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)
	project := createProject(t, db, client.ID, models.ProjectStatusInProgress)
	assignFreelancer(t, db, project, freelancer.ID)

	msg, err := svc.SendMessage(db, client.ID, project.ID, freelancer.ID, "are you there?")
	require.NoError(t, err)
	require.NotNil(t, msg)

	// receiver finds it unread later, with a notification raised
	var stored models.Message
	require.NoError(t, db.First(&stored, "id = ?", msg.ID).Error)
	assert.False(t, stored.IsRead)

	var notifs []models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", freelancer.ID, models.NotificationTypeMessage).Find(&notifs).Error)
	require.Len(t, notifs, 1)
}

func TestSendMessageNonParticipant(t *testing.T) {
	db := newTestDB(t)
	svc := newChatService(newFakePusher())

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)
	stranger := createUser(t, db, models.UserRoleFreelancer)
	project := createProject(t, db, client.ID, models.ProjectStatusInProgress)
	assignFreelancer(t, db, project, freelancer.ID)

	_, err := svc.SendMessage(db, stranger.ID, project.ID, client.ID, "let me in")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)

	// receiver outside the project is rejected too
	_, err = svc.SendMessage(db, client.ID, project.ID, stranger.ID, "hi")
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
}

func TestGetProjectMessagesMarksRead(t *testing.T) {
	db := newTestDB(t)
	svc := newChatService(newFakePusher())

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)
	project := createProject(t, db, client.ID, models.ProjectStatusInProgress)
	assignFreelancer(t, db, project, freelancer.ID)

	_, err := svc.SendMessage(db, client.ID, project.ID, freelancer.ID, "first")
	require.NoError(t, err)
	_, err = svc.SendMessage(db, client.ID, project.ID, freelancer.ID, "second")
	require.NoError(t, err)
	_, err = svc.SendMessage(db, freelancer.ID, project.ID, client.ID, "reply")
	require.NoError(t, err)

	resp, err := svc.GetProjectMessages(db, freelancer.ID, project.ID)
	require.NoError(t, err)
	require.Len(t, resp.Messages, 3)
	// oldest first
	assert.Equal(t, "first", resp.Messages[0].Content)
	// only the freelancer's incoming messages flipped
	assert.Equal(t, int64(2), resp.MarkedRead)

	// re-reading flips nothing
	resp, err = svc.GetProjectMessages(db, freelancer.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.MarkedRead)

	// the client's own incoming message is still unread
	var unread int64
	require.NoError(t, db.Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", client.ID, false).
		Count(&unread).Error)
	assert.Equal(t, int64(1), unread)
}

func TestGetConversations(t *testing.T) {
	db := newTestDB(t)
	svc := newChatService(newFakePusher())

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)

	projectA := createProject(t, db, client.ID, models.ProjectStatusInProgress)
	assignFreelancer(t, db, projectA, freelancer.ID)
	projectB := createProject(t, db, client.ID, models.ProjectStatusInProgress)
	assignFreelancer(t, db, projectB, freelancer.ID)

	_, err := svc.SendMessage(db, client.ID, projectA.ID, freelancer.ID, "about A")
	require.NoError(t, err)
	_, err = svc.SendMessage(db, client.ID, projectB.ID, freelancer.ID, "about B")
	require.NoError(t, err)
	_, err = svc.SendMessage(db, client.ID, projectB.ID, freelancer.ID, "more about B")
	require.NoError(t, err)

	resp, err := svc.GetConversations(db, freelancer.ID)
	require.NoError(t, err)
	require.Len(t, resp.Conversations, 2)

	byProject := map[string]int64{}
	for _, conv := range resp.Conversations {
		byProject[conv.ProjectID] = conv.UnreadCount
	}
	assert.Equal(t, int64(1), byProject[projectA.ID])
	assert.Equal(t, int64(2), byProject[projectB.ID])
}
