package service

import (
	"context"
	"encoding/json"
	"testing"

	"anoa.com/cpquest/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	created []*entity.Notification
}

func (m *memRepo) Create(_ context.Context, n *entity.Notification) error {
	m.created = append(m.created, n)
	return nil
}

func (m *memRepo) GetByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	var out []entity.Notification
	for _, n := range m.created {
		if n.UserID == nil || *n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *memRepo) MarkAsRead(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (m *memRepo) MarkAllAsRead(context.Context, uuid.UUID) error         { return nil }
func (m *memRepo) CountUnread(context.Context, uuid.UUID) (int64, error)  { return 0, nil }

func TestNotify_SanitizesAndStoresData(t *testing.T) {
	repo := &memRepo{}
	svc := NewNotificationService(repo, nil)
	userID := uuid.New()

	err := svc.Notify(context.Background(), userID, entity.NotifBadgeEarned,
		"<b>Badge</b> earned", `<script>alert(1)</script>tourist`, map[string]any{"badge_id": "first_solve"})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)

	n := repo.created[0]
	assert.Equal(t, userID, *n.UserID)
	assert.Equal(t, "Badge earned", n.Title)
	assert.Equal(t, "tourist", n.Body)

	var data map[string]any
	require.NoError(t, json.Unmarshal(n.Data, &data))
	assert.Equal(t, "first_solve", data["badge_id"])
}

func TestBroadcast_VisibleToEveryUser(t *testing.T) {
	repo := &memRepo{}
	svc := NewNotificationService(repo, nil)

	require.NoError(t, svc.Broadcast(context.Background(), entity.NotifWeeklyDigest, "Weekly digest", "top users", nil))

	got, err := svc.GetNotifications(context.Background(), uuid.New(), 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].UserID)
	assert.Nil(t, got[0].Data)
}

func TestUserChannel(t *testing.T) {
	id := uuid.MustParse("7d4b3c1e-0000-4000-8000-000000000001")
	assert.Equal(t, "user_notifications:7d4b3c1e-0000-4000-8000-000000000001", UserChannel(id))
}
