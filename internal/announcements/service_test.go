package announcements

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/foodlink-backend/pkg/db/models"
	"github.com/angelmondragon/foodlink-backend/pkg/db/sqlitetest"
	"github.com/angelmondragon/foodlink-backend/pkg/pagination"
)

func TestListReturnsPublishedNewestFirst(t *testing.T) {
	conn := sqlitetest.Open(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	at := func(d int) *time.Time { v := base.AddDate(0, 0, d); return &v }

	rows := []models.Announcement{
		{ID: uuid.New(), Title: "설 연휴 배송 안내", Body: "b", Published: true, PublishedAt: at(0)},
		{ID: uuid.New(), Title: "수수료 정책 변경", Body: "b", Published: true, PublishedAt: at(5)},
		{ID: uuid.New(), Title: "초안", Body: "b"},
	}
	for i := range rows {
		require.NoError(t, conn.Create(&rows[i]).Error)
	}

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	res, err := svc.List(context.Background(), pagination.Params{PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, 2, res.TotalPages)
	require.Len(t, res.Announcements, 1)
	assert.Equal(t, "수수료 정책 변경", res.Announcements[0].Title)
}
