package service

import (
	"context"
	"testing"
	"time"

	"drheal-be/internal/dto"
	"drheal-be/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedicalHistoryService(t *testing.T) {
	factory, db := newTestFactory(t)
	userId := seedUser(t, db, "a@example.com")
	other := seedUser(t, db, "b@example.com")
	ctx := context.Background()

	symptoms := func(s string) *string { return &s }
	entries := []*model.MedicalHistory{
		{Id: uuid.New(), UserId: userId, Symptoms: symptoms("older"), Date: time.Now().Add(-48 * time.Hour)},
		{Id: uuid.New(), UserId: userId, Symptoms: symptoms("newer"), Date: time.Now().Add(-time.Hour)},
		{Id: uuid.New(), UserId: other, Symptoms: symptoms("someone else"), Date: time.Now()},
	}
	for _, e := range entries {
		require.NoError(t, db.Create(e).Error)
	}

	svc := NewMedicalHistoryService(factory)

	list, err := svc.List(ctx, userId, dto.PageQuery{Limit: 50})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", *list[0].Symptoms)
	assert.Equal(t, "older", *list[1].Symptoms)

	got, err := svc.Get(ctx, userId, entries[0].Id)
	require.NoError(t, err)
	assert.Equal(t, entries[0].Id.String(), got.Id)

	var ferr *fiber.Error
	_, err = svc.Get(ctx, userId, entries[2].Id)
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, fiber.StatusNotFound, ferr.Code)

	require.ErrorAs(t, svc.Delete(ctx, other, entries[0].Id), &ferr)
	require.NoError(t, svc.Delete(ctx, userId, entries[0].Id))

	list, err = svc.List(ctx, userId, dto.PageQuery{Limit: 50})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entries[1].Id.String(), list[0].Id)
}
