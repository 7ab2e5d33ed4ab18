package service

import (
	"context"
	"testing"

	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContact_SubmitAndProcess(t *testing.T) {
	svc := &ContactService{Repo: newTestRepo(t)}
	ctx := context.Background()

	m, err := svc.Submit(ctx, transport.ContactMessageRequest{
		Name:    " Ana ",
		Email:   "ana@example.com",
		Message: "Where is my parcel?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", m.Name)
	assert.False(t, m.Processed)
	assert.Nil(t, m.ProcessedAt)

	yes, no := true, false
	m, err = svc.SetProcessed(ctx, m.ID, transport.SetProcessedRequest{Processed: &yes})
	require.NoError(t, err)
	assert.True(t, m.Processed)
	require.NotNil(t, m.ProcessedAt)

	m, err = svc.SetProcessed(ctx, m.ID, transport.SetProcessedRequest{Processed: &no})
	require.NoError(t, err)
	assert.False(t, m.Processed)
	assert.Nil(t, m.ProcessedAt)

	_, err = svc.SetProcessed(ctx, m.ID, transport.SetProcessedRequest{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "processed")

	_, err = svc.SetProcessed(ctx, uuid.New(), transport.SetProcessedRequest{Processed: &yes})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, m.ID))
	_, err = svc.Get(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, m.ID), ErrNotFound)
}

func TestContact_SubmitValidation(t *testing.T) {
	svc := &ContactService{Repo: newTestRepo(t)}

	_, err := svc.Submit(context.Background(), transport.ContactMessageRequest{Name: "Ana", Email: "nope", Message: "  "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "message")
	assert.NotContains(t, verr.Fields, "name")
}

func TestContact_List(t *testing.T) {
	svc := &ContactService{Repo: newTestRepo(t)}
	ctx := context.Background()

	for _, in := range []transport.ContactMessageRequest{
		{Name: "Ana", Email: "ana@example.com", Message: "Refund please"},
		{Name: "Marko", Email: "marko@example.com", Message: "Do you ship abroad?"},
		{Name: "Ivana", Email: "ivana@example.com", Message: "Refund status"},
	} {
		_, err := svc.Submit(ctx, in)
		require.NoError(t, err)
	}
	all, _, err := svc.List(ctx, transport.ListContactMessagesQuery{Q: "marko"})
	require.NoError(t, err)
	require.Len(t, all, 1)

	yes := true
	_, err = svc.SetProcessed(ctx, all[0].ID, transport.SetProcessedRequest{Processed: &yes})
	require.NoError(t, err)

	open, meta, err := svc.List(ctx, transport.ListContactMessagesQuery{Processed: "0"})
	require.NoError(t, err)
	assert.Len(t, open, 2)
	assert.Equal(t, int64(2), meta.Total)

	refunds, _, err := svc.List(ctx, transport.ListContactMessagesQuery{Processed: "0", Q: "REFUND"})
	require.NoError(t, err)
	assert.Len(t, refunds, 2)

	done, _, err := svc.List(ctx, transport.ListContactMessagesQuery{Processed: "true"})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "Marko", done[0].Name)

	paged, meta, err := svc.List(ctx, transport.ListContactMessagesQuery{Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, paged, 1)
	assert.Equal(t, int64(3), meta.Total)
	assert.True(t, meta.HasPrev)

	_, _, err = svc.List(ctx, transport.ListContactMessagesQuery{Processed: "maybe"})
	assert.ErrorIs(t, err, ErrValidation)
}
