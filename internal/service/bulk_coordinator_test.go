package service

import (
	"errors"
	"testing"

	"go-mt-distribution/internal/apperr"
	"go-mt-distribution/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkSendAllSucceed(t *testing.T) {
	env := newTestEnv()
	uploaderID := env.addUser("uploader", "", model.RoleUploader)
	ids := []uint{
		env.addDocument("1060", uploaderID, model.StatusDraft),
		env.addDocument("1061", uploaderID, model.StatusDraft),
	}

	result, err := env.bulk.BulkSend(ids, uploaderID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.SentCount)
	assert.Equal(t, 2, result.TotalRequested)

	for _, id := range ids {
		doc, err := env.docRepo.FindByID(id)
		require.NoError(t, err)
		assert.Equal(t, model.StatusSentToBranch, doc.Status)
	}
}

func TestBulkSendPartialFailure(t *testing.T) {
	env := newTestEnv()
	uploaderID := env.addUser("uploader", "", model.RoleUploader)
	draft1 := env.addDocument("1060", uploaderID, model.StatusDraft)
	alreadySent := env.addDocument("1060", uploaderID, model.StatusSentToBranch)
	draft2 := env.addDocument("1061", uploaderID, model.StatusDraft)

	result, err := env.bulk.BulkSend([]uint{draft1, alreadySent, draft2}, uploaderID)
	require.NoError(t, err, "individual skips must not fail the batch")
	assert.Equal(t, 2, result.SentCount)
	assert.Equal(t, 3, result.TotalRequested)
	require.Len(t, result.Results, 3)

	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[1].Success)
	assert.NotEmpty(t, result.Results[1].Error)
	assert.True(t, result.Results[2].Success)

	// The already-sent document is untouched.
	doc, err := env.docRepo.FindByID(alreadySent)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSentToBranch, doc.Status)
}

func TestBulkSendSkipsForeignDrafts(t *testing.T) {
	env := newTestEnv()
	callerID := env.addUser("caller", "", model.RoleUploader)
	peerID := env.addUser("peer", "", model.RoleUploader)
	own := env.addDocument("1060", callerID, model.StatusDraft)
	foreign := env.addDocument("1060", peerID, model.StatusDraft)

	result, err := env.bulk.BulkSend([]uint{own, foreign}, callerID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SentCount)
	assert.False(t, result.Results[1].Success)

	doc, err := env.docRepo.FindByID(foreign)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, doc.Status, "a foreign draft must stay a draft")
}

func TestBulkSendEmptyBatch(t *testing.T) {
	env := newTestEnv()
	uploaderID := env.addUser("uploader", "", model.RoleUploader)

	result, err := env.bulk.BulkSend(nil, uploaderID)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestBulkSendOverCap(t *testing.T) {
	env := newTestEnv()
	uploaderID := env.addUser("uploader", "", model.RoleUploader)

	ids := make([]uint, MaxBulkSendSize+1)
	for i := range ids {
		ids[i] = uint(i + 1)
	}

	result, err := env.bulk.BulkSend(ids, uploaderID)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestBulkSendNothingSent(t *testing.T) {
	env := newTestEnv()
	uploaderID := env.addUser("uploader", "", model.RoleUploader)

	// All ids unknown: the batch fails but still reports per-item outcomes.
	result, err := env.bulk.BulkSend([]uint{901, 902}, uploaderID)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	require.NotNil(t, result)
	assert.Equal(t, 0, result.SentCount)
	require.Len(t, result.Results, 2)
	assert.NotEmpty(t, result.Results[0].Error)
}

func TestBulkSendWritesAggregateAudit(t *testing.T) {
	env := newTestEnv()
	uploaderID := env.addUser("uploader", "", model.RoleUploader)
	draft := env.addDocument("1060", uploaderID, model.StatusDraft)
	sent := env.addDocument("1060", uploaderID, model.StatusSentToBranch)

	_, err := env.bulk.BulkSend([]uint{draft, sent}, uploaderID)
	require.NoError(t, err)

	batches := env.activityRepo.byAction(model.ActionBulkSend)
	require.Len(t, batches, 1)
	assert.Equal(t, 1, asInt(t, batches[0].Metadata["sent_count"]))
	assert.Equal(t, 2, asInt(t, batches[0].Metadata["total_requested"]))

	// Each successful item also carries its own status-change entry.
	assert.Len(t, env.activityRepo.byAction(model.ActionStatusChange), 1)
}

func asInt(t *testing.T, v interface{}) int {
	t.Helper()
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		t.Fatalf("unexpected metadata number type %T", v)
		return 0
	}
}
