package service

import (
	"errors"
	"testing"

	"go-mt-distribution/internal/apperr"
	"go-mt-distribution/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessibleBranchesScopedToOwnBranch(t *testing.T) {
	env := newTestEnv()
	userID := env.addUser("branch-op", "1060", model.RoleBranchUser)

	branches, err := env.guard.AccessibleBranches(userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"1060"}, branches)
}

func TestAccessibleBranchesElevatedSeesAllActive(t *testing.T) {
	env := newTestEnv()
	env.branchRepo.Create(&model.Branch{BaCode: "1062", Name: "Closed branch", IsActive: false})
	managerID := env.addUser("dm", "1060", model.RoleDistrictManager)

	branches, err := env.guard.AccessibleBranches(managerID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1060", "1061"}, branches)
}

func TestAccessibleBranchesNoBranchAssigned(t *testing.T) {
	env := newTestEnv()
	userID := env.addUser("floater", "", model.RoleBranchUser)

	branches, err := env.guard.AccessibleBranches(userID)
	require.NoError(t, err)
	assert.Empty(t, branches)
}

func TestCanAccessBranchIsolation(t *testing.T) {
	env := newTestEnv()
	uploaderID := env.addUser("uploader", "", model.RoleUploader)
	insiderID := env.addUser("insider", "1060", model.RoleBranchUser)
	outsiderID := env.addUser("outsider", "1061", model.RoleBranchUser)
	docID := env.addDocument("1060", uploaderID, model.StatusSentToBranch)

	ok, err := env.guard.CanAccessDocument(insiderID, docID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.guard.CanAccessDocument(outsiderID, docID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanAccessElevatedCrossesBranches(t *testing.T) {
	env := newTestEnv()
	uploaderID := env.addUser("uploader", "", model.RoleUploader)
	adminID := env.addUser("root", "", model.RoleAdmin)
	dmID := env.addUser("dm", "1061", model.RoleDistrictManager)
	docID := env.addDocument("1060", uploaderID, model.StatusSentToBranch)

	ok, err := env.guard.CanAccessDocument(adminID, docID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.guard.CanAccessDocument(dmID, docID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanAccessDraftPrivateToUploader(t *testing.T) {
	env := newTestEnv()
	ownerID := env.addUser("owner", "1060", model.RoleUploader)
	peerID := env.addUser("peer", "1060", model.RoleUploader) // same branch
	adminID := env.addUser("root", "", model.RoleAdmin)
	draftID := env.addDocument("1060", ownerID, model.StatusDraft)

	ok, err := env.guard.CanAccessDocument(ownerID, draftID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Same branch is not enough for someone else's draft.
	ok, err = env.guard.CanAccessDocument(peerID, draftID)
	require.NoError(t, err)
	assert.False(t, ok)

	// Elevated roles still see everything.
	ok, err = env.guard.CanAccessDocument(adminID, draftID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRequireDocument(t *testing.T) {
	env := newTestEnv()
	uploaderID := env.addUser("uploader", "", model.RoleUploader)
	outsiderID := env.addUser("outsider", "1061", model.RoleBranchUser)
	docID := env.addDocument("1060", uploaderID, model.StatusSentToBranch)

	_, err := env.guard.RequireDocument(outsiderID, docID)
	assert.True(t, errors.Is(err, apperr.ErrPermissionDenied))

	_, err = env.guard.RequireDocument(outsiderID, 9999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
