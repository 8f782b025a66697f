package service

import (
	"errors"

	"go-mt-distribution/internal/apperr"
	"go-mt-distribution/internal/model"
	"go-mt-distribution/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessGuard decides which branches and documents a user may touch.
//
// Visibility rules: admin and district_manager see every active branch; all
// other roles are limited to the user's own branch. Drafts are private to
// their uploader regardless of branch. Absence of an allow rule is a denial.
type AccessGuard interface {
	AccessibleBranches(userID uuid.UUID) ([]string, error)
	CanAccessDocument(userID uuid.UUID, documentID uint) (bool, error)
	// CanAccess applies the same rules to an already loaded document.
	CanAccess(userID uuid.UUID, doc *model.Document) (bool, error)
	// RequireDocument loads the document and denies with ErrPermissionDenied
	// when the caller may not touch it. Callers decide whether to surface
	// the denial as forbidden or as not-found.
	RequireDocument(userID uuid.UUID, documentID uint) (*model.Document, error)
}

type accessGuard struct {
	userRepo   repository.UserRepository
	branchRepo repository.BranchRepository
	docRepo    repository.DocumentRepository
	resolver   PermissionResolver
}

func NewAccessGuard(userRepo repository.UserRepository, branchRepo repository.BranchRepository, docRepo repository.DocumentRepository, resolver PermissionResolver) AccessGuard {
	return &accessGuard{
		userRepo:   userRepo,
		branchRepo: branchRepo,
		docRepo:    docRepo,
		resolver:   resolver,
	}
}

func (g *accessGuard) AccessibleBranches(userID uuid.UUID) ([]string, error) {
	access, err := g.resolver.Resolve(userID)
	if err != nil {
		return nil, err
	}

	if access.Elevated() {
		branches, err := g.branchRepo.FindActive()
		if err != nil {
			return nil, apperr.E(apperr.ErrDependency, "failed to list branches: %v", err)
		}
		codes := make([]string, len(branches))
		for i, b := range branches {
			codes[i] = b.BaCode
		}
		return codes, nil
	}

	user, err := g.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.ErrNotFound, "user %s not found", userID)
		}
		return nil, apperr.E(apperr.ErrDependency, "failed to load user: %v", err)
	}
	if user.BranchBa == "" {
		return []string{}, nil
	}
	return []string{user.BranchBa}, nil
}

func (g *accessGuard) CanAccessDocument(userID uuid.UUID, documentID uint) (bool, error) {
	doc, err := g.docRepo.FindByID(documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperr.E(apperr.ErrNotFound, "document %d not found", documentID)
		}
		return false, apperr.E(apperr.ErrDependency, "failed to load document: %v", err)
	}
	return g.CanAccess(userID, doc)
}

func (g *accessGuard) CanAccess(userID uuid.UUID, doc *model.Document) (bool, error) {
	access, err := g.resolver.Resolve(userID)
	if err != nil {
		return false, err
	}
	if access.Elevated() {
		return true, nil
	}

	// Drafts bypass the branch rule: only the uploader sees an unsent draft.
	if doc.Status == model.StatusDraft {
		return doc.UploaderID == userID, nil
	}

	user, err := g.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperr.E(apperr.ErrNotFound, "user %s not found", userID)
		}
		return false, apperr.E(apperr.ErrDependency, "failed to load user: %v", err)
	}
	return user.BranchBa != "" && user.BranchBa == doc.BranchBaCode, nil
}

func (g *accessGuard) RequireDocument(userID uuid.UUID, documentID uint) (*model.Document, error) {
	doc, err := g.docRepo.FindByID(documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.ErrNotFound, "document %d not found", documentID)
		}
		return nil, apperr.E(apperr.ErrDependency, "failed to load document: %v", err)
	}

	allowed, err := g.CanAccess(userID, doc)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.E(apperr.ErrPermissionDenied, "document %d is outside your branch scope", documentID)
	}
	return doc, nil
}
