package service

import (
	"errors"
	"strconv"
	"time"

	"go-mt-distribution/internal/apperr"
	"go-mt-distribution/internal/model"
	"go-mt-distribution/internal/repository"
	"go-mt-distribution/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentService interface {
	Create(req *CreateDocumentRequest, uploaderID uuid.UUID) (*model.Document, error)
	Get(id uint, callerID uuid.UUID) (*model.Document, error)
	Search(req *SearchDocumentsRequest, callerID uuid.UUID) ([]model.Document, error)
	Delete(id uint, callerID uuid.UUID) error
	History(id uint, callerID uuid.UUID) ([]model.DocumentStatusHistory, error)
}

type CreateDocumentRequest struct {
	BranchBaCode    string                 `json:"branch_ba_code" validate:"required"`
	MtNumber        string                 `json:"mt_number" validate:"required"`
	MtDate          string                 `json:"mt_date" validate:"required"` // YYYY-MM-DD
	Subject         string                 `json:"subject" validate:"required"`
	MonthYear       string                 `json:"month_year" validate:"required,month_year"`
	AdditionalFiles map[string]interface{} `json:"additional_files"`
}

type SearchDocumentsRequest struct {
	BranchBaCode string `json:"branch_ba_code"`
	Status       string `json:"status"`
	MonthYear    string `json:"month_year"`
	Keyword      string `json:"keyword"`
}

type documentService struct {
	docRepo     repository.DocumentRepository
	historyRepo repository.StatusHistoryRepository
	branchRepo  repository.BranchRepository
	guard       AccessGuard
	resolver    PermissionResolver
	audit       AuditTrail
	txRunner    repository.TxRunner
}

func NewDocumentService(
	docRepo repository.DocumentRepository,
	historyRepo repository.StatusHistoryRepository,
	branchRepo repository.BranchRepository,
	guard AccessGuard,
	resolver PermissionResolver,
	audit AuditTrail,
	txRunner repository.TxRunner,
) DocumentService {
	return &documentService{
		docRepo:     docRepo,
		historyRepo: historyRepo,
		branchRepo:  branchRepo,
		guard:       guard,
		resolver:    resolver,
		audit:       audit,
		txRunner:    txRunner,
	}
}

// Create registers a new transmittal in draft status, owned by its uploader.
// Drafts stay private until sent to the branch through the status engine.
func (s *documentService) Create(req *CreateDocumentRequest, uploaderID uuid.UUID) (*model.Document, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.E(apperr.ErrValidation, "field %s failed on %s", errs[0].FailedField, errs[0].Tag)
	}

	mtDate, err := time.Parse("2006-01-02", req.MtDate)
	if err != nil {
		return nil, apperr.E(apperr.ErrValidation, "invalid mt_date %q, use YYYY-MM-DD", req.MtDate)
	}

	branch, err := s.branchRepo.FindByBaCode(req.BranchBaCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.ErrValidation, "unknown branch %q", req.BranchBaCode)
		}
		return nil, apperr.E(apperr.ErrDependency, "failed to load branch: %v", err)
	}
	if !branch.IsActive {
		return nil, apperr.E(apperr.ErrValidation, "branch %q is inactive", req.BranchBaCode)
	}

	ok, err := s.resolver.HasPermission(uploaderID, model.PermDocumentsCreate, true)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.E(apperr.ErrPermissionDenied, "creating documents requires %s", model.PermDocumentsCreate)
	}

	doc := &model.Document{
		BranchBaCode:    branch.BaCode,
		UploaderID:      uploaderID,
		Status:          model.StatusDraft,
		MtNumber:        req.MtNumber,
		MtDate:          mtDate,
		Subject:         req.Subject,
		MonthYear:       req.MonthYear,
		AdditionalFiles: datatypes.JSONMap(req.AdditionalFiles),
	}
	err = s.txRunner.InTx(func(tx *gorm.DB) error {
		if err := s.docRepo.Create(tx, doc); err != nil {
			return apperr.E(apperr.ErrDependency, "failed to create document: %v", err)
		}
		return s.audit.LogTx(tx, &model.ActivityLog{
			UserID:     uploaderID,
			Action:     model.ActionDocumentCreate,
			Resource:   "document",
			ResourceID: strconv.FormatUint(uint64(doc.ID), 10),
			Metadata: datatypes.JSONMap{
				"mt_number": doc.MtNumber,
				"branch_ba": doc.BranchBaCode,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Get(id uint, callerID uuid.UUID) (*model.Document, error) {
	return s.guard.RequireDocument(callerID, id)
}

// Search lists documents within the caller's visibility. A query for drafts
// pivots from branch scope to uploader scope: drafts are private working
// copies, never branch-shared.
func (s *documentService) Search(req *SearchDocumentsRequest, callerID uuid.UUID) ([]model.Document, error) {
	filter := repository.DocumentFilter{
		MonthYear: req.MonthYear,
		Keyword:   req.Keyword,
	}

	if req.Status != "" {
		status, err := model.ParseDocumentStatus(req.Status)
		if err != nil {
			return nil, apperr.E(apperr.ErrValidation, "%v", err)
		}
		filter.Status = &status
	}

	if filter.Status != nil && *filter.Status == model.StatusDraft {
		caller := callerID
		filter.UploaderID = &caller
	} else {
		access, err := s.resolver.Resolve(callerID)
		if err != nil {
			return nil, err
		}
		if !access.Elevated() {
			branches, err := s.guard.AccessibleBranches(callerID)
			if err != nil {
				return nil, err
			}
			if req.BranchBaCode != "" && !containsString(branches, req.BranchBaCode) {
				return nil, apperr.E(apperr.ErrPermissionDenied, "branch %s is outside your scope", req.BranchBaCode)
			}
			caller := callerID
			filter.Branches = branches
			filter.VisibleDraftsOf = &caller
		}
		if req.BranchBaCode != "" {
			filter.Branches = []string{req.BranchBaCode}
		}
	}

	docs, err := s.docRepo.Search(filter)
	if err != nil {
		return nil, apperr.E(apperr.ErrDependency, "failed to search documents: %v", err)
	}
	return docs, nil
}

// Delete removes a transmittal. Uploaders may delete their own drafts only;
// anything further requires the delete permission (or the admin role).
func (s *documentService) Delete(id uint, callerID uuid.UUID) error {
	doc, err := s.docRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.E(apperr.ErrNotFound, "document %d not found", id)
		}
		return apperr.E(apperr.ErrDependency, "failed to load document: %v", err)
	}

	ownDraft := doc.Status == model.StatusDraft && doc.UploaderID == callerID
	if !ownDraft {
		ok, err := s.resolver.HasPermission(callerID, model.PermDocumentsDelete, true)
		if err != nil {
			return err
		}
		if !ok {
			if doc.Status == model.StatusDraft {
				return apperr.E(apperr.ErrPermissionDenied, "draft %d belongs to another uploader", id)
			}
			return apperr.E(apperr.ErrPermissionDenied, "deleting a %s document requires %s", doc.Status, model.PermDocumentsDelete)
		}
	}

	return s.txRunner.InTx(func(tx *gorm.DB) error {
		if err := s.docRepo.Delete(tx, id); err != nil {
			return apperr.E(apperr.ErrDependency, "failed to delete document: %v", err)
		}
		return s.audit.LogTx(tx, &model.ActivityLog{
			UserID:     callerID,
			Action:     model.ActionDocumentDelete,
			Resource:   "document",
			ResourceID: strconv.FormatUint(uint64(id), 10),
			Metadata: datatypes.JSONMap{
				"mt_number": doc.MtNumber,
				"status":    string(doc.Status),
			},
		})
	})
}

func (s *documentService) History(id uint, callerID uuid.UUID) ([]model.DocumentStatusHistory, error) {
	if _, err := s.guard.RequireDocument(callerID, id); err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.FindByDocument(id)
	if err != nil {
		return nil, apperr.E(apperr.ErrDependency, "failed to load status history: %v", err)
	}
	return entries, nil
}

func containsString(in []string, s string) bool {
	for _, v := range in {
		if v == s {
			return true
		}
	}
	return false
}
