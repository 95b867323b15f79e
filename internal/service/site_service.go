package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/quantix-mfg/qc-admin-api/internal/entity"
	"github.com/quantix-mfg/qc-admin-api/internal/models"
	"github.com/quantix-mfg/qc-admin-api/internal/repository"
	appErrors "github.com/quantix-mfg/qc-admin-api/pkg/errors"
)

type siteRepository interface {
	ListLinks(ctx context.Context, siteID int64) ([]repository.SiteLink, error)
	CreateWithLinks(ctx context.Context, in entity.CreateRecord, customerCodes []string, userID int64) (*models.Record, error)
	UpdateWithLinks(ctx context.Context, id int64, in entity.UpdateRecord, customerCodes []string, userID int64) (*models.Record, error)
}

// CreateSiteRequest extends the base create payload with customer links.
type CreateSiteRequest struct {
	entity.CreateInput
	CustomerCodes []string `json:"customer_codes,omitempty"`
}

// UpdateSiteRequest extends the base partial update with customer links.
// A nil slice leaves links untouched; an empty slice clears them.
type UpdateSiteRequest struct {
	entity.UpdateInput
	CustomerCodes *[]string `json:"customer_codes,omitempty"`
}

// SiteWithLinks is the detail projection returned for one site.
type SiteWithLinks struct {
	models.Record
	CustomerCodes []string `json:"customer_codes"`
}

// SiteService wraps the generic entity service for customer sites. Base
// reads delegate straight through; writes that carry customer links run as
// a single transaction in the site repository.
type SiteService struct {
	*entity.Service
	repo   siteRepository
	logger *zap.Logger
}

// NewSiteService constructs a SiteService around the generic delegate.
func NewSiteService(base *entity.Service, repo siteRepository, logger *zap.Logger) *SiteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SiteService{Service: base, repo: repo, logger: logger}
}

// GetWithLinks returns the site record joined with its customer links.
func (s *SiteService) GetWithLinks(ctx context.Context, id int64) (*SiteWithLinks, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	links, err := s.repo.ListLinks(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load site links")
	}
	codes := make([]string, 0, len(links))
	for _, link := range links {
		codes = append(codes, link.CustomerCode)
	}
	return &SiteWithLinks{Record: *rec, CustomerCodes: codes}, nil
}

// CreateWithLinks validates the combined payload and writes the site and its
// links in one transaction.
func (s *SiteService) CreateWithLinks(ctx context.Context, req CreateSiteRequest, userID int64) (*SiteWithLinks, error) {
	if err := s.ValidateCreate(req.CreateInput); err != nil {
		return nil, err
	}
	codes, err := normalizeCustomerCodes(req.CustomerCodes)
	if err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	rec, err := s.repo.CreateWithLinks(ctx, entity.CreateRecord{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    active,
	}, codes, userID)
	if err != nil {
		if errors.Is(err, entity.ErrDuplicateName) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "customer site with this name already exists")
		}
		s.logger.Error("site_create_failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create customer site")
	}

	s.logger.Info("site_created", zap.Int64("id", rec.ID), zap.Int("links", len(codes)), zap.Int64("user_id", userID))
	return &SiteWithLinks{Record: *rec, CustomerCodes: codes}, nil
}

// UpdateWithLinks applies a partial update; when the payload carries a
// customer_codes array the links are replaced in the same transaction.
func (s *SiteService) UpdateWithLinks(ctx context.Context, id int64, req UpdateSiteRequest, userID int64) (*SiteWithLinks, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "id must be a positive integer")
	}
	if err := s.ValidateUpdate(req.UpdateInput); err != nil {
		return nil, err
	}

	if req.CustomerCodes == nil {
		rec, err := s.Update(ctx, id, req.UpdateInput, userID)
		if err != nil {
			return nil, err
		}
		return s.withCurrentLinks(ctx, rec)
	}

	codes, err := normalizeCustomerCodes(*req.CustomerCodes)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.UpdateWithLinks(ctx, id, entity.UpdateRecord{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	}, codes, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "customer site not found")
		}
		if errors.Is(err, entity.ErrDuplicateName) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "customer site with this name already exists")
		}
		s.logger.Error("site_update_failed", zap.Int64("id", id), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update customer site")
	}

	s.logger.Info("site_updated", zap.Int64("id", id), zap.Int("links", len(codes)), zap.Int64("user_id", userID))
	return &SiteWithLinks{Record: *rec, CustomerCodes: codes}, nil
}

func (s *SiteService) withCurrentLinks(ctx context.Context, rec *models.Record) (*SiteWithLinks, error) {
	links, err := s.repo.ListLinks(ctx, rec.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load site links")
	}
	codes := make([]string, 0, len(links))
	for _, link := range links {
		codes = append(codes, link.CustomerCode)
	}
	return &SiteWithLinks{Record: *rec, CustomerCodes: codes}, nil
}

func normalizeCustomerCodes(codes []string) ([]string, error) {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "customer codes cannot be empty")
		}
		if len(code) > 50 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "customer codes must be at most 50 characters")
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out, nil
}
