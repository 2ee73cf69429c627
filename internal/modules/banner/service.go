package banner

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kalpit-muncho/dashboard-core/internal/models"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/muncho"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/optimistic"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/priority"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/status"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/uploader"
)

// PartitionPrefix scopes dirty-tracker keys: banners and popups reorder
// independently.
const PartitionPrefix = "banners/"

var (
	errBannerNotFound = errors.New("banner not found")
	errBadKind        = errors.New("kind must be banner or popup")
	errBadDateRange   = errors.New("starts_at must be before ends_at")
	errBadLinkURL     = errors.New("link_url must be an absolute http(s) URL")
	errStorageUnready = errors.New("image storage is not configured")
)

func partitionKey(kind models.BannerKind) string { return PartitionPrefix + string(kind) }

type Service struct {
	db      *gorm.DB
	api     *muncho.Client
	mut     *optimistic.Mutator
	tracker *priority.Tracker
	engine  *status.Engine
	up      uploader.Uploader
	logger  *zap.Logger
}

func NewService(db *gorm.DB, api *muncho.Client, mut *optimistic.Mutator, tracker *priority.Tracker, engine *status.Engine, up uploader.Uploader, logger *zap.Logger) *Service {
	return &Service{db: db, api: api, mut: mut, tracker: tracker, engine: engine, up: up, logger: logger}
}

// List returns one kind's banners in priority order.
func (s *Service) List(kind models.BannerKind) ([]models.BannerModel, error) {
	if err := validKind(kind); err != nil {
		return nil, err
	}
	var banners []models.BannerModel
	err := s.db.Where("kind = ?", kind).Order("priority ASC").Find(&banners).Error
	return banners, err
}

func (s *Service) GetByID(id string) (*models.BannerModel, error) {
	var b models.BannerModel
	if err := s.db.First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBannerNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Create validates dates and link locally; a validation failure never
// reaches the network.
func (s *Service) Create(ctx context.Context, dto *CreateBannerDTO) (*models.BannerModel, optimistic.Result, error) {
	if err := validKind(dto.Kind); err != nil {
		return nil, optimistic.Result{}, err
	}
	if err := validDateRange(dto.StartsAt, dto.EndsAt); err != nil {
		return nil, optimistic.Result{}, err
	}
	if err := validLinkURL(dto.LinkURL); err != nil {
		return nil, optimistic.Result{}, err
	}
	siblings, err := s.List(dto.Kind)
	if err != nil {
		return nil, optimistic.Result{}, err
	}
	b := &models.BannerModel{
		Title:    strings.TrimSpace(dto.Title),
		Kind:     dto.Kind,
		ImageURL: dto.ImageURL,
		LinkURL:  dto.LinkURL,
		StartsAt: dto.StartsAt,
		EndsAt:   dto.EndsAt,
		IsActive: true,
		Priority: priority.Next(siblings, func(x models.BannerModel) int { return x.Priority }),
	}

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "banner/create",
		Title:  "create banner",
		Apply:  func() error { return s.db.Create(b).Error },
		Revert: func() error { return s.db.Unscoped().Delete(b).Error },
		Remote: s.api.Call(http.MethodPost, "/banners", map[string]interface{}{
			"id":        b.ID,
			"title":     b.Title,
			"kind":      b.Kind,
			"image_url": b.ImageURL,
			"link_url":  b.LinkURL,
			"starts_at": b.StartsAt,
			"ends_at":   b.EndsAt,
			"priority":  b.Priority,
		}),
	})
	return b, res, nil
}

func (s *Service) Update(ctx context.Context, id string, dto *UpdateBannerDTO) (*models.BannerModel, optimistic.Result, error) {
	b, err := s.GetByID(id)
	if err != nil {
		return nil, optimistic.Result{}, err
	}
	prev := *b

	starts, ends := b.StartsAt, b.EndsAt
	if dto.StartsAt != nil {
		starts = dto.StartsAt
	}
	if dto.EndsAt != nil {
		ends = dto.EndsAt
	}
	if err := validDateRange(starts, ends); err != nil {
		return nil, optimistic.Result{}, err
	}
	if dto.LinkURL != nil {
		if err := validLinkURL(*dto.LinkURL); err != nil {
			return nil, optimistic.Result{}, err
		}
	}

	changes := map[string]interface{}{"starts_at": starts, "ends_at": ends}
	if dto.Title != nil {
		changes["title"] = strings.TrimSpace(*dto.Title)
	}
	if dto.ImageURL != nil {
		changes["image_url"] = *dto.ImageURL
	}
	if dto.LinkURL != nil {
		changes["link_url"] = *dto.LinkURL
	}

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "banner/" + id,
		Title:  "update banner",
		Apply:  func() error { return s.db.Model(b).Updates(changes).Error },
		Revert: func() error {
			return s.db.Model(&models.BannerModel{}).Where("id = ?", id).Updates(map[string]interface{}{
				"title":     prev.Title,
				"image_url": prev.ImageURL,
				"link_url":  prev.LinkURL,
				"starts_at": prev.StartsAt,
				"ends_at":   prev.EndsAt,
			}).Error
		},
		Remote: s.api.Call(http.MethodPatch, "/banners/"+id, changes),
	})
	return b, res, nil
}

func (s *Service) Delete(ctx context.Context, id string) (optimistic.Result, error) {
	b, err := s.GetByID(id)
	if err != nil {
		return optimistic.Result{}, err
	}
	siblings, err := s.List(b.Kind)
	if err != nil {
		return optimistic.Result{}, err
	}
	baseline := priority.Updates(siblings,
		func(x models.BannerModel) string { return x.ID },
		func(x models.BannerModel) int { return x.Priority })
	kind := b.Kind

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "banner/" + id,
		Title:  "delete banner",
		Apply: func() error {
			return s.db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Delete(&models.BannerModel{}, "id = ?", id).Error; err != nil {
					return err
				}
				var rest []models.BannerModel
				if err := tx.Where("kind = ?", kind).Order("priority ASC").Find(&rest).Error; err != nil {
					return err
				}
				for i := range rest {
					if err := tx.Model(&rest[i]).Update("priority", i+1).Error; err != nil {
						return err
					}
				}
				return nil
			})
		},
		Revert: func() error {
			return s.db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Unscoped().Model(&models.BannerModel{}).
					Where("id = ?", id).Update("deleted_at", nil).Error; err != nil {
					return err
				}
				return restoreOrder(tx, baseline)
			})
		},
		Remote: s.api.Call(http.MethodDelete, "/banners/"+id, nil),
	})
	return res, nil
}

// UploadImage stores the payload and returns its public URL for a later
// create or update call.
func (s *Service) UploadImage(ctx context.Context, filename string, payload []byte) (string, error) {
	if s.up == nil {
		return "", errStorageUnready
	}
	return s.up.Upload(ctx, "banners", filename, payload)
}

// Reorder moves a banner within its kind; local until SaveOrder commits.
func (s *Service) Reorder(dto *ReorderDTO) (bool, error) {
	banners, err := s.List(dto.Kind)
	if err != nil {
		return false, err
	}
	ptrs := make([]*models.BannerModel, len(banners))
	for i := range banners {
		ptrs[i] = &banners[i]
	}
	baseline := priority.Updates(ptrs,
		func(b *models.BannerModel) string { return b.ID },
		func(b *models.BannerModel) int { return b.Priority })

	if !priority.Move(ptrs, func(b *models.BannerModel) string { return b.ID }, dto.FromID, dto.ToID) {
		return false, nil
	}
	priority.Renumber(ptrs, func(b *models.BannerModel, p int) { b.Priority = p })

	updates := priority.Updates(ptrs,
		func(b *models.BannerModel) string { return b.ID },
		func(b *models.BannerModel) int { return b.Priority })
	if err := s.db.Transaction(func(tx *gorm.DB) error { return restoreOrder(tx, updates) }); err != nil {
		return false, err
	}
	s.tracker.MarkDirty(partitionKey(dto.Kind), baseline)
	return true, nil
}

func (s *Service) SaveOrder(ctx context.Context, kind models.BannerKind) optimistic.Result {
	if err := validKind(kind); err != nil {
		return optimistic.Result{Message: err.Error(), Err: err}
	}
	key := partitionKey(kind)
	if !s.tracker.IsDirty(key) {
		return optimistic.Result{OK: true, Message: "nothing to save"}
	}
	banners, err := s.List(kind)
	if err != nil {
		return optimistic.Result{Message: err.Error(), Err: err}
	}
	updates := priority.Updates(banners,
		func(b models.BannerModel) string { return b.ID },
		func(b models.BannerModel) int { return b.Priority })
	baseline := s.tracker.Baseline(key)

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "banner/order/" + string(kind),
		Title:  "save banner order",
		Revert: func() error {
			return s.db.Transaction(func(tx *gorm.DB) error { return restoreOrder(tx, baseline) })
		},
		Remote: s.api.Call(http.MethodPut, "/banners/order",
			map[string]interface{}{"kind": kind, "order": updates}),
	})
	if res.OK || res.Reverted {
		s.tracker.Clear(key)
	}
	return res
}

func (s *Service) SetActive(ctx context.Context, id string, v bool) optimistic.Result {
	return s.engine.Set(ctx, bannerFlags{db: s.db}, "banner state", id, status.ContextGlobal, v,
		s.api.Call(http.MethodPatch, "/banners/"+id+"/active", map[string]interface{}{"is_active": v}))
}

// SweepExpired deactivates banners whose display window has ended. Runs from
// the scheduler; each deactivation is pushed upstream like a manual toggle.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	var expired []models.BannerModel
	if err := s.db.Where("is_active = ? AND ends_at IS NOT NULL AND ends_at < ?", true, time.Now()).
		Find(&expired).Error; err != nil {
		return 0, err
	}

	swept := 0
	for _, b := range expired {
		res := s.SetActive(ctx, b.ID, false)
		if res.OK {
			swept++
			continue
		}
		if s.logger != nil {
			s.logger.Warn("banner expiry sweep: deactivation rejected",
				zap.String("banner_id", b.ID), zap.String("message", res.Message))
		}
	}
	return swept, nil
}

func validKind(kind models.BannerKind) error {
	if kind != models.BannerStrip && kind != models.BannerPopup {
		return errBadKind
	}
	return nil
}

func validDateRange(starts, ends *time.Time) error {
	if starts == nil || ends == nil {
		return nil
	}
	if !starts.Before(*ends) {
		return errBadDateRange
	}
	return nil
}

func validLinkURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errBadLinkURL
	}
	return nil
}

type bannerFlags struct {
	db *gorm.DB
}

func (f bannerFlags) Flag(entityID, _ string) (bool, error) {
	var b models.BannerModel
	if err := f.db.First(&b, "id = ?", entityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, errBannerNotFound
		}
		return false, err
	}
	return b.IsActive, nil
}

func (f bannerFlags) SetFlag(entityID, _ string, v bool) error {
	return f.db.Model(&models.BannerModel{}).Where("id = ?", entityID).Update("is_active", v).Error
}

func restoreOrder(tx *gorm.DB, updates []priority.Update) error {
	for _, u := range updates {
		if err := tx.Model(&models.BannerModel{}).Where("id = ?", u.ID).
			Update("priority", u.Priority).Error; err != nil {
			return err
		}
	}
	return nil
}
