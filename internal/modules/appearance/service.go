package appearance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"gorm.io/gorm"

	"github.com/kalpit-muncho/dashboard-core/internal/models"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/muncho"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/optimistic"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/priority"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/uploader"
)

// LinksPartition is the dirty-tracker key for site links. All links share
// one partition.
const LinksPartition = "links"

// MaxGallery bounds the theme gallery.
const MaxGallery = 3

var (
	errLinkNotFound   = errors.New("site link not found")
	errBadLinkURL     = errors.New("url must be an absolute http(s) URL")
	errStorageUnready = errors.New("image storage is not configured")
	errGalleryFull    = fmt.Errorf("you can select at most %d items", MaxGallery)
	errNotInGallery   = errors.New("image is not part of the gallery")
)

type Service struct {
	db      *gorm.DB
	api     *muncho.Client
	mut     *optimistic.Mutator
	tracker *priority.Tracker
	up      uploader.Uploader
}

func NewService(db *gorm.DB, api *muncho.Client, mut *optimistic.Mutator, tracker *priority.Tracker, up uploader.Uploader) *Service {
	return &Service{db: db, api: api, mut: mut, tracker: tracker, up: up}
}

// Theme returns the singleton theme row, creating it on first access.
func (s *Service) Theme() (*models.ThemeModel, error) {
	var theme models.ThemeModel
	err := s.db.First(&theme).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		theme = models.ThemeModel{Gallery: models.StringArray{}}
		if err := s.db.Create(&theme).Error; err != nil {
			return nil, err
		}
		return &theme, nil
	}
	if err != nil {
		return nil, err
	}
	return &theme, nil
}

// UpdateTheme applies the partial update optimistically.
func (s *Service) UpdateTheme(ctx context.Context, dto *UpdateThemeDTO) (*models.ThemeModel, optimistic.Result, error) {
	theme, err := s.Theme()
	if err != nil {
		return nil, optimistic.Result{}, err
	}
	prev := *theme

	changes := map[string]interface{}{}
	if dto.PrimaryColor != nil {
		changes["primary_color"] = *dto.PrimaryColor
	}
	if dto.SecondaryColor != nil {
		changes["secondary_color"] = *dto.SecondaryColor
	}
	if dto.FontFamily != nil {
		changes["font_family"] = *dto.FontFamily
	}
	if dto.LogoURL != nil {
		changes["logo_url"] = *dto.LogoURL
	}
	if len(changes) == 0 {
		return theme, optimistic.Result{OK: true}, nil
	}

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "theme",
		Title:  "update theme",
		Apply:  func() error { return s.db.Model(theme).Updates(changes).Error },
		Revert: func() error {
			return s.db.Model(&models.ThemeModel{}).Where("id = ?", theme.ID).Updates(map[string]interface{}{
				"primary_color":   prev.PrimaryColor,
				"secondary_color": prev.SecondaryColor,
				"font_family":     prev.FontFamily,
				"logo_url":        prev.LogoURL,
			}).Error
		},
		Remote: s.api.Call(http.MethodPut, "/appearance/theme", changes),
	})
	return theme, res, nil
}

// UploadLogo stores the payload and returns its URL; callers set it on the
// theme with UpdateTheme.
func (s *Service) UploadLogo(ctx context.Context, filename string, payload []byte) (string, error) {
	if s.up == nil {
		return "", errStorageUnready
	}
	return s.up.Upload(ctx, "appearance/logo", filename, payload)
}

// AddGalleryImage uploads and appends to the theme gallery (cap MaxGallery).
func (s *Service) AddGalleryImage(ctx context.Context, filename string, payload []byte) (string, optimistic.Result, error) {
	if s.up == nil {
		return "", optimistic.Result{}, errStorageUnready
	}
	theme, err := s.Theme()
	if err != nil {
		return "", optimistic.Result{}, err
	}
	if len(theme.Gallery) >= MaxGallery {
		return "", optimistic.Result{Message: errGalleryFull.Error()}, errGalleryFull
	}

	imageURL, err := s.up.Upload(ctx, "appearance/gallery", filename, payload)
	if err != nil {
		return "", optimistic.Result{}, err
	}

	prev := theme.Gallery
	next := append(append(models.StringArray{}, prev...), imageURL)

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "theme/gallery",
		Title:  "add gallery image",
		Apply:  func() error { return s.db.Model(theme).Update("gallery", next).Error },
		Revert: func() error { return s.db.Model(theme).Update("gallery", prev).Error },
		Remote: s.api.Call(http.MethodPatch, "/appearance/gallery",
			map[string]interface{}{"gallery": []string(next)}),
	})
	return imageURL, res, nil
}

func (s *Service) RemoveGalleryImage(ctx context.Context, imageURL string) (optimistic.Result, error) {
	theme, err := s.Theme()
	if err != nil {
		return optimistic.Result{}, err
	}
	if !theme.Gallery.Contains(imageURL) {
		return optimistic.Result{}, errNotInGallery
	}
	prev := theme.Gallery
	next := make(models.StringArray, 0, len(prev)-1)
	for _, v := range prev {
		if v != imageURL {
			next = append(next, v)
		}
	}

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "theme/gallery",
		Title:  "remove gallery image",
		Apply:  func() error { return s.db.Model(theme).Update("gallery", next).Error },
		Revert: func() error { return s.db.Model(theme).Update("gallery", prev).Error },
		Remote: s.api.Call(http.MethodPatch, "/appearance/gallery",
			map[string]interface{}{"gallery": []string(next)}),
	})
	return res, nil
}

// ListLinks returns the site links in priority order.
func (s *Service) ListLinks() ([]models.SiteLinkModel, error) {
	var links []models.SiteLinkModel
	err := s.db.Order("priority ASC").Find(&links).Error
	return links, err
}

func (s *Service) CreateLink(ctx context.Context, dto *CreateLinkDTO) (*models.SiteLinkModel, optimistic.Result, error) {
	if err := validLinkURL(dto.URL); err != nil {
		return nil, optimistic.Result{}, err
	}
	links, err := s.ListLinks()
	if err != nil {
		return nil, optimistic.Result{}, err
	}
	l := &models.SiteLinkModel{
		Label:    strings.TrimSpace(dto.Label),
		URL:      dto.URL,
		Priority: priority.Next(links, func(x models.SiteLinkModel) int { return x.Priority }),
	}

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "site-link/create",
		Title:  "create site link",
		Apply:  func() error { return s.db.Create(l).Error },
		Revert: func() error { return s.db.Unscoped().Delete(l).Error },
		Remote: s.api.Call(http.MethodPost, "/appearance/links", map[string]interface{}{
			"id":       l.ID,
			"label":    l.Label,
			"url":      l.URL,
			"priority": l.Priority,
		}),
	})
	return l, res, nil
}

func (s *Service) UpdateLink(ctx context.Context, id string, dto *UpdateLinkDTO) (*models.SiteLinkModel, optimistic.Result, error) {
	l, err := s.getLink(id)
	if err != nil {
		return nil, optimistic.Result{}, err
	}
	if dto.URL != nil {
		if err := validLinkURL(*dto.URL); err != nil {
			return nil, optimistic.Result{}, err
		}
	}
	prev := *l

	changes := map[string]interface{}{}
	if dto.Label != nil {
		changes["label"] = strings.TrimSpace(*dto.Label)
	}
	if dto.URL != nil {
		changes["url"] = *dto.URL
	}
	if len(changes) == 0 {
		return l, optimistic.Result{OK: true}, nil
	}

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "site-link/" + id,
		Title:  "update site link",
		Apply:  func() error { return s.db.Model(l).Updates(changes).Error },
		Revert: func() error {
			return s.db.Model(&models.SiteLinkModel{}).Where("id = ?", id).Updates(map[string]interface{}{
				"label": prev.Label,
				"url":   prev.URL,
			}).Error
		},
		Remote: s.api.Call(http.MethodPatch, "/appearance/links/"+id, changes),
	})
	return l, res, nil
}

func (s *Service) DeleteLink(ctx context.Context, id string) (optimistic.Result, error) {
	if _, err := s.getLink(id); err != nil {
		return optimistic.Result{}, err
	}
	links, err := s.ListLinks()
	if err != nil {
		return optimistic.Result{}, err
	}
	baseline := priority.Updates(links,
		func(x models.SiteLinkModel) string { return x.ID },
		func(x models.SiteLinkModel) int { return x.Priority })

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "site-link/" + id,
		Title:  "delete site link",
		Apply: func() error {
			return s.db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Delete(&models.SiteLinkModel{}, "id = ?", id).Error; err != nil {
					return err
				}
				var rest []models.SiteLinkModel
				if err := tx.Order("priority ASC").Find(&rest).Error; err != nil {
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
				if err := tx.Unscoped().Model(&models.SiteLinkModel{}).
					Where("id = ?", id).Update("deleted_at", nil).Error; err != nil {
					return err
				}
				return restoreOrder(tx, baseline)
			})
		},
		Remote: s.api.Call(http.MethodDelete, "/appearance/links/"+id, nil),
	})
	return res, nil
}

// ReorderLinks moves a link; local until SaveLinkOrder commits.
func (s *Service) ReorderLinks(dto *ReorderDTO) (bool, error) {
	links, err := s.ListLinks()
	if err != nil {
		return false, err
	}
	ptrs := make([]*models.SiteLinkModel, len(links))
	for i := range links {
		ptrs[i] = &links[i]
	}
	baseline := priority.Updates(ptrs,
		func(l *models.SiteLinkModel) string { return l.ID },
		func(l *models.SiteLinkModel) int { return l.Priority })

	if !priority.Move(ptrs, func(l *models.SiteLinkModel) string { return l.ID }, dto.FromID, dto.ToID) {
		return false, nil
	}
	priority.Renumber(ptrs, func(l *models.SiteLinkModel, p int) { l.Priority = p })

	updates := priority.Updates(ptrs,
		func(l *models.SiteLinkModel) string { return l.ID },
		func(l *models.SiteLinkModel) int { return l.Priority })
	if err := s.db.Transaction(func(tx *gorm.DB) error { return restoreOrder(tx, updates) }); err != nil {
		return false, err
	}
	s.tracker.MarkDirty(LinksPartition, baseline)
	return true, nil
}

func (s *Service) SaveLinkOrder(ctx context.Context) optimistic.Result {
	if !s.tracker.IsDirty(LinksPartition) {
		return optimistic.Result{OK: true, Message: "nothing to save"}
	}
	links, err := s.ListLinks()
	if err != nil {
		return optimistic.Result{Message: err.Error(), Err: err}
	}
	updates := priority.Updates(links,
		func(l models.SiteLinkModel) string { return l.ID },
		func(l models.SiteLinkModel) int { return l.Priority })
	baseline := s.tracker.Baseline(LinksPartition)

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "site-link/order",
		Title:  "save link order",
		Revert: func() error {
			return s.db.Transaction(func(tx *gorm.DB) error { return restoreOrder(tx, baseline) })
		},
		Remote: s.api.Call(http.MethodPut, "/appearance/links/order",
			map[string]interface{}{"order": updates}),
	})
	if res.OK || res.Reverted {
		s.tracker.Clear(LinksPartition)
	}
	return res
}

func (s *Service) getLink(id string) (*models.SiteLinkModel, error) {
	var l models.SiteLinkModel
	err := s.db.First(&l, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func validLinkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errBadLinkURL
	}
	return nil
}

func restoreOrder(tx *gorm.DB, updates []priority.Update) error {
	for _, u := range updates {
		if err := tx.Model(&models.SiteLinkModel{}).Where("id = ?", u.ID).
			Update("priority", u.Priority).Error; err != nil {
			return err
		}
	}
	return nil
}
