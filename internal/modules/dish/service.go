package dish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/kalpit-muncho/dashboard-core/internal/models"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/muncho"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/optimistic"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/priority"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/selection"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/status"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/uploader"
)

// PartitionPrefix scopes dirty-tracker keys: dishes reorder within their
// category.
const PartitionPrefix = "dishes/"

var (
	errDishNotFound      = errors.New("dish not found")
	errStorageUnready    = errors.New("image storage is not configured")
	errGalleryFull       = fmt.Errorf("you can select at most %d items", MaxGallery)
	errNotInGallery      = errors.New("image is not part of the gallery")
	errUnknownUpsellDish = errors.New("upsell target dish not found")
)

func partitionKey(categoryID string) string { return PartitionPrefix + categoryID }

type Service struct {
	db      *gorm.DB
	api     *muncho.Client
	mut     *optimistic.Mutator
	tracker *priority.Tracker
	engine  *status.Engine
	up      uploader.Uploader
}

func NewService(db *gorm.DB, api *muncho.Client, mut *optimistic.Mutator, tracker *priority.Tracker, engine *status.Engine, up uploader.Uploader) *Service {
	return &Service{db: db, api: api, mut: mut, tracker: tracker, engine: engine, up: up}
}

// List returns one category's dishes in priority order.
func (s *Service) List(categoryID string) ([]models.DishModel, error) {
	var dishes []models.DishModel
	err := s.db.Where("category_id = ?", categoryID).Order("priority ASC").Find(&dishes).Error
	return dishes, err
}

func (s *Service) GetByID(id string) (*models.DishModel, error) {
	var d models.DishModel
	if err := s.db.First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errDishNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Browse computes the filtered dish view for one screen. A dish with no
// stock rows at all counts as offered; one with rows needs at least one
// outlet in stock.
func (s *Service) Browse(st FilterState) ([]models.DishModel, error) {
	var dishes []models.DishModel
	if err := s.db.Find(&dishes).Error; err != nil {
		return nil, err
	}
	var cats []models.CategoryModel
	if err := s.db.Find(&cats).Error; err != nil {
		return nil, err
	}
	categoryGroup := make(map[string]string, len(cats))
	for _, cat := range cats {
		categoryGroup[cat.ID] = cat.MenuGroupID
	}

	var stocks []models.DishStockModel
	if err := s.db.Find(&stocks).Error; err != nil {
		return nil, err
	}
	hasRows := make(map[string]bool, len(stocks))
	hasLive := make(map[string]bool, len(stocks))
	for _, row := range stocks {
		hasRows[row.DishID] = true
		if row.InStock {
			hasLive[row.DishID] = true
		}
	}
	offered := func(d models.DishModel) bool {
		if !hasRows[d.ID] {
			return true
		}
		return hasLive[d.ID]
	}

	return Visible(dishes, categoryGroup, offered, st), nil
}

func (s *Service) Create(ctx context.Context, dto *CreateDishDTO) (*models.DishModel, optimistic.Result) {
	siblings, err := s.List(dto.CategoryID)
	if err != nil {
		return nil, optimistic.Result{Message: err.Error(), Err: err}
	}
	kind := dto.Type
	if kind == "" {
		kind = models.DishVeg
	}
	d := &models.DishModel{
		Name:        strings.TrimSpace(dto.Name),
		Description: dto.Description,
		CategoryID:  dto.CategoryID,
		Priority:    priority.Next(siblings, func(x models.DishModel) int { return x.Priority }),
		Price:       dto.Price,
		Type:        kind,
		ImageURL:    dto.ImageURL,
		Tags:        models.StringArray{},
		Upsells:     models.StringArray{},
		Gallery:     models.StringArray{},
		AddonGroups: models.StringArray{},
	}

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "dish/create",
		Title:  "create dish",
		Apply:  func() error { return s.db.Create(d).Error },
		Revert: func() error { return s.db.Unscoped().Delete(d).Error },
		Remote: s.api.Call(http.MethodPost, "/dishes", map[string]interface{}{
			"id":          d.ID,
			"name":        d.Name,
			"description": d.Description,
			"category_id": d.CategoryID,
			"priority":    d.Priority,
			"price":       d.Price,
			"type":        d.Type,
			"image_url":   d.ImageURL,
		}),
	})
	if !res.OK {
		return nil, res
	}
	return d, res
}

func (s *Service) Update(ctx context.Context, id string, dto *UpdateDishDTO) (*models.DishModel, optimistic.Result, error) {
	d, err := s.GetByID(id)
	if err != nil {
		return nil, optimistic.Result{}, err
	}
	prev := *d

	changes := map[string]interface{}{}
	if dto.Name != nil {
		changes["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.Description != nil {
		changes["description"] = *dto.Description
	}
	if dto.Price != nil {
		changes["price"] = *dto.Price
	}
	if dto.Type != nil {
		changes["type"] = *dto.Type
	}
	if dto.ImageURL != nil {
		changes["image_url"] = *dto.ImageURL
	}
	if len(changes) == 0 {
		return d, optimistic.Result{OK: true}, nil
	}

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "dish/" + id,
		Title:  "update dish",
		Apply:  func() error { return s.db.Model(d).Updates(changes).Error },
		Revert: func() error {
			return s.db.Model(&models.DishModel{}).Where("id = ?", id).Updates(map[string]interface{}{
				"name":        prev.Name,
				"description": prev.Description,
				"price":       prev.Price,
				"type":        prev.Type,
				"image_url":   prev.ImageURL,
			}).Error
		},
		Remote: s.api.Call(http.MethodPatch, "/dishes/"+id, changes),
	})
	if !res.OK {
		return &prev, res, nil
	}
	return d, res, nil
}

func (s *Service) Delete(ctx context.Context, id string) (optimistic.Result, error) {
	d, err := s.GetByID(id)
	if err != nil {
		return optimistic.Result{}, err
	}
	siblings, err := s.List(d.CategoryID)
	if err != nil {
		return optimistic.Result{}, err
	}
	baseline := priority.Updates(siblings,
		func(x models.DishModel) string { return x.ID },
		func(x models.DishModel) int { return x.Priority })
	categoryID := d.CategoryID

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "dish/" + id,
		Title:  "delete dish",
		Apply: func() error {
			return s.db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Delete(&models.DishModel{}, "id = ?", id).Error; err != nil {
					return err
				}
				var rest []models.DishModel
				if err := tx.Where("category_id = ?", categoryID).Order("priority ASC").Find(&rest).Error; err != nil {
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
				if err := tx.Unscoped().Model(&models.DishModel{}).
					Where("id = ?", id).Update("deleted_at", nil).Error; err != nil {
					return err
				}
				return restoreOrder(tx, baseline)
			})
		},
		Remote: s.api.Call(http.MethodDelete, "/dishes/"+id, nil),
	})
	return res, nil
}

// Reorder moves a dish within its category; local until SaveOrder commits.
func (s *Service) Reorder(dto *ReorderDTO) (bool, error) {
	dishes, err := s.List(dto.CategoryID)
	if err != nil {
		return false, err
	}
	ptrs := make([]*models.DishModel, len(dishes))
	for i := range dishes {
		ptrs[i] = &dishes[i]
	}
	baseline := priority.Updates(ptrs,
		func(d *models.DishModel) string { return d.ID },
		func(d *models.DishModel) int { return d.Priority })

	if !priority.Move(ptrs, func(d *models.DishModel) string { return d.ID }, dto.FromID, dto.ToID) {
		return false, nil
	}
	priority.Renumber(ptrs, func(d *models.DishModel, p int) { d.Priority = p })

	updates := priority.Updates(ptrs,
		func(d *models.DishModel) string { return d.ID },
		func(d *models.DishModel) int { return d.Priority })
	if err := s.db.Transaction(func(tx *gorm.DB) error { return restoreOrder(tx, updates) }); err != nil {
		return false, err
	}
	s.tracker.MarkDirty(partitionKey(dto.CategoryID), baseline)
	return true, nil
}

func (s *Service) SaveOrder(ctx context.Context, categoryID string) optimistic.Result {
	key := partitionKey(categoryID)
	if !s.tracker.IsDirty(key) {
		return optimistic.Result{OK: true, Message: "nothing to save"}
	}
	dishes, err := s.List(categoryID)
	if err != nil {
		return optimistic.Result{Message: err.Error(), Err: err}
	}
	updates := priority.Updates(dishes,
		func(d models.DishModel) string { return d.ID },
		func(d models.DishModel) int { return d.Priority })
	baseline := s.tracker.Baseline(key)

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "dish/order/" + categoryID,
		Title:  "save dish order",
		Revert: func() error {
			return s.db.Transaction(func(tx *gorm.DB) error { return restoreOrder(tx, baseline) })
		},
		Remote: s.api.Call(http.MethodPut, "/categories/"+categoryID+"/dishes/order",
			map[string]interface{}{"order": updates}),
	})
	if res.OK || res.Reverted {
		s.tracker.Clear(key)
	}
	return res
}

// SetStock toggles the per-outlet stock flag. One authoritative row per
// (dish, outlet) pair; a dish without a row defaults to in stock.
func (s *Service) SetStock(ctx context.Context, dishID, outletCode string, v bool) optimistic.Result {
	if _, err := s.GetByID(dishID); err != nil {
		return optimistic.Result{Message: err.Error(), Err: err}
	}
	return s.engine.Set(ctx, stockStore{db: s.db}, "dish stock", dishID, outletCode, v,
		s.api.Call(http.MethodPatch, "/dishes/"+dishID+"/stock", map[string]interface{}{
			"outlet_code": outletCode,
			"in_stock":    v,
		}))
}

// ToggleTag toggles a dietary tag on the dish, capped at MaxTags. A rejected
// cap addition never reaches the network.
func (s *Service) ToggleTag(ctx context.Context, dishID, tag string) (selection.Result, optimistic.Result, error) {
	d, err := s.GetByID(dishID)
	if err != nil {
		return selection.Result{}, optimistic.Result{}, err
	}
	return s.toggleSelection(ctx, d, "tags", MaxTags, d.Tags, tag,
		"/dishes/"+dishID+"/tags")
}

// ToggleUpsell toggles a recommended dish on this dish, capped at MaxUpsells.
func (s *Service) ToggleUpsell(ctx context.Context, dishID, upsellID string) (selection.Result, optimistic.Result, error) {
	d, err := s.GetByID(dishID)
	if err != nil {
		return selection.Result{}, optimistic.Result{}, err
	}
	if _, err := s.GetByID(upsellID); err != nil {
		return selection.Result{}, optimistic.Result{}, errUnknownUpsellDish
	}
	return s.toggleSelection(ctx, d, "upsells", MaxUpsells, d.Upsells, upsellID,
		"/dishes/"+dishID+"/upsells")
}

func (s *Service) toggleSelection(ctx context.Context, d *models.DishModel, column string, max int, current models.StringArray, id, path string) (selection.Result, optimistic.Result, error) {
	set := selection.New(max, current...)
	sel := set.Toggle(id)
	if !sel.Accepted {
		return sel, optimistic.Result{Message: sel.Message}, nil
	}
	next := models.StringArray(sel.Selected)
	prev := current

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "dish/" + d.ID + "/" + column,
		Title:  "update dish " + column,
		Apply:  func() error { return s.db.Model(d).Update(column, next).Error },
		Revert: func() error { return s.db.Model(d).Update(column, prev).Error },
		Remote: s.api.Call(http.MethodPatch, path, map[string]interface{}{column: []string(next)}),
	})
	return sel, res, nil
}

// ToggleUniversalUpsell toggles a dish in the restaurant-wide upsell list on
// the singleton settings row, capped at MaxUniversalUpsells.
func (s *Service) ToggleUniversalUpsell(ctx context.Context, dishID string) (selection.Result, optimistic.Result, error) {
	if _, err := s.GetByID(dishID); err != nil {
		return selection.Result{}, optimistic.Result{}, err
	}
	settings, err := s.loadSettings()
	if err != nil {
		return selection.Result{}, optimistic.Result{}, err
	}

	set := selection.New(MaxUniversalUpsells, settings.UniversalUpsells...)
	sel := set.Toggle(dishID)
	if !sel.Accepted {
		return sel, optimistic.Result{Message: sel.Message}, nil
	}
	next := models.StringArray(sel.Selected)
	prev := settings.UniversalUpsells

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "settings/universal-upsells",
		Title:  "update universal upsells",
		Apply:  func() error { return s.db.Model(settings).Update("universal_upsells", next).Error },
		Revert: func() error { return s.db.Model(settings).Update("universal_upsells", prev).Error },
		Remote: s.api.Call(http.MethodPut, "/settings/universal-upsells",
			map[string]interface{}{"upsells": []string(next)}),
	})
	return sel, res, nil
}

// UniversalUpsells returns the current restaurant-wide upsell selection.
func (s *Service) UniversalUpsells() ([]string, error) {
	settings, err := s.loadSettings()
	if err != nil {
		return nil, err
	}
	return settings.UniversalUpsells, nil
}

// AddGalleryImage uploads the payload and appends its URL to the dish
// gallery. The cap check is local validation; a full gallery never uploads.
func (s *Service) AddGalleryImage(ctx context.Context, dishID, filename string, payload []byte) (string, optimistic.Result, error) {
	if s.up == nil {
		return "", optimistic.Result{}, errStorageUnready
	}
	d, err := s.GetByID(dishID)
	if err != nil {
		return "", optimistic.Result{}, err
	}
	if len(d.Gallery) >= MaxGallery {
		return "", optimistic.Result{Message: errGalleryFull.Error()}, errGalleryFull
	}

	url, err := s.up.Upload(ctx, "dishes/"+dishID+"/gallery", filename, payload)
	if err != nil {
		return "", optimistic.Result{}, err
	}

	prev := d.Gallery
	next := append(models.StringArray{}, d.Gallery...)
	next = append(next, url)

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "dish/" + dishID + "/gallery",
		Title:  "add gallery image",
		Apply:  func() error { return s.db.Model(d).Update("gallery", next).Error },
		Revert: func() error { return s.db.Model(d).Update("gallery", prev).Error },
		Remote: s.api.Call(http.MethodPatch, "/dishes/"+dishID+"/gallery",
			map[string]interface{}{"gallery": []string(next)}),
	})
	return url, res, nil
}

// RemoveGalleryImage drops a URL from the gallery. Removals always pass the
// cap; the upstream still confirms.
func (s *Service) RemoveGalleryImage(ctx context.Context, dishID, url string) (optimistic.Result, error) {
	d, err := s.GetByID(dishID)
	if err != nil {
		return optimistic.Result{}, err
	}
	if !d.Gallery.Contains(url) {
		return optimistic.Result{}, errNotInGallery
	}
	prev := d.Gallery
	next := make(models.StringArray, 0, len(d.Gallery)-1)
	for _, v := range d.Gallery {
		if v != url {
			next = append(next, v)
		}
	}

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "dish/" + dishID + "/gallery",
		Title:  "remove gallery image",
		Apply:  func() error { return s.db.Model(d).Update("gallery", next).Error },
		Revert: func() error { return s.db.Model(d).Update("gallery", prev).Error },
		Remote: s.api.Call(http.MethodPatch, "/dishes/"+dishID+"/gallery",
			map[string]interface{}{"gallery": []string(next)}),
	})
	return res, nil
}

func (s *Service) loadSettings() (*models.SettingsModel, error) {
	var settings models.SettingsModel
	err := s.db.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.SettingsModel{
			OutletCodes:      models.StringArray{},
			UniversalUpsells: models.StringArray{},
		}
		if err := s.db.Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// stockStore keeps the per-(dish, outlet) flag rows, creating one on first
// toggle since dishes default to in stock.
type stockStore struct {
	db *gorm.DB
}

func (f stockStore) Flag(dishID, outletCode string) (bool, error) {
	var row models.DishStockModel
	err := f.db.First(&row, "dish_id = ? AND outlet_code = ?", dishID, outletCode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return row.InStock, nil
}

func (f stockStore) SetFlag(dishID, outletCode string, v bool) error {
	var row models.DishStockModel
	err := f.db.First(&row, "dish_id = ? AND outlet_code = ?", dishID, outletCode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return f.db.Create(&models.DishStockModel{DishID: dishID, OutletCode: outletCode, InStock: v}).Error
	}
	if err != nil {
		return err
	}
	return f.db.Model(&row).Update("in_stock", v).Error
}

func restoreOrder(tx *gorm.DB, updates []priority.Update) error {
	for _, u := range updates {
		if err := tx.Model(&models.DishModel{}).Where("id = ?", u.ID).
			Update("priority", u.Priority).Error; err != nil {
			return err
		}
	}
	return nil
}
