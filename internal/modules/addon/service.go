package addon

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/kalpit-muncho/dashboard-core/internal/models"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/muncho"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/optimistic"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/priority"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/status"
)

// ItemPartitionPrefix scopes dirty-tracker keys: items reorder within their
// addon group.
const ItemPartitionPrefix = "addon_items/"

var (
	errGroupNotFound   = errors.New("addon group not found")
	errItemNotFound    = errors.New("addon item not found")
	errDishNotFound    = errors.New("dish not found")
	errBoundsInverted  = errors.New("min_selection cannot exceed max_selection")
	errGroupNotOnDish  = errors.New("addon group is not attached to this dish")
	errGroupAlreadySet = errors.New("addon group is already attached to this dish")
)

func itemPartition(groupID string) string { return ItemPartitionPrefix + groupID }

type Service struct {
	db      *gorm.DB
	api     *muncho.Client
	mut     *optimistic.Mutator
	tracker *priority.Tracker
	engine  *status.Engine
}

func NewService(db *gorm.DB, api *muncho.Client, mut *optimistic.Mutator, tracker *priority.Tracker, engine *status.Engine) *Service {
	return &Service{db: db, api: api, mut: mut, tracker: tracker, engine: engine}
}

// ListGroups returns all addon groups with their items.
func (s *Service) ListGroups() ([]models.AddonGroupModel, error) {
	var groups []models.AddonGroupModel
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("priority ASC")
	}).Order("priority ASC").Find(&groups).Error
	return groups, err
}

func (s *Service) GetGroup(id string) (*models.AddonGroupModel, error) {
	var g models.AddonGroupModel
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("priority ASC")
	}).First(&g, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGroup validates the selection bounds locally before anything is sent
// upstream.
func (s *Service) CreateGroup(ctx context.Context, dto *CreateGroupDTO) (*models.AddonGroupModel, optimistic.Result, error) {
	if dto.MinSelection > dto.MaxSelection {
		return nil, optimistic.Result{}, errBoundsInverted
	}
	var groups []models.AddonGroupModel
	if err := s.db.Order("priority ASC").Find(&groups).Error; err != nil {
		return nil, optimistic.Result{}, err
	}
	g := &models.AddonGroupModel{
		Name:         strings.TrimSpace(dto.Name),
		MinSelection: dto.MinSelection,
		MaxSelection: dto.MaxSelection,
		Priority:     priority.Next(groups, func(x models.AddonGroupModel) int { return x.Priority }),
	}

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "addon-group/create",
		Title:  "create addon group",
		Apply:  func() error { return s.db.Create(g).Error },
		Revert: func() error { return s.db.Unscoped().Delete(g).Error },
		Remote: s.api.Call(http.MethodPost, "/addon-groups", map[string]interface{}{
			"id":            g.ID,
			"name":          g.Name,
			"min_selection": g.MinSelection,
			"max_selection": g.MaxSelection,
			"priority":      g.Priority,
		}),
	})
	return g, res, nil
}

func (s *Service) UpdateGroup(ctx context.Context, id string, dto *UpdateGroupDTO) (*models.AddonGroupModel, optimistic.Result, error) {
	g, err := s.GetGroup(id)
	if err != nil {
		return nil, optimistic.Result{}, err
	}
	prev := *g

	min, max := g.MinSelection, g.MaxSelection
	if dto.MinSelection != nil {
		min = *dto.MinSelection
	}
	if dto.MaxSelection != nil {
		max = *dto.MaxSelection
	}
	if min > max {
		return nil, optimistic.Result{}, errBoundsInverted
	}

	changes := map[string]interface{}{"min_selection": min, "max_selection": max}
	if dto.Name != nil {
		changes["name"] = strings.TrimSpace(*dto.Name)
	}

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "addon-group/" + id,
		Title:  "update addon group",
		Apply:  func() error { return s.db.Model(g).Updates(changes).Error },
		Revert: func() error {
			return s.db.Model(&models.AddonGroupModel{}).Where("id = ?", id).Updates(map[string]interface{}{
				"name":          prev.Name,
				"min_selection": prev.MinSelection,
				"max_selection": prev.MaxSelection,
			}).Error
		},
		Remote: s.api.Call(http.MethodPatch, "/addon-groups/"+id, changes),
	})
	return g, res, nil
}

func (s *Service) DeleteGroup(ctx context.Context, id string) (optimistic.Result, error) {
	g, err := s.GetGroup(id)
	if err != nil {
		return optimistic.Result{}, err
	}

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "addon-group/" + id,
		Title:  "delete addon group",
		Apply: func() error {
			return s.db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Delete(&models.AddonItemModel{}, "group_id = ?", id).Error; err != nil {
					return err
				}
				return tx.Delete(&models.AddonGroupModel{}, "id = ?", id).Error
			})
		},
		Revert: func() error {
			return s.db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Unscoped().Model(&models.AddonGroupModel{}).
					Where("id = ?", id).Update("deleted_at", nil).Error; err != nil {
					return err
				}
				return tx.Unscoped().Model(&models.AddonItemModel{}).
					Where("group_id = ?", g.ID).Update("deleted_at", nil).Error
			})
		},
		Remote: s.api.Call(http.MethodDelete, "/addon-groups/"+id, nil),
	})
	return res, nil
}

// ListItems returns one group's items in priority order.
func (s *Service) ListItems(groupID string) ([]models.AddonItemModel, error) {
	var items []models.AddonItemModel
	err := s.db.Where("group_id = ?", groupID).Order("priority ASC").Find(&items).Error
	return items, err
}

func (s *Service) CreateItem(ctx context.Context, dto *CreateItemDTO) (*models.AddonItemModel, optimistic.Result, error) {
	if _, err := s.GetGroup(dto.GroupID); err != nil {
		return nil, optimistic.Result{}, err
	}
	siblings, err := s.ListItems(dto.GroupID)
	if err != nil {
		return nil, optimistic.Result{}, err
	}
	item := &models.AddonItemModel{
		GroupID:  dto.GroupID,
		Name:     strings.TrimSpace(dto.Name),
		Price:    dto.Price,
		Priority: priority.Next(siblings, func(x models.AddonItemModel) int { return x.Priority }),
		InStock:  true,
	}

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "addon-item/create",
		Title:  "create addon item",
		Apply:  func() error { return s.db.Create(item).Error },
		Revert: func() error { return s.db.Unscoped().Delete(item).Error },
		Remote: s.api.Call(http.MethodPost, "/addon-items", map[string]interface{}{
			"id":       item.ID,
			"group_id": item.GroupID,
			"name":     item.Name,
			"price":    item.Price,
			"priority": item.Priority,
		}),
	})
	return item, res, nil
}

func (s *Service) UpdateItem(ctx context.Context, id string, dto *UpdateItemDTO) (*models.AddonItemModel, optimistic.Result, error) {
	item, err := s.getItem(id)
	if err != nil {
		return nil, optimistic.Result{}, err
	}
	prev := *item

	changes := map[string]interface{}{}
	if dto.Name != nil {
		changes["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.Price != nil {
		changes["price"] = *dto.Price
	}
	if len(changes) == 0 {
		return item, optimistic.Result{OK: true}, nil
	}

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "addon-item/" + id,
		Title:  "update addon item",
		Apply:  func() error { return s.db.Model(item).Updates(changes).Error },
		Revert: func() error {
			return s.db.Model(&models.AddonItemModel{}).Where("id = ?", id).Updates(map[string]interface{}{
				"name":  prev.Name,
				"price": prev.Price,
			}).Error
		},
		Remote: s.api.Call(http.MethodPatch, "/addon-items/"+id, changes),
	})
	return item, res, nil
}

func (s *Service) DeleteItem(ctx context.Context, id string) (optimistic.Result, error) {
	item, err := s.getItem(id)
	if err != nil {
		return optimistic.Result{}, err
	}
	siblings, err := s.ListItems(item.GroupID)
	if err != nil {
		return optimistic.Result{}, err
	}
	baseline := priority.Updates(siblings,
		func(x models.AddonItemModel) string { return x.ID },
		func(x models.AddonItemModel) int { return x.Priority })
	groupID := item.GroupID

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "addon-item/" + id,
		Title:  "delete addon item",
		Apply: func() error {
			return s.db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Delete(&models.AddonItemModel{}, "id = ?", id).Error; err != nil {
					return err
				}
				var rest []models.AddonItemModel
				if err := tx.Where("group_id = ?", groupID).Order("priority ASC").Find(&rest).Error; err != nil {
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
				if err := tx.Unscoped().Model(&models.AddonItemModel{}).
					Where("id = ?", id).Update("deleted_at", nil).Error; err != nil {
					return err
				}
				return restoreItemOrder(tx, baseline)
			})
		},
		Remote: s.api.Call(http.MethodDelete, "/addon-items/"+id, nil),
	})
	return res, nil
}

// ReorderItems moves an item within its group; local until SaveItemOrder.
func (s *Service) ReorderItems(dto *ReorderItemsDTO) (bool, error) {
	items, err := s.ListItems(dto.GroupID)
	if err != nil {
		return false, err
	}
	ptrs := make([]*models.AddonItemModel, len(items))
	for i := range items {
		ptrs[i] = &items[i]
	}
	baseline := priority.Updates(ptrs,
		func(it *models.AddonItemModel) string { return it.ID },
		func(it *models.AddonItemModel) int { return it.Priority })

	if !priority.Move(ptrs, func(it *models.AddonItemModel) string { return it.ID }, dto.FromID, dto.ToID) {
		return false, nil
	}
	priority.Renumber(ptrs, func(it *models.AddonItemModel, p int) { it.Priority = p })

	updates := priority.Updates(ptrs,
		func(it *models.AddonItemModel) string { return it.ID },
		func(it *models.AddonItemModel) int { return it.Priority })
	if err := s.db.Transaction(func(tx *gorm.DB) error { return restoreItemOrder(tx, updates) }); err != nil {
		return false, err
	}
	s.tracker.MarkDirty(itemPartition(dto.GroupID), baseline)
	return true, nil
}

func (s *Service) SaveItemOrder(ctx context.Context, groupID string) optimistic.Result {
	key := itemPartition(groupID)
	if !s.tracker.IsDirty(key) {
		return optimistic.Result{OK: true, Message: "nothing to save"}
	}
	items, err := s.ListItems(groupID)
	if err != nil {
		return optimistic.Result{Message: err.Error(), Err: err}
	}
	updates := priority.Updates(items,
		func(it models.AddonItemModel) string { return it.ID },
		func(it models.AddonItemModel) int { return it.Priority })
	baseline := s.tracker.Baseline(key)

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "addon-item/order/" + groupID,
		Title:  "save addon item order",
		Revert: func() error {
			return s.db.Transaction(func(tx *gorm.DB) error { return restoreItemOrder(tx, baseline) })
		},
		Remote: s.api.Call(http.MethodPut, "/addon-groups/"+groupID+"/items/order",
			map[string]interface{}{"order": updates}),
	})
	if res.OK || res.Reverted {
		s.tracker.Clear(key)
	}
	return res
}

func (s *Service) SetItemStock(ctx context.Context, id string, v bool) optimistic.Result {
	return s.engine.Set(ctx, itemFlags{db: s.db}, "addon item stock", id, status.ContextGlobal, v,
		s.api.Call(http.MethodPatch, "/addon-items/"+id+"/stock", map[string]interface{}{"in_stock": v}))
}

// AttachToDish adds an addon group to a dish's group list.
func (s *Service) AttachToDish(ctx context.Context, dishID, groupID string) (optimistic.Result, error) {
	if _, err := s.GetGroup(groupID); err != nil {
		return optimistic.Result{}, err
	}
	d, err := s.getDish(dishID)
	if err != nil {
		return optimistic.Result{}, err
	}
	if d.AddonGroups.Contains(groupID) {
		return optimistic.Result{}, errGroupAlreadySet
	}
	prev := d.AddonGroups
	next := append(append(models.StringArray{}, prev...), groupID)
	return s.pushDishGroups(ctx, d, prev, next), nil
}

// DetachFromDish removes an addon group from a dish's group list.
func (s *Service) DetachFromDish(ctx context.Context, dishID, groupID string) (optimistic.Result, error) {
	d, err := s.getDish(dishID)
	if err != nil {
		return optimistic.Result{}, err
	}
	if !d.AddonGroups.Contains(groupID) {
		return optimistic.Result{}, errGroupNotOnDish
	}
	prev := d.AddonGroups
	next := make(models.StringArray, 0, len(prev)-1)
	for _, v := range prev {
		if v != groupID {
			next = append(next, v)
		}
	}
	return s.pushDishGroups(ctx, d, prev, next), nil
}

func (s *Service) pushDishGroups(ctx context.Context, d *models.DishModel, prev, next models.StringArray) optimistic.Result {
	return s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "dish/" + d.ID + "/addon-groups",
		Title:  "update dish addon groups",
		Apply:  func() error { return s.db.Model(d).Update("addon_groups", next).Error },
		Revert: func() error { return s.db.Model(d).Update("addon_groups", prev).Error },
		Remote: s.api.Call(http.MethodPatch, "/dishes/"+d.ID+"/addon-groups",
			map[string]interface{}{"addon_groups": []string(next)}),
	})
}

func (s *Service) getItem(id string) (*models.AddonItemModel, error) {
	var item models.AddonItemModel
	err := s.db.First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Service) getDish(id string) (*models.DishModel, error) {
	var d models.DishModel
	err := s.db.First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errDishNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type itemFlags struct {
	db *gorm.DB
}

func (f itemFlags) Flag(entityID, _ string) (bool, error) {
	var item models.AddonItemModel
	if err := f.db.First(&item, "id = ?", entityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, errItemNotFound
		}
		return false, err
	}
	return item.InStock, nil
}

func (f itemFlags) SetFlag(entityID, _ string, v bool) error {
	return f.db.Model(&models.AddonItemModel{}).Where("id = ?", entityID).Update("in_stock", v).Error
}

func restoreItemOrder(tx *gorm.DB, updates []priority.Update) error {
	for _, u := range updates {
		if err := tx.Model(&models.AddonItemModel{}).Where("id = ?", u.ID).
			Update("priority", u.Priority).Error; err != nil {
			return err
		}
	}
	return nil
}
