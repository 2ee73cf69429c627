package category

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

// PartitionPrefix scopes dirty-tracker keys: each menu group owns an
// independent category partition.
const PartitionPrefix = "categories/"

var errCategoryNotFound = errors.New("category not found")

func partitionKey(groupID string) string { return PartitionPrefix + groupID }

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

// List returns the categories of one menu group in priority order.
func (s *Service) List(groupID string) ([]models.CategoryModel, error) {
	var cats []models.CategoryModel
	err := s.db.Where("menu_group_id = ?", groupID).Order("priority ASC").Find(&cats).Error
	return cats, err
}

func (s *Service) GetByID(id string) (*models.CategoryModel, error) {
	var cat models.CategoryModel
	if err := s.db.First(&cat, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errCategoryNotFound
		}
		return nil, err
	}
	return &cat, nil
}

func (s *Service) Create(ctx context.Context, dto *CreateCategoryDTO) (*models.CategoryModel, optimistic.Result) {
	siblings, err := s.List(dto.MenuGroupID)
	if err != nil {
		return nil, optimistic.Result{Message: err.Error(), Err: err}
	}
	cat := &models.CategoryModel{
		Name:        strings.TrimSpace(dto.Name),
		MenuGroupID: dto.MenuGroupID,
		Priority:    priority.Next(siblings, func(x models.CategoryModel) int { return x.Priority }),
		InStock:     true,
		IsActive:    true,
	}

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "category/create",
		Title:  "create category",
		Apply:  func() error { return s.db.Create(cat).Error },
		Revert: func() error { return s.db.Unscoped().Delete(cat).Error },
		Remote: s.api.Call(http.MethodPost, "/categories", map[string]interface{}{
			"id":            cat.ID,
			"name":          cat.Name,
			"menu_group_id": cat.MenuGroupID,
			"priority":      cat.Priority,
		}),
	})
	if !res.OK {
		return nil, res
	}
	return cat, res
}

func (s *Service) Rename(ctx context.Context, id string, dto *UpdateCategoryDTO) (*models.CategoryModel, optimistic.Result, error) {
	cat, err := s.GetByID(id)
	if err != nil {
		return nil, optimistic.Result{}, err
	}
	prev := cat.Name
	name := strings.TrimSpace(dto.Name)

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "category/" + id,
		Title:  "rename category",
		Apply: func() error {
			cat.Name = name
			return s.db.Model(cat).Update("name", name).Error
		},
		Revert: func() error {
			cat.Name = prev
			return s.db.Model(cat).Update("name", prev).Error
		},
		Remote: s.api.Call(http.MethodPatch, "/categories/"+id, map[string]interface{}{"name": name}),
	})
	return cat, res, nil
}

// Delete removes the category and keeps its menu group's partition dense.
func (s *Service) Delete(ctx context.Context, id string) (optimistic.Result, error) {
	cat, err := s.GetByID(id)
	if err != nil {
		return optimistic.Result{}, err
	}
	siblings, err := s.List(cat.MenuGroupID)
	if err != nil {
		return optimistic.Result{}, err
	}
	baseline := priority.Updates(siblings,
		func(c models.CategoryModel) string { return c.ID },
		func(c models.CategoryModel) int { return c.Priority })
	groupID := cat.MenuGroupID

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "category/" + id,
		Title:  "delete category",
		Apply: func() error {
			return s.db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Delete(&models.CategoryModel{}, "id = ?", id).Error; err != nil {
					return err
				}
				var rest []models.CategoryModel
				if err := tx.Where("menu_group_id = ?", groupID).Order("priority ASC").Find(&rest).Error; err != nil {
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
				if err := tx.Unscoped().Model(&models.CategoryModel{}).
					Where("id = ?", id).Update("deleted_at", nil).Error; err != nil {
					return err
				}
				return restoreOrder(tx, baseline)
			})
		},
		Remote: s.api.Call(http.MethodDelete, "/categories/"+id, nil),
	})
	return res, nil
}

// Reorder moves a category within its menu group. Only the affected group's
// partition is touched; the change stays local until SaveOrder.
func (s *Service) Reorder(dto *ReorderDTO) (bool, error) {
	cats, err := s.List(dto.MenuGroupID)
	if err != nil {
		return false, err
	}
	ptrs := make([]*models.CategoryModel, len(cats))
	for i := range cats {
		ptrs[i] = &cats[i]
	}
	baseline := priority.Updates(ptrs,
		func(c *models.CategoryModel) string { return c.ID },
		func(c *models.CategoryModel) int { return c.Priority })

	if !priority.Move(ptrs, func(c *models.CategoryModel) string { return c.ID }, dto.FromID, dto.ToID) {
		return false, nil
	}
	priority.Renumber(ptrs, func(c *models.CategoryModel, p int) { c.Priority = p })

	updates := priority.Updates(ptrs,
		func(c *models.CategoryModel) string { return c.ID },
		func(c *models.CategoryModel) int { return c.Priority })
	if err := s.db.Transaction(func(tx *gorm.DB) error { return restoreOrder(tx, updates) }); err != nil {
		return false, err
	}
	s.tracker.MarkDirty(partitionKey(dto.MenuGroupID), baseline)
	return true, nil
}

// SaveOrder commits one menu group's category order upstream.
func (s *Service) SaveOrder(ctx context.Context, groupID string) optimistic.Result {
	key := partitionKey(groupID)
	if !s.tracker.IsDirty(key) {
		return optimistic.Result{OK: true, Message: "nothing to save"}
	}
	cats, err := s.List(groupID)
	if err != nil {
		return optimistic.Result{Message: err.Error(), Err: err}
	}
	updates := priority.Updates(cats,
		func(c models.CategoryModel) string { return c.ID },
		func(c models.CategoryModel) int { return c.Priority })
	baseline := s.tracker.Baseline(key)

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "category/order/" + groupID,
		Title:  "save category order",
		Revert: func() error {
			return s.db.Transaction(func(tx *gorm.DB) error { return restoreOrder(tx, baseline) })
		},
		Remote: s.api.Call(http.MethodPut, "/menu/groups/"+groupID+"/categories/order",
			map[string]interface{}{"order": updates}),
	})
	if res.OK || res.Reverted {
		s.tracker.Clear(key)
	}
	return res
}

// DirtyGroups returns the menu group ids with uncommitted category reorders.
func (s *Service) DirtyGroups() []string {
	var out []string
	for _, p := range s.tracker.Dirty() {
		if strings.HasPrefix(p, PartitionPrefix) {
			out = append(out, strings.TrimPrefix(p, PartitionPrefix))
		}
	}
	return out
}

func (s *Service) SetStock(ctx context.Context, id string, v bool) optimistic.Result {
	return s.engine.Set(ctx, categoryFlags{db: s.db, column: "in_stock"}, "category stock", id, status.ContextGlobal, v,
		s.api.Call(http.MethodPatch, "/categories/"+id+"/stock", map[string]interface{}{"in_stock": v}))
}

func (s *Service) SetActive(ctx context.Context, id string, v bool) optimistic.Result {
	return s.engine.Set(ctx, categoryFlags{db: s.db, column: "is_active"}, "category state", id, status.ContextGlobal, v,
		s.api.Call(http.MethodPatch, "/categories/"+id+"/active", map[string]interface{}{"is_active": v}))
}

type categoryFlags struct {
	db     *gorm.DB
	column string
}

func (f categoryFlags) Flag(entityID, _ string) (bool, error) {
	var cat models.CategoryModel
	if err := f.db.First(&cat, "id = ?", entityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, errCategoryNotFound
		}
		return false, err
	}
	if f.column == "is_active" {
		return cat.IsActive, nil
	}
	return cat.InStock, nil
}

func (f categoryFlags) SetFlag(entityID, _ string, v bool) error {
	return f.db.Model(&models.CategoryModel{}).Where("id = ?", entityID).Update(f.column, v).Error
}

func restoreOrder(tx *gorm.DB, updates []priority.Update) error {
	for _, u := range updates {
		if err := tx.Model(&models.CategoryModel{}).Where("id = ?", u.ID).
			Update("priority", u.Priority).Error; err != nil {
			return err
		}
	}
	return nil
}
