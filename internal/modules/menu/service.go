package menu

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/kalpit-muncho/dashboard-core/internal/models"
	"github.com/kalpit-muncho/dashboard-core/internal/modules/category"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/muncho"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/optimistic"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/priority"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/status"
)

// Partition is the dirty-tracker key for the menu group order. All groups of
// the restaurant share one partition.
const Partition = "menu_groups"

var errGroupNotFound = errors.New("menu group not found")

type Service struct {
	db      *gorm.DB
	api     *muncho.Client
	mut     *optimistic.Mutator
	tracker *priority.Tracker
	engine  *status.Engine
	cats    *category.Service
}

func NewService(db *gorm.DB, api *muncho.Client, mut *optimistic.Mutator, tracker *priority.Tracker, engine *status.Engine, cats *category.Service) *Service {
	return &Service{db: db, api: api, mut: mut, tracker: tracker, engine: engine, cats: cats}
}

// List returns all menu groups in priority order.
func (s *Service) List() ([]models.MenuGroupModel, error) {
	var groups []models.MenuGroupModel
	err := s.db.Order("priority ASC").Find(&groups).Error
	return groups, err
}

func (s *Service) GetByID(id string) (*models.MenuGroupModel, error) {
	var g models.MenuGroupModel
	if err := s.db.First(&g, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

// Create inserts a group with the next priority for the partition and pushes
// it upstream. A rejected push removes the local row again.
func (s *Service) Create(ctx context.Context, dto *CreateGroupDTO) (*models.MenuGroupModel, optimistic.Result) {
	groups, err := s.List()
	if err != nil {
		return nil, optimistic.Result{Message: err.Error(), Err: err}
	}
	g := &models.MenuGroupModel{
		Name:     strings.TrimSpace(dto.Name),
		Priority: priority.Next(groups, func(x models.MenuGroupModel) int { return x.Priority }),
		InStock:  true,
		IsActive: true,
	}

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "menu-group/create",
		Title:  "create menu group",
		Apply:  func() error { return s.db.Create(g).Error },
		Revert: func() error { return s.db.Unscoped().Delete(g).Error },
		Remote: s.api.Call(http.MethodPost, "/menu/groups", map[string]interface{}{
			"id":       g.ID,
			"name":     g.Name,
			"priority": g.Priority,
		}),
	})
	if !res.OK {
		return nil, res
	}
	return g, res
}

// Rename updates the group name optimistically.
func (s *Service) Rename(ctx context.Context, id string, dto *UpdateGroupDTO) (*models.MenuGroupModel, optimistic.Result, error) {
	g, err := s.GetByID(id)
	if err != nil {
		return nil, optimistic.Result{}, err
	}
	prev := g.Name
	name := strings.TrimSpace(dto.Name)

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "menu-group/" + id,
		Title:  "rename menu group",
		Apply: func() error {
			g.Name = name
			return s.db.Model(g).Update("name", name).Error
		},
		Revert: func() error {
			g.Name = prev
			return s.db.Model(g).Update("name", prev).Error
		},
		Remote: s.api.Call(http.MethodPatch, "/menu/groups/"+id, map[string]interface{}{"name": name}),
	})
	return g, res, nil
}

// Delete removes the group and renumbers the survivors so the partition stays
// dense. A rejected push restores the row and the old numbering.
func (s *Service) Delete(ctx context.Context, id string) (optimistic.Result, error) {
	groups, err := s.List()
	if err != nil {
		return optimistic.Result{}, err
	}
	var target *models.MenuGroupModel
	for i := range groups {
		if groups[i].ID == id {
			target = &groups[i]
			break
		}
	}
	if target == nil {
		return optimistic.Result{}, errGroupNotFound
	}
	baseline := priority.Updates(groups,
		func(g models.MenuGroupModel) string { return g.ID },
		func(g models.MenuGroupModel) int { return g.Priority })

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "menu-group/" + id,
		Title:  "delete menu group",
		Apply: func() error {
			return s.db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Delete(&models.MenuGroupModel{}, "id = ?", id).Error; err != nil {
					return err
				}
				var rest []models.MenuGroupModel
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
				if err := tx.Unscoped().Model(&models.MenuGroupModel{}).
					Where("id = ?", id).Update("deleted_at", nil).Error; err != nil {
					return err
				}
				return restoreOrder(tx, baseline)
			})
		},
		Remote: s.api.Call(http.MethodDelete, "/menu/groups/"+id, nil),
	})
	return res, nil
}

// Reorder moves one group onto another's position and renumbers the whole
// partition. The change stays local until SaveOrder commits it.
func (s *Service) Reorder(dto *ReorderDTO) (bool, error) {
	groups, err := s.List()
	if err != nil {
		return false, err
	}
	ptrs := make([]*models.MenuGroupModel, len(groups))
	for i := range groups {
		ptrs[i] = &groups[i]
	}
	baseline := priority.Updates(ptrs,
		func(g *models.MenuGroupModel) string { return g.ID },
		func(g *models.MenuGroupModel) int { return g.Priority })

	if !priority.Move(ptrs, func(g *models.MenuGroupModel) string { return g.ID }, dto.FromID, dto.ToID) {
		return false, nil
	}
	priority.Renumber(ptrs, func(g *models.MenuGroupModel, p int) { g.Priority = p })

	updates := priority.Updates(ptrs,
		func(g *models.MenuGroupModel) string { return g.ID },
		func(g *models.MenuGroupModel) int { return g.Priority })
	if err := s.db.Transaction(func(tx *gorm.DB) error { return restoreOrder(tx, updates) }); err != nil {
		return false, err
	}
	s.tracker.MarkDirty(Partition, baseline)
	return true, nil
}

// SaveOrder commits the group order upstream when the partition is dirty.
// On rejection the baseline order is restored and the partition marked clean.
func (s *Service) SaveOrder(ctx context.Context) optimistic.Result {
	if !s.tracker.IsDirty(Partition) {
		return optimistic.Result{OK: true, Message: "nothing to save"}
	}
	groups, err := s.List()
	if err != nil {
		return optimistic.Result{Message: err.Error(), Err: err}
	}
	updates := priority.Updates(groups,
		func(g models.MenuGroupModel) string { return g.ID },
		func(g models.MenuGroupModel) int { return g.Priority })
	baseline := s.tracker.Baseline(Partition)

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "menu-group/order",
		Title:  "save menu order",
		Revert: func() error {
			return s.db.Transaction(func(tx *gorm.DB) error { return restoreOrder(tx, baseline) })
		},
		Remote: s.api.Call(http.MethodPut, "/menu/groups/order", map[string]interface{}{"order": updates}),
	})
	if res.OK || res.Reverted {
		s.tracker.Clear(Partition)
	}
	return res
}

// layoutSave is one independently committed partition within a combined save.
type layoutSave struct {
	key   string
	label string
	run   func(ctx context.Context) optimistic.Result
}

// SaveLayout commits the group order plus every dirty category partition as
// independent upstream calls. The combined save reports failure when any
// sub-save fails, but succeeded sub-saves stay committed.
func (s *Service) SaveLayout(ctx context.Context) LayoutReport {
	var saves []layoutSave

	if s.tracker.IsDirty(Partition) {
		saves = append(saves, layoutSave{key: Partition, label: "menu groups", run: s.SaveOrder})
	}
	for _, groupID := range s.cats.DirtyGroups() {
		gid := groupID
		saves = append(saves, layoutSave{
			key:   category.PartitionPrefix + gid,
			label: "categories " + gid,
			run: func(ctx context.Context) optimistic.Result {
				return s.cats.SaveOrder(ctx, gid)
			},
		})
	}
	return runLayoutSaves(ctx, saves)
}

// runLayoutSaves issues every sub-save regardless of earlier outcomes, so a
// failure in one partition never rolls back or skips another.
func runLayoutSaves(ctx context.Context, saves []layoutSave) LayoutReport {
	var report LayoutReport
	for _, sv := range saves {
		res := sv.run(ctx)
		if res.OK {
			report.Saved = append(report.Saved, sv.key)
		} else {
			report.Failed = append(report.Failed, sv.key)
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", sv.label, res.Message))
		}
	}
	return report
}

// SetStock toggles the stock flag; IsActive is owned by the enable/disable
// flow and left alone here.
func (s *Service) SetStock(ctx context.Context, id string, v bool) optimistic.Result {
	return s.engine.Set(ctx, groupFlags{db: s.db, column: "in_stock"}, "menu group stock", id, status.ContextGlobal, v,
		s.api.Call(http.MethodPatch, "/menu/groups/"+id+"/stock", map[string]interface{}{"in_stock": v}))
}

func (s *Service) SetActive(ctx context.Context, id string, v bool) optimistic.Result {
	return s.engine.Set(ctx, groupFlags{db: s.db, column: "is_active"}, "menu group state", id, status.ContextGlobal, v,
		s.api.Call(http.MethodPatch, "/menu/groups/"+id+"/active", map[string]interface{}{"is_active": v}))
}

type groupFlags struct {
	db     *gorm.DB
	column string
}

func (f groupFlags) Flag(entityID, _ string) (bool, error) {
	var g models.MenuGroupModel
	if err := f.db.First(&g, "id = ?", entityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, errGroupNotFound
		}
		return false, err
	}
	if f.column == "is_active" {
		return g.IsActive, nil
	}
	return g.InStock, nil
}

func (f groupFlags) SetFlag(entityID, _ string, v bool) error {
	return f.db.Model(&models.MenuGroupModel{}).Where("id = ?", entityID).Update(f.column, v).Error
}

func restoreOrder(tx *gorm.DB, updates []priority.Update) error {
	for _, u := range updates {
		if err := tx.Model(&models.MenuGroupModel{}).Where("id = ?", u.ID).
			Update("priority", u.Priority).Error; err != nil {
			return err
		}
	}
	return nil
}
