package table

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kalpit-muncho/dashboard-core/internal/models"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/muncho"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/optimistic"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/priority"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/status"
)

// PartitionPrefix scopes dirty-tracker keys: tables keep floor order per
// section.
const PartitionPrefix = "tables/"

var (
	errTableNotFound = errors.New("table not found")
	errNumberTaken   = errors.New("table number is already used in this section")
)

func partitionKey(section string) string { return PartitionPrefix + section }

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

// List returns one section's tables in priority order, or every table when
// section is empty.
func (s *Service) List(section string) ([]models.TableModel, error) {
	tx := s.db.Order("section ASC, priority ASC")
	if section != "" {
		tx = tx.Where("section = ?", section)
	}
	var tables []models.TableModel
	err := tx.Find(&tables).Error
	return tables, err
}

func (s *Service) GetByID(id string) (*models.TableModel, error) {
	var t models.TableModel
	if err := s.db.First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errTableNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *Service) Create(ctx context.Context, dto *CreateTableDTO) (*models.TableModel, optimistic.Result, error) {
	section := strings.TrimSpace(dto.Section)
	if taken, err := s.numberTaken(section, dto.Number, ""); err != nil {
		return nil, optimistic.Result{}, err
	} else if taken {
		return nil, optimistic.Result{}, errNumberTaken
	}
	siblings, err := s.List(section)
	if err != nil {
		return nil, optimistic.Result{}, err
	}
	capacity := dto.Capacity
	if capacity == 0 {
		capacity = 2
	}
	t := &models.TableModel{
		Number:   dto.Number,
		Section:  section,
		Capacity: capacity,
		QRSlug:   uuid.New().String(),
		IsActive: true,
		Priority: priority.Next(siblings, func(x models.TableModel) int { return x.Priority }),
	}

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "table/create",
		Title:  "create table",
		Apply:  func() error { return s.db.Create(t).Error },
		Revert: func() error { return s.db.Unscoped().Delete(t).Error },
		Remote: s.api.Call(http.MethodPost, "/tables", map[string]interface{}{
			"id":       t.ID,
			"number":   t.Number,
			"section":  t.Section,
			"capacity": t.Capacity,
			"qr_slug":  t.QRSlug,
			"priority": t.Priority,
		}),
	})
	return t, res, nil
}

func (s *Service) Update(ctx context.Context, id string, dto *UpdateTableDTO) (*models.TableModel, optimistic.Result, error) {
	t, err := s.GetByID(id)
	if err != nil {
		return nil, optimistic.Result{}, err
	}
	prev := *t

	number, section := t.Number, t.Section
	if dto.Number != nil {
		number = *dto.Number
	}
	if dto.Section != nil {
		section = strings.TrimSpace(*dto.Section)
	}
	if number != t.Number || section != t.Section {
		if taken, err := s.numberTaken(section, number, id); err != nil {
			return nil, optimistic.Result{}, err
		} else if taken {
			return nil, optimistic.Result{}, errNumberTaken
		}
	}

	changes := map[string]interface{}{}
	if dto.Number != nil {
		changes["number"] = number
	}
	if dto.Section != nil {
		changes["section"] = section
	}
	if dto.Capacity != nil {
		changes["capacity"] = *dto.Capacity
	}
	if len(changes) == 0 {
		return t, optimistic.Result{OK: true}, nil
	}

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "table/" + id,
		Title:  "update table",
		Apply:  func() error { return s.db.Model(t).Updates(changes).Error },
		Revert: func() error {
			return s.db.Model(&models.TableModel{}).Where("id = ?", id).Updates(map[string]interface{}{
				"number":   prev.Number,
				"section":  prev.Section,
				"capacity": prev.Capacity,
			}).Error
		},
		Remote: s.api.Call(http.MethodPatch, "/tables/"+id, changes),
	})
	return t, res, nil
}

func (s *Service) Delete(ctx context.Context, id string) (optimistic.Result, error) {
	t, err := s.GetByID(id)
	if err != nil {
		return optimistic.Result{}, err
	}
	siblings, err := s.List(t.Section)
	if err != nil {
		return optimistic.Result{}, err
	}
	baseline := priority.Updates(siblings,
		func(x models.TableModel) string { return x.ID },
		func(x models.TableModel) int { return x.Priority })
	section := t.Section

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "table/" + id,
		Title:  "delete table",
		Apply: func() error {
			return s.db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Delete(&models.TableModel{}, "id = ?", id).Error; err != nil {
					return err
				}
				var rest []models.TableModel
				if err := tx.Where("section = ?", section).Order("priority ASC").Find(&rest).Error; err != nil {
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
				if err := tx.Unscoped().Model(&models.TableModel{}).
					Where("id = ?", id).Update("deleted_at", nil).Error; err != nil {
					return err
				}
				return restoreOrder(tx, baseline)
			})
		},
		Remote: s.api.Call(http.MethodDelete, "/tables/"+id, nil),
	})
	return res, nil
}

// Reorder moves a table within its section; local until SaveOrder commits.
func (s *Service) Reorder(dto *ReorderDTO) (bool, error) {
	tables, err := s.List(dto.Section)
	if err != nil {
		return false, err
	}
	ptrs := make([]*models.TableModel, len(tables))
	for i := range tables {
		ptrs[i] = &tables[i]
	}
	baseline := priority.Updates(ptrs,
		func(t *models.TableModel) string { return t.ID },
		func(t *models.TableModel) int { return t.Priority })

	if !priority.Move(ptrs, func(t *models.TableModel) string { return t.ID }, dto.FromID, dto.ToID) {
		return false, nil
	}
	priority.Renumber(ptrs, func(t *models.TableModel, p int) { t.Priority = p })

	updates := priority.Updates(ptrs,
		func(t *models.TableModel) string { return t.ID },
		func(t *models.TableModel) int { return t.Priority })
	if err := s.db.Transaction(func(tx *gorm.DB) error { return restoreOrder(tx, updates) }); err != nil {
		return false, err
	}
	s.tracker.MarkDirty(partitionKey(dto.Section), baseline)
	return true, nil
}

func (s *Service) SaveOrder(ctx context.Context, section string) optimistic.Result {
	key := partitionKey(section)
	if !s.tracker.IsDirty(key) {
		return optimistic.Result{OK: true, Message: "nothing to save"}
	}
	tables, err := s.List(section)
	if err != nil {
		return optimistic.Result{Message: err.Error(), Err: err}
	}
	updates := priority.Updates(tables,
		func(t models.TableModel) string { return t.ID },
		func(t models.TableModel) int { return t.Priority })
	baseline := s.tracker.Baseline(key)

	res := s.mut.Apply(ctx, optimistic.Mutation{
		Entity: "table/order/" + section,
		Title:  "save table order",
		Revert: func() error {
			return s.db.Transaction(func(tx *gorm.DB) error { return restoreOrder(tx, baseline) })
		},
		Remote: s.api.Call(http.MethodPut, "/tables/order",
			map[string]interface{}{"section": section, "order": updates}),
	})
	if res.OK || res.Reverted {
		s.tracker.Clear(key)
	}
	return res
}

func (s *Service) SetActive(ctx context.Context, id string, v bool) optimistic.Result {
	return s.engine.Set(ctx, tableFlags{db: s.db}, "table state", id, status.ContextGlobal, v,
		s.api.Call(http.MethodPatch, "/tables/"+id+"/active", map[string]interface{}{"is_active": v}))
}

func (s *Service) numberTaken(section string, number int, excludeID string) (bool, error) {
	tx := s.db.Model(&models.TableModel{}).Where("section = ? AND number = ?", section, number)
	if excludeID != "" {
		tx = tx.Where("id <> ?", excludeID)
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

type tableFlags struct {
	db *gorm.DB
}

func (f tableFlags) Flag(entityID, _ string) (bool, error) {
	var t models.TableModel
	if err := f.db.First(&t, "id = ?", entityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, errTableNotFound
		}
		return false, err
	}
	return t.IsActive, nil
}

func (f tableFlags) SetFlag(entityID, _ string, v bool) error {
	return f.db.Model(&models.TableModel{}).Where("id = ?", entityID).Update("is_active", v).Error
}

func restoreOrder(tx *gorm.DB, updates []priority.Update) error {
	for _, u := range updates {
		if err := tx.Model(&models.TableModel{}).Where("id = ?", u.ID).
			Update("priority", u.Priority).Error; err != nil {
			return err
		}
	}
	return nil
}
