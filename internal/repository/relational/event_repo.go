package relational

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/organizador-eventos/backend/internal/models"
	"github.com/organizador-eventos/backend/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

func byID(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }

// withChildren preloads ticket types (with their sold counters) and
// promotions. Each collection is fetched with one IN query for all parents.
func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("TicketTypes", byID).
		Preload("TicketTypes.Sales").
		Preload("Promotions", byID)
}

func (r *eventRepository) List(ctx context.Context) ([]models.Event, error) {
	var recs []eventRecord
	if err := withChildren(r.db.WithContext(ctx)).Order("fecha ASC, id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", classify(err))
	}

	type attendeeCount struct {
		EventID uint
		Total   int64
	}
	var counts []attendeeCount
	if err := r.db.WithContext(ctx).
		Model(&attendanceRecord{}).
		Select("evento_id AS event_id, COUNT(id) AS total").
		Group("evento_id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("count attendees: %w", classify(err))
	}
	byEvent := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byEvent[c.EventID] = c.Total
	}

	events := make([]models.Event, 0, len(recs))
	for i := range recs {
		e := recs[i].toModel()
		attendees := byEvent[recs[i].ID]
		var capacity int64
		for _, t := range recs[i].TicketTypes {
			capacity += int64(t.Quantity)
		}
		e.TotalAttendees = &attendees
		e.TotalTicketCapacity = &capacity
		events = append(events, e)
	}
	return events, nil
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	eventID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.find(r.db.WithContext(ctx), eventID)
}

func (r *eventRepository) find(db *gorm.DB, id uint) (*models.Event, error) {
	var rec eventRecord
	if err := withChildren(db).First(&rec, id).Error; err != nil {
		return nil, classify(err)
	}
	e := rec.toModel()
	return &e, nil
}

// Create inserts the event row, then every ticket type with its sold
// counter, then every promotion, all in one transaction.
func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	rec := toEventRecord(event)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		if err := insertTicketTypes(tx, rec.ID, event.TicketTypes); err != nil {
			return err
		}
		return insertPromotions(tx, rec.ID, event.Promotions)
	})
	if err != nil {
		return classify(err)
	}
	return r.reload(ctx, rec.ID, event)
}

func (r *eventRepository) Replace(ctx context.Context, event *models.Event) error {
	eventID, err := parseID(event.ID)
	if err != nil {
		return err
	}
	rec := toEventRecord(event)
	rec.UpdatedAt = time.Now()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockEvent(tx, eventID); err != nil {
			return err
		}
		if err := tx.Model(&eventRecord{ID: eventID}).
			Select("nombre", "descripcion", "fecha", "lugar", "capacidad", "categoria",
				"organizador_nombre", "organizador_contacto", "organizador_email", "updated_at").
			Updates(&rec).Error; err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		if err := replaceTicketTypes(tx, eventID, event.TicketTypes); err != nil {
			return err
		}
		return replacePromotions(tx, eventID, event.Promotions)
	})
	if err != nil {
		return classify(err)
	}
	return r.reload(ctx, eventID, event)
}

// Delete removes the event; ticket types, sold counters, promotions and
// attendances referencing it go with it through ON DELETE CASCADE.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	eventID, err := parseID(id)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Delete(&eventRecord{}, eventID)
	if res.Error != nil {
		return fmt.Errorf("delete event: %w", classify(res.Error))
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *eventRepository) AddTicketType(ctx context.Context, eventID string, ticket *models.TicketType) error {
	id, err := parseID(eventID)
	if err != nil {
		return err
	}
	var rec ticketTypeRecord
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockEvent(tx, id); err != nil {
			return err
		}
		rec = toTicketTypeRecord(id, ticket)
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return fmt.Errorf("insert ticket type: %w", err)
		}
		rec.Sales = ticketSalesRecord{TicketTypeID: rec.ID, Sold: ticket.Sold}
		if err := tx.Create(&rec.Sales).Error; err != nil {
			return fmt.Errorf("insert ticket sales: %w", err)
		}
		return nil
	})
	if err != nil {
		return classify(err)
	}
	*ticket = rec.toModel()
	if ticket.Characteristics == nil {
		ticket.Characteristics = map[string]any{}
	}
	return nil
}

func (r *eventRepository) AddPromotion(ctx context.Context, eventID string, promo *models.Promotion) error {
	id, err := parseID(eventID)
	if err != nil {
		return err
	}
	var rec promotionRecord
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockEvent(tx, id); err != nil {
			return err
		}
		rec = toPromotionRecord(id, promo)
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert promotion: %w", err)
		}
		return nil
	})
	if err != nil {
		return classify(err)
	}
	*promo = rec.toModel()
	if promo.Conditions == nil {
		promo.Conditions = map[string]any{}
	}
	return nil
}

type ticketListingRow struct {
	ID              uint
	EventID         uint
	Label           string
	Price           float64
	Quantity        int
	Sold            int
	Characteristics *string
	EventName       string
}

func (r *eventRepository) ListTicketTypes(ctx context.Context) ([]models.TicketListing, error) {
	var rows []ticketListingRow
	err := r.db.WithContext(ctx).
		Table("tipos_ticket AS tt").
		Select(`tt.id AS id, tt.evento_id AS event_id, tt.tipo AS label, tt.precio AS price,
			tt.cantidad AS quantity, COALESCE(t.vendidos, 0) AS sold,
			tt.caracteristicas AS characteristics, e.nombre AS event_name`).
		Joins("JOIN eventos AS e ON e.id = tt.evento_id").
		Joins("LEFT JOIN tickets AS t ON t.tipo_ticket_id = tt.id").
		Order("tt.evento_id ASC, tt.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list ticket types: %w", classify(err))
	}

	out := make([]models.TicketListing, 0, len(rows))
	for _, row := range rows {
		characteristics, err := decodeObject(row.Characteristics)
		if err != nil {
			return nil, fmt.Errorf("decode caracteristicas of ticket type %d: %w", row.ID, err)
		}
		out = append(out, models.TicketListing{
			TicketType: models.TicketType{
				ID:              formatID(row.ID),
				EventID:         formatID(row.EventID),
				Label:           row.Label,
				Price:           row.Price,
				Quantity:        row.Quantity,
				Sold:            row.Sold,
				Characteristics: characteristics,
			},
			EventName: row.EventName,
		})
	}
	return out, nil
}

type promotionListingRow struct {
	promotionRecord
	EventName string
}

func (r *eventRepository) ListPromotions(ctx context.Context) ([]models.PromotionListing, error) {
	var rows []promotionListingRow
	err := r.db.WithContext(ctx).
		Model(&promotionRecord{}).
		Select("promociones.*, e.nombre AS event_name").
		Joins("JOIN eventos AS e ON e.id = promociones.evento_id").
		Order("promociones.evento_id ASC, promociones.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", classify(err))
	}

	out := make([]models.PromotionListing, 0, len(rows))
	for i := range rows {
		p := rows[i].toModel()
		if p.Conditions == nil {
			p.Conditions = map[string]any{}
		}
		out = append(out, models.PromotionListing{Promotion: p, EventName: rows[i].EventName})
	}
	return out, nil
}

func (r *eventRepository) IncrementSold(ctx context.Context, eventID, ticketTypeID string, n int) error {
	eid, err := parseID(eventID)
	if err != nil {
		return err
	}
	tid, err := parseID(ticketTypeID)
	if err != nil {
		return err
	}
	db := r.db.WithContext(ctx)
	res := db.Model(&ticketSalesRecord{}).
		Where("tipo_ticket_id = ?", tid).
		Where("tipo_ticket_id IN (?)", db.Model(&ticketTypeRecord{}).Select("id").Where("evento_id = ?", eid)).
		UpdateColumn("vendidos", gorm.Expr("vendidos + ?", n))
	if res.Error != nil {
		return fmt.Errorf("increment sold: %w", classify(res.Error))
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *eventRepository) reload(ctx context.Context, id uint, dst *models.Event) error {
	fresh, err := r.find(r.db.WithContext(ctx), id)
	if err != nil {
		return err
	}
	*dst = *fresh
	return nil
}

// lockEvent takes a row lock on the event for the rest of the transaction.
func lockEvent(tx *gorm.DB, id uint) error {
	var rec eventRecord
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&rec, id).Error; err != nil {
		return err
	}
	return nil
}

func insertTicketTypes(tx *gorm.DB, eventID uint, tickets []models.TicketType) error {
	for i := range tickets {
		rec := toTicketTypeRecord(eventID, &tickets[i])
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return fmt.Errorf("insert ticket type %q: %w", tickets[i].Label, err)
		}
		sales := ticketSalesRecord{TicketTypeID: rec.ID, Sold: tickets[i].Sold}
		if err := tx.Create(&sales).Error; err != nil {
			return fmt.Errorf("insert ticket sales %q: %w", tickets[i].Label, err)
		}
	}
	return nil
}

func insertPromotions(tx *gorm.DB, eventID uint, promos []models.Promotion) error {
	for i := range promos {
		rec := toPromotionRecord(eventID, &promos[i])
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert promotion %q: %w", promos[i].Code, err)
		}
	}
	return nil
}

// replaceTicketTypes swaps the event's ticket types for the given set. Sold
// counters of removed ticket types are dropped with them.
func replaceTicketTypes(tx *gorm.DB, eventID uint, tickets []models.TicketType) error {
	scoped := tx.Model(&ticketTypeRecord{}).Select("id").Where("evento_id = ?", eventID)
	if err := tx.Where("tipo_ticket_id IN (?)", scoped).Delete(&ticketSalesRecord{}).Error; err != nil {
		return fmt.Errorf("delete ticket sales: %w", err)
	}
	if err := tx.Where("evento_id = ?", eventID).Delete(&ticketTypeRecord{}).Error; err != nil {
		return fmt.Errorf("delete ticket types: %w", err)
	}
	return insertTicketTypes(tx, eventID, tickets)
}

func replacePromotions(tx *gorm.DB, eventID uint, promos []models.Promotion) error {
	if err := tx.Where("evento_id = ?", eventID).Delete(&promotionRecord{}).Error; err != nil {
		return fmt.Errorf("delete promotions: %w", err)
	}
	return insertPromotions(tx, eventID, promos)
}

func decodeObject(raw *string) (map[string]any, error) {
	out := map[string]any{}
	if raw == nil || *raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(*raw), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
