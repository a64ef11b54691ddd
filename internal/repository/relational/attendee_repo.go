package relational

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/organizador-eventos/backend/internal/models"
	"github.com/organizador-eventos/backend/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type attendeeRepository struct {
	db *gorm.DB
}

func NewAttendeeRepository(db *gorm.DB) repository.AttendeeRepository {
	return &attendeeRepository{db: db}
}

func byPosition(db *gorm.DB) *gorm.DB { return db.Order("posicion ASC, id ASC") }

// withProfile batches every child collection, including the event and ticket
// type behind each attendance, into one query per relation.
func withProfile(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Dietary", byID).
		Preload("Interests", byID).
		Preload("Attributes", byPosition).
		Preload("Attendances", byID).
		Preload("Attendances.Event").
		Preload("Attendances.TicketType")
}

func (r *attendeeRepository) List(ctx context.Context) ([]models.Attendee, error) {
	var recs []attendeeRecord
	if err := withProfile(r.db.WithContext(ctx)).Order("nombre ASC, id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list attendees: %w", classify(err))
	}
	out := make([]models.Attendee, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toModel())
	}
	return out, nil
}

func (r *attendeeRepository) FindByID(ctx context.Context, id string) (*models.Attendee, error) {
	attendeeID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.find(r.db.WithContext(ctx), attendeeID)
}

func (r *attendeeRepository) find(db *gorm.DB, id uint) (*models.Attendee, error) {
	var rec attendeeRecord
	if err := withProfile(db).First(&rec, id).Error; err != nil {
		return nil, classify(err)
	}
	a := rec.toModel()
	return &a, nil
}

// Create inserts the attendee row and its preference and attribute rows in a
// single transaction.
func (r *attendeeRepository) Create(ctx context.Context, attendee *models.Attendee) error {
	rec := toAttendeeRecord(attendee)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return fmt.Errorf("insert attendee: %w", err)
		}
		return insertProfile(tx, rec.ID, attendee.Preferences.Dietary, attendee.Preferences.Interests, attendee.Attributes)
	})
	if err != nil {
		return classify(err)
	}
	return r.reload(ctx, rec.ID, attendee)
}

func (r *attendeeRepository) Update(ctx context.Context, attendee *models.Attendee, opts repository.AttendeeUpdate) error {
	attendeeID, err := parseID(attendee.ID)
	if err != nil {
		return err
	}
	rec := toAttendeeRecord(attendee)
	rec.UpdatedAt = time.Now()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current attendeeRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&current, attendeeID).Error; err != nil {
			return err
		}

		interests := attendee.Preferences.Interests
		if opts.MergeInterests {
			var stored []string
			if err := tx.Model(&interestRecord{}).
				Where("asistente_id = ?", attendeeID).
				Order("id ASC").
				Pluck("interes", &stored).Error; err != nil {
				return fmt.Errorf("read interests: %w", err)
			}
			interests = models.MergeInterests(stored, interests)
		}

		columns := []any{"email", "telefono", "documento", "empresa", "cargo", "updated_at"}
		if !opts.KeepAccessibility {
			columns = append(columns, "accesibilidad")
		}
		if !opts.KeepStatus {
			columns = append(columns, "estado")
		}
		if err := tx.Model(&attendeeRecord{ID: attendeeID}).
			Select("nombre", columns...).
			Updates(&rec).Error; err != nil {
			return fmt.Errorf("update attendee: %w", err)
		}

		if err := replaceDietary(tx, attendeeID, attendee.Preferences.Dietary); err != nil {
			return err
		}
		if err := replaceInterests(tx, attendeeID, interests); err != nil {
			return err
		}
		return replaceAttributes(tx, attendeeID, attendee.Attributes)
	})
	if err != nil {
		return classify(err)
	}
	return r.reload(ctx, attendeeID, attendee)
}

func (r *attendeeRepository) Delete(ctx context.Context, id string) error {
	attendeeID, err := parseID(id)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Delete(&attendeeRecord{}, attendeeID)
	if res.Error != nil {
		return fmt.Errorf("delete attendee: %w", classify(res.Error))
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddAttendance inserts one row. Concurrent appends to the same attendee
// never overwrite each other.
func (r *attendeeRepository) AddAttendance(ctx context.Context, attendeeID string, attendance *models.Attendance) error {
	aid, err := parseID(attendeeID)
	if err != nil {
		return err
	}
	eid, err := parseID(attendance.EventID)
	if err != nil {
		return repository.ErrInvalidReference
	}
	rec := attendanceRecord{
		AttendeeID:  aid,
		EventID:     eid,
		PurchasedAt: attendance.PurchasedAt,
		FinalPrice:  attendance.FinalPrice,
		Status:      string(attendance.Status),
	}
	if attendance.TicketTypeID != "" {
		tid, err := parseID(attendance.TicketTypeID)
		if err != nil {
			return repository.ErrInvalidReference
		}
		rec.TicketTypeID = &tid
	}

	db := r.db.WithContext(ctx)
	err = db.Transaction(func(tx *gorm.DB) error {
		// Share locks keep the attendee and the event from being deleted
		// before the insert while letting other appends run.
		if err := shareLock(tx, &attendeeRecord{}, aid); err != nil {
			return err
		}
		if err := shareLock(tx, &eventRecord{}, eid); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: event %d does not exist", repository.ErrInvalidReference, eid)
			}
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return fmt.Errorf("insert attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return classify(err)
	}

	var stored attendanceRecord
	if err := db.Preload("Event").Preload("TicketType").First(&stored, rec.ID).Error; err != nil {
		return classify(err)
	}
	*attendance = stored.toModel()
	return nil
}

func shareLock(tx *gorm.DB, model any, id uint) error {
	return tx.Model(model).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Select("id").
		Where("id = ?", id).
		Take(model).Error
}

func (r *attendeeRepository) reload(ctx context.Context, id uint, dst *models.Attendee) error {
	fresh, err := r.find(r.db.WithContext(ctx), id)
	if err != nil {
		return err
	}
	*dst = *fresh
	return nil
}

func insertProfile(tx *gorm.DB, attendeeID uint, dietary, interests []string, attrs models.Attributes) error {
	if err := insertDietary(tx, attendeeID, dietary); err != nil {
		return err
	}
	if err := insertInterests(tx, attendeeID, interests); err != nil {
		return err
	}
	return insertAttributes(tx, attendeeID, attrs)
}

func insertDietary(tx *gorm.DB, attendeeID uint, dietary []string) error {
	if len(dietary) == 0 {
		return nil
	}
	rows := make([]dietaryRecord, 0, len(dietary))
	for _, d := range dietary {
		rows = append(rows, dietaryRecord{AttendeeID: attendeeID, Preference: d})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert dietary preferences: %w", err)
	}
	return nil
}

func insertInterests(tx *gorm.DB, attendeeID uint, interests []string) error {
	if len(interests) == 0 {
		return nil
	}
	rows := make([]interestRecord, 0, len(interests))
	for _, in := range interests {
		rows = append(rows, interestRecord{AttendeeID: attendeeID, Interest: in})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert interests: %w", err)
	}
	return nil
}

// insertAttributes writes one row per pair; posicion records the map order.
func insertAttributes(tx *gorm.DB, attendeeID uint, attrs models.Attributes) error {
	if len(attrs) == 0 {
		return nil
	}
	rows := make([]attributeRecord, 0, len(attrs))
	for i, kv := range attrs {
		rows = append(rows, attributeRecord{AttendeeID: attendeeID, Position: i, Key: kv.Key, Value: kv.Value})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert attributes: %w", err)
	}
	return nil
}

func replaceDietary(tx *gorm.DB, attendeeID uint, dietary []string) error {
	if err := tx.Where("asistente_id = ?", attendeeID).Delete(&dietaryRecord{}).Error; err != nil {
		return fmt.Errorf("delete dietary preferences: %w", err)
	}
	return insertDietary(tx, attendeeID, dietary)
}

func replaceInterests(tx *gorm.DB, attendeeID uint, interests []string) error {
	if err := tx.Where("asistente_id = ?", attendeeID).Delete(&interestRecord{}).Error; err != nil {
		return fmt.Errorf("delete interests: %w", err)
	}
	return insertInterests(tx, attendeeID, interests)
}

func replaceAttributes(tx *gorm.DB, attendeeID uint, attrs models.Attributes) error {
	if err := tx.Where("asistente_id = ?", attendeeID).Delete(&attributeRecord{}).Error; err != nil {
		return fmt.Errorf("delete attributes: %w", err)
	}
	return insertAttributes(tx, attendeeID, attrs)
}
