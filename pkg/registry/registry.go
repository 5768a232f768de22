// Package registry owns emergency creation and the volunteer acceptance
// protocol. Status is always derived from the volunteer list: an emergency is
// accepted exactly when at least one volunteer is attached to it.
package registry

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reliefnet/disaster-api/pkg/apperrors"
	"github.com/reliefnet/disaster-api/pkg/models"
	"github.com/reliefnet/disaster-api/pkg/store"
	"go.uber.org/zap"
)

// Registry handles the emergency lifecycle
type Registry struct {
	store  store.EmergencyStore
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// New creates a registry persisting through s
func New(s store.EmergencyStore, logger *zap.Logger) *Registry {
	return &Registry{
		store:  s,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// CreateEmergency files a new pending emergency
func (r *Registry) CreateEmergency(ctx context.Context, title, description, reporter string) (*models.Emergency, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	reporter = strings.TrimSpace(reporter)

	switch {
	case title == "":
		return nil, apperrors.Required("title")
	case description == "":
		return nil, apperrors.Required("description")
	case reporter == "":
		return nil, apperrors.Required("reporter")
	}

	e := &models.Emergency{
		ID:          r.newID(),
		Title:       title,
		Description: description,
		Reporter:    reporter,
		Volunteers:  []string{},
		CreatedAt:   r.now().UTC(),
	}
	e.Normalize()

	if err := r.store.InsertEmergency(ctx, e); err != nil {
		r.logger.Error("create emergency failed", zap.Error(err))
		return nil, err
	}

	r.logger.Info("emergency created",
		zap.String("emergency_id", e.ID),
		zap.String("reporter", e.Reporter))
	return e, nil
}

// ListEmergencies returns every emergency, oldest first. Never nil.
func (r *Registry) ListEmergencies(ctx context.Context) ([]models.Emergency, error) {
	list, err := r.store.ListEmergencies(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Emergency{}
	}
	return list, nil
}

// GetEmergency returns a single emergency by id
func (r *Registry) GetEmergency(ctx context.Context, id string) (*models.Emergency, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.Required("emergencyId")
	}
	return r.store.GetEmergency(ctx, id)
}

// AcceptEmergency records volunteerName as responding to the emergency.
// A volunteer can accept a given emergency at most once.
func (r *Registry) AcceptEmergency(ctx context.Context, id, volunteerName string) (*models.Emergency, error) {
	id, volunteerName, err := volunteerArgs(id, volunteerName)
	if err != nil {
		return nil, err
	}

	e, err := r.store.UpdateEmergency(ctx, id, func(e *models.Emergency) error {
		if e.HasVolunteer(volunteerName) {
			return &apperrors.AlreadyAcceptedError{EmergencyID: id, Volunteer: volunteerName}
		}
		e.Volunteers = append(e.Volunteers, volunteerName)
		e.Normalize()
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("emergency accepted",
		zap.String("emergency_id", id),
		zap.String("volunteer", volunteerName),
		zap.Int("volunteers", len(e.Volunteers)))
	return e, nil
}

// DeclineEmergency withdraws volunteerName from the emergency. Removing the
// last volunteer returns it to pending.
func (r *Registry) DeclineEmergency(ctx context.Context, id, volunteerName string) (*models.Emergency, error) {
	id, volunteerName, err := volunteerArgs(id, volunteerName)
	if err != nil {
		return nil, err
	}

	e, err := r.store.UpdateEmergency(ctx, id, func(e *models.Emergency) error {
		if !e.RemoveVolunteer(volunteerName) {
			return &apperrors.NotAcceptedError{EmergencyID: id, Volunteer: volunteerName}
		}
		e.Normalize()
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("emergency declined",
		zap.String("emergency_id", id),
		zap.String("volunteer", volunteerName),
		zap.String("status", string(e.Status)))
	return e, nil
}

func volunteerArgs(id, volunteerName string) (string, string, error) {
	id = strings.TrimSpace(id)
	volunteerName = strings.TrimSpace(volunteerName)
	if id == "" {
		return "", "", apperrors.Required("emergencyId")
	}
	if volunteerName == "" {
		return "", "", apperrors.Required("volunteerName")
	}
	return id, volunteerName, nil
}
