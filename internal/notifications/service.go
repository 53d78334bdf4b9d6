package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	pkgerrors "github.com/adriancampa/storeloom-backend/pkg/errors"
	"github.com/adriancampa/storeloom-backend/pkg/logger"
)

// Service defines notification operations. Push delivery over an external
// channel is out of scope; rows here back the in-app inbox.
type Service interface {
	Broadcast(ctx context.Context, input BroadcastInput) (*models.Notification, error)
	Notify(ctx context.Context, input NotifyInput) (*models.Notification, error)
	ListForUser(ctx context.Context, tenantID, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, tenantID, userID, notificationID uuid.UUID) error
}

// BroadcastInput sends a message to everyone in a tenant.
type BroadcastInput struct {
	TenantID uuid.UUID
	Title    string
	Body     string
}

// NotifyInput sends a direct message to one user.
type NotifyInput struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Title    string
	Body     string
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds a notifications service with the required dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

func (s *service) Broadcast(ctx context.Context, input BroadcastInput) (*models.Notification, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}

	created, err := s.repo.Create(ctx, &models.Notification{
		TenantID: input.TenantID,
		Title:    strings.TrimSpace(input.Title),
		Body:     input.Body,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create broadcast")
	}
	return created, nil
}

func (s *service) Notify(ctx context.Context, input NotifyInput) (*models.Notification, error) {
	if input.TenantID == uuid.Nil || input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id and user id required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}

	userID := input.UserID
	created, err := s.repo.Create(ctx, &models.Notification{
		TenantID: input.TenantID,
		UserID:   &userID,
		Title:    strings.TrimSpace(input.Title),
		Body:     input.Body,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return created, nil
}

func (s *service) ListForUser(ctx context.Context, tenantID, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	if tenantID == uuid.Nil || userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id and user id required")
	}
	rows, err := s.repo.ListForUser(ctx, tenantID, userID, unreadOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return rows, nil
}

func (s *service) MarkRead(ctx context.Context, tenantID, userID, notificationID uuid.UUID) error {
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	affected, err := s.repo.MarkRead(ctx, notificationID, userID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark read")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found or already read")
	}
	return nil
}
