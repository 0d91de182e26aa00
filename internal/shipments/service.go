package shipments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/tienda-backend/internal/orders"
	"github.com/angelmondragon/tienda-backend/pkg/db/models"
	"github.com/angelmondragon/tienda-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/tienda-backend/pkg/errors"
	"github.com/angelmondragon/tienda-backend/pkg/logger"
	"github.com/angelmondragon/tienda-backend/pkg/metrics"
	"gorm.io/gorm"
)

const maxNoteLength = 2000

// Bounds for the best-effort outbound calls made while recording an update.
var (
	uploadTimeout = 15 * time.Second
	pushTimeout   = 10 * time.Second
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// uploader stores proof photos and returns their public URL.
type uploader interface {
	Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error)
}

// RecordInput is one courier update.
type RecordInput struct {
	OrderID   uint64
	NewStatus string
	Note      string
	Photo     *Photo
	ActorID   uint64
}

type RecordResult struct {
	OrderID  uint64               `json:"venta_id"`
	Status   enums.ShipmentStatus `json:"estado_envio"`
	PhotoURL string               `json:"foto_url,omitempty"`
	Notified bool                 `json:"notificado"`
}

// Service records shipment progress.
type Service interface {
	RecordEvent(ctx context.Context, input RecordInput) (*RecordResult, error)
}

type service struct {
	repo     orders.Repository
	tx       txRunner
	uploader uploader
	notifier Notifier
	metrics  *metrics.OrderMetrics
	logg     *logger.Logger
}

// NewService wires the pipeline. uploader may be nil, in which case photos are dropped.
func NewService(repo orders.Repository, tx txRunner, up uploader, notifier Notifier, m *metrics.OrderMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, tx: tx, uploader: up, notifier: notifier, metrics: m, logg: logg}, nil
}

// RecordEvent overwrites the order's shipment status (last write wins), appends
// the event and its history row, and notifies the owner the first time the
// order reaches en_route or delivered. Photo and push failures only warn.
func (s *service) RecordEvent(ctx context.Context, input RecordInput) (*RecordResult, error) {
	if input.OrderID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	status := enums.NormalizeShipmentStatus(input.NewStatus)
	if status == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nuevoEstado is required").
			WithDetails(map[string]any{"field": "nuevoEstado"})
	}
	note := strings.TrimSpace(input.Note)
	if len(note) > maxNoteLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "descripcion too long").
			WithDetails(map[string]any{"field": "descripcion"})
	}

	order, err := s.repo.FindOrder(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	ctx = s.logg.WithFields(s.logg.WithOrderID(ctx, order.ID), map[string]any{
		"shipment_status": status,
		"courier_id":      input.ActorID,
	})

	photoURL := s.storePhoto(ctx, order.ID, input.Photo)

	var occurrences int64
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.SetShipmentStatus(ctx, order.ID, status); err != nil {
			return err
		}
		event := &models.ShipmentEvent{
			OrderID: order.ID,
			Status:  status.String(),
			Note:    note,
			ActorID: input.ActorID,
		}
		if photoURL != "" {
			event.PhotoURL = &photoURL
		}
		if err := repo.CreateShipmentEvent(ctx, event); err != nil {
			return err
		}
		if err := repo.AppendShipmentHistory(ctx, &models.ShipmentStatusHistory{
			OrderID:        order.ID,
			PreviousStatus: order.ShipmentStatus.String(),
			NewStatus:      status.String(),
			Actor:          strconv.FormatUint(input.ActorID, 10),
		}); err != nil {
			return err
		}
		occurrences, err = repo.CountShipmentEvents(ctx, order.ID, status.String())
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record shipment event")
	}

	s.metrics.IncShipmentEvent(status.String(), status.Notifies() || status == enums.ShipmentStatusPending)
	s.logg.Info(ctx, "shipment.event.recorded")

	result := &RecordResult{OrderID: order.ID, Status: status, PhotoURL: photoURL}
	if occurrences == 1 && status.Notifies() {
		if err := s.notifier.Notify(ctx, order.ID, order.UserID, status); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "shipment.notify.failed")
		} else {
			result.Notified = true
		}
	}
	return result, nil
}

func (s *service) storePhoto(ctx context.Context, orderID uint64, photo *Photo) string {
	if photo == nil || photo.Body == nil {
		return ""
	}
	if s.uploader == nil {
		s.logg.Warn(ctx, "shipment.photo.storage_disabled")
		return ""
	}
	mediaType, err := photoMediaType(photo.ContentType)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "shipment.photo.rejected")
		return ""
	}
	uploadCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()
	url, err := s.uploader.Upload(uploadCtx, photoObjectName(orderID, photo.Filename, mediaType), mediaType, photo.Body)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "shipment.photo.upload_failed")
		return ""
	}
	return url
}
