package streaming

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agristream/platform/pkg/common/logger"
	"github.com/agristream/platform/pkg/common/models"
	"gorm.io/datatypes"
)

// Status timestamps render like "2018-01-05 15:04:05 UTC".
const statusTimeLayout = "2006-01-02 15:04:05 MST"

type ObjectStore interface {
	GetObject(ctx context.Context, bucket, name string) ([]byte, error)
}

type StatusStore interface {
	Get(ctx context.Context, name string) (*StatusRecord, error)
	Set(ctx context.Context, name string, record StatusRecord) error
	AppendDuplication(ctx context.Context, name, attempt string) error
}

type Warehouse interface {
	BulkInsert(ctx context.Context, rows []TelemetryRow) ([]RowError, error)
	RecordOutcome(ctx context.Context, entry *IngestionLog) error
}

type Notifier interface {
	Success(ctx context.Context, objectName, message string) error
	Error(ctx context.Context, objectName, message string) error
}

// Service orchestrates one ingestion attempt per object-created event:
// duplicate check, fetch, parse/transform, bulk insert, status recording and
// notification. Collaborators are injected once at startup.
type Service struct {
	objects  ObjectStore
	status   StatusStore
	wh       Warehouse
	notifier Notifier
	parser   *Parser
	now      func() time.Time
}

func NewService(objects ObjectStore, status StatusStore, warehouse Warehouse, notifier Notifier, parser *Parser) *Service {
	return &Service{
		objects:  objects,
		status:   status,
		wh:       warehouse,
		notifier: notifier,
		parser:   parser,
		now:      time.Now,
	}
}

// Handle processes a single object-created event. Only a failed status lookup
// or a failed duplicate-path update is returned to the caller (the event
// source redelivers); every failure inside the processing branch is converted
// into a failure record plus an error notification and never propagates.
func (s *Service) Handle(ctx context.Context, event models.ObjectEvent) error {
	record, err := s.status.Get(ctx, event.Name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if record != nil && record.Success {
		return s.handleDuplication(ctx, event)
	}

	rows, err := s.process(ctx, event)
	if err != nil {
		s.handleError(ctx, event, err)
		return nil
	}
	if err := s.handleSuccess(ctx, event, rows); err != nil {
		s.handleError(ctx, event, err)
	}
	return nil
}

// process fetches, parses and loads the object, returning the number of rows
// inserted. The whole file is parsed before the insert is attempted.
func (s *Service) process(ctx context.Context, event models.ObjectEvent) (int, error) {
	content, err := s.objects.GetObject(ctx, event.Bucket, event.Name)
	if err != nil {
		return 0, fmt.Errorf("fetching object: %w", err)
	}

	rows, err := s.parser.Parse(content)
	if err != nil {
		return 0, err
	}

	rowErrors, err := s.wh.BulkInsert(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("bulk insert: %w", err)
	}
	if len(rowErrors) > 0 {
		return 0, BulkInsertError{Errors: rowErrors}
	}

	return len(rows), nil
}

func (s *Service) handleDuplication(ctx context.Context, event models.ObjectEvent) error {
	attempt := s.timestamp()
	if err := s.status.AppendDuplication(ctx, event.Name, attempt); err != nil {
		return err
	}
	logger.Log.WithField("file_name", event.Name).Warnf("duplication attempt streaming file '%s'", event.Name)
	s.audit(ctx, event, OutcomeDuplicate, 0, map[string]interface{}{"attempt": attempt})
	return nil
}

func (s *Service) handleSuccess(ctx context.Context, event models.ObjectEvent, rows int) error {
	message := fmt.Sprintf("File '%s' streamed into the warehouse", event.Name)

	if err := s.status.Set(ctx, event.Name, StatusRecord{Success: true, When: s.timestamp()}); err != nil {
		return fmt.Errorf("recording success status: %w", err)
	}
	if err := s.notifier.Success(ctx, event.Name, message); err != nil {
		return fmt.Errorf("publishing success notification: %w", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"file_name": event.Name,
		"rows":      rows,
	}).Info(message)
	s.audit(ctx, event, OutcomeSuccess, rows, nil)
	return nil
}

func (s *Service) handleError(ctx context.Context, event models.ObjectEvent, cause error) {
	message := fmt.Sprintf("Error streaming file '%s'. Cause: %s", event.Name, cause)

	if err := s.status.Set(ctx, event.Name, StatusRecord{Success: false, ErrorMessage: message, When: s.timestamp()}); err != nil {
		logger.Log.WithError(err).WithField("file_name", event.Name).Error("failed to record failure status")
	}
	if err := s.notifier.Error(ctx, event.Name, message); err != nil {
		logger.Log.WithError(err).WithField("file_name", event.Name).Error("failed to publish error notification")
	}

	logger.Log.WithField("file_name", event.Name).Error(message)
	s.audit(ctx, event, OutcomeFailed, 0, map[string]interface{}{"cause": cause.Error()})
}

func (s *Service) audit(ctx context.Context, event models.ObjectEvent, outcome string, rows int, detail map[string]interface{}) {
	entry := &IngestionLog{
		ObjectName: event.Name,
		Bucket:     event.Bucket,
		Outcome:    outcome,
		Rows:       rows,
	}
	if detail != nil {
		entry.Detail = datatypes.JSONMap(detail)
	}
	if err := s.wh.RecordOutcome(ctx, entry); err != nil {
		logger.Log.WithError(err).WithField("file_name", event.Name).Warn("failed to write ingestion audit entry")
	}
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(statusTimeLayout)
}
