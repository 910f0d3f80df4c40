package streaming

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/agristream/platform/pkg/common/logger"
	"github.com/agristream/platform/pkg/common/models"
	"github.com/agristream/platform/pkg/objectstore"
	"github.com/agristream/platform/pkg/schema"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type fakeObjectStore struct {
	objects map[string][]byte
	calls   int
}

func (f *fakeObjectStore) GetObject(ctx context.Context, bucket, name string) ([]byte, error) {
	f.calls++
	content, ok := f.objects[bucket+"/"+name]
	if !ok {
		return nil, objectstore.ErrObjectNotFound
	}
	return content, nil
}

type fakeStatusStore struct {
	records map[string]StatusRecord
	getErr  error
	sets    int
}

func (f *fakeStatusStore) Get(ctx context.Context, name string) (*StatusRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	record, ok := f.records[name]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (f *fakeStatusStore) Set(ctx context.Context, name string, record StatusRecord) error {
	f.sets++
	f.records[name] = record
	return nil
}

func (f *fakeStatusStore) AppendDuplication(ctx context.Context, name, attempt string) error {
	record, ok := f.records[name]
	if !ok {
		return ErrNotFound
	}
	record.DuplicationAttempts = append([]string{attempt}, record.DuplicationAttempts...)
	f.records[name] = record
	return nil
}

type fakeWarehouse struct {
	batches   [][]TelemetryRow
	rowErrors []RowError
	audits    []*IngestionLog
}

func (f *fakeWarehouse) BulkInsert(ctx context.Context, rows []TelemetryRow) ([]RowError, error) {
	if len(f.rowErrors) > 0 {
		return f.rowErrors, nil
	}
	f.batches = append(f.batches, rows)
	return nil, nil
}

func (f *fakeWarehouse) RecordOutcome(ctx context.Context, entry *IngestionLog) error {
	f.audits = append(f.audits, entry)
	return nil
}

type fakeNotifier struct {
	successes []string
	failures  []string
	fileNames []string
}

func (f *fakeNotifier) Success(ctx context.Context, objectName, message string) error {
	f.successes = append(f.successes, message)
	f.fileNames = append(f.fileNames, objectName)
	return nil
}

func (f *fakeNotifier) Error(ctx context.Context, objectName, message string) error {
	f.failures = append(f.failures, message)
	f.fileNames = append(f.fileNames, objectName)
	return nil
}

type fixture struct {
	objects  *fakeObjectStore
	status   *fakeStatusStore
	wh       *fakeWarehouse
	notifier *fakeNotifier
	service  *Service
}

func newFixture() *fixture {
	f := &fixture{
		objects:  &fakeObjectStore{objects: map[string][]byte{}},
		status:   &fakeStatusStore{records: map[string]StatusRecord{}},
		wh:       &fakeWarehouse{},
		notifier: &fakeNotifier{},
	}
	f.service = NewService(f.objects, f.status, f.wh, f.notifier, NewParser(schema.Default()))
	f.service.now = func() time.Time {
		return time.Date(2018, time.March, 1, 12, 0, 0, 0, time.UTC)
	}
	return f
}

func TestFirstIngestionSucceeds(t *testing.T) {
	f := newFixture()
	f.objects.objects["telemetry/tractor_42.csv"] = sampleFile(
		sampleRow("Jan 5, 2018 3:04:05 PM"),
		sampleRow("Jan 5, 2018 3:04:06 PM"),
	)

	event := models.ObjectEvent{Bucket: "telemetry", Name: "tractor_42.csv"}
	if err := f.service.Handle(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.wh.batches) != 1 || len(f.wh.batches[0]) != 2 {
		t.Fatalf("expected one batch of 2 rows, got %v", f.wh.batches)
	}

	record := f.status.records["tractor_42.csv"]
	if !record.Success {
		t.Fatalf("expected success record, got %+v", record)
	}
	if record.When != "2018-03-01 12:00:00 UTC" {
		t.Fatalf("unexpected timestamp %q", record.When)
	}

	if len(f.notifier.successes) != 1 || len(f.notifier.failures) != 0 {
		t.Fatalf("expected exactly one success notification, got %+v", f.notifier)
	}
	if f.notifier.fileNames[0] != "tractor_42.csv" {
		t.Fatalf("expected file_name metadata, got %q", f.notifier.fileNames[0])
	}
}

func TestDuplicateTriggerSkipsProcessing(t *testing.T) {
	f := newFixture()
	f.status.records["tractor_42.csv"] = StatusRecord{
		Success:             true,
		When:                "2018-02-28 09:00:00 UTC",
		DuplicationAttempts: []string{"2018-02-28 10:00:00 UTC"},
	}

	event := models.ObjectEvent{Bucket: "telemetry", Name: "tractor_42.csv"}
	if err := f.service.Handle(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.objects.calls != 0 {
		t.Fatal("expected object store to stay untouched on the duplicate path")
	}
	if len(f.wh.batches) != 0 {
		t.Fatal("expected no warehouse insert on the duplicate path")
	}
	if len(f.notifier.successes)+len(f.notifier.failures) != 0 {
		t.Fatal("expected no notification on the duplicate path")
	}

	record := f.status.records["tractor_42.csv"]
	if len(record.DuplicationAttempts) != 2 {
		t.Fatalf("expected one appended attempt, got %v", record.DuplicationAttempts)
	}
	if record.DuplicationAttempts[0] != "2018-03-01 12:00:00 UTC" {
		t.Fatalf("expected newest attempt first, got %v", record.DuplicationAttempts)
	}
	if !record.Success || record.When != "2018-02-28 09:00:00 UTC" {
		t.Fatalf("expected terminal fields untouched, got %+v", record)
	}
}

func TestMalformedRowFailsBatch(t *testing.T) {
	f := newFixture()
	f.objects.objects["telemetry/bad.csv"] = sampleFile(
		sampleRow("Jan 5, 2018 3:04:05 PM"),
		"not;enough;fields",
	)

	event := models.ObjectEvent{Bucket: "telemetry", Name: "bad.csv"}
	if err := f.service.Handle(context.Background(), event); err != nil {
		t.Fatalf("processing failures must not propagate, got %v", err)
	}

	if len(f.wh.batches) != 0 {
		t.Fatal("expected no warehouse insert when any row is malformed")
	}

	record := f.status.records["bad.csv"]
	if record.Success {
		t.Fatalf("expected failure record, got %+v", record)
	}
	if !strings.Contains(record.ErrorMessage, "bad.csv") {
		t.Fatalf("expected error message to name the object, got %q", record.ErrorMessage)
	}

	if len(f.notifier.failures) != 1 || len(f.notifier.successes) != 0 {
		t.Fatalf("expected exactly one error notification, got %+v", f.notifier)
	}
}

func TestMissingObjectTakesFailurePath(t *testing.T) {
	f := newFixture()

	event := models.ObjectEvent{Bucket: "telemetry", Name: "ghost.csv"}
	if err := f.service.Handle(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record := f.status.records["ghost.csv"]
	if record.Success {
		t.Fatalf("expected failure record, got %+v", record)
	}
	if !strings.Contains(record.ErrorMessage, "object not found") {
		t.Fatalf("expected not-found cause in message, got %q", record.ErrorMessage)
	}
}

func TestFailurePathReplacesRecord(t *testing.T) {
	f := newFixture()

	event := models.ObjectEvent{Bucket: "telemetry", Name: "flaky.csv"}
	for i := 0; i < 2; i++ {
		if err := f.service.Handle(context.Background(), event); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	record := f.status.records["flaky.csv"]
	if record.Success || len(record.DuplicationAttempts) != 0 {
		t.Fatalf("expected fresh failure record with no accumulation, got %+v", record)
	}
	if f.status.sets != 2 {
		t.Fatalf("expected two full replacements, got %d", f.status.sets)
	}
	if len(f.notifier.failures) != 2 {
		t.Fatalf("expected two independent error notifications, got %d", len(f.notifier.failures))
	}
}

func TestRowErrorsConvertToFailure(t *testing.T) {
	f := newFixture()
	f.objects.objects["telemetry/rows.csv"] = sampleFile(sampleRow("Jan 5, 2018 3:04:05 PM"))
	f.wh.rowErrors = []RowError{{Index: 0, Message: "value too long"}}

	event := models.ObjectEvent{Bucket: "telemetry", Name: "rows.csv"}
	if err := f.service.Handle(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record := f.status.records["rows.csv"]
	if record.Success {
		t.Fatalf("expected failure record, got %+v", record)
	}
	if !strings.Contains(record.ErrorMessage, "value too long") {
		t.Fatalf("expected row error detail in message, got %q", record.ErrorMessage)
	}
	if len(f.notifier.failures) != 1 {
		t.Fatalf("expected one error notification, got %d", len(f.notifier.failures))
	}
}

func TestStatusLookupFaultPropagates(t *testing.T) {
	f := newFixture()
	f.status.getErr = errors.New("status store unavailable")

	event := models.ObjectEvent{Bucket: "telemetry", Name: "tractor_42.csv"}
	err := f.service.Handle(context.Background(), event)
	if err == nil {
		t.Fatal("expected lookup fault to propagate")
	}

	if f.objects.calls != 0 || len(f.wh.batches) != 0 {
		t.Fatal("expected no side effects when the lookup fails")
	}
	if len(f.notifier.successes)+len(f.notifier.failures) != 0 {
		t.Fatal("expected no notification when the lookup fails")
	}
}

func TestRepeatAfterSuccessEndToEnd(t *testing.T) {
	f := newFixture()
	f.objects.objects["telemetry/tractor_42.csv"] = sampleFile(
		sampleRow("Jan 5, 2018 3:04:05 PM"),
		sampleRow("Jan 5, 2018 3:04:06 PM"),
	)

	event := models.ObjectEvent{Bucket: "telemetry", Name: "tractor_42.csv"}
	if err := f.service.Handle(context.Background(), event); err != nil {
		t.Fatalf("unexpected error on first trigger: %v", err)
	}
	if err := f.service.Handle(context.Background(), event); err != nil {
		t.Fatalf("unexpected error on repeat trigger: %v", err)
	}

	if len(f.wh.batches) != 1 {
		t.Fatalf("expected a single warehouse insert across both triggers, got %d", len(f.wh.batches))
	}
	if len(f.notifier.successes) != 1 {
		t.Fatalf("expected a single success notification, got %d", len(f.notifier.successes))
	}

	record := f.status.records["tractor_42.csv"]
	if !record.Success || len(record.DuplicationAttempts) != 1 {
		t.Fatalf("expected success record with one duplication attempt, got %+v", record)
	}
}
