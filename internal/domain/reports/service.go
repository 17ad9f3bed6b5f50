package reports

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"paycore/internal/domain/payroll"
	"paycore/internal/platform/storage"
)

var ErrUnknownFormat = errors.New("format must be xlsx or csv")

type RecordSource interface {
	List(ctx context.Context, filter payroll.RecordFilter) ([]payroll.Record, error)
}

type Service struct {
	records RecordSource
	presets Presets
	files   storage.Store
	now     func() time.Time
}

func NewService(records RecordSource, presets Presets, files storage.Store) *Service {
	if presets == nil {
		presets = DefaultPresets()
	}
	return &Service{records: records, presets: presets, files: files, now: time.Now}
}

type ExportRequest struct {
	Format      string
	Preset      string
	Columns     []string
	PeriodStart *time.Time
	PeriodEnd   *time.Time
}

type Export struct {
	FileName    string
	ContentType string
	Body        []byte
}

func (s *Service) Periods(ctx context.Context) ([]PeriodSummary, error) {
	records, err := s.records.List(ctx, payroll.RecordFilter{})
	if err != nil {
		return nil, err
	}
	return GroupByPeriod(records), nil
}

func (s *Service) Months(ctx context.Context) ([]MonthSummary, error) {
	records, err := s.records.List(ctx, payroll.RecordFilter{})
	if err != nil {
		return nil, err
	}
	return GroupByMonth(records), nil
}

func (s *Service) Overall(ctx context.Context) (Overall, error) {
	records, err := s.records.List(ctx, payroll.RecordFilter{})
	if err != nil {
		return Overall{}, err
	}
	return Summarize(records), nil
}

func (s *Service) Presets() Presets {
	return s.presets
}

func (s *Service) Table(ctx context.Context, req ExportRequest) (Table, error) {
	columns, err := s.presets.Resolve(req.Preset, req.Columns)
	if err != nil {
		return Table{}, err
	}
	records, err := s.records.List(ctx, payroll.RecordFilter{PeriodStart: req.PeriodStart, PeriodEnd: req.PeriodEnd})
	if err != nil {
		return Table{}, err
	}
	return Project(records, columns), nil
}

// Export renders the table as a spreadsheet and archives a copy when file
// storage is configured.
func (s *Service) Export(ctx context.Context, req ExportRequest) (Export, error) {
	if req.Format == "" {
		req.Format = FormatXLSX
	}
	if req.Format != FormatXLSX && req.Format != FormatCSV {
		return Export{}, ErrUnknownFormat
	}
	table, err := s.Table(ctx, req)
	if err != nil {
		return Export{}, err
	}

	var buf bytes.Buffer
	if req.Format == FormatCSV {
		err = WriteCSV(&buf, table)
	} else {
		err = WriteXLSX(&buf, table)
	}
	if err != nil {
		return Export{}, err
	}

	out := Export{
		FileName:    ExportFileName(s.now(), req.Format),
		ContentType: ContentType(req.Format),
		Body:        buf.Bytes(),
	}
	if s.files != nil {
		if _, err := s.files.Put(ctx, "exports/"+out.FileName, out.Body, out.ContentType); err != nil {
			slog.Warn("report export archive failed", "err", err)
		}
	}
	return out, nil
}
