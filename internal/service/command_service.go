package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
)

// Command names understood by the dispatcher.
const (
	CommandDownloadCSVReport = "downloadCSVMeasurementsReport"
	CommandDownloadPDFReport = "downloadPDFMeasurementsReport"
	CommandClearMeasurements = "clearMeasurements"
)

// CommandFunc runs one named command against its raw JSON arguments.
type CommandFunc func(ctx context.Context, payload json.RawMessage) (interface{}, error)

// CommandService dispatches named commands.
type CommandService struct {
	mu       sync.RWMutex
	commands map[string]CommandFunc
	logger   *zap.Logger
}

// NewCommandService registers the measurement commands.
func NewCommandService(measurements *MeasurementService, logger *zap.Logger) *CommandService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CommandService{commands: make(map[string]CommandFunc), logger: logger}
	if measurements == nil {
		return s
	}

	s.Register(CommandDownloadCSVReport, func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
		var args models.MeasurementReportPayload
		if err := decodeArgs(payload, &args); err != nil {
			return nil, err
		}
		return measurements.ExportReport(ctx, args, models.ReportFormatCSV)
	})
	s.Register(CommandDownloadPDFReport, func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
		var args models.MeasurementReportPayload
		if err := decodeArgs(payload, &args); err != nil {
			return nil, err
		}
		return measurements.ExportReport(ctx, args, models.ReportFormatPDF)
	})
	s.Register(CommandClearMeasurements, func(ctx context.Context, payload json.RawMessage) (interface{}, error) {
		var args models.ClearMeasurementsPayload
		if err := decodeArgs(payload, &args); err != nil {
			return nil, err
		}
		return measurements.Clear(ctx, args)
	})
	return s
}

func decodeArgs(payload json.RawMessage, dest interface{}) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid command payload")
	}
	return nil
}

// Register adds or replaces a command.
func (s *CommandService) Register(name string, fn CommandFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands[name] = fn
}

// Names lists the registered commands in order.
func (s *CommandService) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes the named command.
func (s *CommandService) Run(ctx context.Context, name string, payload json.RawMessage) (interface{}, error) {
	s.mu.RLock()
	fn, ok := s.commands[name]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnknownCommand, fmt.Sprintf("unknown command %q", name))
	}

	result, err := fn(ctx, payload)
	if err != nil {
		s.logger.Warn("command failed", zap.String("command", name), zap.Error(err))
		return nil, err
	}
	s.logger.Debug("command executed", zap.String("command", name))
	return result, nil
}
