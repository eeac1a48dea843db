package tasks

import "go.uber.org/zap"

// Presenter receives busy state, progress and notifications from the orchestrator.
// Calls always happen on the coordinator.
type Presenter interface {
	SetBusy(busy bool, inFlight int)
	ReportProgress(label string, fraction float64)
	Notify(title string, message string)
}

type noopPresenter struct{}

func (noopPresenter) SetBusy(bool, int)              {}
func (noopPresenter) ReportProgress(string, float64) {}
func (noopPresenter) Notify(string, string)          {}

// LoggingPresenter reports everything through a zap logger. Busy and progress updates
// are debug-level; notifications are warnings.
type LoggingPresenter struct {
	logger *zap.Logger
}

// NewLoggingPresenter returns a presenter writing to logger.
func NewLoggingPresenter(logger *zap.Logger) *LoggingPresenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingPresenter{logger: logger}
}

// SetBusy logs busy state transitions.
func (presenter *LoggingPresenter) SetBusy(busy bool, inFlight int) {
	presenter.logger.Debug("busy state", zap.Bool("busy", busy), zap.Int("in_flight", inFlight))
}

// ReportProgress logs the current pipeline step.
func (presenter *LoggingPresenter) ReportProgress(label string, fraction float64) {
	presenter.logger.Debug(label, zap.Float64("progress", fraction))
}

// Notify logs a user-facing notification.
func (presenter *LoggingPresenter) Notify(title string, message string) {
	presenter.logger.Warn(title, zap.String("detail", message))
}

var (
	_ Presenter = noopPresenter{}
	_ Presenter = (*LoggingPresenter)(nil)
)
