package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rpmontada/equinos/internal/domain/models"
	"github.com/rpmontada/equinos/internal/service/flow"
	"github.com/rpmontada/equinos/pkg/clients/records"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

const (
	replyYes = "sim"
	replyNo  = "nao"

	scheduleUsage = "Uso: /escala <equino> <horas> <local>"
	deleteUsage   = "Uso: /excluir <escala>"
	monthUsage    = "Uso: /carga [AAAA-MM]"
)

const helpText = "Comandos disponíveis:\n" +
	"/lembretes - vacinações e vermifugações próximas\n" +
	"/carga [AAAA-MM] - carga horária do mês\n" +
	"/escala <equino> <horas> <local> - registra uma escala\n" +
	"/excluir <escala> - exclui uma escala"

// WorkloadReader provides the monthly carga horária.
type WorkloadReader interface {
	Monthly(ctx context.Context, yearMonth string) (models.MonthlyWorkload, error)
}

// ReminderDigest renders the pending reminders.
type ReminderDigest interface {
	Digest(ctx context.Context) (string, bool, error)
}

// ScheduleWriter creates and removes schedule records.
type ScheduleWriter interface {
	CreateSchedule(ctx context.Context, record models.ScheduleRecord) (models.ScheduleRecord, error)
	DeleteSchedule(ctx context.Context, id string) error
}

// Dispatcher executes parsed commands for a sender.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (models.Reply, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	workload  WorkloadReader
	reminders ReminderDigest
	schedules ScheduleWriter
	sessions  *SessionManager
	logger    *zap.Logger
	now       func() time.Time
}

// Option customises the dispatcher.
type Option func(*Service)

// WithClock injects the clock that picks the current month and the day of
// new schedules. Its location decides where the day starts.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a command dispatcher.
func NewService(workload WorkloadReader, reminders ReminderDigest, schedules ScheduleWriter, sessions *SessionManager, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessions == nil {
		sessions = NewSessionManager(flow.RealScheduler{}, 0, 0, nil)
	}
	s := &Service{
		workload:  workload,
		reminders: reminders,
		schedules: schedules,
		sessions:  sessions,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleCommand routes the command and builds the reply for the sender.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (models.Reply, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	session := s.sessions.acquire(sender)
	defer s.sessions.release(sender, session)

	switch cmd.Type {
	case models.CommandReminders:
		return s.handleReminders(ctx)
	case models.CommandWorkload:
		return s.handleWorkload(ctx, cmd)
	case models.CommandSchedule:
		return s.handleSchedule(ctx, session, cmd)
	case models.CommandDelete:
		return s.handleDelete(session, cmd)
	case models.CommandYes:
		return s.handleAnswer(ctx, session, true)
	case models.CommandNo:
		return s.handleAnswer(ctx, session, false)
	default:
		return models.Reply{Text: helpText}, nil
	}
}

func (s *Service) handleReminders(ctx context.Context) (models.Reply, error) {
	message, ok, err := s.reminders.Digest(ctx)
	if err != nil {
		return models.Reply{}, err
	}
	if !ok {
		return models.Reply{Text: "Nenhuma vacinação ou vermifugação próxima."}, nil
	}
	return models.Reply{Text: message}, nil
}

func (s *Service) handleWorkload(ctx context.Context, cmd models.Command) (models.Reply, error) {
	month := s.now().Format(models.MonthLayout)
	if len(cmd.Args) > 0 {
		month = cmd.Args[0]
	}
	if _, ok := models.ParseMonth(month); !ok {
		return models.Reply{Text: monthUsage}, ErrInvalidArguments
	}

	workload, err := s.workload.Monthly(ctx, month)
	if err != nil {
		return models.Reply{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Carga horária %s: %sh", workload.Month, formatHours(workload.Total))
	fmt.Fprintf(&b, "\nDestaques:")
	for _, line := range workload.Highlights {
		fmt.Fprintf(&b, "\n- %s", line)
	}
	return models.Reply{Text: b.String()}, nil
}

func (s *Service) handleSchedule(ctx context.Context, session *Session, cmd models.Command) (models.Reply, error) {
	record, err := s.buildScheduleRecord(cmd)
	if err != nil {
		return models.Reply{Text: scheduleUsage}, err
	}

	if session.Schedule.State() == flow.RepeatPrompting {
		if err := session.Schedule.Answer(true); err != nil {
			return models.Reply{}, err
		}
	}
	if err := session.Schedule.Start(); err != nil {
		return models.Reply{}, err
	}

	var created models.ScheduleRecord
	err = session.Schedule.Save(ctx, func(ctx context.Context) error {
		saved, err := s.schedules.CreateSchedule(ctx, record)
		created = saved
		return err
	})
	if err != nil {
		return models.Reply{}, fmt.Errorf("create schedule: %w", err)
	}

	text := fmt.Sprintf("Escala %s registrada: %s, %sh em %s.\nAdicionar outra?", created.ID, record.HorseID, formatHours(float64(record.WorkHours)), record.WorkLocation)
	return models.Reply{Text: text, Buttons: []string{replyYes, replyNo}}, nil
}

func (s *Service) handleDelete(session *Session, cmd models.Command) (models.Reply, error) {
	if len(cmd.Args) != 1 {
		return models.Reply{Text: deleteUsage}, ErrInvalidArguments
	}
	target := cmd.Args[0]

	if err := session.Delete.Request(target); err != nil {
		if errors.Is(err, flow.ErrFlowBusy) {
			text := fmt.Sprintf("A exclusão da escala %s aguarda confirmação. Responda sim ou nao.", session.Delete.Target())
			return models.Reply{Text: text, Buttons: []string{replyYes, replyNo}}, nil
		}
		return models.Reply{}, err
	}

	text := fmt.Sprintf("Confirma a exclusão da escala %s?", target)
	return models.Reply{Text: text, Buttons: []string{replyYes, replyNo}}, nil
}

// handleAnswer resolves whichever flow is waiting on a yes/no. A pending
// deletion takes precedence over the add-another prompt.
func (s *Service) handleAnswer(ctx context.Context, session *Session, yes bool) (models.Reply, error) {
	if session.Delete.State() == flow.ConfirmPending {
		return s.resolveDelete(ctx, session, yes)
	}
	if session.Schedule.State() == flow.RepeatPrompting {
		if err := session.Schedule.Answer(yes); err != nil {
			return models.Reply{}, err
		}
		if yes {
			return models.Reply{Text: "Envie a próxima escala. " + scheduleUsage}, nil
		}
		return models.Reply{Text: fmt.Sprintf("Pronto. %d escala(s) registrada(s).", session.Schedule.Saved())}, nil
	}
	return models.Reply{Text: "Nada aguardando resposta."}, nil
}

func (s *Service) resolveDelete(ctx context.Context, session *Session, yes bool) (models.Reply, error) {
	target := session.Delete.Target()

	if !yes {
		if err := session.Delete.Cancel(); err != nil {
			return models.Reply{}, err
		}
		return models.Reply{Text: "Exclusão cancelada."}, nil
	}

	err := session.Delete.Confirm(ctx, func(ctx context.Context) error {
		return s.schedules.DeleteSchedule(ctx, target)
	})
	switch {
	case err == nil:
		return models.Reply{Text: fmt.Sprintf("Escala %s excluída.", target)}, nil
	case errors.Is(err, records.ErrNotFound):
		return models.Reply{Text: fmt.Sprintf("Escala %s não encontrada.", target)}, nil
	case errors.Is(err, flow.ErrFlowBusy):
		return models.Reply{Text: "Exclusão em andamento."}, nil
	default:
		return models.Reply{}, fmt.Errorf("delete schedule %s: %w", target, err)
	}
}

func (s *Service) buildScheduleRecord(cmd models.Command) (models.ScheduleRecord, error) {
	if len(cmd.Args) < 3 {
		return models.ScheduleRecord{}, ErrInvalidArguments
	}

	hours := models.ParseHours(cmd.Args[1])
	if hours <= 0 {
		return models.ScheduleRecord{}, ErrInvalidArguments
	}

	return models.ScheduleRecord{
		HorseID:      models.ID(cmd.Args[0]),
		Date:         s.now().Format(models.DayLayout),
		WorkHours:    hours,
		WorkLocation: strings.Join(cmd.Args[2:], " "),
	}, nil
}

func formatHours(hours float64) string {
	return decimal.NewFromFloat(hours).Round(2).String()
}
