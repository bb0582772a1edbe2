package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"

	"taskbot/internal/auth"
	"taskbot/internal/command"
	"taskbot/internal/metrics"
	"taskbot/internal/model"
	"taskbot/internal/repository"
)

// MsgFailure is sent when a command fails for reasons the user cannot fix.
const MsgFailure = "Something went wrong, please try again later."

const (
	headerList    = "Open tasks (%d):"
	greeting      = "Hi! Available commands:"
	outcomeOK     = "ok"
	outcomeDenied = "denied"
	outcomeBad    = "invalid"
	outcomeFailed = "failed"
)

// Menu is the fixed command list attached to the /start reply.
var Menu = []MenuItem{
	{Label: "/list", Data: "list"},
	{Label: "/done <task id>", Data: "done"},
	{Label: "/open <task id>", Data: "open"},
	{Label: "/task <task id>", Data: "task"},
	{Label: "/create", Data: "create"},
}

// Sender identifies who wrote a message.
type Sender struct {
	Username   string
	FirstName  string
	LastName   string
	TelegramID int64
}

// Message is an inbound chat message.
type Message struct {
	Text   string
	ChatID int64
	From   Sender
}

// Dispatcher executes parsed commands and builds the reply.
type Dispatcher struct {
	tasks   *TaskService
	users   UserStore
	guard   *auth.Guard
	log     zerolog.Logger
	metrics *metrics.Metrics
}

func NewDispatcher(tasks *TaskService, users UserStore, guard *auth.Guard, log zerolog.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		tasks:   tasks,
		users:   users,
		guard:   guard,
		log:     log.With().Str("component", "dispatcher").Logger(),
		metrics: m,
	}
}

// Handle runs one message to completion. handled is false when the text is
// not a known command. An empty reply with handled set means silent denial.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) (reply Reply, handled bool) {
	name := "unknown"
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Str("command", name).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("command handler panicked")
			d.metrics.Command(name, outcomeFailed)
			reply, handled = textReply(msg.ChatID, MsgFailure), true
		}
	}()

	cmd, err := command.Parse(msg.Text)
	if cmd == nil && err == nil {
		return Reply{}, false
	}
	if cmd != nil {
		name = cmd.Name()
	} else {
		name = failedCommand(err)
	}

	log := d.log.With().
		Str("command", name).
		Str("username", msg.From.Username).
		Int64("chat_id", msg.ChatID).
		Logger()

	if err := d.guard.Authorize(name, msg.From.Username); err != nil {
		log.Warn().Err(err).Msg("command denied")
		d.metrics.Command(name, outcomeDenied)
		return Reply{}, true
	}

	if err != nil {
		var parseErr *command.ParseError
		var argErr *command.ArgumentError
		switch {
		case errors.As(err, &parseErr):
			log.WithLevel(parseErr.Level).Err(err).Msg("cannot parse command")
			d.metrics.Command(name, outcomeBad)
			return textReply(msg.ChatID, parseErr.Message), true
		case errors.As(err, &argErr):
			log.Warn().Err(err).Msg("invalid command argument")
			d.metrics.Command(name, outcomeBad)
			return textReply(msg.ChatID, argErr.UserMessage()), true
		default:
			log.Error().Err(err).Msg("unexpected parse failure")
			d.metrics.Command(name, outcomeFailed)
			return textReply(msg.ChatID, MsgFailure), true
		}
	}

	log.Info().Msg("received command")

	switch c := cmd.(type) {
	case command.Start:
		reply, err = d.start(ctx, log, msg)
	case command.List:
		reply, err = d.list(ctx, msg.ChatID)
	case command.Done:
		reply, err = d.setDone(ctx, msg.ChatID, c.ID, true)
	case command.Open:
		reply, err = d.setDone(ctx, msg.ChatID, c.ID, false)
	case command.Show:
		reply, err = d.show(ctx, msg.ChatID, c.ID)
	case command.Create:
		reply, err = d.create(ctx, msg.ChatID, c)
	default:
		err = fmt.Errorf("unhandled command %T", cmd)
	}
	if err != nil {
		return d.failure(log, name, msg.ChatID, err), true
	}

	d.metrics.Command(name, outcomeOK)
	return reply, true
}

func (d *Dispatcher) start(ctx context.Context, log zerolog.Logger, msg Message) (Reply, error) {
	if msg.From.Username == "" {
		log.Warn().Int64("telegram_id", msg.From.TelegramID).Msg("sender has no username, not registering")
	} else {
		user, created, err := d.users.Register(ctx, model.User{
			Username:   msg.From.Username,
			FirstName:  msg.From.FirstName,
			LastName:   msg.From.LastName,
			TelegramID: msg.From.TelegramID,
			ChatID:     msg.ChatID,
		})
		if err != nil {
			return Reply{}, err
		}
		if created {
			log.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")
		}
	}

	return Reply{
		ChatID: msg.ChatID,
		Parts:  []Part{{Text: greeting, Menu: Menu}},
	}, nil
}

func (d *Dispatcher) list(ctx context.Context, chatID int64) (Reply, error) {
	lines, err := d.tasks.OpenSummary(ctx, headerList)
	if err != nil {
		return Reply{}, err
	}
	return textReply(chatID, lines...), nil
}

func (d *Dispatcher) setDone(ctx context.Context, chatID int64, id uint, done bool) (Reply, error) {
	if err := d.tasks.SetDone(ctx, id, done); err != nil {
		return Reply{}, err
	}
	state := "opened"
	if done {
		state = "closed"
	}
	d.log.Info().Uint("task_id", id).Bool("done", done).Msg("task updated")
	return textReply(chatID, fmt.Sprintf("Task %d %s.", id, state)), nil
}

func (d *Dispatcher) show(ctx context.Context, chatID int64, id uint) (Reply, error) {
	task, err := d.tasks.GetTask(ctx, id)
	if err != nil {
		return Reply{}, err
	}
	return textReply(chatID, task.String(), d.tasks.Details(task)), nil
}

func (d *Dispatcher) create(ctx context.Context, chatID int64, c command.Create) (Reply, error) {
	id, err := d.tasks.CreateTask(ctx, c.Title, c.Description)
	if err != nil {
		return Reply{}, err
	}
	d.log.Info().Uint("task_id", id).Msg("task created")
	return textReply(chatID, fmt.Sprintf("Task %d created.", id)), nil
}

// failure converts a store error into the reply the user sees.
func (d *Dispatcher) failure(log zerolog.Logger, name string, chatID int64, err error) Reply {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		log.Warn().Err(err).Msg("task not found")
		d.metrics.Command(name, outcomeBad)
		return textReply(chatID, command.MsgInvalidTaskID)
	case errors.Is(err, repository.ErrValidation):
		log.Warn().Err(err).Msg("invalid task data")
		d.metrics.Command(name, outcomeBad)
		return textReply(chatID, command.MsgInvalidTaskData)
	default:
		log.Error().Err(err).Msg("command failed")
		d.metrics.Command(name, outcomeFailed)
		return textReply(chatID, MsgFailure)
	}
}

func failedCommand(err error) string {
	var parseErr *command.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Command
	}
	var argErr *command.ArgumentError
	if errors.As(err, &argErr) {
		return argErr.Command
	}
	return "unknown"
}
