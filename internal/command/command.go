// Package command turns chat text into typed bot commands.
package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Command is one of Start, List, Done, Open, Show or Create.
type Command interface {
	// Name is the command word without the leading slash.
	Name() string
	isCommand()
}

type Start struct{}

type List struct{}

// Done closes a task.
type Done struct{ ID uint }

// Open reopens a task.
type Open struct{ ID uint }

// Show prints a task with its details (/task).
type Show struct{ ID uint }

// Create adds a task. Description is every token after the title.
type Create struct {
	Title       string
	Description string
}

func (Start) Name() string  { return "start" }
func (List) Name() string   { return "list" }
func (Done) Name() string   { return "done" }
func (Open) Name() string   { return "open" }
func (Show) Name() string   { return "task" }
func (Create) Name() string { return "create" }

func (Start) isCommand()  {}
func (List) isCommand()   {}
func (Done) isCommand()   {}
func (Open) isCommand()   {}
func (Show) isCommand()   {}
func (Create) isCommand() {}

const (
	ReasonMissingID       = "missing id"
	ReasonInvalidID       = "invalid id"
	ReasonMissingTaskData = "missing task data"

	MsgInvalidTaskID   = "Invalid task id."
	MsgInvalidTaskData = "Invalid task data."
)

// ArgumentError reports a wrongly shaped argument.
type ArgumentError struct {
	Command string
	Reason  string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("/%s: %s", e.Command, e.Reason)
}

// UserMessage hides the difference between a zero and a malformed id.
// A /create without a title gets the create usage line instead, so the user
// sees which arguments are expected.
func (e *ArgumentError) UserMessage() string {
	switch e.Reason {
	case ReasonMissingID, ReasonInvalidID:
		return MsgInvalidTaskID
	case ReasonMissingTaskData:
		return Usage("create")
	default:
		return MsgInvalidTaskData
	}
}

// ParseError is a malformed or incomplete command with a hint for the user.
type ParseError struct {
	Command string
	Message string
	Level   zerolog.Level
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("/%s: %s", e.Command, e.Message)
}

// Usage returns the hint shown when a command lacks its arguments.
func Usage(name string) string {
	switch name {
	case "done", "open", "task":
		return fmt.Sprintf("Usage: /%s <task id>", name)
	case "create":
		return "Usage: /create <title> [description]"
	default:
		return "/" + name
	}
}

// Parse maps text to a Command. Text that is not one of the known commands
// yields (nil, nil) so that other handlers may still pick it up.
func Parse(text string) (Command, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return nil, nil
	}
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	args := fields[1:]

	switch name {
	case "start":
		return Start{}, nil
	case "list":
		return List{}, nil
	case "done":
		id, err := parseID(name, args)
		if err != nil {
			return nil, err
		}
		return Done{ID: id}, nil
	case "open":
		id, err := parseID(name, args)
		if err != nil {
			return nil, err
		}
		return Open{ID: id}, nil
	case "task":
		id, err := parseID(name, args)
		if err != nil {
			return nil, err
		}
		return Show{ID: id}, nil
	case "create":
		if len(args) == 0 {
			return nil, &ArgumentError{Command: name, Reason: ReasonMissingTaskData}
		}
		return Create{Title: args[0], Description: strings.Join(args[1:], " ")}, nil
	default:
		return nil, nil
	}
}

func parseID(name string, args []string) (uint, error) {
	switch len(args) {
	case 0:
		return 0, &ParseError{Command: name, Message: Usage(name), Level: zerolog.WarnLevel}
	case 1:
	default:
		return 0, &ArgumentError{Command: name, Reason: ReasonInvalidID}
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return 0, &ArgumentError{Command: name, Reason: ReasonInvalidID}
	}
	if id == 0 {
		return 0, &ArgumentError{Command: name, Reason: ReasonMissingID}
	}
	return uint(id), nil
}
