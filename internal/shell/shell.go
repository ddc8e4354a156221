package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"fittrack/internal/container"
	"fittrack/internal/models"
	"fittrack/internal/services"
)

const exitCleanupTimeout = 10 * time.Second

var knownCommands = map[string]bool{
	"/start": true, "/help": true, "/login": true, "/register": true, "/logout": true, "/profile": true,
	"/exercises": true, "/exercise-add": true, "/exercise-del": true,
	"/routines": true, "/routine-new": true, "/add": true, "/done": true, "/routine-add": true,
	"/routine-rename": true, "/routine-del": true, "/routine-ex-del": true, "/reorder": true,
	"/friends": true, "/friend-add": true, "/friend-accept": true, "/friend-reject": true, "/friend-del": true,
	"/feed": true, "/post": true, "/like": true,
}

type Command struct {
	Command string
	Args    []string
}

// Handler turns slash commands into controller calls and prints the result.
type Handler struct {
	app    *container.Container
	out    io.Writer
	logger *logrus.Logger

	route     models.Route
	populator *services.Populator
}

func NewHandler(app *container.Container, out io.Writer) *Handler {
	route := models.RouteLogin
	if app.Session.Authenticated() {
		route = models.RouteRutinas
	}
	return &Handler{app: app, out: out, logger: app.Logger, route: route}
}

// Notifier prints notifications on w, one per line.
func Notifier(w io.Writer) services.Notifier {
	return services.NotifierFunc(func(n models.Notification) {
		fmt.Fprintf(w, "[%s] %s\n", n.Type, n.Message)
	})
}

// Route is the screen the last command navigated to.
func (h *Handler) Route() models.Route {
	return h.route
}

// Run reads commands from in until EOF, /quit or ctx is cancelled. An open
// routine dialog is closed on the way out, even after cancellation.
func (h *Handler) Run(ctx context.Context, in io.Reader) error {
	h.printf("fittrack - type /help for commands\n")

	lines := make(chan string)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	var err error
loop:
	for {
		if ctx.Err() != nil {
			break
		}
		h.printf("%s> ", h.route)
		select {
		case <-ctx.Done():
			break loop
		case err = <-readErr:
			break loop
		case line := <-lines:
			if strings.TrimSpace(line) == "/quit" {
				break loop
			}
			h.ProcessLine(ctx, line)
		}
	}

	h.closeDialog(ctx)
	return err
}

// closeDialog treats leaving the shell as closing the routine dialog.
func (h *Handler) closeDialog(ctx context.Context) {
	p := h.populator
	if p == nil {
		return
	}
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), exitCleanupTimeout)
	defer cancel()

	if err := p.Close(cleanupCtx, services.CloseButton); err != nil {
		h.logger.WithError(err).Warn("Failed to close routine dialog on exit")
		return
	}
	h.populator = nil
}

func (h *Handler) ProcessLine(ctx context.Context, line string) {
	text := strings.TrimSpace(line)
	if text == "" {
		return
	}

	command := parseCommand(text)
	h.logger.WithFields(logrus.Fields{
		"command": command.Command,
		"args":    len(command.Args),
	}).Debug("Processing command")

	if !knownCommands[command.Command] {
		h.printf("Unknown command. Use /help to see available commands\n")
		return
	}
	if requiresSession(command.Command) && !h.app.Session.Authenticated() {
		h.app.Notifier.Notify(models.Notification{Type: models.NotificationError, Message: "You need to sign in first. Use /login"})
		return
	}
	if h.populator != nil && !populatorCommand(command.Command) {
		h.printf("Finish the routine first: /add <exercise id> [sets reps weight] or /done\n")
		return
	}

	switch command.Command {
	case "/start", "/help":
		h.handleHelp()
	case "/login":
		h.handleLogin(ctx, command)
	case "/register":
		h.handleRegister(ctx, command)
	case "/logout":
		h.handleLogout(ctx)
	case "/profile":
		h.handleProfile(ctx, command)
	case "/exercises":
		h.handleExercises(ctx, command)
	case "/exercise-add":
		h.handleExerciseAdd(ctx, command)
	case "/exercise-del":
		h.handleExerciseDelete(ctx, command)
	case "/routines":
		h.handleRoutines(ctx)
	case "/routine-new":
		h.handleRoutineNew(ctx, command)
	case "/add":
		h.handleAdd(ctx, command)
	case "/done":
		h.handleDone(ctx, command)
	case "/routine-add":
		h.handleRoutineAdd(ctx, command)
	case "/routine-rename":
		h.handleRoutineRename(ctx, command)
	case "/routine-del":
		h.handleRoutineDelete(ctx, command)
	case "/routine-ex-del":
		h.handleRoutineExerciseDelete(ctx, command)
	case "/reorder":
		h.handleReorder(ctx, command)
	case "/friends":
		h.handleFriends(ctx)
	case "/friend-add":
		h.handleFriendAdd(ctx, command)
	case "/friend-accept":
		h.handleFriendRespond(ctx, command, true)
	case "/friend-reject":
		h.handleFriendRespond(ctx, command, false)
	case "/friend-del":
		h.handleFriendDelete(ctx, command)
	case "/feed":
		h.handleFeed(ctx)
	case "/post":
		h.handlePost(ctx, command)
	case "/like":
		h.handleLike(ctx, command)
	default:
		h.printf("Unknown command. Use /help to see available commands\n")
	}
}

func parseCommand(text string) Command {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return Command{}
	}
	return Command{
		Command: strings.ToLower(parts[0]),
		Args:    parts[1:],
	}
}

func requiresSession(cmd string) bool {
	switch cmd {
	case "/start", "/help", "/login", "/register":
		return false
	}
	return true
}

func populatorCommand(cmd string) bool {
	switch cmd {
	case "/add", "/done", "/exercises", "/help", "/start":
		return true
	}
	return false
}

func (h *Handler) printf(format string, args ...interface{}) {
	fmt.Fprintf(h.out, format, args...)
}
