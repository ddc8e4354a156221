package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fittrack/internal/models"
	"fittrack/internal/services"
)

const helpMessage = `Available commands:

/login <email> <password>
/register <email> <username> <nombre> <apellidos> <password> <password2>
/logout
/profile
/profile set <nombre> | <apellidos> [| <new password>]

/exercises [grupo]            list exercise types, optionally by muscle group
/exercise-add <grupo> | <nombre> | <descripcion>
/exercise-del <id>

/routines                     weekly plan
/routine-new <dia>            create a routine and add exercises to it
/add <exercise id> [sets reps weight]
/done [save|close]
/routine-add <routine id> <exercise id> [sets reps weight]
/routine-rename <routine id> <nombre>
/routine-del <routine id>
/routine-ex-del <routine id> <routine exercise id>
/reorder <routine id> <from> <to>   positions start at 1

/friends
/friend-add <username or email>
/friend-accept <id>
/friend-reject <id>
/friend-del <id>

/feed
/post <text>
/like <post id>

/quit`

func (h *Handler) handleHelp() {
	h.printf("%s\n", helpMessage)
}

func (h *Handler) handleLogin(ctx context.Context, cmd Command) {
	if len(cmd.Args) != 2 {
		h.printf("Usage: /login <email> <password>\n")
		return
	}
	route, err := h.app.Auth.Login(ctx, cmd.Args[0], cmd.Args[1])
	if err != nil {
		return
	}
	h.navigate(route)
}

func (h *Handler) handleRegister(ctx context.Context, cmd Command) {
	if len(cmd.Args) != 6 {
		h.printf("Usage: /register <email> <username> <nombre> <apellidos> <password> <password2>\n")
		return
	}
	route, err := h.app.Auth.Register(ctx, models.RegisterRequest{
		Email:     cmd.Args[0],
		Username:  cmd.Args[1],
		Nombre:    cmd.Args[2],
		Apellidos: cmd.Args[3],
		Password:  cmd.Args[4],
		Password2: cmd.Args[5],
	})
	if err != nil {
		return
	}
	h.navigate(route)
}

func (h *Handler) handleLogout(ctx context.Context) {
	h.navigate(h.app.Auth.Logout(ctx))
	h.printf("Signed out\n")
}

func (h *Handler) handleProfile(ctx context.Context, cmd Command) {
	h.navigate(models.RoutePerfil)

	if len(cmd.Args) > 0 && cmd.Args[0] == "set" {
		fields := splitArgs(cmd.Args[1:])
		if len(fields) < 2 {
			h.printf("Usage: /profile set <nombre> | <apellidos> [| <new password>]\n")
			return
		}
		patch := models.ProfileUpdate{Nombre: fields[0], Apellidos: fields[1]}
		if len(fields) > 2 {
			patch.Password = fields[2]
		}
		if _, err := h.app.Auth.UpdateProfile(ctx, patch); err != nil {
			return
		}
	}

	user, err := h.app.Auth.Profile(ctx)
	if err != nil {
		h.printf("Could not load profile\n")
		return
	}
	h.printf("%s <%s>\n%s %s\n", user.Username, user.Email, user.Nombre, user.Apellidos)
	if exp, ok := h.app.Session.ExpiresAt(); ok {
		h.printf("Session expires %s\n", exp.Local().Format("2006-01-02 15:04"))
	}
}

func (h *Handler) handleExercises(ctx context.Context, cmd Command) {
	if h.populator == nil {
		h.navigate(models.RouteEjercicios)
	}
	catalog := h.app.Exercises
	if err := catalog.Load(ctx); err != nil {
		h.printf("Could not load exercises\n")
		return
	}

	group := ""
	if len(cmd.Args) > 0 {
		group = strings.ToLower(cmd.Args[0])
	}
	catalog.SetFilter(group)

	items := catalog.Filtered()
	if len(items) == 0 {
		h.printf("No exercises\n")
		return
	}
	for _, e := range items {
		h.printf("#%d %s (%s) - %s\n", e.ID, e.Nombre, e.GrupoMuscular, e.Descripcion)
	}
}

func (h *Handler) handleExerciseAdd(ctx context.Context, cmd Command) {
	fields := splitArgs(cmd.Args)
	if len(fields) != 3 {
		h.printf("Usage: /exercise-add <grupo> | <nombre> | <descripcion>\n")
		return
	}
	exercise, err := h.app.Exercises.Create(ctx, models.ExerciseTypeDraft{
		GrupoMuscular: fields[0],
		Nombre:        fields[1],
		Descripcion:   fields[2],
	})
	if err != nil {
		return
	}
	h.printf("#%d %s (%s)\n", exercise.ID, exercise.Nombre, exercise.GrupoMuscular)
}

func (h *Handler) handleExerciseDelete(ctx context.Context, cmd Command) {
	id, ok := h.intArg(cmd, 0, "Usage: /exercise-del <id>")
	if !ok {
		return
	}
	_ = h.app.Exercises.Remove(ctx, id)
}

func (h *Handler) handleRoutines(ctx context.Context) {
	h.navigate(models.RouteRutinas)
	board := h.app.Routines
	if err := board.Load(ctx); err != nil {
		h.printf("Could not load routines\n")
		return
	}
	h.printWeek()
}

func (h *Handler) printWeek() {
	board := h.app.Routines
	for _, day := range models.Weekdays() {
		routine, ok := board.RoutineFor(day)
		if !ok {
			h.printf("%s: -\n", day)
			continue
		}
		marker := ""
		if board.ReorderState(routine.ID) == services.ReorderIdleStale {
			marker = " (order not saved)"
		}
		h.printf("%s: %s [#%d]%s\n", day, routine.Nombre, routine.ID, marker)
		for i, e := range routine.Ejercicios {
			h.printf("  %d. %s %dx%d%s [#%d]\n", i+1, board.ExerciseName(e), e.Sets, e.Repeticiones, formatWeight(e.RecordPeso), e.ID)
		}
	}
}

func (h *Handler) handleRoutineNew(ctx context.Context, cmd Command) {
	if len(cmd.Args) != 1 {
		h.printf("Usage: /routine-new <dia>\n")
		return
	}
	dia, err := models.ParseWeekday(cmd.Args[0])
	if err != nil {
		h.printf("Unknown day %q\n", cmd.Args[0])
		return
	}

	board := h.app.Routines
	if err := board.Load(ctx); err != nil {
		h.printf("Could not load routines\n")
		return
	}
	populator, err := board.Create(ctx, dia)
	if err != nil {
		return
	}
	h.populator = populator

	h.printf("Rutina %s created. Add exercises with /add <exercise id> [sets reps weight], then /done\n", dia)
	for _, e := range board.ExerciseTypes() {
		h.printf("#%d %s (%s)\n", e.ID, e.Nombre, e.GrupoMuscular)
	}
}

func (h *Handler) handleAdd(ctx context.Context, cmd Command) {
	if h.populator == nil {
		h.printf("No routine is being created. Use /routine-new <dia> or /routine-add\n")
		return
	}
	input, ok := h.exerciseInput(cmd.Args, "Usage: /add <exercise id> [sets reps weight]")
	if !ok {
		return
	}
	exercise, err := h.populator.AddExercise(ctx, input)
	if err != nil {
		return
	}
	h.printf("%d. %s %dx%d\n", h.populator.Added(), h.app.Routines.ExerciseName(*exercise), exercise.Sets, exercise.Repeticiones)
}

func (h *Handler) handleDone(ctx context.Context, cmd Command) {
	if h.populator == nil {
		h.printf("No routine is being created\n")
		return
	}
	reason := services.CloseSave
	if len(cmd.Args) > 0 && cmd.Args[0] == string(services.CloseButton) {
		reason = services.CloseButton
	}
	if err := h.populator.Close(ctx, reason); err != nil {
		h.printf("The routine dialog is still open\n")
		return
	}
	if h.populator.State() == services.PopulatorDiscarded {
		h.printf("Empty routine discarded\n")
	}
	h.populator = nil
	h.printWeek()
}

func (h *Handler) handleRoutineAdd(ctx context.Context, cmd Command) {
	routineID, ok := h.intArg(cmd, 0, "Usage: /routine-add <routine id> <exercise id> [sets reps weight]")
	if !ok {
		return
	}
	input, ok := h.exerciseInput(cmd.Args[1:], "Usage: /routine-add <routine id> <exercise id> [sets reps weight]")
	if !ok {
		return
	}
	if _, err := h.app.Routines.AddExercise(ctx, routineID, input); err != nil {
		return
	}
	h.printWeek()
}

func (h *Handler) handleRoutineRename(ctx context.Context, cmd Command) {
	id, ok := h.intArg(cmd, 0, "Usage: /routine-rename <routine id> <nombre>")
	if !ok {
		return
	}
	_ = h.app.Routines.Rename(ctx, id, strings.Join(cmd.Args[1:], " "))
}

func (h *Handler) handleRoutineDelete(ctx context.Context, cmd Command) {
	id, ok := h.intArg(cmd, 0, "Usage: /routine-del <routine id>")
	if !ok {
		return
	}
	_ = h.app.Routines.Remove(ctx, id)
}

func (h *Handler) handleRoutineExerciseDelete(ctx context.Context, cmd Command) {
	const usage = "Usage: /routine-ex-del <routine id> <routine exercise id>"
	routineID, ok := h.intArg(cmd, 0, usage)
	if !ok {
		return
	}
	exerciseID, ok := h.intArg(cmd, 1, usage)
	if !ok {
		return
	}
	_ = h.app.Routines.RemoveExercise(ctx, routineID, exerciseID)
}

func (h *Handler) handleReorder(ctx context.Context, cmd Command) {
	const usage = "Usage: /reorder <routine id> <from> <to>"
	routineID, ok := h.intArg(cmd, 0, usage)
	if !ok {
		return
	}
	from, ok := h.intArg(cmd, 1, usage)
	if !ok {
		return
	}
	to, ok := h.intArg(cmd, 2, usage)
	if !ok {
		return
	}

	board := h.app.Routines
	board.BeginDrag(routineID)
	if err := board.Reorder(ctx, routineID, from-1, to-1); err != nil && board.ReorderState(routineID) != services.ReorderIdleStale {
		h.printf("Cannot move exercise %d to %d\n", from, to)
		return
	}
	h.printWeek()
}

func (h *Handler) handleFriends(ctx context.Context) {
	h.navigate(models.RoutePerfil)
	book := h.app.Friendships
	if err := book.Load(ctx); err != nil {
		h.printf("Could not load friends\n")
		return
	}
	items := book.Ordered()
	if len(items) == 0 {
		h.printf("No friends yet\n")
		return
	}
	for _, f := range items {
		actions := services.Actions(f)
		if len(actions) == 0 {
			h.printf("#%d %s\n", f.ID, services.Label(f))
			continue
		}
		names := make([]string, len(actions))
		for i, a := range actions {
			names[i] = string(a)
		}
		h.printf("#%d %s [%s]\n", f.ID, services.Label(f), strings.Join(names, ", "))
	}
}

func (h *Handler) handleFriendAdd(ctx context.Context, cmd Command) {
	_, _ = h.app.Friendships.Send(ctx, strings.Join(cmd.Args, " "))
}

func (h *Handler) handleFriendRespond(ctx context.Context, cmd Command, accept bool) {
	id, ok := h.intArg(cmd, 0, "Usage: /friend-accept <id> or /friend-reject <id>")
	if !ok {
		return
	}
	var err error
	if accept {
		err = h.app.Friendships.Accept(ctx, id)
	} else {
		err = h.app.Friendships.Reject(ctx, id)
	}
	if errors.Is(err, services.ErrTransitionNotAllowed) {
		h.printf("That request cannot be answered\n")
	}
}

func (h *Handler) handleFriendDelete(ctx context.Context, cmd Command) {
	id, ok := h.intArg(cmd, 0, "Usage: /friend-del <id>")
	if !ok {
		return
	}
	_ = h.app.Friendships.Remove(ctx, id)
}

func (h *Handler) handleFeed(ctx context.Context) {
	h.navigate(models.RouteSocial)
	feed := h.app.Feed
	if err := feed.Load(ctx); err != nil {
		h.printf("Could not load posts\n")
		return
	}
	h.printFeed()
}

func (h *Handler) printFeed() {
	posts := h.app.Feed.Items()
	if len(posts) == 0 {
		h.printf("No posts yet\n")
		return
	}
	for _, p := range posts {
		liked := ""
		if p.LikedByUser {
			liked = ", liked"
		}
		h.printf("#%d %s (%s): %s [%d likes%s]\n", p.ID, p.Usuario, p.FechaCreacion.Format("2006-01-02 15:04"), p.Contenido, p.LikesCount, liked)
	}
}

func (h *Handler) handlePost(ctx context.Context, cmd Command) {
	if _, err := h.app.Feed.Publish(ctx, strings.Join(cmd.Args, " ")); err != nil {
		return
	}
	h.printFeed()
}

func (h *Handler) handleLike(ctx context.Context, cmd Command) {
	id, ok := h.intArg(cmd, 0, "Usage: /like <post id>")
	if !ok {
		return
	}
	_ = h.app.Feed.ToggleLike(ctx, id)
	if p, found := h.app.Feed.Get(id); found {
		h.printf("#%d %d likes\n", p.ID, p.LikesCount)
	}
}

func (h *Handler) navigate(route models.Route) {
	if route == "" || route == h.route {
		return
	}
	h.logger.WithField("route", route).Debug("Navigating")
	h.route = route
}

func (h *Handler) intArg(cmd Command, i int, usage string) (int, bool) {
	if len(cmd.Args) <= i {
		h.printf("%s\n", usage)
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(cmd.Args[i], "#"))
	if err != nil {
		h.printf("%s\n", usage)
		return 0, false
	}
	return n, true
}

// exerciseInput parses "<exercise id> [sets reps weight]" on top of the
// dialog defaults.
func (h *Handler) exerciseInput(args []string, usage string) (services.ExerciseInput, bool) {
	input := services.DefaultExerciseInput()
	if len(args) == 0 || len(args) > 4 {
		h.printf("%s\n", usage)
		return input, false
	}

	var err error
	if input.TipoEjercicio, err = strconv.Atoi(strings.TrimPrefix(args[0], "#")); err != nil {
		h.printf("%s\n", usage)
		return input, false
	}
	if len(args) > 1 {
		if input.Sets, err = strconv.Atoi(args[1]); err != nil {
			h.printf("%s\n", usage)
			return input, false
		}
	}
	if len(args) > 2 {
		if input.Repeticiones, err = strconv.Atoi(args[2]); err != nil {
			h.printf("%s\n", usage)
			return input, false
		}
	}
	if len(args) > 3 {
		if input.RecordPeso, err = strconv.ParseFloat(args[3], 64); err != nil {
			h.printf("%s\n", usage)
			return input, false
		}
	}
	return input, true
}

// splitArgs re-joins the arguments and splits them on "|" so fields may
// contain spaces.
func splitArgs(args []string) []string {
	joined := strings.Join(args, " ")
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	parts := strings.Split(joined, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func formatWeight(peso *float64) string {
	if peso == nil || *peso == 0 {
		return ""
	}
	return fmt.Sprintf(" @%gkg", *peso)
}
