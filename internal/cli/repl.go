package cli

import (
	"context"
	"strings"
)

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: (l)ist, search <q>, filter [tag], tags, new [title], open <n>, show, title <text>, edit, tag <t>, untag <t>, delete, sync, logout, exit"
)

// Run is the read-eval-print loop. It returns on EOF or exit/quit; command
// errors are reported by the commands themselves.
func (a *App) Run(ctx context.Context) {
	for {
		a.printf("notes %s > ", a.status())
		line, err := a.reader.ReadString('\n')
		if line == "" && err != nil {
			a.printf("\n")
			return
		}
		cmd, arg := splitCommand(line)
		if cmd == "" {
			continue
		}
		if cmd == "exit" || cmd == "quit" {
			a.printf("Bye!\n")
			return
		}
		a.dispatch(ctx, cmd, arg)
	}
}

func (a *App) dispatch(ctx context.Context, cmd, arg string) {
	if !a.isLoggedIn() {
		switch cmd {
		case "help":
			a.printf("%s\n", helpLoggedOut)
		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		default:
			a.printf("Unknown command: %s (log in first)\n", cmd)
		}
		return
	}

	switch cmd {
	case "help":
		a.printf("%s\n", helpLoggedIn)
	case "l", "list":
		a.List()
	case "search":
		a.Search(arg)
	case "filter":
		a.FilterTag(arg)
	case "tags":
		a.Tags()
	case "new":
		_ = a.New(ctx, arg)
	case "open":
		a.Open(arg)
	case "show":
		a.Show()
	case "title":
		a.Title(arg)
	case "edit":
		_ = a.Edit()
	case "tag":
		a.Tag(arg)
	case "untag":
		a.Untag(arg)
	case "delete":
		_ = a.Delete(ctx)
	case "sync":
		a.Sync()
	case "logout":
		_ = a.Logout(ctx)
	default:
		a.printf("Unknown command: %s\n", cmd)
	}
}

func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	cmd, arg, _ := strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}
