// Package cli is the interactive terminal front end over pkg/client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/oksasatya/go-ddd-notes/pkg/client"
	"github.com/oksasatya/go-ddd-notes/pkg/notefilter"
)

type App struct {
	store  *client.Store
	reader *bufio.Reader
	out    io.Writer

	filter notefilter.Criteria
	listed []string // note ids from the last listing, addressed 1..n
}

func NewApp(store *client.Store, in io.Reader, out io.Writer) *App {
	return &App{store: store, reader: bufio.NewReader(in), out: out}
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

func (a *App) isLoggedIn() bool { return a.store.User() != nil }

func (a *App) status() string {
	u := a.store.User()
	if u == nil {
		return "not logged in"
	}
	if n, ok := a.store.Selected(); ok {
		return u.Email + " [" + n.Title + "]"
	}
	return u.Email
}

func (a *App) Register(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	pw, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	if err := a.store.Register(ctx, name, email, pw); err != nil {
		a.printf("Registration failed: %s\n", message(err))
		return err
	}
	a.printf("Welcome, %s!\n", name)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	pw, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	if err := a.store.Login(ctx, email, pw); err != nil {
		a.printf("Login failed: %s\n", message(err))
		return err
	}
	a.printf("Logged in, %d notes\n", len(a.store.Notes()))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.store.Logout(ctx); err != nil {
		a.printf("Logout failed: %s\n", message(err))
		return err
	}
	a.listed = nil
	a.printf("Logged out\n")
	return nil
}

// List prints notes matching the current filter.
func (a *App) List() {
	notes := a.store.Filtered(a.filter)
	a.listed = a.listed[:0]
	if len(notes) == 0 {
		if a.filter.Active() {
			a.printf("No matching notes\n")
		} else {
			a.printf("No notes yet\n")
		}
		return
	}
	for i, n := range notes {
		a.listed = append(a.listed, n.ID)
		tags := ""
		if len(n.Tags) > 0 {
			tags = " #" + strings.Join(n.Tags, " #")
		}
		a.printf("%2d. %s%s  (%s)\n", i+1, n.Title, tags, n.UpdatedAt.Local().Format(time.DateTime))
	}
}

func (a *App) Search(q string) {
	a.filter.Search = q
	a.List()
}

func (a *App) FilterTag(tag string) {
	a.filter.Tag = tag
	a.List()
}

func (a *App) Tags() {
	tags := a.store.Tags()
	if len(tags) == 0 {
		a.printf("No tags\n")
		return
	}
	a.printf("%s\n", strings.Join(tags, ", "))
}

func (a *App) New(ctx context.Context, title string) error {
	patch := client.NotePatch{}
	if title != "" {
		patch.Title = &title
	}
	n, err := a.store.CreateNote(ctx, patch)
	if err != nil {
		a.printf("Create failed: %s\n", message(err))
		return err
	}
	a.printf("Created %q\n", n.Title)
	return nil
}

// Open selects a note by list position or id.
func (a *App) Open(ref string) bool {
	id := ref
	if i, err := strconv.Atoi(ref); err == nil && i >= 1 && i <= len(a.listed) {
		id = a.listed[i-1]
	}
	n, ok := a.store.Note(id)
	if !ok {
		a.printf("No such note: %s\n", ref)
		return false
	}
	a.store.Select(n.ID)
	a.Show()
	return true
}

func (a *App) Show() {
	n, ok := a.selected()
	if !ok {
		return
	}
	a.printf("# %s\n", n.Title)
	if len(n.Tags) > 0 {
		a.printf("tags: %s\n", strings.Join(n.Tags, ", "))
	}
	a.printf("\n%s\n", n.Content)
}

func (a *App) Title(title string) {
	n, ok := a.selected()
	if !ok {
		return
	}
	a.store.UpdateNote(n.ID, client.NotePatch{Title: &title})
}

func (a *App) Edit() error {
	n, ok := a.selected()
	if !ok {
		return nil
	}
	content, err := GetMultiline(a.reader, "Content", a.out)
	if err != nil {
		return err
	}
	a.store.UpdateNote(n.ID, client.NotePatch{Content: &content})
	return nil
}

func (a *App) Tag(raw string) {
	n, ok := a.selected()
	if !ok {
		return
	}
	if !a.store.AddTag(n.ID, raw) {
		a.printf("Tag not added\n")
		if s := client.SuggestTags(a.store.Tags(), n.Tags, raw, 5); len(s) > 0 {
			a.printf("Existing tags: %s\n", strings.Join(s, ", "))
		}
	}
}

func (a *App) Untag(tag string) {
	n, ok := a.selected()
	if !ok {
		return
	}
	a.store.RemoveTag(n.ID, tag)
}

func (a *App) Delete(ctx context.Context) error {
	n, ok := a.selected()
	if !ok {
		return nil
	}
	if err := a.store.DeleteNote(ctx, n.ID); err != nil {
		a.printf("Delete failed on server: %s\n", message(err))
		return err
	}
	a.printf("Deleted %q\n", n.Title)
	return nil
}

func (a *App) Sync() {
	a.store.Flush()
	a.printf("Saved\n")
}

func (a *App) selected() (client.Note, bool) {
	n, ok := a.store.Selected()
	if !ok {
		a.printf("No note selected; use open <n>\n")
	}
	return n, ok
}

func message(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
