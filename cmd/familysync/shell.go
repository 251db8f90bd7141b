package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/akilaweerasekara/Home-Inventory/internal/auth"
	"github.com/akilaweerasekara/Home-Inventory/internal/models"
	"github.com/akilaweerasekara/Home-Inventory/internal/query"
	"github.com/akilaweerasekara/Home-Inventory/internal/service"
)

const shellHelp = `Commands:
  Items:   search [-c category] [text], recent [n], family, private, stats
           add, edit <id>, remove <id>, found <id>
  Access:  unlock <member id>, lock
  Members: members, add-member, passwd <member id>, remove-member <member id>
  Data:    export [file], import <file>
  Shell:   help, exit`

// shell is one interactive session over a household.
type shell struct {
	cmd     *cobra.Command
	h       *service.Household
	session *auth.Session
	p       *prompter
	out     io.Writer
}

func runShell(cmd *cobra.Command, a *app) error {
	sh := &shell{
		cmd:     cmd,
		h:       a.household,
		session: a.household.NewSession(),
		p:       newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
		out:     cmd.OutOrStdout(),
	}
	defer sh.h.EndSession(sh.session)

	fmt.Fprintln(sh.out, "Welcome to FamilySync! Start by searching or adding items.")
	fmt.Fprintln(sh.out, shellHelp)

	for {
		if err := cmd.Context().Err(); err != nil {
			return nil
		}

		line, ok := sh.p.line(fmt.Sprintf("\n[%s]> ", sh.session.Identity()))
		if !ok {
			fmt.Fprintln(sh.out)
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		name, args := fields[0], fields[1:]
		if name == "exit" || name == "quit" {
			fmt.Fprintln(sh.out, "Goodbye!")
			return nil
		}
		if err := sh.dispatch(name, args); err != nil {
			fmt.Fprintf(sh.out, "Error: %v\n", err)
		}
	}
}

func (sh *shell) dispatch(name string, args []string) error {
	switch name {
	case "help":
		fmt.Fprintln(sh.out, shellHelp)
		return nil
	case "search":
		return sh.search(args)
	case "recent":
		return sh.recent(args)
	case "family":
		printItems(sh.out, sh.h.FamilyItems())
		return nil
	case "private":
		if !sh.session.PrivateAccessGranted() {
			return errors.New("private items are locked, use unlock <member id>")
		}
		printItems(sh.out, sh.h.PrivateItems(sh.session))
		return nil
	case "stats":
		printStats(sh.out, sh.h.Stats())
		return nil
	case "add":
		return sh.add()
	case "edit":
		return sh.withID(args, sh.edit)
	case "remove":
		return sh.withID(args, sh.remove)
	case "found":
		return sh.withID(args, sh.found)
	case "unlock":
		return sh.withID(args, sh.unlock)
	case "lock":
		sh.h.Lock(sh.session)
		fmt.Fprintln(sh.out, "Private items locked.")
		return nil
	case "members":
		printMembers(sh.out, sh.h.ListMembers())
		return nil
	case "add-member":
		return sh.addMember()
	case "passwd":
		return sh.withID(args, sh.changePassword)
	case "remove-member":
		return sh.withID(args, sh.removeMember)
	case "export":
		return sh.export(args)
	case "import":
		if len(args) != 1 {
			return errors.New("usage: import <file>")
		}
		return importBackupFile(sh.cmd, sh.h, sh.p, args[0], false)
	default:
		return fmt.Errorf("unknown command %q, type help for a list", name)
	}
}

func (sh *shell) withID(args []string, fn func(id int64) error) error {
	if len(args) != 1 {
		return errors.New("expected one ID")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid ID %q", args[0])
	}
	return fn(id)
}

func (sh *shell) search(args []string) error {
	var f query.Filter
	if len(args) >= 2 && (args[0] == "-c" || args[0] == "--category") {
		f.Category = models.Category(args[1])
		args = args[2:]
	}
	f.Text = strings.Join(args, " ")
	printItems(sh.out, sh.h.Search(sh.session, f))
	return nil
}

func (sh *shell) recent(args []string) error {
	limit := query.DefaultRecentLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid count %q", args[0])
		}
		limit = n
	}
	printItems(sh.out, sh.h.Recent(sh.session, limit))
	return nil
}

func (sh *shell) add() error {
	var draft service.ItemDraft
	var ok bool

	if draft.Name, ok = sh.p.line("Name: "); !ok {
		return io.EOF
	}
	if draft.Location, ok = sh.p.line("Location: "); !ok {
		return io.EOF
	}
	category, _ := sh.p.line(fmt.Sprintf("Category (%s) [other]: ", categoryList()))
	draft.Category = models.Category(category)

	if qty, _ := sh.p.line("Quantity [1]: "); qty != "" {
		n, err := strconv.Atoi(qty)
		if err != nil {
			return models.NewValidationError("quantity must be a number")
		}
		draft.Quantity = n
	}
	draft.Description, _ = sh.p.line("Description: ")

	visibility, _ := sh.p.line("Type (family/private) [family]: ")
	draft.Visibility = models.Visibility(visibility)

	owner, err := sh.chooseOwner()
	if err != nil {
		return err
	}

	if draft.Visibility == models.VisibilityPrivate {
		if id, isMember := owner.MemberID(); isMember && !sh.session.CanSeePrivate(id) {
			draft.OwnerPassword, err = sh.p.password(fmt.Sprintf("Password for %s: ", owner.Name()))
			if err != nil {
				return err
			}
		}
	}

	if path, _ := sh.p.line("Photo file (optional): "); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read photo: %w", err)
		}
		if draft.Photo, err = sh.h.StorePhoto(sh.cmd.Context(), data); err != nil {
			return err
		}
	}

	item, err := sh.h.AddItem(sh.cmd.Context(), sh.session, draft, owner)
	if err != nil && item.ID == 0 {
		if draft.Photo != "" {
			sh.h.DiscardPhoto(sh.cmd.Context(), draft.Photo)
		}
		return err
	}
	fmt.Fprintf(sh.out, "Added %q (#%d) to the %s inventory.\n", item.Name, item.ID, item.Visibility)
	return err
}

// chooseOwner asks who the item is added by. The default is the session's
// identity.
func (sh *shell) chooseOwner() (models.Identity, error) {
	current := sh.session.Identity()
	answer, _ := sh.p.line(fmt.Sprintf("Added by (member ID, 0 for Guest) [%s]: ", current))
	if answer == "" {
		return current, nil
	}

	id, err := strconv.ParseInt(answer, 10, 64)
	if err != nil || id < 0 {
		return models.Identity{}, models.NewValidationError("invalid member ID %q", answer)
	}
	if id == 0 {
		return models.GuestIdentity(), nil
	}
	m, found := sh.h.Member(id)
	if !found {
		return models.Identity{}, models.NewValidationError("unknown member %d", id)
	}
	return models.MemberIdentity(m), nil
}

func (sh *shell) edit(id int64) error {
	var current models.Item
	found := false
	for _, item := range sh.h.Search(sh.session, query.Filter{}) {
		if item.ID == id {
			current, found = item, true
			break
		}
	}
	if !found {
		return models.NewNotFoundError("item %d not found", id)
	}

	var patch service.ItemPatch
	ask := func(label, value string) *string {
		answer, _ := sh.p.line(fmt.Sprintf("%s [%s]: ", label, value))
		if answer == "" {
			return nil
		}
		return &answer
	}

	patch.Name = ask("Name", current.Name)
	patch.Location = ask("Location", current.Location)
	if c := ask("Category", string(current.Category)); c != nil {
		category := models.Category(*c)
		patch.Category = &category
	}
	if q := ask("Quantity", strconv.Itoa(current.Quantity)); q != nil {
		n, err := strconv.Atoi(*q)
		if err != nil {
			return models.NewValidationError("quantity must be a number")
		}
		patch.Quantity = &n
	}
	patch.Description = ask("Description", current.Description)

	item, err := sh.h.UpdateItem(sh.cmd.Context(), sh.session, id, patch)
	if err != nil && item.ID == 0 {
		return err
	}
	printItem(sh.out, item)
	return err
}

func (sh *shell) remove(id int64) error {
	if err := sh.h.RemoveItem(sh.cmd.Context(), sh.session, id); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Deleted item #%d.\n", id)
	return nil
}

func (sh *shell) found(id int64) error {
	item, err := sh.h.MarkFound(sh.cmd.Context(), sh.session, id)
	if err != nil && item.ID == 0 {
		return err
	}
	fmt.Fprintf(sh.out, "Great! %q is in %s.\n", item.Name, item.Location)
	return err
}

func (sh *shell) unlock(memberID int64) error {
	password, err := sh.p.password("Password: ")
	if err != nil {
		return err
	}
	if err := sh.h.Unlock(sh.cmd.Context(), sh.session, memberID, password); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Welcome %s! Private inventory unlocked.\n", sh.session.Identity())
	return nil
}

func (sh *shell) addMember() error {
	name, ok := sh.p.line("Name: ")
	if !ok {
		return io.EOF
	}
	password, err := sh.p.password("Initial password: ")
	if err != nil {
		return err
	}

	m, err := sh.h.AddMember(sh.cmd.Context(), name, password)
	if err != nil && m.ID == 0 {
		return err
	}
	fmt.Fprintf(sh.out, "Added member %s (#%d).\n", m.Name, m.ID)
	return err
}

func (sh *shell) changePassword(memberID int64) error {
	current, err := sh.p.password("Current password: ")
	if err != nil {
		return err
	}
	next, err := sh.p.password("New password: ")
	if err != nil {
		return err
	}
	confirm, err := sh.p.password("Confirm new password: ")
	if err != nil {
		return err
	}

	if err := sh.h.ChangePassword(sh.cmd.Context(), memberID, current, next, confirm); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "Password changed successfully.")
	return nil
}

func (sh *shell) removeMember(memberID int64) error {
	m, found := sh.h.Member(memberID)
	if !found {
		return models.NewNotFoundError("member %d not found", memberID)
	}
	password, err := sh.p.password(fmt.Sprintf("Password for %s: ", m.Name))
	if err != nil {
		return err
	}

	removed, err := sh.h.RemoveMember(sh.cmd.Context(), memberID, password)
	if err != nil && !errors.Is(err, models.ErrStorage) {
		return err
	}
	fmt.Fprintf(sh.out, "Removed %s and %d private item(s).\n", m.Name, removed)
	return err
}

func (sh *shell) export(args []string) error {
	path := service.BackupFilename(time.Now())
	if len(args) > 0 {
		path = args[0]
	}
	if err := writeBackupFile(sh.cmd, sh.h, path); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Data exported to %s\n", path)
	return nil
}

func categoryList() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
