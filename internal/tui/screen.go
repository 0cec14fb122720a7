package tui

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/odyssey-erp/odyssey-backoffice/internal/apiclient"
	"github.com/odyssey-erp/odyssey-backoffice/internal/listing"
)

// Store is the CRUD surface behind a list screen. *apiclient.Resource
// satisfies it.
type Store[T listing.Resource, P any] interface {
	listing.Fetcher[T]
	All(ctx context.Context, scope string) ([]T, error)
	Create(ctx context.Context, payload P) (T, error)
	Update(ctx context.Context, id int64, payload P) (T, error)
	Delete(ctx context.Context, id int64) error
}

type option struct {
	value string
	label string
}

type filterDef struct {
	key   string
	label string
	// values lists the choices for scope; the first one clears the filter.
	values func(scope string) []option
}

// editor holds the values of one create or edit session. The values outlive
// the huh form, so a rejected submit reopens the form with them intact.
type editor[P any] interface {
	form() *huh.Form
	payload() (P, error)
}

type screenDef[T listing.Resource, P any] struct {
	title   string
	noun    string
	scoped  bool
	filters []filterDef
	columns []table.Column
	row     func(T) table.Row
	label   func(T) string
	// edit starts an editor for item, or for a new entity when item is nil.
	edit func(scope string, item *T) (editor[P], error)
}

type screen interface {
	Title() string
	Scoped() bool
	// Busy reports whether the screen captures every key (search or modal).
	Busy() bool
	Start(scope string)
	SetScope(scope string)
	Listen() tea.Cmd
	Resize(width, height int)
	Update(msg tea.Msg) tea.Cmd
	View(spin string) string
	Help() string
	Close()
}

type screenMode int

const (
	modeBrowse screenMode = iota
	modeSearch
	modeForm
	modeConfirm
)

type changedMsg struct{ screen int }

type savedMsg struct {
	screen int
	kind   listing.MutationKind
	id     int64
	err    error
}

type deletedMsg struct {
	screen int
	id     int64
	err    error
}

type toastMsg struct {
	text string
	err  bool
}

func toast(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return toastMsg{text: text, err: isErr} }
}

type listScreen[T listing.Resource, P any] struct {
	index  int
	def    screenDef[T, P]
	store  Store[T, P]
	ctrl   *listing.Controller[T]
	ctx    context.Context
	logger *slog.Logger

	table  table.Model
	search textinput.Model
	items  []T
	mode   screenMode
	scope  string
	width  int
	height int

	filterIdx int

	editor  editor[P]
	form    *huh.Form
	editing *T
	formErr string

	confirm    *T
	confirmErr string

	pending bool
}

func newListScreen[T listing.Resource, P any](
	ctx context.Context,
	index int,
	def screenDef[T, P],
	store Store[T, P],
	opts listing.Options,
	logger *slog.Logger,
) *listScreen[T, P] {
	keys := make([]string, 0, len(def.filters))
	for _, f := range def.filters {
		keys = append(keys, f.key)
	}
	opts.FilterKeys = keys
	opts.Logger = logger.With(slog.String("screen", def.title))
	if opts.ErrorMessage == nil {
		opts.ErrorMessage = apiclient.UserMessage
	}

	search := textinput.New()
	search.Placeholder = "search " + strings.ToLower(def.title)
	search.Prompt = "/ "
	search.CharLimit = 100

	t := table.New(
		table.WithColumns(def.columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	return &listScreen[T, P]{
		index:  index,
		def:    def,
		store:  store,
		ctrl:   listing.New[T](ctx, store, opts),
		ctx:    ctx,
		logger: logger,
		table:  t,
		search: search,
	}
}

func (s *listScreen[T, P]) Title() string { return s.def.title }
func (s *listScreen[T, P]) Scoped() bool  { return s.def.scoped }
func (s *listScreen[T, P]) Busy() bool    { return s.mode != modeBrowse }
func (s *listScreen[T, P]) Close()        { s.ctrl.Close() }

func (s *listScreen[T, P]) Start(scope string) {
	if s.def.scoped && scope != "" {
		s.scope = scope
		s.ctrl.SetScope(scope)
		return
	}
	s.ctrl.Start()
}

func (s *listScreen[T, P]) SetScope(scope string) {
	if !s.def.scoped {
		return
	}
	s.scope = scope
	s.ctrl.SetScope(scope)
}

// Listen waits for the next controller change.
func (s *listScreen[T, P]) Listen() tea.Cmd {
	ch := s.ctrl.Changes()
	index := s.index
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{screen: index}
	}
}

func (s *listScreen[T, P]) Resize(width, height int) {
	s.width, s.height = width, height
	s.table.SetHeight(max(3, height))
	s.search.Width = max(20, width/3)
	if s.form != nil {
		s.form = s.form.WithWidth(min(width, 72))
	}
}

func (s *listScreen[T, P]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case changedMsg:
		s.sync()
		return nil
	case savedMsg:
		return s.handleSaved(msg)
	case deletedMsg:
		return s.handleDeleted(msg)
	case tea.KeyMsg:
		switch s.mode {
		case modeSearch:
			return s.updateSearch(msg)
		case modeForm:
			return s.updateForm(msg)
		case modeConfirm:
			return s.updateConfirm(msg)
		default:
			return s.updateBrowse(msg)
		}
	}
	if s.mode == modeForm && s.form != nil {
		return s.updateForm(msg)
	}
	return nil
}

func (s *listScreen[T, P]) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "/":
		s.mode = modeSearch
		return s.search.Focus()
	case "esc":
		if s.search.Value() != "" {
			s.search.SetValue("")
			s.ctrl.SetSearchText("")
		}
	case "n":
		return s.openForm(nil)
	case "e", "enter":
		if item := s.selected(); item != nil {
			return s.openForm(item)
		}
	case "d", "delete":
		if item := s.selected(); item != nil {
			s.confirm = item
			s.confirmErr = ""
			s.mode = modeConfirm
		}
	case "f":
		s.cycleFilter()
	case "F":
		if len(s.def.filters) > 0 {
			s.filterIdx = (s.filterIdx + 1) % len(s.def.filters)
		}
	case "s":
		s.cyclePageSize()
	case "right", "l", "pgdown", "]":
		_ = s.ctrl.NextPage()
	case "left", "h", "pgup", "[":
		_ = s.ctrl.PrevPage()
	case "r":
		s.ctrl.Refresh()
	default:
		var cmd tea.Cmd
		s.table, cmd = s.table.Update(msg)
		return cmd
	}
	return nil
}

func (s *listScreen[T, P]) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "enter", "tab":
		s.mode = modeBrowse
		s.search.Blur()
		return nil
	}
	before := s.search.Value()
	var cmd tea.Cmd
	s.search, cmd = s.search.Update(msg)
	if after := s.search.Value(); after != before {
		s.ctrl.SetSearchText(after)
	}
	return cmd
}

func (s *listScreen[T, P]) cycleFilter() {
	if len(s.def.filters) == 0 {
		return
	}
	f := s.def.filters[s.filterIdx]
	values := f.values(s.scope)
	if len(values) == 0 {
		return
	}
	current := s.ctrl.State().Query.Filters[f.key]
	next := 0
	for i, v := range values {
		if v.value == current {
			next = (i + 1) % len(values)
			break
		}
	}
	if err := s.ctrl.SetFilter(f.key, values[next].value); err != nil {
		s.logger.Warn("set filter", slog.String("key", f.key), slog.Any("error", err))
	}
}

func (s *listScreen[T, P]) cyclePageSize() {
	sizes := s.ctrl.PageSizes()
	current := slices.Index(sizes, s.ctrl.State().Query.PageSize)
	_ = s.ctrl.SetPageSize(sizes[(current+1)%len(sizes)])
}

func (s *listScreen[T, P]) selected() *T {
	i := s.table.Cursor()
	if i < 0 || i >= len(s.items) {
		return nil
	}
	item := s.items[i]
	return &item
}

// sync copies the controller state into the table.
func (s *listScreen[T, P]) sync() {
	st := s.ctrl.State()
	s.items = st.Items()
	rows := make([]table.Row, 0, len(s.items))
	for _, item := range s.items {
		rows = append(rows, s.def.row(item))
	}
	s.table.SetRows(rows)
	if s.table.Cursor() >= len(rows) {
		s.table.SetCursor(max(0, len(rows)-1))
	}
	if s.mode != modeSearch && s.search.Value() != st.SearchInput {
		s.search.SetValue(st.SearchInput)
	}
}

func (s *listScreen[T, P]) openForm(item *T) tea.Cmd {
	ed, err := s.def.edit(s.scope, item)
	if err != nil {
		return toast(err.Error(), true)
	}
	s.editor = ed
	s.editing = item
	s.formErr = ""
	s.mode = modeForm
	s.buildForm()
	return s.form.Init()
}

func (s *listScreen[T, P]) buildForm() {
	s.form = s.editor.form().WithShowHelp(true).WithWidth(min(max(s.width, 40), 72))
}

func (s *listScreen[T, P]) closeForm() {
	s.mode = modeBrowse
	s.form = nil
	s.editor = nil
	s.editing = nil
	s.formErr = ""
}

func (s *listScreen[T, P]) updateForm(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		if !s.pending {
			s.closeForm()
		}
		return nil
	}
	if s.pending || s.form == nil {
		return nil
	}
	model, cmd := s.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		s.form = f
	}
	switch s.form.State {
	case huh.StateCompleted:
		return s.submit()
	case huh.StateAborted:
		s.closeForm()
		return nil
	}
	return cmd
}

// submit sends the current editor values to the server.
func (s *listScreen[T, P]) submit() tea.Cmd {
	payload, err := s.editor.payload()
	if err != nil {
		s.formErr = err.Error()
		s.buildForm()
		return s.form.Init()
	}
	s.pending = true
	s.formErr = ""

	ctx, store, index := s.ctx, s.store, s.index
	if s.editing == nil {
		return func() tea.Msg {
			created, err := store.Create(ctx, payload)
			return savedMsg{screen: index, kind: listing.MutationCreated, id: created.ResourceID(), err: err}
		}
	}
	id := (*s.editing).ResourceID()
	return func() tea.Msg {
		_, err := store.Update(ctx, id, payload)
		return savedMsg{screen: index, kind: listing.MutationUpdated, id: id, err: err}
	}
}

func (s *listScreen[T, P]) handleSaved(msg savedMsg) tea.Cmd {
	s.pending = false
	if s.mode != modeForm {
		return nil
	}
	if msg.err != nil {
		s.logger.Info("save rejected", slog.String("screen", s.def.title), slog.Any("error", msg.err))
		s.formErr = apiclient.UserMessage(msg.err)
		s.buildForm()
		return s.form.Init()
	}
	s.logger.Info("saved", slog.String("screen", s.def.title), slog.String("kind", msg.kind.String()), slog.Int64("id", msg.id))
	s.closeForm()
	s.ctrl.RequestMutationSync(listing.Mutation{Kind: msg.kind, ID: msg.id})
	return toast(fmt.Sprintf("%s %s", s.def.noun, msg.kind), false)
}

func (s *listScreen[T, P]) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	if s.pending {
		return nil
	}
	switch msg.String() {
	case "y", "enter":
		if s.confirm == nil {
			s.mode = modeBrowse
			return nil
		}
		s.pending = true
		s.confirmErr = ""
		ctx, store, index, id := s.ctx, s.store, s.index, (*s.confirm).ResourceID()
		return func() tea.Msg {
			return deletedMsg{screen: index, id: id, err: store.Delete(ctx, id)}
		}
	case "n", "esc", "q":
		s.mode = modeBrowse
		s.confirm = nil
		s.confirmErr = ""
	}
	return nil
}

func (s *listScreen[T, P]) handleDeleted(msg deletedMsg) tea.Cmd {
	s.pending = false
	if msg.err != nil {
		// The list stays as it was; only the modal reports the rejection.
		s.logger.Info("delete rejected", slog.String("screen", s.def.title), slog.Int64("id", msg.id), slog.Any("error", msg.err))
		s.confirmErr = apiclient.UserMessage(msg.err)
		return nil
	}
	s.logger.Info("deleted", slog.String("screen", s.def.title), slog.Int64("id", msg.id))
	s.mode = modeBrowse
	s.confirm = nil
	s.ctrl.RequestMutationSync(listing.Mutation{Kind: listing.MutationDeleted, ID: msg.id})
	s.sync()
	return toast(fmt.Sprintf("%s deleted", s.def.noun), false)
}

func (s *listScreen[T, P]) View(spin string) string {
	switch s.mode {
	case modeForm:
		return s.viewForm()
	case modeConfirm:
		return s.viewConfirm()
	}

	st := s.ctrl.State()
	var b strings.Builder
	b.WriteString(s.search.View())
	if st.Debouncing || st.Status == listing.StatusLoading {
		b.WriteString("  " + spin)
	}
	b.WriteString("\n")
	b.WriteString(s.viewFilters(st.Query))
	b.WriteString("\n\n")

	switch st.Display() {
	case listing.DisplayIdle:
		b.WriteString(mutedStyle.Render("waiting for a branch..."))
	case listing.DisplayLoading:
		b.WriteString(spin + " Loading " + strings.ToLower(s.def.title) + "...")
	case listing.DisplayEmpty:
		if st.Query.Search != "" || len(st.Query.Filters) > 0 {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("No %s match the current search and filters.", strings.ToLower(s.def.title))))
		} else {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("No %s yet.", strings.ToLower(s.def.title))))
		}
		b.WriteString("\n" + mutedStyle.Render("Press n to create one."))
	case listing.DisplayError:
		msg := "request failed"
		if st.LastError != nil {
			msg = st.LastError.Message
		}
		b.WriteString(errorBoxStyle.Render(errorStyle.Render(msg) + "\n" + mutedStyle.Render("press r to retry")))
		if st.Result != nil && len(st.Result.Items) > 0 {
			b.WriteString("\n" + s.table.View())
		}
	default:
		b.WriteString(s.table.View())
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(pageIndicator(st)))
	return b.String()
}

func (s *listScreen[T, P]) viewFilters(q listing.Query) string {
	parts := make([]string, 0, len(s.def.filters)+1)
	for i, f := range s.def.filters {
		label := "all"
		if v := q.Filters[f.key]; v != "" {
			label = v
			for _, o := range f.values(s.scope) {
				if o.value == v {
					label = o.label
				}
			}
		}
		text := f.label + ": " + label
		if i == s.filterIdx {
			text = titleStyle.Render(text)
		} else {
			text = mutedStyle.Render(text)
		}
		parts = append(parts, text)
	}
	parts = append(parts, mutedStyle.Render(fmt.Sprintf("per page: %d", q.PageSize)))
	return strings.Join(parts, "   ")
}

func (s *listScreen[T, P]) viewForm() string {
	title := "New " + s.def.noun
	if s.editing != nil {
		title = "Edit " + s.def.noun + " " + s.def.label(*s.editing)
	}
	body := titleStyle.Render(title) + "\n\n"
	if s.formErr != "" {
		body += errorStyle.Render(s.formErr) + "\n\n"
	}
	if s.pending {
		body += mutedStyle.Render("saving...")
	} else if s.form != nil {
		body += s.form.View()
	}
	return modalStyle.Render(body)
}

func (s *listScreen[T, P]) viewConfirm() string {
	name := ""
	if s.confirm != nil {
		name = s.def.label(*s.confirm)
	}
	body := titleStyle.Render("Delete "+s.def.noun) + "\n\n" +
		fmt.Sprintf("Delete %s %s?", s.def.noun, name) + "\n\n"
	switch {
	case s.pending:
		body += mutedStyle.Render("deleting...")
	case s.confirmErr != "":
		body += errorStyle.Render(s.confirmErr) + "\n\n" + mutedStyle.Render("esc to close")
	default:
		body += mutedStyle.Render("y to delete, n to cancel")
	}
	return modalStyle.BorderForeground(colorError).Render(body)
}

func pageIndicator[T any](st listing.State[T]) string {
	if st.Result == nil {
		return "page -/- (total 0)"
	}
	return fmt.Sprintf("page %d/%d (total %d)", st.Result.CurrentPage, st.Result.LastPage, st.Result.Total)
}

func (s *listScreen[T, P]) Help() string {
	switch s.mode {
	case modeSearch:
		return "type to search • enter/esc done"
	case modeForm:
		return "tab/shift+tab move • enter next/submit • esc cancel"
	case modeConfirm:
		return "y confirm • n/esc cancel"
	}
	h := "/ search • n new • e edit • d delete • ←/→ page • s page size • r refresh"
	if len(s.def.filters) > 0 {
		h += " • f filter value • F next filter"
	}
	return h
}
