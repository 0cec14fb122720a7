// Package tui implements the back-office terminal screens.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-backoffice/internal/apiclient"
	"github.com/odyssey-erp/odyssey-backoffice/internal/listing"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/branches"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/categories"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/products"
	"github.com/odyssey-erp/odyssey-backoffice/internal/sales/customers"
)

// Tab order.
const (
	tabBranches = iota
	tabCustomers
	tabProducts
	tabCategories
)

const toastTTL = 4 * time.Second

// Backend is the set of stores the screens talk to.
type Backend struct {
	Branches   Store[branches.Branch, branches.BranchForm]
	Customers  Store[customers.Customer, customers.CustomerForm]
	Products   Store[products.Product, products.ProductForm]
	Categories Store[categories.Category, categories.CategoryForm]
}

// NewBackend binds the REST resources of client.
func NewBackend(client *apiclient.Client) Backend {
	return Backend{
		Branches:   apiclient.NewResource[branches.Branch, branches.BranchForm](client, "/branches", ""),
		Customers:  apiclient.NewResource[customers.Customer, customers.CustomerForm](client, "/customers", "branch_id"),
		Products:   apiclient.NewResource[products.Product, products.ProductForm](client, "/products", "branch_id"),
		Categories: apiclient.NewResource[categories.Category, categories.CategoryForm](client, "/categories", "branch_id"),
	}
}

// Options configures the application model.
type Options struct {
	Logger       *slog.Logger
	Locale       string
	PageSize     int
	Debounce     time.Duration
	FetchTimeout time.Duration
	// InitialBranch is a branch code; the default branch is used when empty or unknown.
	InitialBranch string
	// InitialScreen is a tab title such as "products".
	InitialScreen string
}

type lookupsMsg struct {
	branches   []branches.Branch
	categories []categories.Category
	err        error
}

type toastExpiredMsg struct{ gen int }

// Model is the root Bubble Tea model.
type Model struct {
	ctx     context.Context
	opts    Options
	backend Backend
	logger  *slog.Logger

	lookups *lookups
	screens []screen
	active  int
	scope   string
	started bool

	picker       bool
	pickerCursor int

	toast    string
	toastErr bool
	toastGen int
	loadErr  string

	spinner  spinner.Model
	width    int
	height   int
	quitting bool
}

// New builds the root model. Controllers are created immediately and start
// fetching once the branch list is known.
func New(ctx context.Context, backend Backend, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lk := &lookups{}
	money := newMoneyFormatter(opts.Locale)
	ctrlOpts := listing.Options{
		DefaultPageSize: opts.PageSize,
		Debounce:        opts.Debounce,
		FetchTimeout:    opts.FetchTimeout,
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorAccent)

	m := &Model{
		ctx:     ctx,
		opts:    opts,
		backend: backend,
		logger:  logger,
		lookups: lk,
		spinner: s,
	}
	m.screens = []screen{
		tabBranches:   newListScreen(ctx, tabBranches, branchScreen(), backend.Branches, ctrlOpts, logger),
		tabCustomers:  newListScreen(ctx, tabCustomers, customerScreen(money), backend.Customers, ctrlOpts, logger),
		tabProducts:   newListScreen(ctx, tabProducts, productScreen(money, lk), backend.Products, ctrlOpts, logger),
		tabCategories: newListScreen(ctx, tabCategories, categoryScreen(), backend.Categories, ctrlOpts, logger),
	}
	for i, sc := range m.screens {
		if strings.EqualFold(sc.Title(), opts.InitialScreen) {
			m.active = i
		}
	}
	return m
}

// Close stops every controller.
func (m *Model) Close() {
	for _, s := range m.screens {
		s.Close()
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadLookups())
}

// loadLookups fetches branches and categories concurrently.
func (m *Model) loadLookups() tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		var msg lookupsMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			msg.branches, err = backend.Branches.All(gctx, "")
			if err != nil {
				return fmt.Errorf("load branches: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			msg.categories, err = backend.Categories.All(gctx, "")
			if err != nil {
				return fmt.Errorf("load categories: %w", err)
			}
			return nil
		})
		msg.err = g.Wait()
		return msg
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		for _, s := range m.screens {
			s.Resize(msg.Width, msg.Height-12)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case lookupsMsg:
		return m, m.handleLookups(msg)

	case changedMsg:
		s := m.screens[msg.screen]
		return m, tea.Batch(s.Update(msg), s.Listen())

	case savedMsg:
		cmd := m.screens[msg.screen].Update(msg)
		if msg.err == nil && (msg.screen == tabBranches || msg.screen == tabCategories) {
			cmd = tea.Batch(cmd, m.loadLookups())
		}
		return m, cmd

	case deletedMsg:
		cmd := m.screens[msg.screen].Update(msg)
		if msg.err == nil && (msg.screen == tabBranches || msg.screen == tabCategories) {
			cmd = tea.Batch(cmd, m.loadLookups())
		}
		return m, cmd

	case toastMsg:
		m.toast, m.toastErr = msg.text, msg.err
		m.toastGen++
		gen := m.toastGen
		return m, tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{gen: gen} })

	case toastExpiredMsg:
		if msg.gen == m.toastGen {
			m.toast = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	// huh fields exchange their own messages while a form is open.
	return m, m.screens[m.active].Update(msg)
}

func (m *Model) handleLookups(msg lookupsMsg) tea.Cmd {
	if msg.err != nil {
		m.loadErr = apiclient.UserMessage(msg.err)
		m.logger.Warn("load lookups", slog.Any("error", msg.err))
	} else {
		m.loadErr = ""
		m.lookups.branches = msg.branches
		m.lookups.categories = msg.categories
	}

	if !m.started {
		m.started = true
		m.scope = m.initialScope()
		cmds := make([]tea.Cmd, 0, len(m.screens))
		for _, s := range m.screens {
			s.Start(m.scope)
			cmds = append(cmds, s.Listen())
		}
		m.logger.Info("screens started", slog.String("scope", m.scope))
		return tea.Batch(cmds...)
	}

	if msg.err != nil {
		return nil
	}
	if _, ok := m.lookups.branch(m.scope); m.scope == "" || !ok {
		m.setScope(m.initialScope())
	}
	return nil
}

func (m *Model) initialScope() string {
	var def, first string
	for _, b := range m.lookups.branches {
		id := strconv.FormatInt(b.ID, 10)
		if m.opts.InitialBranch != "" && strings.EqualFold(b.Code, m.opts.InitialBranch) {
			return id
		}
		if b.IsDefault {
			def = id
		}
		if first == "" {
			first = id
		}
	}
	if def != "" {
		return def
	}
	return first
}

func (m *Model) setScope(scope string) {
	m.scope = scope
	for _, s := range m.screens {
		s.SetScope(scope)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return tea.Quit
	}
	if m.picker {
		return m.updatePicker(msg)
	}
	s := m.screens[m.active]
	if s.Busy() {
		return s.Update(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return tea.Quit
	case "1", "2", "3", "4":
		m.active = int(msg.String()[0] - '1')
	case "tab":
		m.active = (m.active + 1) % len(m.screens)
	case "shift+tab":
		m.active = (m.active + len(m.screens) - 1) % len(m.screens)
	case "b":
		if len(m.lookups.branches) > 0 {
			m.picker = true
			m.pickerCursor = 0
			for i, b := range m.lookups.branches {
				if strconv.FormatInt(b.ID, 10) == m.scope {
					m.pickerCursor = i
				}
			}
		}
	case "ctrl+r":
		return m.loadLookups()
	default:
		return s.Update(msg)
	}
	return nil
}

func (m *Model) updatePicker(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
	case "down", "j":
		if m.pickerCursor < len(m.lookups.branches)-1 {
			m.pickerCursor++
		}
	case "enter":
		m.picker = false
		b := m.lookups.branches[m.pickerCursor]
		m.setScope(strconv.FormatInt(b.ID, 10))
		return toast("branch: "+b.Code+" "+b.Name, false)
	case "esc", "b", "q":
		m.picker = false
	}
	return nil
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	header := titleStyle.Render("Odyssey Back-Office")
	if br, ok := m.lookups.branch(m.scope); ok {
		header += mutedStyle.Render("   branch: ") + br.Code + " " + br.Name
	}
	b.WriteString(header + "\n\n")

	tabs := make([]string, 0, len(m.screens))
	for i, s := range m.screens {
		label := fmt.Sprintf("%d %s", i+1, s.Title())
		if i == m.active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n\n")

	if m.loadErr != "" {
		b.WriteString(errorStyle.Render(m.loadErr) + mutedStyle.Render("  (ctrl+r to retry)") + "\n\n")
	}

	switch {
	case !m.started:
		b.WriteString(m.spinner.View() + " Loading branches...")
	case m.picker:
		b.WriteString(m.viewPicker())
	default:
		b.WriteString(m.screens[m.active].View(m.spinner.View()))
	}
	b.WriteString("\n")

	if m.toast != "" {
		if m.toastErr {
			b.WriteString(errorStyle.Render(m.toast))
		} else {
			b.WriteString(okStyle.Render(m.toast))
		}
	}

	help := "1-4/tab switch • b branch • ctrl+r reload • q quit"
	if m.started && !m.picker {
		help = m.screens[m.active].Help() + "\n" + help
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

func (m *Model) viewPicker() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Select branch") + "\n\n")
	for i, br := range m.lookups.branches {
		cursor := "  "
		if i == m.pickerCursor {
			cursor = "> "
		}
		line := cursor + br.Code + "  " + br.Name
		if br.IsDefault {
			line += mutedStyle.Render("  (default)")
		}
		if strconv.FormatInt(br.ID, 10) == m.scope {
			line = titleStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("enter select • esc cancel"))
	return modalStyle.Render(b.String())
}
