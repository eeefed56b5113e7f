package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/frogmemo/frogmemo/internal/memo"
)

const previewLength = 60

// blockItem is a list item for one memo block.
type blockItem struct {
	blk memo.Block
}

func (i blockItem) Title() string {
	return i.blk.Title + mutedStyle.Render(" "+memo.FormatLabel(i.blk.EffectiveFormat()))
}

// Description is the tags and the first content line, cut to fit the list
// on a rune boundary.
func (i blockItem) Description() string {
	desc := "#" + strings.Join(i.blk.Tags, " #")
	if first, _, _ := strings.Cut(strings.TrimSpace(i.blk.Content), "\n"); first != "" {
		desc += "  " + first
	}
	return ansi.Truncate(desc, previewLength, "…")
}

func (i blockItem) FilterValue() string { return i.blk.Title }

type bookLoadedMsg struct {
	book *memo.Book
	err  error
}

type opDoneMsg struct {
	message string
	err     error
}

// editState lives on the heap so the huh form's bound pointers survive
// model copies.
type editState struct {
	id      string
	title   string
	tags    string
	format  string
	content string
}

type model struct {
	backend Backend
	toggler Toggler
	source  string
	now     func() time.Time

	book  *memo.Book
	tab   string
	scope memo.Scope

	list      list.Model
	search    textinput.Model
	searching bool
	form      *huh.Form
	edit      *editState
	width     int
	height    int

	message string
	isErr   bool
}

func newModel(backend Backend, source string) model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Memos"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search"

	m := model{
		backend: backend,
		source:  source,
		now:     time.Now,
		tab:     memo.AllTab,
		scope:   memo.ScopeAll,
		list:    l,
		search:  search,
	}
	if t, ok := backend.(Toggler); ok {
		m.toggler = t
	}
	return m
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return m.loadBook()
}

func (m model) loadBook() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		book, err := memo.Load(backend)
		return bookLoadedMsg{book: book, err: err}
	}
}

// query is the filter the list currently shows.
func (m model) query() memo.Query {
	return memo.Query{Tab: m.tab, Term: strings.TrimSpace(m.search.Value()), Scope: m.scope}
}

// tabs are the tag tabs, "all" first.
func (m model) tabs() []string {
	tabs := []string{memo.AllTab}
	if m.book != nil {
		tabs = append(tabs, m.book.AvailableTags...)
	}
	return tabs
}

func (m *model) refresh() tea.Cmd {
	if m.book == nil {
		return nil
	}
	blocks := m.book.Filter(m.query())
	items := make([]list.Item, 0, len(blocks))
	for _, blk := range blocks {
		items = append(items, blockItem{blk: blk})
	}
	return m.list.SetItems(items)
}

func (m model) selected() (memo.Block, bool) {
	item, ok := m.list.SelectedItem().(blockItem)
	return item.blk, ok
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.listWidth(), m.contentHeight())
		return m, nil

	case bookLoadedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.book = msg.book
		if !slices.Contains(m.tabs(), m.tab) {
			m.tab = memo.AllTab
		}
		return m, m.refresh()

	case opDoneMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, m.loadBook()
		}
		m.message, m.isErr = msg.message, false
		return m, m.loadBook()
	}

	if m.form != nil {
		return m.updateEditing(msg)
	}
	if m.searching {
		return m.updateSearching(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.tab = cycle(m.tabs(), m.tab, 1)
			return m, m.refresh()
		case "shift+tab":
			m.tab = cycle(m.tabs(), m.tab, -1)
			return m, m.refresh()
		case "/":
			m.searching = true
			return m, m.search.Focus()
		case "s":
			m.scope = m.scope.Next()
			return m, m.refresh()
		case "esc":
			m.search.SetValue("")
			return m, m.refresh()
		case "r":
			m.message = ""
			return m, m.loadBook()
		case "t":
			if m.toggler == nil {
				m.message, m.isErr = "toggle needs a running daemon", true
				return m, nil
			}
			return m, m.toggleWindow()
		}
		if m.book != nil {
			if cmd, handled := m.blockCommand(km.String()); handled {
				return m, cmd
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// blockCommand runs the editing keys that need a loaded book.
func (m *model) blockCommand(key string) (tea.Cmd, bool) {
	if key == "n" || key == "a" {
		blk := m.book.Add(m.now())
		if m.tab != memo.AllTab {
			_ = m.book.SetTags(blk.ID, []string{m.tab})
		}
		return m.saveBook("added " + blk.Title), true
	}

	blk, ok := m.selected()
	if !ok {
		return nil, false
	}
	switch key {
	case "e", "enter":
		return m.startEditing(blk), true
	case "d":
		if err := m.book.Delete(blk.ID); err != nil {
			if errors.Is(err, memo.ErrLastBlock) {
				err = fmt.Errorf("cannot delete the only memo")
			}
			m.setError(err)
			return nil, true
		}
		return m.saveBook("deleted " + blk.Title), true
	case "b":
		if !memo.CanBeautify(blk.Content, blk.Format) {
			m.message, m.isErr = "nothing to beautify", true
			return nil, true
		}
		format, err := m.book.Beautify(blk.ID)
		if err != nil {
			m.setError(err)
			return nil, true
		}
		return m.saveBook("beautified as " + memo.FormatLabel(format)), true
	case "l":
		if err := m.book.ToggleLineNumbers(blk.ID); err != nil {
			m.setError(err)
			return nil, true
		}
		return m.saveBook("line numbers toggled"), true
	}
	return nil, false
}

func (m model) updateSearching(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			m.searching = false
			m.search.Blur()
			return m, nil
		case "esc":
			m.searching = false
			m.search.Blur()
			m.search.SetValue("")
			return m, m.refresh()
		case "tab":
			m.scope = m.scope.Next()
			return m, m.refresh()
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, tea.Batch(cmd, m.refresh())
}

func (m model) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.form, m.edit = nil, nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		edit := m.edit
		m.form, m.edit = nil, nil
		if err := m.applyEdit(edit); err != nil {
			m.setError(err)
			return m, m.loadBook()
		}
		return m, m.saveBook("saved " + edit.title)
	case huh.StateAborted:
		m.form, m.edit = nil, nil
		return m, nil
	}
	return m, cmd
}

func (m *model) startEditing(blk memo.Block) tea.Cmd {
	m.edit = &editState{
		id:      blk.ID,
		title:   blk.Title,
		tags:    strings.Join(blk.Tags, ", "),
		format:  blk.Format,
		content: blk.Content,
	}

	w := max(m.width-4, 40)

	options := make([]huh.Option[string], 0, len(memo.Formats))
	for _, f := range memo.Formats {
		options = append(options, huh.NewOption(f.Label, f.Value))
	}

	group := huh.NewGroup(
		huh.NewInput().
			Key("title").
			Title("Title").
			Value(&m.edit.title),
		huh.NewInput().
			Key("tags").
			Title("Tags").
			Description("Comma separated").
			Value(&m.edit.tags),
		huh.NewSelect[string]().
			Key("format").
			Title("Format").
			Options(options...).
			Value(&m.edit.format),
		huh.NewText().
			Key("content").
			Title("Content").
			Lines(10).
			Value(&m.edit.content),
	).Title("Edit memo")

	m.form = huh.NewForm(group).WithWidth(w).WithShowHelp(true).WithShowErrors(true)
	m.message = ""
	return m.form.Init()
}

// applyEdit copies a submitted form into the book. A blank title falls
// back to the default one.
func (m *model) applyEdit(edit *editState) error {
	title := strings.TrimSpace(edit.title)
	if title == "" {
		title = memo.DefaultTitle
	}
	edit.title = title
	if err := m.book.SetTitle(edit.id, title); err != nil {
		return err
	}
	if err := m.book.SetTags(edit.id, strings.Split(edit.tags, ",")); err != nil {
		return err
	}
	if err := m.book.SetFormat(edit.id, edit.format); err != nil {
		return err
	}
	return m.book.SetContent(edit.id, edit.content)
}

func (m model) saveBook(message string) tea.Cmd {
	backend, book := m.backend, m.book
	return func() tea.Msg {
		if err := memo.Save(backend, book); err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{message: message}
	}
}

func (m model) toggleWindow() tea.Cmd {
	toggler := m.toggler
	return func() tea.Msg {
		data, err := toggler.Toggle()
		if err != nil {
			return opDoneMsg{err: err}
		}
		msg := "window: " + data.Action
		if len(data.Failures) > 0 {
			msg += " (" + strings.Join(data.Failures, "; ") + ")"
		}
		return opDoneMsg{message: msg}
	}
}

func (m *model) setError(err error) {
	m.message, m.isErr = err.Error(), true
}

func (m model) listWidth() int {
	return max(m.width*2/5, 20)
}

// contentHeight leaves room for the status, tab and help bars.
func (m model) contentHeight() int {
	return max(m.height-3, 1)
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.source, m.toggler != nil, m.message, m.isErr, m.width)
	helpBar := renderHelpBar(m.mode(), m.toggler != nil, m.width)
	height := m.contentHeight()

	if m.form != nil {
		content := lipgloss.NewStyle().
			Width(m.width).
			Height(height + 1).
			Padding(1, 2).
			Render(m.form.View())
		return lipgloss.JoinVertical(lipgloss.Left, statusBar, content, helpBar)
	}

	var top string
	if m.searching || m.search.Value() != "" {
		top = renderSearchBar(m.search.View(), m.scope, m.width)
	} else {
		top = renderTabs(m.tabs(), m.tab, m.width)
	}

	left := lipgloss.NewStyle().
		Width(m.listWidth()).
		Height(height).
		Render(m.list.View())
	rightWidth := max(m.width-m.listWidth(), 10)
	content := lipgloss.JoinHorizontal(lipgloss.Top, left, m.renderDetail(rightWidth, height))

	return lipgloss.JoinVertical(lipgloss.Left, statusBar, top, content, helpBar)
}

func (m model) mode() helpMode {
	switch {
	case m.form != nil:
		return helpEditing
	case m.searching:
		return helpSearching
	default:
		return helpBrowsing
	}
}

func (m model) renderDetail(width, height int) string {
	blk, ok := m.selected()
	if !ok {
		msg := "No memos here\nPress n to add one"
		if m.search.Value() != "" {
			msg = "No memos match the search"
		}
		return mutedStyle.
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(msg)
	}

	header := titleStyle.Render(blk.Title) + " " +
		mutedStyle.Render(memo.FormatLabel(blk.EffectiveFormat())+"  #"+strings.Join(blk.Tags, " #"))
	body := blk.Content
	if blk.ShowLineNumbers {
		body = numberLines(body)
	}
	if body == "" {
		body = mutedStyle.Render("(empty)")
	}
	return lipgloss.NewStyle().Width(width).Height(height).
		Render(header + "\n\n" + valueStyle.Width(max(width-2, 4)).Render(body))
}

func numberLines(s string) string {
	lines := strings.Split(s, "\n")
	digits := len(fmt.Sprint(len(lines)))
	for i, line := range lines {
		lines[i] = mutedStyle.Render(fmt.Sprintf("%*d ", digits, i+1)) + line
	}
	return strings.Join(lines, "\n")
}

// cycle steps through values from cur, wrapping at either end.
func cycle(values []string, cur string, step int) string {
	if len(values) == 0 {
		return cur
	}
	i := 0
	for j, v := range values {
		if v == cur {
			i = j
			break
		}
	}
	i = (i + step + len(values)) % len(values)
	return values[i]
}
