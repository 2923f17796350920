package tui

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/thomcc/radix-sorter/analysis"
	"github.com/thomcc/radix-sorter/output"
)

// App represents the TUI application
type App struct {
	app          *tview.Application
	pages        *tview.Pages
	progressView *tview.TextView
	resultsView  *tview.Flex
	statusBar    *tview.TextView

	// Results panels
	summary        *tview.TextView
	histogram      *tview.TextView
	rows           *tview.TextView
	diagnostics    *tview.TextView
	focusableItems []tview.Primitive
	focusTitles    []string
	currentFocus   int

	inputs []string

	// Shared mutable state protected by mu (accessed from background goroutines)
	mu      sync.Mutex
	result  *output.JSONOutput
	columns []*analysis.SortedColumn
	current int

	analysisComplete atomic.Bool

	// Rendered panel text per column
	cachedTexts map[int]panelTexts
}

type panelTexts struct {
	summary   string
	histogram string
	rows      string
}

// NewApp creates a TUI for the named inputs. Results arrive later through
// SetResults or ShowError.
func NewApp(inputs []string) *App {
	a := &App{
		app:         tview.NewApplication(),
		pages:       tview.NewPages(),
		inputs:      inputs,
		cachedTexts: make(map[int]panelTexts),
	}
	a.setupUI()
	return a
}

// SetResults hands the finished analysis to the TUI and switches to the
// results page.
func (a *App) SetResults(result *output.JSONOutput, columns []*analysis.SortedColumn) {
	if len(columns) == 0 {
		a.ShowError("Analysis completed but returned no results")
		return
	}

	a.mu.Lock()
	a.result = result
	a.columns = columns
	a.current = 0
	a.mu.Unlock()

	a.analysisComplete.Store(true)

	a.app.QueueUpdateDraw(func() {
		a.displayResults()
		a.updateStatusBar()
		a.pages.SwitchToPage("results")
	})
}

// ShowError displays an error message in the TUI and stops the progress animation
func (a *App) ShowError(message string) {
	a.app.QueueUpdateDraw(func() {
		a.progressView.SetText(fmt.Sprintf("[red]Error:[white] %s\n\n[yellow]Press 'q' to quit[white]", message))
		a.statusBar.SetText("[red]Analysis failed[white] | Press 'q' to quit")
	})
	a.analysisComplete.Store(true)
}

func (a *App) setupUI() {
	a.progressView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false).
		SetWrap(false)
	a.progressView.SetBorder(true).SetTitle(" radix-sorter Progress ").SetTitleAlign(tview.AlignCenter)

	a.resultsView = tview.NewFlex().SetDirection(tview.FlexRow)
	a.setupResultsView()

	a.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetText("[yellow]Sorting...[white] | Press 'q' to quit")
	a.statusBar.SetBorder(false)

	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.progressView, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	results := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.resultsView, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.pages.AddPage("progress", main, true, true)
	a.pages.AddPage("results", results, true, false)

	a.app.SetInputCapture(a.handleKey)
	a.app.SetRoot(a.pages, true)
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Rune() {
	case 'q', 'Q':
		a.app.Stop()
		return nil
	case 'n', 'N':
		if a.analysisComplete.Load() {
			a.nextColumn()
		}
		return nil
	}

	frontPageName, _ := a.pages.GetFrontPage()
	if !a.analysisComplete.Load() || frontPageName != "results" {
		return event
	}

	switch event.Key() {
	case tcell.KeyTab:
		a.nextFocus()
		return nil
	case tcell.KeyBacktab:
		a.prevFocus()
		return nil
	case tcell.KeyDown:
		a.scrollFocused(1)
		return nil
	case tcell.KeyUp:
		a.scrollFocused(-1)
		return nil
	case tcell.KeyPgDn:
		a.scrollFocused(10)
		return nil
	case tcell.KeyPgUp:
		a.scrollFocused(-10)
		return nil
	}
	return event
}

func (a *App) setupResultsView() {
	a.summary = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	a.summary.SetBorder(true).SetTitle(" Summary ").SetTitleAlign(tview.AlignLeft)

	a.histogram = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	a.histogram.SetBorder(true).SetTitleAlign(tview.AlignLeft)

	a.rows = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	a.rows.SetBorder(true).SetTitleAlign(tview.AlignLeft)

	a.diagnostics = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	a.diagnostics.SetBorder(true).SetTitleAlign(tview.AlignLeft)

	a.focusableItems = []tview.Primitive{a.histogram, a.rows, a.diagnostics}
	a.focusTitles = []string{"Key Byte Histograms", "Sorted Rows", "Diagnostics"}
	a.currentFocus = 0
	a.updateFocusBorders()

	bottomRow := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(a.histogram, 0, 2, false).
		AddItem(a.rows, 0, 1, false).
		AddItem(a.diagnostics, 0, 1, false)

	a.resultsView.
		AddItem(a.summary, 6, 0, false).
		AddItem(bottomRow, 0, 1, false)
}

// Run starts the TUI application
func (a *App) Run() error {
	go a.animateProgress()
	return a.app.Run()
}

func (a *App) animateProgress() {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	inputs := strings.Join(a.inputs, ", ")

	for tick := 0; !a.analysisComplete.Load(); tick++ {
		content := fmt.Sprintf(`
[white::b]radix-sorter[white::-]

[cyan]%s[white] Parsing and sorting %d inputs

[dim]Inputs:[white] %s

[dim]Press 'q' to quit[white]
`, frames[tick%len(frames)], len(a.inputs), inputs)

		a.app.QueueUpdateDraw(func() {
			a.progressView.SetText(content)
		})
		time.Sleep(100 * time.Millisecond)
	}
}

// nextColumn cycles to the next sorted column
func (a *App) nextColumn() {
	a.mu.Lock()
	if len(a.columns) < 2 {
		a.mu.Unlock()
		return
	}
	a.current = (a.current + 1) % len(a.columns)
	a.mu.Unlock()

	a.displayResults()
	a.updateStatusBar()
}

// texts returns the rendered panels for column i, building them once.
func (a *App) texts(i int) panelTexts {
	if t, ok := a.cachedTexts[i]; ok {
		return t
	}
	sc := a.columns[i]
	t := panelTexts{
		summary:   buildSummaryText(sc.Result, i, len(a.columns)),
		histogram: buildHistogramText(sc.Result),
		rows:      buildRowsText(sc),
	}
	a.cachedTexts[i] = t
	return t
}

func (a *App) displayResults() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.columns) == 0 {
		return
	}

	t := a.texts(a.current)
	a.summary.SetText(t.summary)
	a.histogram.SetText(t.histogram).ScrollToBeginning()
	a.rows.SetText(t.rows).ScrollToBeginning()
	a.diagnostics.SetText(buildDiagnosticsText(a.result))
}

// Navigation helper functions
func (a *App) nextFocus() {
	a.currentFocus = (a.currentFocus + 1) % len(a.focusableItems)
	a.updateFocusBorders()
	a.updateStatusBar()
}

func (a *App) prevFocus() {
	a.currentFocus = (a.currentFocus - 1 + len(a.focusableItems)) % len(a.focusableItems)
	a.updateFocusBorders()
	a.updateStatusBar()
}

func (a *App) scrollFocused(delta int) {
	tv, ok := a.focusableItems[a.currentFocus].(*tview.TextView)
	if !ok {
		return
	}
	row, col := tv.GetScrollOffset()
	row += delta
	if row < 0 {
		row = 0
	}
	tv.ScrollTo(row, col)
}

func (a *App) updateFocusBorders() {
	for i, item := range a.focusableItems {
		if tv, ok := item.(*tview.TextView); ok {
			if i == a.currentFocus {
				tv.SetBorderColor(tcell.ColorYellow).SetTitle(fmt.Sprintf(" [::b]%s[FOCUSED] ", a.focusTitles[i]))
			} else {
				tv.SetBorderColor(tcell.ColorDefault).SetTitle(fmt.Sprintf(" %s ", a.focusTitles[i]))
			}
		}
	}
}

func (a *App) updateStatusBar() {
	if !a.analysisComplete.Load() {
		a.statusBar.SetText("[yellow]Sorting...[white] | Press 'q' to quit")
		return
	}

	a.mu.Lock()
	total, current := len(a.columns), a.current
	var name string
	if total > 0 {
		name = a.columns[current].Result.Name
	}
	a.mu.Unlock()

	a.statusBar.SetText(fmt.Sprintf("[green]Sorting complete![white] | [yellow]%s[white] focused | [cyan]%s (%d/%d)[white] | Tab/Shift+Tab: panels, 'n': next column, ↑↓: scroll, 'q': quit",
		a.focusTitles[a.currentFocus], name, current+1, total))
}
