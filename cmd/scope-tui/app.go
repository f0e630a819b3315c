package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/unklstewy/skysentry/pkg/adsb"
	"github.com/unklstewy/skysentry/pkg/config"
	"github.com/unklstewy/skysentry/pkg/coordinates"
	"github.com/unklstewy/skysentry/pkg/plot"
)

// App drives the live scope: a plotted view of the receiver feed with a
// nearest-aircraft table, refreshed on a timer.
type App struct {
	cfg     *config.Config
	feed    adsb.FeedSource
	antenna coordinates.Geographic

	tviewApp   *tview.Application
	scope      *tview.TextView
	table      *tview.TextView
	status     *tview.TextView
	logs       *tview.TextView
	rootLayout *tview.Flex

	plotOpts plot.Options

	mu          sync.RWMutex
	aircraft    []adsb.Aircraft
	lastUpdate  time.Time
	paused      bool
	updateTimer *time.Ticker
	stopChan    chan struct{}
	stopOnce    sync.Once
}

// NewApp creates the scope application for the given feed.
func NewApp(cfg *config.Config, feed adsb.FeedSource) *App {
	app := &App{
		cfg:     cfg,
		feed:    feed,
		antenna: cfg.Antenna.Position(),
		plotOpts: plot.Options{
			Width:          cfg.Plot.Width,
			Height:         cfg.Plot.Height,
			LatSpan:        cfg.Plot.LatSpan,
			LonSpan:        cfg.Plot.LonSpan,
			AltThresholdFt: cfg.Plot.AltThresholdFt,
		},
		stopChan: make(chan struct{}),
	}

	app.setupUI()
	return app
}

// setupUI initializes the user interface
func (a *App) setupUI() {
	a.tviewApp = tview.NewApplication()

	a.scope = tview.NewTextView().
		SetDynamicColors(false).
		SetScrollable(false)
	a.scope.SetBorder(true).SetTitle(" Scope ")

	a.table = tview.NewTextView().
		SetDynamicColors(false).
		SetScrollable(false)
	a.table.SetBorder(true).SetTitle(" Nearest Aircraft ")

	a.status = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	a.status.SetBorder(true).SetTitle(" Status ")

	a.logs = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetMaxLines(100)
	a.logs.SetBorder(true).SetTitle(" Logs ")

	sidebar := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.status, 0, 3, false).
		AddItem(a.table, 0, 5, false).
		AddItem(a.logs, 0, 2, false)

	a.rootLayout = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.scope, 0, 6, true).
		AddItem(sidebar, 0, 4, false)

	a.tviewApp.SetRoot(a.rootLayout, true)
	a.tviewApp.SetInputCapture(a.handleKeyboard)
}

// handleKeyboard handles keyboard input
func (a *App) handleKeyboard(event *tcell.EventKey) *tcell.EventKey {
	switch {
	case event.Key() == tcell.KeyEscape || event.Rune() == 'q':
		a.Stop()
		return nil
	case event.Rune() == ' ':
		a.togglePause()
		return nil
	case event.Rune() == 'u':
		go a.fetchAircraft()
		return nil
	case event.Rune() == '+' || event.Rune() == '=':
		a.adjustSpan(1 / 1.5)
		return nil
	case event.Rune() == '-':
		a.adjustSpan(1.5)
		return nil
	case event.Rune() == '0':
		a.resetSpan()
		return nil
	}
	return event
}

func (a *App) togglePause() {
	a.mu.Lock()
	a.paused = !a.paused
	paused := a.paused
	a.mu.Unlock()

	if paused {
		a.addLog("INFO", "Updates paused")
	} else {
		a.addLog("INFO", "Updates resumed")
	}
}

// adjustSpan scales the plotted degree window; smaller span = closer view.
func (a *App) adjustSpan(factor float64) {
	a.mu.Lock()
	a.plotOpts.LatSpan *= factor
	a.plotOpts.LonSpan *= factor
	if a.plotOpts.LatSpan < 0.05 {
		a.plotOpts.LatSpan = 0.05
	}
	if a.plotOpts.LonSpan < 0.05 {
		a.plotOpts.LonSpan = 0.05
	}
	if a.plotOpts.LatSpan > 20 {
		a.plotOpts.LatSpan = 20
	}
	if a.plotOpts.LonSpan > 20 {
		a.plotOpts.LonSpan = 20
	}
	latSpan, lonSpan := a.plotOpts.LatSpan, a.plotOpts.LonSpan
	a.mu.Unlock()

	a.addLog("DEBUG", fmt.Sprintf("View span: %.2f x %.2f deg", latSpan, lonSpan))
	a.redraw()
}

func (a *App) resetSpan() {
	a.mu.Lock()
	a.plotOpts.LatSpan = a.cfg.Plot.LatSpan
	a.plotOpts.LonSpan = a.cfg.Plot.LonSpan
	a.mu.Unlock()

	a.addLog("DEBUG", "View span reset")
	a.redraw()
}

// addLog adds a log message to the log panel
func (a *App) addLog(level, message string) {
	timestamp := time.Now().Format("15:04:05")
	var color string
	switch level {
	case "ERROR":
		color = "red"
	case "WARN":
		color = "yellow"
	case "DEBUG":
		color = "gray"
	default:
		color = "white"
	}

	fmt.Fprintf(a.logs, "[gray]%s[-] [%s]%-5s[-] %s\n", timestamp, color, level, message)
}

// Run starts the application
func (a *App) Run() error {
	a.updateTimer = time.NewTicker(time.Duration(a.cfg.Plot.RefreshSeconds) * time.Second)
	go a.updateLoop()

	return a.tviewApp.Run()
}

// updateLoop periodically refreshes aircraft data from the feed.
func (a *App) updateLoop() {
	a.fetchAircraft()

	for {
		select {
		case <-a.updateTimer.C:
			a.mu.RLock()
			paused := a.paused
			a.mu.RUnlock()
			if !paused {
				a.fetchAircraft()
			}
		case <-a.stopChan:
			return
		}
	}
}

func (a *App) fetchAircraft() {
	aircraft, err := a.feed.Fetch()
	if err != nil {
		a.addLog("ERROR", fmt.Sprintf("Feed fetch failed: %v", err))
		return
	}

	a.mu.Lock()
	oldCount := len(a.aircraft)
	a.aircraft = aircraft
	a.lastUpdate = time.Now()
	newCount := len(aircraft)
	a.mu.Unlock()

	if oldCount != newCount {
		a.addLog("INFO", fmt.Sprintf("Aircraft count: %d", newCount))
	}

	a.redraw()
}

func (a *App) redraw() {
	a.tviewApp.QueueUpdateDraw(func() {
		a.updateScope()
		a.updateTable()
		a.updateStatus()
	})
}

func (a *App) updateScope() {
	a.mu.RLock()
	defer a.mu.RUnlock()

	grid := plot.Render(a.aircraft, a.antenna, a.plotOpts)
	a.scope.SetText(grid.String() + "\n" + plot.Legend())
}

func (a *App) updateTable() {
	a.mu.RLock()
	defer a.mu.RUnlock()

	rows := plot.NearestTable(a.aircraft, a.antenna, a.cfg.Plot.TableLimit)
	a.table.SetText(plot.FormatTable(rows))
}

func (a *App) updateStatus() {
	a.mu.RLock()
	defer a.mu.RUnlock()

	grid := plot.Render(a.aircraft, a.antenna, a.plotOpts)

	var text string
	text += fmt.Sprintf("[yellow]ANTENNA:[-] [white]%.4f°, %.4f°[-]\n", a.antenna.Latitude, a.antenna.Longitude)
	text += fmt.Sprintf("[gray]Span:[-]     [white]%.2f° x %.2f°[-]\n", a.plotOpts.LatSpan, a.plotOpts.LonSpan)
	text += fmt.Sprintf("[gray]Aircraft:[-] [white]%d[-] [gray]([-][white]%d plotted, %d clipped[-][gray])[-]\n",
		len(a.aircraft), grid.Plotted, grid.Clipped)
	if !a.lastUpdate.IsZero() {
		text += fmt.Sprintf("[gray]Updated:[-]  [white]%s[-]\n", a.lastUpdate.Format("15:04:05"))
	}
	if a.paused {
		text += "[red]PAUSED[-]\n"
	}
	text += "\n[gray]SPACE pause  U update  +/- span  0 reset  Q quit[-]\n"

	a.status.SetText(text)
}

// Stop stops the application
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		if a.updateTimer != nil {
			a.updateTimer.Stop()
		}
		close(a.stopChan)
		a.tviewApp.Stop()
	})
}
