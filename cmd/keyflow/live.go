package main

import (
	"fmt"
	"io"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
	"github.com/spf13/cobra"

	"github.com/dshills/keyflow/internal/config"
	"github.com/dshills/keyflow/internal/input/key"
	"github.com/dshills/keyflow/internal/input/pipeline"
	"github.com/dshills/keyflow/internal/input/remap"
)

// maxHistory is how many trace lines the live view keeps.
const maxHistory = 200

func newLiveCmd(opts *rootOptions) *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Trace keystrokes typed in the terminal",
		Long: `Open a full-screen session that feeds every keystroke through the
pipeline and shows what it produced. Buffered keys are flushed after the
configured timeout. With --config, the file is reloaded when it changes.

Press Ctrl+C to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The screen owns the terminal, so logs only go to a file.
			s, closer, err := opts.open(cmd, io.Discard)
			if err != nil {
				return err
			}
			defer closer.Close()
			defer s.close()

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("creating screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("initializing screen: %w", err)
			}
			defer screen.Fini()

			v := newLiveView(screen, s)
			if s.path != "" && !noWatch {
				w, err := config.NewWatcher(s.path, v.postReload, config.WithWatchLogger(s.logger))
				if err != nil {
					s.logger.Warn("config watch disabled", "path", s.path, "error", err)
				} else {
					defer w.Close()
				}
			}
			return v.run()
		},
	}

	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the config file on change")
	return cmd
}

// flushTick is posted when the flush timer fires. Ticks from an older
// generation are stale and ignored.
type flushTick struct{ gen int }

// reloaded carries a config file re-read by the watcher.
type reloaded struct {
	file *config.File
	err  error
}

// liveView drives a session from terminal events. Everything except the
// flush timer and the watcher callback runs on the run goroutine.
type liveView struct {
	screen  tcell.Screen
	session *session

	gen     int
	timer   *time.Timer
	history []string
	status  string
}

func newLiveView(screen tcell.Screen, s *session) *liveView {
	return &liveView{screen: screen, session: s}
}

// run processes events until Ctrl+C or the screen is finalized.
func (v *liveView) run() error {
	defer v.stopTimer()
	v.draw()

	for {
		ev := v.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return nil

		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC {
				return nil
			}
			v.handleKey(key.FromTcell(ev))

		case *tcell.EventInterrupt:
			switch data := ev.Data().(type) {
			case flushTick:
				if data.gen == v.gen {
					mode := v.session.mode
					v.record("<flush>", mode, v.session.flush())
				}
			case reloaded:
				v.reload(data)
			}

		case *tcell.EventResize:
			v.screen.Sync()
		}
		v.draw()
	}
}

func (v *liveView) handleKey(ev key.Event) {
	v.stopTimer()
	v.gen++
	mode := v.session.mode
	v.record(ev.VimString(), mode, v.session.handleKey(ev))

	if v.session.waiting() {
		gen := v.gen
		v.timer = time.AfterFunc(v.session.timeout(), func() {
			_ = v.screen.PostEvent(tcell.NewEventInterrupt(flushTick{gen: gen}))
		})
	}
}

func (v *liveView) stopTimer() {
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
}

// postReload is the watcher callback. It hands the result to run.
func (v *liveView) postReload(f *config.File, err error) {
	_ = v.screen.PostEvent(tcell.NewEventInterrupt(reloaded{file: f, err: err}))
}

func (v *liveView) reload(r reloaded) {
	if r.err != nil {
		v.status = "reload failed: " + r.err.Error()
		return
	}
	v.stopTimer()
	v.gen++
	err := v.session.apply(r.file)
	switch {
	case isFatal(err):
		v.status = "reload failed: " + err.Error()
	case err != nil:
		v.status = "reloaded with skipped entries"
		v.session.logger.Warn("config entries skipped", "error", err)
	default:
		v.status = "reloaded " + v.session.path
	}
}

func (v *liveView) record(label string, mode remap.Mode, outs []pipeline.Output) {
	for _, line := range stepLines(label, mode, outs) {
		v.push(line)
	}
}

func (v *liveView) push(line string) {
	v.history = append(v.history, line)
	if len(v.history) > maxHistory {
		v.history = v.history[len(v.history)-maxHistory:]
	}
}

func (v *liveView) draw() {
	v.screen.Clear()
	width, height := v.screen.Size()

	header := fmt.Sprintf("keyflow  mode: %s", v.session.mode)
	if pending := v.session.driver.Pending(v.session.mode); len(pending) > 0 {
		header += "  pending: " + pending.VimString()
	}
	if n, ok := v.session.driver.PendingCount(); ok {
		header += fmt.Sprintf("  count: %d", n)
	}
	putString(v.screen, 0, 0, width, header, tcell.StyleDefault.Bold(true))

	footer := "Ctrl+C quits"
	if v.status != "" {
		footer = v.status + "  |  " + footer
	}
	putString(v.screen, 0, height-1, width, footer, tcell.StyleDefault.Reverse(true))

	rows := height - 2
	if rows < 0 {
		rows = 0
	}
	lines := v.history
	if len(lines) > rows {
		lines = lines[len(lines)-rows:]
	}
	for i, line := range lines {
		putString(v.screen, 0, i+1, width, line, tcell.StyleDefault)
	}
	v.screen.Show()
}

// putString draws s one grapheme cluster per cell group, clipped at width.
func putString(screen tcell.Screen, x, y, width int, s string, style tcell.Style) {
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		w := gr.Width()
		if x+w > width {
			return
		}
		runes := gr.Runes()
		screen.SetContent(x, y, runes[0], runes[1:], style)
		x += w
	}
}
