package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/san-kum/knobs/internal/config"
	"github.com/san-kum/knobs/internal/export"
	"github.com/san-kum/knobs/internal/gui"
	"github.com/san-kum/knobs/internal/knob"
	"github.com/san-kum/knobs/internal/logging"
	"github.com/san-kum/knobs/internal/midi"
	"github.com/san-kum/knobs/internal/remote"
	"github.com/san-kum/knobs/internal/storage"
	"github.com/san-kum/knobs/internal/tui"
)

var (
	configFile string
	preset     string
	logLevel   string
	logFile    string
	dataDir    string
	noRestore  bool
	// serve
	listenAddr string
	withMIDI   bool
	// midi
	midiPort  string
	listPorts bool
	// render
	columns int
)

// main registers the commands and runs the terminal surface when no
// subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:          "knobs",
		Short:        "rotary knob controls for terminal, desktop and browser",
		SilenceUsage: true,
		RunE:         runTUI,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "rack file (yaml)")
	rootCmd.PersistentFlags().StringVarP(&preset, "preset", "p", "", "built-in rack preset")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: error, warn, info, debug")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".knobs", "data directory for saved view preferences")
	rootCmd.PersistentFlags().BoolVar(&noRestore, "fresh", false, "ignore saved view preferences and use the rack's theme")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "open the rack in a desktop window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the rack to websocket clients",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (overrides the rack)")
	serveCmd.Flags().BoolVar(&withMIDI, "midi", false, "also drive the knobs from the rack's midi bindings")
	serveCmd.Flags().StringVar(&midiPort, "port", "", "midi input port (overrides the rack)")

	midiCmd := &cobra.Command{
		Use:   "midi",
		Short: "run the terminal surface driven by a midi controller",
		Args:  cobra.NoArgs,
		RunE:  runMIDI,
	}
	midiCmd.Flags().StringVar(&midiPort, "port", "", "midi input port (overrides the rack)")
	midiCmd.Flags().BoolVar(&listPorts, "list", false, "list midi input ports and exit")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in racks",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	checkCmd := &cobra.Command{
		Use:   "check [file]",
		Short: "validate a rack",
		Args:  cobra.MaximumNArgs(1),
		RunE:  checkRack,
	}

	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "write the selected rack as yaml",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRack,
	}

	renderCmd := &cobra.Command{
		Use:   "render [file.svg]",
		Short: "draw the rack as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRack,
	}
	renderCmd.Flags().IntVar(&columns, "columns", 4, "knobs per row")

	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "list saved terminal view preferences",
		Args:  cobra.NoArgs,
		RunE:  listPrefs,
	}

	rootCmd.AddCommand(guiCmd, serveCmd, midiCmd, presetsCmd, checkCmd, exportCmd, renderCmd, prefsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadRack resolves --config, then --preset, then the default rack.
func loadRack() (*config.Rack, error) {
	switch {
	case configFile != "":
		return config.Load(configFile)
	case preset != "":
		return config.GetPreset(preset)
	default:
		return config.DefaultRack(), nil
	}
}

// newLogger honours --log-level over the rack's level. Terminal surfaces pass
// quiet so nothing is written to the screen they draw on.
func newLogger(rack *config.Rack, quiet bool) (*slog.Logger, func(), error) {
	level := rack.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	var w io.Writer = os.Stderr
	closer := func() {}
	switch {
	case logFile != "":
		f, err := logging.OpenFile(logFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, func() { f.Close() }
	case quiet:
		return logging.Discard(), closer, nil
	}
	return logging.New(lvl, w), closer, nil
}

type rig struct {
	rack     *config.Rack
	registry *knob.Registry
	knobs    []*knob.Knob
	log      *slog.Logger
	close    func()
	store    *storage.Store
}

func setup(quiet bool) (*rig, error) {
	rack, err := loadRack()
	if err != nil {
		return nil, err
	}
	log, closer, err := newLogger(rack, quiet)
	if err != nil {
		return nil, err
	}
	reg, knobs, err := rack.Build(nil)
	if err != nil {
		closer()
		return nil, err
	}
	log.Info("rack loaded", "name", rack.Name, "knobs", len(knobs))
	return &rig{rack: rack, registry: reg, knobs: knobs, log: log, close: closer, store: storage.New(dataDir)}, nil
}

// prefs returns the saved view of the rack. Knobs always start from the
// rack's own values.
func (r *rig) prefs() storage.Prefs {
	p := storage.Prefs{Theme: r.rack.Theme}
	if noRestore {
		return p
	}
	saved, err := r.store.Load(r.rack.Name)
	if err != nil {
		if !errors.Is(err, storage.ErrNoPrefs) {
			r.log.Warn("view preferences not restored", "err", err)
		}
		return p
	}
	if saved.Theme != "" {
		p.Theme = saved.Theme
	}
	p.Focus = saved.Focus
	return p
}

// savePrefs stores the theme and focus of m once its program has stopped.
func (r *rig) savePrefs(m *tui.Model) {
	p := storage.Prefs{Theme: m.Board().Theme().Name, Focus: m.Focused()}
	if _, err := r.store.Save(r.rack.Name, p); err != nil {
		r.log.Error("view preferences not saved", "err", err)
	}
}

func newModel(r *rig) *tui.Model {
	p := r.prefs()
	return tui.New(r.registry, r.knobs,
		tui.WithName(r.rack.Name),
		tui.WithTheme(p.Theme),
		tui.WithFocus(p.Focus),
		tui.WithLogger(r.log),
	)
}

func runTUI(cmd *cobra.Command, args []string) error {
	r, err := setup(true)
	if err != nil {
		return err
	}
	defer r.close()

	m := newModel(r)
	_, err = tui.NewProgram(m).Run()
	r.savePrefs(m)
	return err
}

func runGUI(cmd *cobra.Command, args []string) error {
	r, err := setup(false)
	if err != nil {
		return err
	}
	defer r.close()

	gui.Run("knobs :: "+r.rack.Name, r.registry, r.knobs, r.log)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	r, err := setup(false)
	if err != nil {
		return err
	}
	defer r.close()

	addr := r.rack.Listen
	if listenAddr != "" {
		addr = listenAddr
	}
	srv := remote.New(remote.Config{ListenAddr: addr}, r.registry, r.knobs, r.log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if withMIDI {
		defer gomidi.CloseDriver()
		bridge, err := startBridge(r, srv)
		if err != nil {
			return err
		}
		defer bridge.Close()
	}

	fmt.Printf("serving %d knobs on ws://%s/ws\n", len(r.knobs), addr)
	return srv.Run(ctx)
}

func runMIDI(cmd *cobra.Command, args []string) error {
	if listPorts {
		defer gomidi.CloseDriver()
		names := midi.PortNames()
		if len(names) == 0 {
			fmt.Println("no midi input ports")
			return nil
		}
		for _, n := range names {
			fmt.Printf("  %s\n", n)
		}
		return nil
	}

	r, err := setup(true)
	if err != nil {
		return err
	}
	defer r.close()

	// startBridge opens the driver, which must close even when the bridge
	// fails.
	defer gomidi.CloseDriver()
	m := newModel(r)
	p := tui.NewProgram(m)
	bridge, err := startBridge(r, tui.NewSender(p))
	if err != nil {
		return err
	}
	defer bridge.Close()

	_, err = p.Run()
	r.savePrefs(m)
	return err
}

// startBridge opens the rack's midi port and forwards its bindings to sink.
func startBridge(r *rig, sink midi.Sink) (*midi.Bridge, error) {
	cfg := r.rack.MIDI
	if len(cfg.Bindings) == 0 {
		return nil, errors.New("rack has no midi bindings")
	}
	bindings := make([]midi.Binding, 0, len(cfg.Bindings))
	for _, b := range cfg.Bindings {
		mode, err := midi.ParseMode(b.Mode)
		if err != nil {
			return nil, fmt.Errorf("midi binding cc %d: %w", b.Controller, err)
		}
		bindings = append(bindings, midi.Binding{Controller: b.Controller, Knob: b.Knob, Mode: mode})
	}

	port := cfg.Port
	if midiPort != "" {
		port = midiPort
	}
	in, err := midi.OpenPort(port)
	if err != nil {
		return nil, err
	}
	bridge := midi.NewBridge(sink, cfg.Channel, bindings, midi.WithLogger(r.log))
	if err := bridge.Listen(in); err != nil {
		return nil, err
	}
	return bridge, nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tTHEME\tKNOBS\tMIDI")
	for _, name := range config.ListPresets() {
		rack, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", name, rack.Theme, len(rack.Knobs), len(rack.MIDI.Bindings))
	}
	return w.Flush()
}

func checkRack(cmd *cobra.Command, args []string) error {
	var (
		rack *config.Rack
		err  error
	)
	if len(args) == 1 {
		rack, err = config.Load(args[0])
	} else {
		rack, err = loadRack()
	}
	if err != nil {
		return err
	}
	_, knobs, err := rack.Build(nil)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVARIANT\tRANGE\tVALUE\tSTEP\tANGLES")
	for _, k := range knobs {
		fmt.Fprintf(w, "%s\t%s\t%g..%g %s\t%g\t%g\t%.0f..%.0f\n",
			k.ID(), k.Variant(), k.Min(), k.Max(), k.Unit(), k.Value(), k.Step(), k.MinAngle(), k.MaxAngle())
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func exportRack(cmd *cobra.Command, args []string) error {
	rack, err := loadRack()
	if err != nil {
		return err
	}
	if err := rack.Validate(); err != nil {
		return err
	}
	if err := config.Save(args[0], rack); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

func renderRack(cmd *cobra.Command, args []string) error {
	rack, err := loadRack()
	if err != nil {
		return err
	}
	_, knobs, err := rack.Build(nil)
	if err != nil {
		return err
	}

	sheet := export.NewSheet(columns)
	for _, k := range knobs {
		k.Attach("knob", sheet)
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := sheet.WriteTo(f); err != nil {
		return err
	}
	fmt.Printf("wrote %d knobs to %s\n", sheet.Len(), args[0])
	return nil
}

func listPrefs(cmd *cobra.Command, args []string) error {
	all, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Printf("no saved preferences in %s\n", dataDir)
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RACK\tSAVED\tTHEME\tFOCUS")
	for _, p := range all {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Rack, p.Timestamp.Format("2006-01-02 15:04:05"), p.Theme, p.Focus)
	}
	return w.Flush()
}

var (
	_ midi.Sink = (*tui.Sender)(nil)
	_ midi.Sink = (*remote.Server)(nil)
)
