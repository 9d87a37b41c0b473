package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/abhinaya/internal/app"
	"github.com/ayusman/abhinaya/internal/capture"
	"github.com/ayusman/abhinaya/internal/config"
	"github.com/ayusman/abhinaya/internal/detector"
	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/inject"
	"github.com/ayusman/abhinaya/internal/log"
	"github.com/ayusman/abhinaya/internal/plugin"
	"github.com/ayusman/abhinaya/internal/server"
	"github.com/ayusman/abhinaya/internal/server/api"
	"github.com/ayusman/abhinaya/internal/store"
	"github.com/ayusman/abhinaya/internal/tray"
)

// Screen size used when neither the config nor the injector knows it.
const (
	fallbackWidth  = 1920
	fallbackHeight = 1080
)

type options struct {
	configPath string
	preset     string
	dataDir    string
	noTray     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to a JSON config file")
	flag.StringVar(&opts.preset, "preset", "", "preset to use when no config file is found (adaptive, fixed-region)")
	flag.StringVar(&opts.dataDir, "data", "", "data directory (default ~/.abhinaya)")
	flag.BoolVar(&opts.noTray, "no-tray", false, "run without the system tray")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "abhinaya: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	dataDir, err := resolveDataDir(opts.dataDir)
	if err != nil {
		return err
	}

	st, err := store.New(filepath.Join(dataDir, "abhinaya.db"))
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	cfg, err := loadConfig(opts, dataDir, st)
	if err != nil {
		return err
	}

	level, _ := config.NormalizeLogLevel(cfg.Logging.Level)
	if err := log.Init(log.Options{Level: level, Format: cfg.Logging.Format}); err != nil {
		return err
	}
	log.Info("configuration loaded", "source", cfg.Source, "preset", cfg.Preset)

	injector, err := newInjector(cfg, dataDir)
	if err != nil {
		return err
	}

	width, height := injector.ScreenSize()
	if width <= 0 || height <= 0 {
		width, height = fallbackWidth, fallbackHeight
	}
	engineCfg, err := cfg.Engine(width, height)
	if err != nil {
		return err
	}
	log.Info("screen", "width", engineCfg.Screen.Width, "height", engineCfg.Screen.Height, "margin", engineCfg.Screen.Margin)

	camera := capture.NewPreview(capture.NewCamera(capture.Options{
		DeviceID: cfg.Camera.DeviceID,
		FPS:      cfg.Camera.FPS,
		Mirror:   cfg.Camera.Mirror,
	}))

	a, err := app.New(app.Config{
		Engine:   engineCfg,
		Preset:   cfg.Preset,
		Camera:   camera,
		Detector: newDetector(),
		Injector: injector,
		Store:    st,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed := server.NewCommandFeed()
	a.OnCommands(feed.Publish)

	if err := a.Start(ctx); err != nil {
		return err
	}
	defer a.Stop()

	if cfg.Server.Enabled {
		srv := server.New(server.Config{
			StaticDir:  firstNonEmpty(cfg.Server.StaticDir, findWebDir(dataDir)),
			Store:      st,
			Controller: a,
			Preview:    camera,
			Feed:       feed,
			Active:     cfg,
		})
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
				log.Error("http server failed", "error", err)
			}
		}()
	}

	if opts.noTray {
		select {
		case <-ctx.Done():
			log.Info("interrupted")
		case <-a.Done():
		}
		return nil
	}

	runTray(ctx, stop, a, cfg)
	return nil
}

// runTray blocks on the tray until quit, interrupt or the camera ends.
func runTray(ctx context.Context, stop context.CancelFunc, a *app.App, cfg config.Config) {
	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnRecalibrate(a.ResetCalibration)
	t.OnSettings(func() {
		if cfg.Server.Enabled {
			openBrowser("http://" + cfg.Server.Addr)
		}
	})
	t.OnQuit(stop)

	a.OnCommands(func(cmds []engine.Command) {
		for _, c := range cmds {
			if c.Kind != engine.MoveTo {
				t.SetLastClick(c.Kind.String())
			}
		}
	})

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				t.Quit()
				return
			case <-a.Done():
				t.Quit()
				return
			case <-ticker.C:
				st := a.Status()
				t.SetEnabled(st.Enabled)
				t.SetCalibrated(st.Engine.Calibrated)
			}
		}
	}()

	t.Run()
}

// loadConfig picks, in order: the -config file, the configuration saved over
// the API, config.json in the data directory, then the -preset.
func loadConfig(opts options, dataDir string, st *store.Store) (config.Config, error) {
	if opts.configPath != "" {
		return config.Load(opts.configPath)
	}

	cfg, err := api.LoadStoredConfig(st)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return config.Config{}, fmt.Errorf("stored configuration: %w", err)
	}

	path := filepath.Join(dataDir, config.DefaultFileName)
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}

	return config.Preset(opts.preset)
}

func newInjector(cfg config.Config, dataDir string) (inject.Injector, error) {
	switch cfg.Injector.Kind {
	case config.InjectorPlugin:
		dir := firstNonEmpty(cfg.Injector.PluginDir, filepath.Join(dataDir, "plugins"))
		mgr := plugin.NewManager(dir)
		if err := mgr.Discover(); err != nil {
			return nil, fmt.Errorf("failed to discover plugins: %w", err)
		}
		for _, p := range mgr.List() {
			log.Debug("plugin found", "name", p.Manifest.Name, "version", p.Manifest.Version)
		}
		return inject.NewPlugin(mgr, cfg.Injector.Plugin, plugin.NewExecutor(cfg.Injector.TimeoutMs), nil)
	case config.InjectorLog:
		return inject.NewRecorder(cfg.Screen.Width, cfg.Screen.Height), nil
	default:
		return inject.NewRobotgo(), nil
	}
}

// newDetector prefers the MediaPipe face mesh and falls back to a detector
// that never sees a face.
func newDetector() detector.Detector {
	mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
	if err != nil {
		log.Warn("MediaPipe face mesh not available, no face will be detected", "error", err)
		return detector.NewMockDetector()
	}
	log.Info("using MediaPipe face mesh")
	return mp
}

func resolveDataDir(dir string) (string, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".abhinaya")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// findWebDir returns the first existing of "web", "../web", "../../web" and
// <dataDir>/web, or "".
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Warn("failed to open browser", "url", url, "error", err)
	}
}
