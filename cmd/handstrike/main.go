package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/ayusman/handstrike/internal/app"
	"github.com/ayusman/handstrike/internal/audio"
	"github.com/ayusman/handstrike/internal/capture"
	"github.com/ayusman/handstrike/internal/game"
	"github.com/ayusman/handstrike/internal/store"
	"github.com/ayusman/handstrike/internal/target"
	"github.com/ayusman/handstrike/internal/tray"
)

func main() {
	fmt.Println("Handstrike - Webcam Gesture Arcade")

	dataDir, err := dataDir()
	if err != nil {
		log.Fatalf("Failed to resolve data directory: %v", err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "handstrike.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	cfg := game.DefaultConfig()
	if err := cfg.ApplySettings(envSettings()); err != nil {
		log.Fatalf("Invalid environment: %v", err)
	}

	var impact game.ImpactPlayer
	if os.Getenv("HANDSTRIKE_AUDIO") != "0" {
		player := audio.NewPlayer(envFloat("HANDSTRIKE_VOLUME", 0.8))
		if err := player.Start(); err == nil {
			impact = player
		}
	}

	webDir := findWebDir(dataDir)
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	a, err := app.New(app.Config{
		Store: st,
		Game:  cfg,
		Camera: capture.NewCamera(capture.Options{
			DeviceID: envInt("HANDSTRIKE_CAMERA", 0),
			FPS:      capture.DefaultFPS,
			Mirror:   true,
		}),
		Impact:    impact,
		StaticDir: webDir,
	})
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	addr := os.Getenv("HANDSTRIKE_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}
	srv := &http.Server{Addr: addr, Handler: a.Handler()}
	go func() {
		fmt.Printf("Starting server on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	shutdown := func() {
		a.Stop()
		srv.Close()
	}

	if os.Getenv("HANDSTRIKE_NO_TRAY") == "1" {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		shutdown()
		return
	}

	runTray(a, "http://"+addr, shutdown)
}

func runTray(a *app.App, url string, shutdown func()) {
	session := a.Session()

	var names []string
	for _, typ := range target.Types() {
		names = append(names, string(typ))
	}

	t := tray.New(names)
	t.OnToggle(func() bool { return session.Toggle(time.Now()) })
	t.OnTarget(func(name string) {
		if err := session.SwitchTarget(name); err != nil {
			log.Printf("Failed to switch target: %v", err)
		}
	})
	t.OnOpen(func() { openBrowser(url) })
	t.OnQuit(shutdown)

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for range ticker.C {
			snap := session.Snapshot(time.Now())
			t.SetScore(snap.Score, snap.Accuracy)
			t.SetPlaying(snap.Playing)
			t.SetTarget(string(snap.Target))
		}
	}()

	t.Run()
}

// envSettings maps HANDSTRIKE_MODE and HANDSTRIKE_TARGET onto setting keys.
func envSettings() map[string]string {
	settings := make(map[string]string)
	if v := os.Getenv("HANDSTRIKE_MODE"); v != "" {
		settings[game.SettingMode] = v
	}
	if v := os.Getenv("HANDSTRIKE_TARGET"); v != "" {
		settings[game.SettingTarget] = v
	}
	return settings
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Ignoring %s=%q: %v", key, v, err)
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("Ignoring %s=%q: %v", key, v, err)
		return def
	}
	return f
}

func dataDir() (string, error) {
	if dir := os.Getenv("HANDSTRIKE_DATA_DIR"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".handstrike"), nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
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
		log.Printf("Failed to open browser: %v", err)
	}
}
