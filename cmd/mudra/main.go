package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

const addr = ":8080"

func main() {
	fmt.Println("Mudra - Hand Gesture Detection")

	// Persistence is best-effort: a missing or unreadable database means
	// default thresholds and settings, never a refusal to start.
	st := openStore()
	if st != nil {
		defer st.Close()
	}

	settings := store.DefaultSettings()
	if st != nil {
		loaded, err := st.Settings().Load()
		if err != nil {
			log.Printf("Failed to load settings (%v), using defaults", err)
		} else {
			settings = loaded
		}
	}

	a := app.New(app.Config{
		Store:    st,
		Settings: settings,
	})
	a.LoadCalibration()

	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       a,
		Camera:    a.Camera(),
	})

	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnCalibrate(func() {
		if err := a.StartCalibration(); err != nil {
			log.Printf("Calibration not started: %v", err)
		}
	})
	t.OnSettings(func() {
		openBrowser("http://localhost" + addr)
	})
	t.OnQuit(func() {
		a.Stop()
	})

	go dispatchEvents(a, srv, t)

	if err := a.Start(); err != nil {
		log.Printf("Detection pipeline unavailable: %v", err)
	} else {
		a.SetEnabled(true)
	}
	t.SetCalibrated(a.Calibration().Calibrated)

	go func() {
		fmt.Printf("Starting server on %s\n", addr)
		if err := srv.ListenAndServe(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Blocks until quit is chosen from the menu.
	t.Run()
}

// dispatchEvents fans pipeline events out to the WebSocket feed and the
// tray menu. An exit gesture quits the application.
func dispatchEvents(a *app.App, srv *server.Server, t *tray.Tray) {
	for ev := range a.Events() {
		srv.Publish(ev)

		switch ev.Type {
		case app.EventClick:
			t.SetLastEvent(fmt.Sprintf("click (%s)", ev.Handedness))
		case app.EventCalibrated:
			t.SetCalibrated(true)
			t.SetLastEvent("calibrated")
		case app.EventExit:
			log.Println("Exit gesture confirmed, quitting")
			t.Quit()
			return
		}
	}
}

// openStore opens the SQLite store under ~/.mudra, returning nil when the
// database cannot be opened.
func openStore() *store.Store {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Failed to get home directory (%v), running without persistence", err)
		return nil
	}

	dbDir := filepath.Join(homeDir, ".mudra")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Printf("Failed to create data directory (%v), running without persistence", err)
		return nil
	}

	st, err := store.New(filepath.Join(dbDir, "mudra.db"))
	if err != nil {
		log.Printf("Failed to open store (%v), running without persistence", err)
		return nil
	}
	return st
}

// openBrowser opens url with the platform handler.
func openBrowser(url string) {
	if err := exec.Command("open", url).Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
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

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
