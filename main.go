package main

import (
	"embed"
	"log/slog"

	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"

	"github.com/earshot-app/earshot/internal/app"
)

//go:embed all:frontend/dist
var assets embed.FS

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	slog.Info("starting app", "version", version, "commit", commit, "date", date)
	service := app.New(version)

	wailsApp := application.New(application.Options{
		Name:        "Earshot",
		Description: "Voice-activated speech capture",
		Services: []application.Service{
			application.NewService(service),
		},
		Assets: application.AssetOptions{
			Handler: application.BundledAssetFileServer(assets),
		},
		Mac: application.MacOptions{
			// Don't quit when all windows are closed (we have a system tray)
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
	})

	mainWindow := wailsApp.Window.NewWithOptions(application.WebviewWindowOptions{
		Title:  "Earshot",
		Width:  900,
		Height: 640,
		URL:    "/",
		Mac: application.MacWindow{
			TitleBar:                application.MacTitleBarHiddenInsetUnified,
			InvisibleTitleBarHeight: 38,
		},
		DevToolsEnabled: true,
	})

	// Intercept window close: hide instead of destroy so the tray can reopen.
	mainWindow.RegisterHook(events.Common.WindowClosing, func(e *application.WindowEvent) {
		e.Cancel()
		mainWindow.Hide()
	})

	// Window focus drives the controller's lifecycle guard: capture pauses
	// while the window is in the background.
	mainWindow.RegisterHook(events.Common.WindowFocus, func(e *application.WindowEvent) {
		service.OnFocusChange(true)
	})
	mainWindow.RegisterHook(events.Common.WindowLostFocus, func(e *application.WindowEvent) {
		service.OnFocusChange(false)
	})

	service.Init(wailsApp, mainWindow)

	if err := service.StartListening(); err != nil {
		slog.Error("start listening", "error", err)
	}

	systemTray := wailsApp.SystemTray.New()

	trayMenu := wailsApp.NewMenu()
	trayMenu.Add("Show Window").OnClick(func(ctx *application.Context) {
		mainWindow.Show()
		mainWindow.Focus()
	})
	trayMenu.Add("Pause Listening").
		SetAccelerator("CmdOrCtrl+Shift+Space").
		OnClick(func(ctx *application.Context) {
			service.TogglePause()
		})

	trayMenu.AddSeparator()
	trayMenu.Add("Quit").
		SetAccelerator("CmdOrCtrl+Q").
		OnClick(func(ctx *application.Context) {
			service.Shutdown()
			wailsApp.Quit()
		})

	systemTray.SetMenu(trayMenu)

	if err := wailsApp.Run(); err != nil {
		slog.Error("run app", "error", err)
	}
}
