// Command screenshare-demo is a thin local smoke-testing entry point for the
// screen-share engine: it loads internal/config, wires logging.Init, and
// drives the Host façade end to end against a real SFU.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/breeze-rmm/screenshare-engine/internal/config"
	"github.com/breeze-rmm/screenshare-engine/internal/engine"
	"github.com/breeze-rmm/screenshare-engine/internal/logging"
)

var (
	version = "0.1.0"
	cfgFile string

	serverURL  string
	token      string
	targetType string
	targetID   string
	fps        int
	bitrate    int
	withAudio  bool
)

var log = logging.L("main")

var rootCmd = &cobra.Command{
	Use:   "screenshare-demo",
	Short: "Screen-share engine demo CLI",
}

var listDisplaysCmd = &cobra.Command{
	Use:   "list-displays",
	Short: "List capturable displays",
	Run: func(cmd *cobra.Command, args []string) {
		for _, d := range engine.NewHost().ListDisplays() {
			fmt.Printf("%d\t%s\t%dx%d\n", d.Index, d.Name, d.Width, d.Height)
		}
	},
}

var listWindowsCmd = &cobra.Command{
	Use:   "list-windows",
	Short: "List capturable windows",
	Run: func(cmd *cobra.Command, args []string) {
		windows := engine.NewHost().ListWindows()
		if len(windows) == 0 {
			fmt.Println("no capturable windows on this platform")
			return
		}
		for _, w := range windows {
			fmt.Printf("%d\t%s\t%s\n", w.Handle, w.Title, w.ProcessName)
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a screen-share session against an SFU and run until interrupted",
	Run: func(cmd *cobra.Command, args []string) {
		runSession()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("screenshare-demo v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to engine config file")

	runCmd.Flags().StringVar(&serverURL, "server-url", "", "signaling server URL (overrides config)")
	runCmd.Flags().StringVar(&token, "token", "", "access token")
	runCmd.Flags().StringVar(&targetType, "target-type", "primary", "primary|display|window")
	runCmd.Flags().StringVar(&targetID, "target-id", "", "display index or window handle")
	runCmd.Flags().IntVar(&fps, "fps", 0, "frames per second (0 = config default)")
	runCmd.Flags().IntVar(&bitrate, "bitrate", 0, "bitrate in kbps (0 = config default)")
	runCmd.Flags().BoolVar(&withAudio, "audio", false, "capture and forward audio")

	rootCmd.AddCommand(listDisplaysCmd, listWindowsCmd, runCmd, versionCmd)
}

func runSession() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var logOutput io.Writer
	if cfg.LogFile != "" {
		rw, err := logging.NewRotatingWriter(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file: %v\n", err)
			os.Exit(1)
		}
		defer rw.Close()
		logOutput = logging.TeeWriter(os.Stdout, rw)
	}
	logging.Init(cfg.LogFormat, cfg.LogLevel, logOutput)

	id, err := engine.ParseTargetID(targetID)
	if err != nil {
		log.Error("invalid target-id", "error", err)
		os.Exit(1)
	}

	resolvedURL := serverURL
	if resolvedURL == "" {
		resolvedURL = cfg.SignalingServerURL
	}
	resolvedFPS := fps
	if resolvedFPS == 0 {
		resolvedFPS = cfg.DefaultFPSCeiling
	}
	resolvedBitrate := bitrate
	if resolvedBitrate == 0 {
		resolvedBitrate = cfg.DefaultBitrateKbps
	}

	host := engine.NewHost()
	done := make(chan struct{})

	err = host.StartScreenShare(engine.ScreenShareConfig{
		ServerURL:    resolvedURL,
		Token:        token,
		TargetType:   targetType,
		TargetID:     id,
		FPS:          resolvedFPS,
		Bitrate:      resolvedBitrate,
		CaptureAudio: withAudio,
	},
		func(msg string) { log.Error("engine error", "error", msg) },
		func() { log.Info("session stopped"); close(done) },
		func(stats engine.EngineStats) {
			log.Debug("stats", "fps", stats.FPS, "bitrate_mbps", stats.BitrateMbps,
				"frames_encoded", stats.FramesEncoded, "encode_ms", stats.EncodeMs)
		},
	)
	if err != nil {
		log.Error("start screen share", "error", err)
		os.Exit(1)
	}
	log.Info("screen share running", "server_url", resolvedURL, "fps", resolvedFPS, "bitrate_kbps", resolvedBitrate)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		if err := host.StopScreenShare(); err != nil {
			log.Error("stop screen share", "error", err)
		}
	case <-done:
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
