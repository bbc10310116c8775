package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"attendcore/internal/attendance"
	"attendcore/internal/schedule/mariadb"
	"attendcore/internal/store/postgres"
	"attendcore/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the recognition web server",
	Long: `Start the attendcore web server.
The server exposes enrollment and recognition endpoints consumed by the
registration flow and the live-capture client, plus health and metrics.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

// buildRecorder wires the attendance recorder when both the school timetable
// database and the PostgreSQL ledger are available. Without them the server
// still recognizes, it just returns no attendance context.
func buildRecorder(st *stack) (*attendance.Recorder, *mariadb.Pool, error) {
	if st.pool == nil {
		fmt.Printf("Attendance ledger disabled (no DATABASE_URL)\n")
		return nil, nil, nil
	}
	if st.cfg.School.DatabaseURL == "" {
		fmt.Printf("Timetable resolution disabled (no SCHOOL_DATABASE_URL)\n")
		return nil, nil, nil
	}

	schoolPool, err := mariadb.NewPool(st.cfg.School.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to school database: %w", err)
	}

	slots := mariadb.NewSlotRepository(schoolPool)
	ledger := postgres.NewAttendanceRepository(st.pool)
	fmt.Printf("Attendance recording enabled\n")
	return attendance.NewRecorder(slots, ledger), schoolPool, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := buildStack(ctx)
	if err != nil {
		return err
	}
	defer st.close()

	recorder, schoolPool, err := buildRecorder(st)
	if err != nil {
		return err
	}
	if schoolPool != nil {
		defer schoolPool.Close()
	}

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(port, host, st.service, recorder, st.cache)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting attendcore on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
