package main

import (
	"github.com/spf13/cobra"

	"github.com/opd-ai/bookforge/srv"
)

func newServeCmd(c *cli) *cobra.Command {
	var (
		port     int
		driver   string
		dsn      string
		uploads  string
		certFile string
		keyFile  string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve runs the JSON API. Settings come from the environment (PORT,
DATABASE_DRIVER, DATABASE_DSN, JWT_SECRET, UPLOADS_DIR, CLAUDE_API_KEY,
HORDE_API_KEY, TLS_CERT, TLS_KEY); flags override them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := srv.LoadConfig(c.log)
			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Port = port
			}
			if flags.Changed("db-driver") {
				cfg.DatabaseDriver = driver
			}
			if flags.Changed("db-dsn") {
				cfg.DatabaseDSN = dsn
			}
			if flags.Changed("uploads") {
				cfg.UploadsDir = uploads
			}
			if flags.Changed("tls-cert") {
				cfg.TLSCert = certFile
			}
			if flags.Changed("tls-key") {
				cfg.TLSKey = keyFile
			}
			return srv.Run(cmd.Context(), cfg, c.log)
		},
	}
	cmd.Flags().IntVar(&port, "port", 5000, "Port to listen on")
	cmd.Flags().StringVar(&driver, "db-driver", "sqlite", `Database driver: "sqlite" or "postgres"`)
	cmd.Flags().StringVar(&dsn, "db-dsn", "bookforge.db", "Database DSN or sqlite file")
	cmd.Flags().StringVar(&uploads, "uploads", "uploads", "Directory cover images are stored in")
	cmd.Flags().StringVar(&certFile, "tls-cert", "", "TLS certificate file, generated if missing")
	cmd.Flags().StringVar(&keyFile, "tls-key", "", "TLS key file, generated if missing")
	return cmd
}
