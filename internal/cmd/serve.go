package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cameronsjo/shipwright/internal/config"
	"github.com/cameronsjo/shipwright/internal/server"
)

var (
	serveAddr  string
	serveToken string
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the render API over HTTP",
	Long: `Serve the render API over HTTP until SIGTERM/SIGINT.

Endpoints:
  POST /render   Recipe as JSON or YAML (by Content-Type) in, Dockerfile out
                 as an attachment. Unknown steps are reported in
                 X-Shipwright-Warning headers.
  GET  /steps    Available steps (JSON)
  GET  /health   Health check (JSON, never requires auth)

When a token is set (--token or SHIPWRIGHT_TOKEN), every endpoint except
/health requires "Authorization: Bearer <token>".

Examples:
  shipwright serve
  SHIPWRIGHT_TOKEN=s3cret shipwright serve --addr 127.0.0.1:9000
  curl -X POST --data-binary @shipwright.yaml -H 'Content-Type: application/yaml' \
    -OJ http://localhost:8080/render`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", server.DefaultAddr, "Listen address")
	serveCmd.Flags().StringVar(&serveToken, "token", "", "Bearer token required by the API (default: $"+config.EnvToken+")")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	token := cfg.Token
	if cmd.Flags().Changed("token") {
		token = serveToken
	}

	srv := server.New(server.Config{Addr: serveAddr, Token: token})
	return srv.Run(cmd.Context())
}
