package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// checkHealth calls url and fails unless it answers 200.
func checkHealth(cmd *cobra.Command, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed creating request with error=%w", err)
	}
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed calling %s with error=%w", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%s answered status=%d", url, res.StatusCode)
	}
	return nil
}

func newHealthcheckCommand() *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Exit non-zero unless the service answers /healthz",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{
				Transport: otelhttp.NewTransport(http.DefaultTransport),
				Timeout:   timeout,
			}
			return checkHealth(cmd, client, url)
		},
	}
	cmd.Flags().StringVar(&url, "url", "http://localhost:8080/healthz", "health endpoint")
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "request timeout")
	return cmd
}
