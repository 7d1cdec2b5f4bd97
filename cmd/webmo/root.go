// Command webmo is a console client for a WebMO server: job listing and
// submission, result retrieval, template-driven input generation and
// property rendering, over the same session-token REST interface the web
// frontend uses.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chemtools/webmo-go/shared/logger"
	"github.com/chemtools/webmo-go/webmo"
)

type rootOptions struct {
	baseURL  string
	username string
	password string
	timeout  time.Duration
	logLevel string
	jsonOut  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "webmo",
		Short:         "Command-line client for a WebMO computational chemistry server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env carries WEBMO_URL / WEBMO_USERNAME / WEBMO_PASSWORD
			_ = godotenv.Load()
			if opts.baseURL == "" {
				opts.baseURL = os.Getenv("WEBMO_URL")
			}
			if opts.username == "" {
				opts.username = os.Getenv("WEBMO_USERNAME")
			}
			if opts.password == "" {
				opts.password = os.Getenv("WEBMO_PASSWORD")
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.baseURL, "url", "", "WebMO REST endpoint, ending in rest.cgi (or WEBMO_URL)")
	pf.StringVarP(&opts.username, "username", "u", "", "WebMO username (or WEBMO_USERNAME)")
	pf.StringVar(&opts.password, "password", "", "WebMO password (or WEBMO_PASSWORD; prompted when empty)")
	pf.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "overall operation timeout")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.BoolVar(&opts.jsonOut, "json", false, "print results as JSON")

	cmd.AddCommand(
		newStatusCmd(opts),
		newEnginesCmd(opts),
		newJobsCmd(opts),
		newSubmitCmd(opts),
		newWaitCmd(opts),
		newResultsCmd(opts),
		newGeometryCmd(opts),
		newOutputCmd(opts),
		newArchiveCmd(opts),
		newSpreadsheetCmd(opts),
		newImportCmd(opts),
		newDeleteCmd(opts),
		newTemplatesCmd(opts),
		newGenerateCmd(opts),
		newRenderCmd(opts),
	)

	return cmd
}

// connect opens an authenticated session for one command invocation. The
// returned cancel func also revokes the session.
func (o *rootOptions) connect(ctx context.Context) (*webmo.Client, context.Context, context.CancelFunc, error) {
	if o.baseURL == "" {
		return nil, nil, nil, fmt.Errorf("no endpoint: pass --url or set WEBMO_URL")
	}
	if o.username == "" {
		return nil, nil, nil, fmt.Errorf("no username: pass --username or set WEBMO_USERNAME")
	}

	ctx, timeoutCancel := context.WithTimeout(ctx, o.timeout)

	client, err := webmo.Connect(ctx, o.baseURL, o.username, o.password,
		webmo.WithLogger(o.logger()),
	)
	if err != nil {
		timeoutCancel()
		return nil, nil, nil, err
	}

	cancel := func() {
		client.Close()
		timeoutCancel()
	}
	return client, ctx, cancel, nil
}

func (o *rootOptions) logger() *slog.Logger {
	return logger.New(&logger.Config{
		Level:  o.logLevel,
		Format: "console",
		Output: "stderr",
	})
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseJobNumbers(args []string) ([]int, error) {
	numbers := make([]int, len(args))
	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid job number %q", arg)
		}
		numbers[i] = n
	}
	return numbers, nil
}
