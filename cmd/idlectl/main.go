// Command idlectl is an operator tool for inspecting and nudging a running
// engine through its shared Redis store.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/KirkDiggler/cultivation-idle/internal/bootstrap"
	"github.com/KirkDiggler/cultivation-idle/internal/config"
)

func main() {
	app := newApp(openRedisRuntime)
	defer app.close()

	if err := newRootCmd(app).Execute(); err != nil {
		app.close()
		os.Exit(1)
	}
}

// openRedisRuntime connects to the store the engine daemon uses. The CLI
// refuses to run on in-memory stores since nothing would be shared.
func openRedisRuntime(ctx context.Context) (*bootstrap.Runtime, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	ctx = bootstrap.LogContext(ctx, cfg.Log)
	return bootstrap.New(ctx, cfg, true)
}
