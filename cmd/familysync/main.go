// Command familysync is a terminal front end for the FamilySync household
// inventory.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/akilaweerasekara/Home-Inventory/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Replaced once config is loaded
	logger := logging.SetupWithLevel(slog.LevelWarn)

	a := &app{logger: logger}
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	if err != nil {
		os.Exit(1)
	}
}
