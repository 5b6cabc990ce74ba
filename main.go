package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/abhisek/rcscout/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	// After the first interrupt, restore default handling so a second one
	// kills the process.
	go func() {
		<-ctx.Done()
		stop()
	}()
	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "rcscout:", err)
		os.Exit(1)
	}
}
