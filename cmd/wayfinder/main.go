// wayfinder turns a video stream into spoken spatial guidance.
//
// Frames are detected, tracked across time, classified by direction,
// distance and motion, and filtered into announcements for a voice
// output. A web API controls playback and streams every event.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
