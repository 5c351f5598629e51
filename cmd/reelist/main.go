package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// An interrupted sync has already printed its partial report;
		// exit with the conventional SIGINT code without re-reporting.
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "reelist: "+err.Error())
		os.Exit(1)
	}
}
