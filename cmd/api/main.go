package main

import (
	"fmt"
	"os"

	"github.com/metinatakli/movie-seat-selection/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
