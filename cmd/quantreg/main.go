// Command quantreg trains a linear regression model, quantizes its parameters to uint8 and
// reports how well the reconstructed model predicts.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		slog.Error("quantreg failed", "error", err.Error())
		os.Exit(1)
	}
}
