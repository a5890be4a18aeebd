// AngelaMos | 2026
// main.go

package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/carterperez-dev/iot-admin/internal/auth"
)

func main() {
	dir := flag.String("dir", "keys", "directory to write the key pair into")
	force := flag.Bool("force", false, "overwrite an existing key pair")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	privatePath := filepath.Join(*dir, "private.pem")
	publicPath := filepath.Join(*dir, "public.pem")

	if _, err := os.Stat(privatePath); err == nil && !*force {
		logger.Error("key pair already exists, pass -force to replace it", "path", privatePath)
		os.Exit(1)
	}

	if err := os.MkdirAll(*dir, 0o700); err != nil {
		logger.Error("create key directory", "error", err)
		os.Exit(1)
	}

	if err := auth.GenerateKeyPair(privatePath, publicPath); err != nil {
		logger.Error("generate key pair", "error", err)
		os.Exit(1)
	}

	logger.Info("ES256 key pair written", "private", privatePath, "public", publicPath)
}
