package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/segyhp/payment-tracker/internal/app"
	"github.com/segyhp/payment-tracker/internal/config"
	"github.com/segyhp/payment-tracker/internal/importer"
)

func main() {
	var (
		mode        string
		generateKey bool
		encryptPath string
		outPath     string
	)
	pflag.StringVarP(&mode, "mode", "m", "", "Validation mode: strict or historical (defaults to IMPORT_VALIDATION_MODE)")
	pflag.BoolVar(&generateKey, "generate-key", false, "Print a new encryption key and exit")
	pflag.StringVar(&encryptPath, "encrypt", "", "Encrypt a plaintext CSV with ENCRYPTION_KEY instead of importing")
	pflag.StringVarP(&outPath, "out", "o", "", "Output path for --encrypt (defaults to stdout)")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] BATCH_FILE...\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if generateKey {
		key, err := importer.GenerateKey()
		if err != nil {
			log.Fatalf("Failed to generate key: %v", err)
		}
		fmt.Println(key)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if mode != "" {
		cfg.Import.ValidationMode = mode
	}

	logger := app.NewLogger(cfg)
	defer logger.Sync()

	fernet, err := importer.NewFernet(cfg.Import.EncryptionKey)
	if err != nil {
		logger.Fatal("ENCRYPTION_KEY is not a valid key", zap.Error(err))
	}

	if encryptPath != "" {
		if err := encryptFile(fernet, encryptPath, outPath); err != nil {
			logger.Fatal("failed to encrypt batch", zap.String("path", encryptPath), zap.Error(err))
		}
		return
	}

	files := pflag.Args()
	if len(files) == 0 {
		pflag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize store", zap.Error(err))
	}
	defer store.Close(context.Background())

	imp, err := importer.New(store, fernet, importer.Options{
		Mode:     cfg.Import.ValidationMode,
		TokenTTL: cfg.Import.TokenTTL,
	})
	if err != nil {
		logger.Fatal("failed to create importer", zap.Error(err))
	}

	failed := 0
	for _, path := range files {
		result, err := imp.ImportFile(ctx, path)
		if err != nil {
			failed++
			logger.Error("batch import failed", zap.String("path", path), zap.Error(err))
			continue
		}
		if result.Skipped {
			logger.Info("batch already imported", zap.String("file", result.FileName))
			continue
		}
		logger.Info("batch imported",
			zap.String("file", result.FileName),
			zap.Int("inserted", result.Inserted),
			zap.String("mode", cfg.Import.ValidationMode),
		)
	}

	if failed > 0 {
		logger.Sync()
		os.Exit(1)
	}
}

func encryptFile(fernet *importer.Fernet, path, out string) error {
	plaintext, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	token, err := fernet.Encrypt(plaintext)
	if err != nil {
		return err
	}

	if out == "" {
		_, err = os.Stdout.Write(append(token, '\n'))
		return err
	}
	return os.WriteFile(out, token, 0o600)
}
