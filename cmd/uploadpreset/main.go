package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"quotestudio/internal/infra"
	"quotestudio/internal/infra/credentials"
)

func main() {
	var (
		presetFlag string
		folderFlag string
		clearFlag  bool
	)
	flag.StringVar(&presetFlag, "preset", "", "upload preset name (fallbacks to CLOUDINARY_UPLOAD_PRESET)")
	flag.StringVar(&folderFlag, "folder", "", "folder uploads are placed under")
	flag.BoolVar(&clearFlag, "clear", false, "remove the stored preset so the environment value applies")
	flag.Parse()

	preset := strings.TrimSpace(presetFlag)
	if preset == "" {
		preset = strings.TrimSpace(os.Getenv("CLOUDINARY_UPLOAD_PRESET"))
	}
	if preset == "" && !clearFlag {
		fmt.Fprintln(os.Stderr, "upload preset is required via -preset or CLOUDINARY_UPLOAD_PRESET")
		os.Exit(1)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.CLILogger("uploadpreset")
	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))

	ctxExec, cancelExec := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelExec()

	if clearFlag {
		if err := store.ClearUploadSettings(ctxExec); err != nil {
			fmt.Fprintf(os.Stderr, "failed to clear upload preset: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("upload preset cleared")
		return
	}

	settings := credentials.UploadSettings{Preset: preset, Folder: strings.Trim(strings.TrimSpace(folderFlag), "/")}
	if err := store.SetUploadSettings(ctxExec, settings); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist upload preset: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("upload preset %q stored\n", settings.Preset)
}
