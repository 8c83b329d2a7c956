// Command seed loads the course catalog into the configured store.
//
// The catalog is a JSON array of courses:
//
//	[{"course_id": "101", "title": "Algorithms", "description": "...", "credits": 3, "term": "Fall"}]
//
// Courses are upserted by course_id, so running seed twice is harmless and
// an edited file updates existing entries. The file defaults to seed.file
// from the configuration; a path given as the first argument overrides it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/sakif/enrollment/internal/config"
	"github.com/sakif/enrollment/internal/model"
	"github.com/sakif/enrollment/internal/server"
	"github.com/sakif/enrollment/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))

	file := cfg.Seed.File
	if len(os.Args) > 1 {
		file = os.Args[1]
	}

	if err := run(context.Background(), cfg, file, logger); err != nil {
		logger.Error("seeding failed", slog.String("file", file), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, file string, logger *slog.Logger) error {
	courses, err := readCatalog(file)
	if err != nil {
		return err
	}

	store, err := server.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	catalog := service.NewCatalogService(store, store, store, logger)
	n, err := catalog.SeedCourses(ctx, courses)
	if err != nil {
		return fmt.Errorf("after %d courses: %w", n, err)
	}
	return nil
}

func readCatalog(file string) ([]model.Course, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	var courses []model.Course
	decoder := json.NewDecoder(f)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&courses); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return courses, nil
}
