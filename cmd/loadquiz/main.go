// Command loadquiz imports question bank files into the questions table.
//
//	loadquiz -pattern 'quiz-time/anos/ano*/*/*/an*.csv'
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/sousamj2/explicolivais/internal/config"
	"github.com/sousamj2/explicolivais/internal/repository/gormdb"
	"github.com/sousamj2/explicolivais/internal/service/questionbank"
	"github.com/sousamj2/explicolivais/pkg/database"
	"github.com/sousamj2/explicolivais/pkg/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "Path to config.yaml")
	pattern := flag.String("pattern", "quiz-time/anos/ano*/*/*/an*.csv", "Glob of .csv or .xlsx question files")
	dryRun := flag.Bool("dry-run", false, "Parse files without writing to the database")
	flag.Parse()

	if *configPath == "" {
		*configPath = "config/config.yaml"
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	files, err := filepath.Glob(*pattern)
	if err != nil {
		zlog.Fatal("Invalid pattern", zap.String("pattern", *pattern), zap.Error(err))
	}
	if len(files) == 0 {
		zlog.Fatal("No question files matched the pattern", zap.String("pattern", *pattern))
	}
	sort.Strings(files)

	var repo *gormdb.QuestionRepo
	if !*dryRun {
		db, err := database.Open(cfg.Database, zlog)
		if err != nil {
			zlog.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := database.Migrate(db, cfg.Database.Driver, zlog); err != nil {
			zlog.Fatal("Failed to migrate database", zap.Error(err))
		}
		repo = gormdb.NewQuestionRepo(db)
	}

	total, failed := 0, 0
	years := map[int]bool{}
	for _, file := range files {
		questions, err := questionbank.ReadFile(file)
		if err != nil {
			zlog.Error("Skipping file", zap.String("file", file), zap.Error(err))
			failed++
			continue
		}
		if repo != nil {
			if err := repo.UpsertBatch(questions); err != nil {
				zlog.Error("Failed to store questions", zap.String("file", file), zap.Error(err))
				failed++
				continue
			}
		}
		for _, q := range questions {
			years[q.Year] = true
		}
		total += len(questions)
		zlog.Info("File loaded", zap.String("file", file), zap.Int("questions", len(questions)))
	}

	if repo != nil {
		for _, year := range sortedYears(years) {
			n, err := repo.CountByYear(year)
			if err != nil {
				zlog.Warn("Failed to count questions", zap.Int("year", year), zap.Error(err))
				continue
			}
			zlog.Info("Questions stored", zap.Int("year", year), zap.Int64("count", n))
		}
	}

	zlog.Info("Question import finished",
		zap.Int("files", len(files)),
		zap.Int("questions", total),
		zap.Int("failures", failed),
		zap.Bool("dry_run", *dryRun))
	if failed > 0 {
		zlog.Sync()
		os.Exit(1)
	}
}

func sortedYears(set map[int]bool) []int {
	years := make([]int, 0, len(set))
	for y := range set {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
