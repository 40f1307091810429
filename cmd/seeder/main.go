package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/USSTM/wms-backend/internal/config"
	"github.com/USSTM/wms-backend/internal/container"
	"github.com/USSTM/wms-backend/internal/database"
	"github.com/USSTM/wms-backend/internal/repository"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return errors.New("command required")
	}

	_ = godotenv.Load()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "seed":
		return seedCommand(args)
	case "export":
		return exportCommand(args)
	case "migrate":
		return migrateCommand()
	case "nuke":
		return nukeCommand(args)
	case "help", "--help", "-h":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func seedCommand(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("file", "", "YAML file to seed from")
	dir := fs.String("dir", "", "Directory of YAML files to seed from")
	dryRun := fs.Bool("dry-run", false, "Validate files without writing to the store")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	files, err := resolveFiles(*file, *dir)
	if err != nil {
		return err
	}

	seedData, err := loadSeedData(files)
	if err != nil {
		return fmt.Errorf("failed to load seed data: %w", err)
	}

	if *dryRun {
		fmt.Println("dry run: validating data structure")
		return validateSeedData(seedData)
	}

	fmt.Printf("seeding reference store from %d file(s)\n", len(files))
	return replaceAll(context.Background(), *seedData)
}

func exportCommand(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "", "File to write (defaults to stdout)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	ctx := context.Background()
	repo, closeStore, err := openRepository(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := repo.Load(ctx); err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	body, err := yaml.Marshal(repo.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if *out == "" {
		_, err = os.Stdout.Write(body)
		return err
	}
	if err := os.WriteFile(*out, body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", *out, err)
	}
	fmt.Printf("exported reference data to %s\n", *out)
	return nil
}

func migrateCommand() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	fmt.Println("applying all migrations...")
	if err := db.Migrate(context.Background()); err != nil {
		return err
	}
	fmt.Println("migrations complete")
	return nil
}

func nukeCommand(args []string) error {
	fs := flag.NewFlagSet("nuke", flag.ExitOnError)
	force := fs.Bool("force", false, "Skip confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	if !*force && !confirmNuke() {
		fmt.Println("operation cancelled")
		return nil
	}

	if err := replaceAll(context.Background(), repository.Snapshot{}); err != nil {
		return err
	}
	fmt.Println("reference store reset - ready for seeding")
	return nil
}

func openRepository(ctx context.Context) (*repository.Repository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	store, err := container.OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open reference store: %w", err)
	}

	// the seeder writes synchronously even when the server persists via the queue
	repo := repository.New(store, repository.StorePersister{Store: store})
	return repo, store.Close, nil
}

func replaceAll(ctx context.Context, data repository.Snapshot) error {
	repo, closeStore, err := openRepository(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := repo.Replace(ctx, data); err != nil {
		return fmt.Errorf("failed to write reference data: %w", err)
	}

	for kind, n := range repo.Counts() {
		fmt.Printf("wrote %s: %d\n", kind, n)
	}
	return nil
}

func resolveFiles(file, dir string) ([]string, error) {
	if file == "" && dir == "" {
		return nil, errors.New("must specify either --file or --dir")
	}

	if file != "" && dir != "" {
		return nil, errors.New("cannot specify both --file and --dir")
	}

	if file != "" {
		return []string{file}, nil
	}

	return findYAMLFiles(dir)
}

func findYAMLFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && isYAMLFile(path) {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", dir, err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no YAML files found in directory: %s", dir)
	}

	return files, nil
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func loadSeedData(files []string) (*repository.Snapshot, error) {
	combined := &repository.Snapshot{}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file, err)
		}

		var fileData repository.Snapshot
		if err := yaml.Unmarshal(data, &fileData); err != nil {
			return nil, fmt.Errorf("failed to parse YAML in %s: %w", file, err)
		}

		combined.Merge(fileData)
	}

	return combined, nil
}

func validateSeedData(data *repository.Snapshot) error {
	fmt.Printf("  Users: %d\n", len(data.Users))
	fmt.Printf("  Roles: %d\n", len(data.Roles))
	fmt.Printf("  Permissions: %d\n", len(data.Permissions))
	fmt.Printf("  Stock Selection Criteria: %d\n", len(data.StockSelectionCriteria))
	fmt.Printf("  Pools: %d\n", len(data.Pools))
	fmt.Printf("  Locations: %d\n", len(data.Locations))
	fmt.Printf("  Areas: %d\n", len(data.Areas))
	fmt.Printf("  Stock Lots: %d\n", len(data.StockLots))

	if err := data.Validate(); err != nil {
		return fmt.Errorf("data structure is invalid: %w", err)
	}
	fmt.Println("data structure is valid")
	return nil
}

func confirmNuke() bool {
	fmt.Print("warning: this will delete all reference data from the store. are you sure? (yes/no): ")

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false
	}

	return strings.ToLower(strings.TrimSpace(response)) == "yes"
}

func printUsage() {
	fmt.Println("Seeder Tool - Reference data utility for the warehouse backend")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  seeder <command> [flags]")
	fmt.Println()
	fmt.Println("COMMANDS:")
	fmt.Println("  seed        Replace reference data from YAML files")
	fmt.Println("  export      Write the current reference data as YAML")
	fmt.Println("  migrate     Apply database migrations (postgres backend)")
	fmt.Println("  nuke        Empty every reference document")
	fmt.Println("  help        Show this help message")
	fmt.Println()
	fmt.Println("SEED FLAGS:")
	fmt.Println("  --file      Path to a single YAML file")
	fmt.Println("  --dir       Path to directory containing YAML files")
	fmt.Println("  --dry-run   Validate files without writing to the store")
	fmt.Println()
	fmt.Println("EXPORT FLAGS:")
	fmt.Println("  --out       File to write (defaults to stdout)")
	fmt.Println()
	fmt.Println("NUKE FLAGS:")
	fmt.Println("  --force     Skip confirmation prompt")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  seeder seed --file seed/sample.yaml")
	fmt.Println("  seeder seed --dir ./seed/ --dry-run")
	fmt.Println("  seeder export --out backup.yaml")
	fmt.Println("  seeder nuke --force")
}
