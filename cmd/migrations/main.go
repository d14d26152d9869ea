package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/weeklypoll/internal/config"
)

// Usage: migrations [-down] [name]. Without a name every migration in the
// chosen direction is applied, in file name order (reversed for -down).
func main() {
	down := flag.Bool("down", false, "Apply down migrations")
	dir := flag.String("dir", filepath.Join(".", "internal", "adapters", "repository", "postgres", "migrations"), "Migrations directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("postgres", cfg.Postgres.ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	direction := "up"
	if *down {
		direction = "down"
	}

	files, err := migrationFiles(*dir, direction, flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	for _, name := range files {
		content, err := os.ReadFile(filepath.Join(*dir, name))
		if err != nil {
			log.Fatal(err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			log.Fatalf("Failed to execute %s: %v", name, err)
		}
		fmt.Printf("Applied %s\n", name)
	}
}

func migrationFiles(basePath, direction, name string) ([]string, error) {
	pattern := fmt.Sprintf(`^.*%s.*\.%s\.sql$`, regexp.QuoteMeta(name), direction)
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	entries, err := os.ReadDir(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !regex.MatchString(e.Name()) {
			continue
		}
		files = append(files, e.Name())
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s migration matches %q", direction, name)
	}

	sort.Strings(files)
	if direction == "down" {
		sort.Sort(sort.Reverse(sort.StringSlice(files)))
	}
	return files, nil
}

func init() {
	log.SetFlags(0)
	log.SetPrefix("migrations: ")
}
