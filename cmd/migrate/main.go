// migrate aplica las migraciones SQL embebidas contra PostgreSQL.
//
// Uso: migrate [-config ruta.yaml] [up|down] [steps]
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/dropDatabas3/idcore/internal/config"
	migrations "github.com/dropDatabas3/idcore/migrations/postgres"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "ruta al YAML de configuración")
	flag.Parse()

	// Positional args: [action] [steps]
	action := "up"
	steps := 0
	args := flag.Args()
	if len(args) >= 1 && args[0] != "" {
		action = strings.ToLower(args[0])
	}
	if len(args) >= 2 {
		if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
			steps = n
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if cfg.Storage.DSN == "" {
		log.Fatal("storage.dsn (DATABASE_DSN) is required")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
	if err != nil {
		log.Fatalf("pgxpool: %v", err)
	}
	defer pool.Close()

	switch action {
	case "up":
		files, err := listSQL("_up.sql")
		if err != nil {
			log.Fatalf("list up: %v", err)
		}
		if len(files) == 0 {
			log.Println("No *_up.sql migrations found. Nothing to do.")
			return
		}
		sort.Strings(files) // apply in ascending order
		if steps > 0 && steps < len(files) {
			files = files[:steps]
		}
		log.Printf("Applying %d up migration(s)...", len(files))
		for _, f := range files {
			if err := execSQLFile(ctx, pool, f); err != nil {
				log.Fatalf("exec %s: %v", f, err)
			}
		}
		log.Println("Up migrations completed.")

	case "down":
		files, err := listSQL("_down.sql")
		if err != nil {
			log.Fatalf("list down: %v", err)
		}
		if len(files) == 0 {
			log.Println("No *_down.sql migrations found. Nothing to do.")
			return
		}
		sort.Strings(files)   // ascending
		reverseInPlace(files) // run in reverse
		if steps > 0 && steps < len(files) {
			files = files[:steps] // only N most-recent downs
		}
		log.Printf("Applying %d down migration(s)...", len(files))
		for _, f := range files {
			if err := execSQLFile(ctx, pool, f); err != nil {
				log.Fatalf("exec %s: %v", f, err)
			}
		}
		log.Println("Down migrations completed.")

	default:
		log.Fatalf("unknown action %q. Use: up | down [steps]", action)
	}
}

func listSQL(suffix string) ([]string, error) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func reverseInPlace(ss []string) {
	for i, j := 0, len(ss)-1; i < j; i, j = i+1, j-1 {
		ss[i], ss[j] = ss[j], ss[i]
	}
}

func execSQLFile(ctx context.Context, pool *pgxpool.Pool, name string) error {
	b, err := migrations.FS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	start := time.Now()
	if _, err := pool.Exec(ctx, string(b)); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	log.Printf("OK %s (%s)", name, time.Since(start).Truncate(time.Millisecond))
	return nil
}
