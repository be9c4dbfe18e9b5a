// weather-seed is the one-shot bulk loader: it wipes the reading collection
// and imports a JSON array in the clean_output.json format. The input is
// assumed pre-validated and pre-deduplicated.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/i474232898/weather-readings-api/internal/reading"
	"github.com/i474232898/weather-readings-api/internal/store/postgres"
)

func main() {
	var file = flag.StringP("file", "f", "", "path to the JSON file with readings")
	var databaseURL = flag.String("database-url", "", "Postgres URL, defaults to DATABASE_URL")
	var dryRun = flag.Bool("dry-run", false, "parse and count readings without writing")

	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	if *file == "" {
		flag.Usage()
		log.Fatal("please specify an input file")
	}
	if *databaseURL == "" {
		*databaseURL = os.Getenv("DATABASE_URL")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *file, err)
	}

	var readings []reading.Reading
	if err := json.Unmarshal(data, &readings); err != nil {
		log.Fatalf("failed to parse %s: %v", *file, err)
	}
	log.Printf("found %d weather records to import", len(readings))

	if *dryRun {
		return
	}
	if *databaseURL == "" {
		log.Fatal("please specify --database-url or set DATABASE_URL")
	}

	db, err := sql.Open("pgx", *databaseURL)
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("db ping error: %v", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("db schema error: %v", err)
	}

	service := reading.NewService(postgres.NewStore(db), nil)

	count, err := service.Import(ctx, readings)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	log.Printf("weather data imported successfully: %d records", count)
}
