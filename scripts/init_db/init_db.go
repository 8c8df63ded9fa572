package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found — using system environment variables")
	}

	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		getEnv("DB_USER", "seniorcare_user"),
		getEnv("DB_PASSWORD", "seniorcare_password"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "seniorcare"),
	)

	ctx := context.Background()

	fmt.Println("Connecting to Postgres...")
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		log.Fatalf("Connection failed: %v\n\nMake sure Postgres is running:\n  docker-compose up -d postgres", err)
	}
	defer conn.Close(ctx)
	fmt.Println("✓ Connected")

	step1_history_table(ctx, conn)
	step2_alerts_table(ctx, conn)
	step3_indexes(ctx, conn)
	step4_verify(ctx, conn)

	fmt.Println("\n✅ Database initialised successfully")
}

func step1_history_table(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 1: vitals_history table ────────────────")

	execOrFatal(ctx, conn, `
		CREATE TABLE IF NOT EXISTS vitals_history (
			id              UUID             PRIMARY KEY,
			device_id       TEXT             NOT NULL,

			-- enrichment instant; history is ordered by this
			recorded_at     TIMESTAMPTZ      NOT NULL,
			-- preformatted ISO string, kept as the dashboard receives it
			processed_at    TEXT             NOT NULL,

			temperature     DOUBLE PRECISION NOT NULL,
			humidity        DOUBLE PRECISION NOT NULL DEFAULT 0,
			o2_saturation   INT              NOT NULL,
			fall_detected   BOOLEAN          NOT NULL DEFAULT false,
			checkin_status  BOOLEAN          NOT NULL DEFAULT false,
			health_score    INT              NOT NULL,
			led_status      BOOLEAN          NOT NULL DEFAULT false,

			overall_status  TEXT             NOT NULL,
			-- alerts embedded in the record, in evaluation order
			alerts          JSONB            NOT NULL DEFAULT '[]',

			CONSTRAINT chk_overall_status CHECK (
				overall_status IN ('GOOD', 'WARNING', 'CRITICAL')
			)
		);
	`, "vitals_history table created")
}

func step2_alerts_table(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 2: vitals_alerts table ─────────────────")

	execOrFatal(ctx, conn, `
		CREATE TABLE IF NOT EXISTS vitals_alerts (
			id               UUID             PRIMARY KEY,
			device_id        TEXT             NOT NULL,

			alert_type       TEXT             NOT NULL,
			severity         TEXT             NOT NULL,
			message          TEXT             NOT NULL,

			-- the reading that tripped the rule; NULL for FALL
			triggered_value  DOUBLE PRECISION,

			created_at       TIMESTAMPTZ      NOT NULL,
			acknowledged     BOOLEAN          NOT NULL DEFAULT false,

			CONSTRAINT chk_alert_type CHECK (
				alert_type IN ('FEVER', 'HYPOTHERMIA', 'LOW_OXYGEN', 'FALL')
			),
			CONSTRAINT chk_severity CHECK (
				severity IN ('MEDIUM', 'HIGH', 'CRITICAL')
			)
		);
	`, "vitals_alerts table created")
}

func step3_indexes(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 3: Indexes ─────────────────────────────")

	indexes := []struct {
		name string
		sql  string
		why  string
	}{
		{
			name: "idx_history_device_time",
			sql: `CREATE INDEX IF NOT EXISTS idx_history_device_time
				  ON vitals_history (device_id, recorded_at DESC);`,
			why: "query: recent history for one device",
		},
		{
			name: "idx_alerts_time",
			sql: `CREATE INDEX IF NOT EXISTS idx_alerts_time
				  ON vitals_alerts (created_at DESC);`,
			why: "query: most recent alerts",
		},
		{
			name: "idx_alerts_unacknowledged",
			sql: `CREATE INDEX IF NOT EXISTS idx_alerts_unacknowledged
				  ON vitals_alerts (created_at DESC)
				  WHERE acknowledged = false;`,
			why: "query: open alerts only (partial index)",
		},
	}

	for _, idx := range indexes {
		execOrFatal(ctx, conn, idx.sql,
			fmt.Sprintf("%-30s ← %s", idx.name, idx.why),
		)
	}
}

func step4_verify(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 4: Verification ────────────────────────")

	tables := []string{"vitals_history", "vitals_alerts"}
	for _, table := range tables {
		var exists bool
		err := conn.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_name = $1
			)
		`, table).Scan(&exists)
		if err != nil || !exists {
			log.Fatalf("Table %s was not created: %v", table, err)
		}
		fmt.Printf("  ✓ table: %s\n", table)
	}

	var indexCount int
	err := conn.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM pg_indexes
		WHERE tablename IN ('vitals_history', 'vitals_alerts')
		AND indexname LIKE 'idx_%'
	`).Scan(&indexCount)
	if err != nil {
		log.Fatalf("Index check failed: %v", err)
	}
	fmt.Printf("  ✓ indexes created: %d\n", indexCount)
}

func execOrFatal(ctx context.Context, conn *pgx.Conn, sql, label string) {
	_, err := conn.Exec(ctx, sql)
	if err != nil {
		log.Fatalf("FAILED — %s\nError: %v\nSQL: %s", label, err, sql)
	}
	fmt.Printf("  ✓ %s\n", label)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
