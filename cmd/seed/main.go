package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cureveda/schedule-service/internal/db"
	"github.com/cureveda/schedule-service/internal/schedule"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	doctors := fakeEmails(5)
	patients := fakeEmails(40)

	if err := seedSlots(context.Background(), pool, doctors); err != nil {
		log.Fatalf("seed slots: %v", err)
	}
	if err := seedAppointments(context.Background(), pool, doctors, patients); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
	for _, d := range doctors {
		log.Printf("doctor: %s", d)
	}
}

func fakeEmails(count int) []string {
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, gofakeit.Email())
	}
	return out
}

// seedSlots gives every doctor a week of morning and afternoon clinic
// windows starting today.
func seedSlots(ctx context.Context, pool *pgxpool.Pool, doctors []string) error {
	log.Printf("seeding slots for %d doctors", len(doctors))

	windows := [][2]string{
		{"09:00", "12:00"},
		{"16:00", "19:00"},
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, doctor := range doctors {
		for day := 0; day < 7; day++ {
			date := time.Now().AddDate(0, 0, day).Format(schedule.DateLayout)
			for _, w := range windows {
				_, err := tx.Exec(ctx, `
					INSERT INTO schedule_slots (id, doctor_id, date, start_time, end_time, description, status, created_at, updated_at)
					VALUES ($1, $2, $3, $4, $5, $6, 'available', now(), now())
					ON CONFLICT ON CONSTRAINT schedule_slots_window_unique DO NOTHING
				`, uuid.New(), doctor, date, w[0], w[1], "Clinic hours")
				if err != nil {
					return err
				}
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("slots seeded")
	return nil
}

func seedAppointments(ctx context.Context, pool *pgxpool.Pool, doctors, patients []string) error {
	log.Printf("seeding appointments from %d patients", len(patients))

	notes := []string{
		"Persistent acidity after meals",
		"Joint stiffness in the mornings",
		"Follow-up for Panchkarma course",
		"Sleep trouble, needs consultation",
		"",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, patient := range patients {
		doctor := doctors[gofakeit.Number(0, len(doctors)-1)]
		day := gofakeit.Number(0, 6)
		hour := gofakeit.Number(9, 18)
		requested := time.Now().AddDate(0, 0, day).Truncate(time.Hour).Add(time.Duration(hour) * time.Hour)
		note := notes[gofakeit.Number(0, len(notes)-1)]

		status := schedule.StatusPending
		var finalTime *time.Time
		if gofakeit.Bool() {
			status = schedule.StatusAccepted
			finalTime = &requested
		}

		var noteVal *string
		if note != "" {
			noteVal = &note
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO appointments (id, doctor_id, patient_id, requested_time, final_time, status, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		`, uuid.New(), doctor, patient, requested, finalTime, string(status), noteVal)
		if err != nil {
			return fmt.Errorf("insert appointment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("appointments seeded")
	return nil
}
