package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/obikoya/care-triage-routing/internal/domain/entities"
	"github.com/obikoya/care-triage-routing/internal/infrastructure/clients/postgres"
	"github.com/obikoya/care-triage-routing/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS providers (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	specialties TEXT[] NOT NULL DEFAULT '{}',
	languages TEXT[] NOT NULL DEFAULT '{}',
	accepted_insurance TEXT[] NOT NULL DEFAULT '{}',
	total_beds INT NOT NULL DEFAULT 0,
	available_beds INT NOT NULL DEFAULT 0,
	current_load INT NOT NULL DEFAULT 0,
	daily_patient_capacity INT NOT NULL DEFAULT 0,
	average_wait_minutes INT NOT NULL DEFAULT 30,
	capacity_updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	rating DOUBLE PRECISION NOT NULL DEFAULT 0,
	review_count INT NOT NULL DEFAULT 0,
	consultation_fee DOUBLE PRECISION NOT NULL DEFAULT 0,
	currency TEXT NOT NULL DEFAULT 'USD',
	street TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	zip_code TEXT NOT NULL DEFAULT '',
	country TEXT NOT NULL DEFAULT '',
	latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
	longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_providers_active_load ON providers (is_active, current_load);

CREATE TABLE IF NOT EXISTS validation_queue (
	episode_id TEXT PRIMARY KEY,
	patient_id TEXT NOT NULL,
	urgency_level TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	assigned_supervisor TEXT,
	priority INT NOT NULL DEFAULT 50,
	queued_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	primary_complaint TEXT NOT NULL DEFAULT '',
	severity INT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_validation_queue_status ON validation_queue (status, assigned_supervisor);
`

var specialtyPool = [][]string{
	{"general practice", "pediatrics"},
	{"cardiology", "internal medicine"},
	{"emergency medicine", "trauma"},
	{"dermatology"},
	{"obstetrics", "gynecology"},
}

var urgencies = []entities.UrgencyLevel{
	entities.UrgencyEmergency,
	entities.UrgencyUrgent,
	entities.UrgencyRoutine,
	entities.UrgencySelfCare,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE providers, validation_queue`); err != nil {
			log.Printf("Warning: failed to truncate tables: %v", err)
		}
	}

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 0; i < 25; i++ {
		id := uuid.New().String()
		specs := specialtyPool[i%len(specialtyPool)]
		load := rng.Intn(101)
		_, err := pgClient.DB().ExecContext(ctx, `
			INSERT INTO providers (
				id, name, is_active, specialties, languages, accepted_insurance,
				total_beds, available_beds, current_load, daily_patient_capacity,
				average_wait_minutes, rating, review_count, consultation_fee,
				city, country, latitude, longitude
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
			id,
			"Seed Clinic "+id[:8],
			i%7 != 0,
			pq.Array(specs),
			pq.Array([]string{"english", "yoruba"}),
			pq.Array([]string{"NHIS", "AXA"}),
			50+rng.Intn(200),
			rng.Intn(50),
			load,
			100+rng.Intn(400),
			10+rng.Intn(60),
			2.5+rng.Float64()*2.5,
			rng.Intn(500),
			float64(20+rng.Intn(180)),
			"Lagos",
			"NG",
			6.45+rng.Float64()*0.2,
			3.35+rng.Float64()*0.2,
		)
		if err != nil {
			log.Fatalf("Failed to seed provider: %v", err)
		}
	}
	log.Println("Seeded 25 providers")

	for i := 0; i < 12; i++ {
		urgency := urgencies[i%len(urgencies)]
		_, err := pgClient.DB().ExecContext(ctx, `
			INSERT INTO validation_queue (
				episode_id, patient_id, urgency_level, status, priority,
				queued_at, primary_complaint, severity
			) VALUES ($1,$2,$3,'pending',$4,$5,$6,$7)
			ON CONFLICT (episode_id) DO NOTHING`,
			uuid.New().String(),
			uuid.New().String(),
			urgency,
			urgency.QueuePriority(),
			time.Now().Add(-time.Duration(rng.Intn(90))*time.Minute),
			"seeded complaint",
			1+rng.Intn(10),
		)
		if err != nil {
			log.Fatalf("Failed to seed queue item: %v", err)
		}
	}
	log.Println("Seeded 12 queue items")
}
