package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/stadtnetz/stops_core/internal/db"
)

// Seeds a small demo dataset: two metro lines, a tram line, shared stations,
// and the radius stored procedure the API delegates to.
func main() {
	drop := flag.Bool("drop", false, "Drop existing tables before seeding")
	flag.Parse()

	_ = godotenv.Load()

	pool, err := db.GetDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *drop {
		log.Println("Dropping existing tables...")
		if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS steige, linien, haltestellen CASCADE`); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS postgis`,
		`CREATE TABLE IF NOT EXISTS haltestellen (
			id   integer PRIMARY KEY,
			diva integer,
			name text,
			geom geometry(Point, 4326) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS linien (
			id             integer PRIMARY KEY,
			bezeichnung    text NOT NULL,
			verkehrsmittel text NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS steige (
			id                 integer PRIMARY KEY,
			fk_linien_id       integer NOT NULL REFERENCES linien(id),
			fk_haltestellen_id integer NOT NULL REFERENCES haltestellen(id),
			richtung           text NOT NULL,
			reihenfolge        integer NOT NULL,
			bereich            integer,
			steig              text,
			rbl_nummer         integer,
			geom               geometry(Point, 4326) NOT NULL
		)`,
		`CREATE OR REPLACE FUNCTION haltestellen_im_umkreis(lon float8, lat float8, radius_m integer)
		RETURNS TABLE(id integer, diva integer, name text, geom geometry, distance_m float8) AS $$
			SELECT h.id, h.diva, h.name, h.geom,
			       ST_DistanceSphere(h.geom, ST_SetSRID(ST_MakePoint(lon, lat), 4326))
			FROM haltestellen h
			WHERE ST_DistanceSphere(h.geom, ST_SetSRID(ST_MakePoint(lon, lat), 4326)) <= radius_m
		$$ LANGUAGE sql STABLE`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatalf("Failed to run schema statement: %v", err)
		}
	}
	log.Println("✓ Schema ready")

	seed := []string{
		`INSERT INTO linien (id, bezeichnung, verkehrsmittel) VALUES
			(301, 'U1', 'ptMetro'),
			(304, 'U4', 'ptMetro'),
			(101, '1', 'ptTram')
		ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO haltestellen (id, diva, name, geom) VALUES
			(10, 60200657, 'Stephansplatz',  ST_SetSRID(ST_MakePoint(16.37208, 48.20849), 4326)),
			(20, 60201040, 'Karlsplatz',     ST_SetSRID(ST_MakePoint(16.36970, 48.20304), 4326)),
			(30, 60201468, 'Schwedenplatz',  ST_SetSRID(ST_MakePoint(16.37870, 48.21166), 4326)),
			(40, 60200648, 'Schottenring',   ST_SetSRID(ST_MakePoint(16.37243, 48.21679), 4326))
		ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO steige (id, fk_linien_id, fk_haltestellen_id, richtung, reihenfolge, bereich, steig, rbl_nummer, geom) VALUES
			(1000, 301, 20, 'H', 1, 1, '1', 4101, ST_SetSRID(ST_MakePoint(16.36972, 48.20306), 4326)),
			(1001, 301, 10, 'H', 2, 1, '2', 4102, ST_SetSRID(ST_MakePoint(16.37210, 48.20851), 4326)),
			(1002, 301, 30, 'H', 3, 1, '1', 4103, ST_SetSRID(ST_MakePoint(16.37872, 48.21168), 4326)),
			(1003, 301, 30, 'R', 1, 2, '2', 4104, ST_SetSRID(ST_MakePoint(16.37868, 48.21164), 4326)),
			(1004, 301, 10, 'R', 2, 2, '1', 4105, ST_SetSRID(ST_MakePoint(16.37206, 48.20847), 4326)),
			(1005, 301, 20, 'R', 3, 2, '2', 4106, ST_SetSRID(ST_MakePoint(16.36968, 48.20302), 4326)),
			(1010, 304, 20, 'H', 1, 1, '1', 4201, ST_SetSRID(ST_MakePoint(16.36974, 48.20300), 4326)),
			(1011, 304, 40, 'H', 2, 1, '1', 4202, ST_SetSRID(ST_MakePoint(16.37245, 48.21681), 4326)),
			(1020, 101, 40, 'H', 1, NULL, NULL, 5101, ST_SetSRID(ST_MakePoint(16.37240, 48.21677), 4326))
		ON CONFLICT (id) DO NOTHING`,
	}

	for _, stmt := range seed {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
	}

	log.Println("✓ Demo data seeded")
	log.Println("Try: curl 'http://localhost:8080/stops?lineId=301'")
}
