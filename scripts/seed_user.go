package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	dsn := getEnv("DATABASE_URL",
		"host=127.0.0.1 port=5432 user=postgres password=postgres dbname=secondbrain sslmode=disable")

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("failed to connect DB:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("DB unreachable:", err)
	}

	email := getEnv("SEED_EMAIL", "demo@secondbrain.local")
	password := getEnv("SEED_PASSWORD", "changeme-now")

	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	_, err = db.Exec(`
		INSERT INTO users (id, email, name, password_hash)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		uuid.NewString(), email, "Demo User", string(hash),
	)
	if err != nil {
		log.Fatal("failed to seed user:", err)
	}

	fmt.Println("User seeded:", email)
}

func getEnv(key, defaultValue string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	return v
}
