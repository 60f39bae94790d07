// Command createadmin stores an admin account in the configured database.
//
//	createadmin -email admin@example.com
//
// The password is read from -password or prompted for on the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"okurmen-backend/internal/config"
	"okurmen-backend/internal/db"
	"okurmen-backend/internal/repository"
	"okurmen-backend/internal/service"
	"okurmen-backend/utilities"
)

func main() {
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password (prompted when empty)")
	configPath := flag.String("config", "config.xml", "path to the XML configuration")
	flag.Parse()

	if strings.TrimSpace(*email) == "" {
		flag.Usage()
		os.Exit(2)
	}

	// Load XML configuration from file.
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize DB using the loaded config.
	gdb, err := db.InitDBFromConfig(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	if *password == "" {
		*password, err = promptPassword()
		if err != nil {
			log.Fatalf("failed to read password: %v", err)
		}
	}

	tokens := utilities.NewTokenService(cfg.JWTSecret, 0)
	authService := service.NewAuthService(
		repository.NewUserRepository(gdb),
		repository.NewAdminRepository(gdb),
		tokens,
		nil,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	admin, err := authService.CreateAdmin(ctx, *email, *password)
	if err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}
	fmt.Println("admin created:", admin.Email)
}

func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; pass -password")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}
