package main

import (
	"flag"
	"fmt"
	"os"

	"tidywork/internal/shared/auth"
	"tidywork/internal/shared/config"
)

// Утилита для локальной отладки: печатает WORKER токен для запросов к агенту.
func main() {
	workerID := flag.String("worker", "550e8400-e29b-41d4-a716-446655440000", "Worker ID (UUID)")
	role := flag.String("role", "WORKER", "Role (WORKER|CUSTOMER|ADMIN)")
	flag.Parse()

	jwtCfg := config.JWTConfig{Secret: "dev_secret", ExpiryMinutes: 60}
	if cfg, err := config.Load(); err == nil {
		jwtCfg = cfg.JWT
	} else {
		fmt.Fprintf(os.Stderr, "config not loaded (%v), using dev defaults\n", err)
	}

	jwtService := auth.NewJWTService(jwtCfg)

	token, err := jwtService.GenerateToken(*workerID, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating JWT token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n✅ JWT Token generated successfully!\n\n")
	fmt.Printf("Worker ID: %s\n", *workerID)
	fmt.Printf("Role:      %s\n", *role)
	fmt.Printf("\nToken:\n%s\n", token)
	fmt.Printf("\n📋 Copy this for API requests:\n")
	fmt.Printf("Authorization: Bearer %s\n", token)
	fmt.Printf("\n💡 Example curl:\n")
	fmt.Printf("curl -X POST http://localhost:3100/bookings/<booking_id>/advance \\\n")
	fmt.Printf("  -H 'Authorization: Bearer %s' \\\n", token)
	fmt.Printf("  -H 'Content-Type: application/json' \\\n")
	fmt.Printf("  -d '{\"target\": \"on_the_way\"}'\n\n")
}
