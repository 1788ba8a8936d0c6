// gentoken prints a signed bearer token for local testing.
//
//	JWT_SECRET=dev go run ./cmd/gentoken -rol tesorero
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"sistemaservicios/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	rol := flag.String("rol", middleware.RolTesorero, "operador | tesorero | administrador")
	userID := flag.String("user", "", "user id (uuid); random when empty")
	horas := flag.Int("horas", 8, "validez en horas")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET no definido")
		os.Exit(1)
	}

	id := uuid.New()
	if *userID != "" {
		parsed, err := uuid.Parse(*userID)
		if err != nil {
			fmt.Fprintln(os.Stderr, "user id inválido:", err)
			os.Exit(1)
		}
		id = parsed
	}

	now := time.Now()
	claims := middleware.JWTClaims{
		UserID: id.String(),
		Rol:    *rol,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(*horas) * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(signed)
}
