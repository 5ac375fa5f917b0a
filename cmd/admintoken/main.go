// Command admintoken mints HS256 bearer tokens for the operator endpoints
// (currently GET /audit). The secret must match the server's
// ADMIN_JWT_SECRET; without that variable set the endpoints are open and
// no token is needed.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	secret := flag.String("secret", os.Getenv("ADMIN_JWT_SECRET"), "Signing secret (defaults to ADMIN_JWT_SECRET)")
	subject := flag.String("subject", "operator", "Subject claim for the token")
	ttl := flag.Duration("ttl", 12*time.Hour, "Token time-to-live")
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "error: -secret or ADMIN_JWT_SECRET is required")
		os.Exit(1)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": *subject,
		"iat": now.Unix(),
		"exp": now.Add(*ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(*secret))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(signed)
	fmt.Fprintf(os.Stderr, "\nexpires: %s\nusage: curl -H 'Authorization: Bearer <token>' http://localhost:5050/audit\n",
		now.Add(*ttl).UTC().Format(time.RFC3339))
}
