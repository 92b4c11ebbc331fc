// gen-token prints a signed development JWT for exercising the API locally.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/taskhive/backend/internal/middleware"
)

func main() {
	userID := flag.String("user", "", "user id to embed in the token")
	tier := flag.String("tier", "free", "subscription tier (free, pro, premium)")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "signing secret")
	ttl := flag.Duration("ttl", 72*time.Hour, "token lifetime")
	flag.Parse()

	if *userID == "" || *secret == "" {
		fmt.Fprintln(os.Stderr, "usage: gen-token -user <id> [-tier pro] [-ttl 72h] (JWT_SECRET env or -secret required)")
		os.Exit(2)
	}

	token, err := middleware.IssueToken(*secret, *userID, *tier, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
