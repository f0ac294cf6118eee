package main

import (
	"fmt"
	"log"

	"github.com/taskwell/taskwell-api/internal/service/auth"
)

// printPasswordHash hashes the given password with bcrypt and prints the
// result, for configuring auth.owner_password_hash.
func printPasswordHash(password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	fmt.Println(hash)
}
