package main

import (
	"fmt"
	"log"

	"github.com/CosmicMagnetar/unilodge/internal/utils"
)

func main() {
	fmt.Println("===========================================")
	fmt.Println("UniLodge JWT secret generator")
	fmt.Println("===========================================")
	fmt.Println()

	accessSecret, refreshSecret, err := utils.GenerateJWTSecrets()
	if err != nil {
		log.Fatalf("Failed to generate secrets: %v", err)
	}

	fmt.Println("Add these to your .env file or deployment secrets:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", accessSecret)
	fmt.Printf("JWT_REFRESH_SECRET=%s\n", refreshSecret)
	fmt.Println()
	fmt.Println("Keep these out of version control. Rotating them signs every user out.")
	fmt.Println("===========================================")
}
