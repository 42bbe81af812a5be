package main

import (
	"fmt"
	"log"

	"github.com/skillbridge/tutoring-backend/internal/utils"
)

func main() {
	fmt.Println("===========================================")
	fmt.Println("Session Secret Generator for SkillBridge")
	fmt.Println("===========================================")
	fmt.Println()

	secret, err := utils.GenerateSecret(32)
	if err != nil {
		log.Fatalf("Failed to generate secret: %v", err)
	}

	fmt.Println("Secret generated successfully!")
	fmt.Println()
	fmt.Println("Add this to your .env file when AUTH_SESSION_MODE=jwt:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", secret)
	fmt.Println()
	fmt.Println("IMPORTANT: Keep this secret safe and never commit it to version control!")
	fmt.Println("===========================================")
}
