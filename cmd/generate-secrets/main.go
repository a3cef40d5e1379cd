package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/asgtransit/website-api/internal/utils"
)

func main() {
	password := flag.String("admin-password", "", "admin password to hash (read from stdin when empty)")
	flag.Parse()

	fmt.Println("===========================================")
	fmt.Println("Secret generator for the ASG website API")
	fmt.Println("===========================================")
	fmt.Println()

	accessSecret, refreshSecret, err := utils.GenerateJWTSecrets()
	if err != nil {
		log.Fatalf("Failed to generate secrets: %v", err)
	}

	if *password == "" {
		fmt.Print("Admin password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatalf("Failed to read password: %v", err)
		}
		*password = strings.TrimSpace(line)
	}

	hash, err := utils.HashAdminPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	fmt.Println()
	fmt.Println("Add these to your .env file:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", accessSecret)
	fmt.Printf("JWT_REFRESH_SECRET=%s\n", refreshSecret)
	fmt.Printf("ADMIN_PASSWORD_HASH=%s\n", hash)
	fmt.Println()
	fmt.Println("IMPORTANT: keep these secrets out of version control.")
	fmt.Println("===========================================")
}
