package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"
	"talent_flow_app_go/config"
	"talent_flow_app_go/db"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"

	"golang.org/x/term"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(&models.User{}, &models.Session{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)

	// Get user details
	fmt.Println("=== Create New User ===")
	fmt.Println()

	fmt.Print("Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.ToLower(strings.TrimSpace(email))

	fmt.Print("Role (admin/consultant/staff) [admin]: ")
	role, _ := reader.ReadString('\n')
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = models.RoleAdmin
	}
	if !models.IsValidUserRole(role) {
		log.Fatalf("Invalid role %q", role)
	}

	// Get password securely
	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		log.Fatalf("Failed to read password: %v", err)
	}
	password := string(passwordBytes)
	fmt.Println() // New line after password input

	// Validate inputs
	if name == "" || email == "" || password == "" {
		log.Fatal("Name, email, and password are required")
	}

	if err := services.ValidatePassword(password); err != nil {
		log.Fatalf("Invalid password: %v", err)
	}

	// Check if user already exists
	var existingUser models.User
	if err := db.DB.Where("email = ?", email).First(&existingUser).Error; err == nil {
		log.Fatalf("User with email %s already exists", email)
	}

	// Hash password
	hashedPassword, err := services.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
		Role:     role,
		IsActive: true,
	}

	if err := db.DB.Create(user).Error; err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Println()
	fmt.Println("✓ User created successfully!")
	fmt.Printf("  ID: %s\n", user.ID)
	fmt.Printf("  Name: %s\n", user.Name)
	fmt.Printf("  Email: %s\n", user.Email)
	fmt.Printf("  Role: %s\n", user.Role)
	fmt.Println()
	fmt.Printf("The user can now log in at %s/login\n", cfg.AppURL)
}
