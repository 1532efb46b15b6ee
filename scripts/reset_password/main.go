package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type User struct {
	ID             uint
	Username       string
	HashedPassword []byte
}

type RefreshToken struct {
	ID      uint
	UserID  uint
	Revoked bool
}

// Resets a user's password and revokes their outstanding refresh tokens so
// stale sessions cannot survive the reset.
func main() {
	username := flag.String("username", "", "username to reset")
	password := flag.String("password", "", "new plaintext password (min 6 chars)")
	keepSessions := flag.Bool("keep-sessions", false, "do not revoke existing refresh tokens")
	flag.Parse()
	if *username == "" || *password == "" {
		log.Fatal("--username and --password are required")
	}
	if len(*password) < 6 {
		log.Fatal("password too short (min 6)")
	}
	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	var user User
	if err := db.Where("username = ?", *username).First(&user).Error; err != nil {
		log.Fatalf("user not found: %v", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt: %v", err)
	}
	if err := db.Model(&user).Update("hashed_password", hash).Error; err != nil {
		log.Fatalf("update failed: %v", err)
	}
	if !*keepSessions {
		res := db.Model(&RefreshToken{}).Where("user_id = ? AND revoked = false", user.ID).Update("revoked", true)
		if res.Error != nil {
			log.Printf("warning: revoking refresh tokens failed: %v", res.Error)
		} else if res.RowsAffected > 0 {
			fmt.Printf("Revoked %d refresh token(s)\n", res.RowsAffected)
		}
	}
	fmt.Printf("Password reset for user %s (id=%d)\n", user.Username, user.ID)
}
