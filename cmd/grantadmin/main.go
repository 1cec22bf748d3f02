// Command grantadmin flips the admin flag on a user account. It is the
// out-of-band operator path: the API re-reads the flag from the store on
// every privileged request, so grants apply without re-issuing tokens.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/thesishub-dev/thesishub/db"
	"github.com/thesishub-dev/thesishub/internal/models"
)

func main() {
	email := flag.String("email", "", "email of the account to modify")
	revoke := flag.Bool("revoke", false, "revoke instead of grant")
	flag.Parse()

	if *email == "" {
		log.Fatal("usage: grantadmin -email user@example.com [-revoke]")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on the environment")
	}

	if err := db.ConnectDatabase(os.Getenv("DATABASE_URL")); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var user models.User

	if err := db.DB.Where("email = ?", *email).First(&user).Error; err != nil {
		log.Fatalf("Failed to find user %s: %v", *email, err)
	}

	if err := db.DB.Model(&user).Update("is_admin", !*revoke).Error; err != nil {
		log.Fatalf("Failed to update admin flag: %v", err)
	}

	if *revoke {
		log.Printf("Revoked admin from %s (user %d)", user.Email, user.ID)
	} else {
		log.Printf("Granted admin to %s (user %d)", user.Email, user.ID)
	}
}
