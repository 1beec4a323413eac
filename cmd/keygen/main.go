// Command keygen prints a fresh MESSAGE_ENCRYPTION_KEY.
package main

import (
	"fmt"
	"os"

	"collab-workspace-be/internal/pkg/encryption"

	"github.com/fatih/color"
)

func main() {
	key, err := encryption.GenerateKey()
	if err != nil {
		color.Red("Failed to generate key: %v", err)
		os.Exit(1)
	}

	color.Green("Generated message encryption key (base64, 256 bits):")
	fmt.Printf("MESSAGE_ENCRYPTION_KEY=%s\n", key)
	color.Yellow("Store it in .env. Rotating it makes existing messages unreadable.")
}
