// Command adduser creates a user account directly against the server's data
// directory, prompting for the password with echo disabled. Meant for
// operators bootstrapping an instance without going through the HTTP API.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/avolkovs/tabshare/internal/common"
	"github.com/avolkovs/tabshare/internal/filex"
	"github.com/avolkovs/tabshare/internal/logging"
	"github.com/avolkovs/tabshare/internal/server/config"
	usersrepo "github.com/avolkovs/tabshare/internal/server/repositories/users"
	"github.com/avolkovs/tabshare/internal/server/services"
	"golang.org/x/term"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	dataDir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		log.Fatalf("data dir init error: %v", err)
	}

	repo := usersrepo.NewFileRepository(filepath.Join(dataDir, "users.json"), logger)
	userService := services.NewUserService(repo, cfg)

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("reading username: %v", err)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		log.Fatal("username must not be empty")
	}

	fmt.Print("Email (optional): ")
	email, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("reading email: %v", err)
	}
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		log.Fatalf("reading password: %v", err)
	}
	if len(password) == 0 {
		log.Fatal("password must not be empty")
	}

	fmt.Print("Repeat password: ")
	confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		log.Fatalf("reading password: %v", err)
	}
	if string(password) != string(confirm) {
		log.Fatal("passwords do not match")
	}

	user, err := userService.Register(ctx, username, string(password), email)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			log.Fatalf("username %q already exists", username)
		}
		log.Fatalf("creating user: %v", err)
	}

	fmt.Printf("User %s created with id %s\n", user.Username, user.ID)
}
