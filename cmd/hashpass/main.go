// cmd/hashpass/main.go
//
// hashpass reads the admin password from stdin and prints the bcrypt hash
// to put in ADMIN_PASSWORD_HASH.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/blob-shop/internal/services"
)

func main() {
	fmt.Fprint(os.Stderr, "Admin password: ")

	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && password == "" {
		logrus.WithError(err).Fatal("Failed to read password")
	}
	password = strings.TrimRight(password, "\r\n")
	if password == "" {
		logrus.Fatal("Password must not be empty")
	}

	hash, err := services.HashPassword(password)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to hash password")
	}

	fmt.Println(hash)
}
