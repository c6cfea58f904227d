// Command token mints a signed caller token for scripted or admin access to
// the accounts service.
//
//	token -login root@example.com -roles user,admin -secret S -ttl 60
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/shopaccounts/internal/server/auth"
	"github.com/dmitrijs2005/shopaccounts/internal/server/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)

	login := fs.String("login", "", "caller login")
	roles := fs.String("roles", "", "comma separated role names")
	secret := fs.String("secret", os.Getenv(config.EnvPrefix+"SECRET_KEY"), "JWT HMAC secret key")
	ttl := fs.Int("ttl", 60, "token validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *login == "" {
		return fmt.Errorf("-login is required")
	}
	if *secret == "" {
		return fmt.Errorf("-secret is required")
	}

	token, err := auth.GenerateToken(*login, splitRoles(*roles), []byte(*secret), time.Duration(*ttl)*time.Minute)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, token)
	return err
}

func splitRoles(s string) []string {
	var roles []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}
