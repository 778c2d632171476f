// Command f1cli exercises the backend from the command line: register, log
// in, inspect and update the profile. The session token persists under the
// user config directory, so commands compose across invocations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"pitlane/internal/client"
)

func main() {
	server := flag.String("server", "http://localhost:4200/api", "backend base URL")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	store, err := client.DefaultStore()
	if err != nil {
		fatal(err)
	}
	session := client.NewSession(client.NewAPI(*server), store)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch args[0] {
	case "register":
		if len(args) < 4 {
			fatalf("usage: f1cli register <email> <username> <password> [driverId,...] [teamId,...]")
		}
		params := client.RegisterParams{Email: args[1], Username: args[2], Password: args[3]}
		if len(args) > 4 {
			params.FavoriteDriverIDs = splitIDs(args[4])
		}
		if len(args) > 5 {
			params.FavoriteTeamIDs = splitIDs(args[5])
		}
		user, err := session.Register(ctx, params)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("registered %s (id %d)\n", user.Username, user.ID)

	case "login":
		if len(args) != 3 {
			fatalf("usage: f1cli login <username-or-email> <password>")
		}
		user, err := session.Login(ctx, args[1], args[2])
		if err != nil {
			fatal(err)
		}
		fmt.Printf("logged in as %s\n", user.Username)

	case "me":
		if err := session.Bootstrap(ctx); err != nil {
			fatal(err)
		}
		user, ok := session.Current()
		if !ok {
			fmt.Println("not logged in")
			return
		}
		fmt.Printf("%s <%s>\n", user.Username, user.Email)
		if len(user.FavoriteDriverIDs) > 0 {
			fmt.Printf("favorite drivers: %s\n", strings.Join(user.FavoriteDriverIDs, ", "))
		}
		if len(user.FavoriteTeamIDs) > 0 {
			fmt.Printf("favorite teams: %s\n", strings.Join(user.FavoriteTeamIDs, ", "))
		}

	case "favorites":
		if len(args) != 3 {
			fatalf("usage: f1cli favorites <driverId,...> <teamId,...>")
		}
		if err := session.Bootstrap(ctx); err != nil {
			fatal(err)
		}
		patch := client.ProfilePatch{
			FavoriteDriverIDs: splitIDs(args[1]),
			FavoriteTeamIDs:   splitIDs(args[2]),
		}
		user, err := session.UpdateProfile(ctx, patch)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("updated favorites for %s\n", user.Username)

	case "logout":
		session.Logout()
		fmt.Println("logged out")

	default:
		usage()
		os.Exit(2)
	}
}

func splitIDs(s string) []string {
	if s == "" || s == "-" {
		return []string{}
	}
	return strings.Split(s, ",")
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: f1cli [-server URL] <register|login|me|favorites|logout> [args]")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
