// trackctl is a small operator CLI for the parcel tracking service. It keeps
// a local session the same way the web client does: bootstrap the directory,
// restore identity from the stored credential, then run the command.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/spec-kit/parcel-service/internal/directory"
	"github.com/spec-kit/parcel-service/internal/domain"
	"github.com/spec-kit/parcel-service/internal/session"
)

func main() {
	server := flag.String("server", envOr("TRACKCTL_SERVER", "http://127.0.0.1:8080"), "service base URL")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	client := session.NewAPIClient(*server)
	authority := session.NewAuthority(session.AuthorityDependencies{
		Directory:  directory.NewCache(),
		DirClient:  client,
		AuthClient: client,
		Store:      session.NewFileCredentialStore(credentialsPath()),
		Logger:     logger,
	})

	ctx := context.Background()
	if err := authority.Bootstrap(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "warning: directory bootstrap failed; office names may be missing")
	}
	// Silent by design: an expired or malformed stored credential just
	// leaves the session unauthenticated.
	_ = authority.RestoreFromStoredCredential(ctx)

	if err := run(ctx, authority, client, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, authority *session.Authority, client *session.APIClient, args []string) error {
	switch args[0] {
	case "login":
		return runLogin(ctx, authority, args[1:])
	case "logout":
		authority.Logout(ctx)
		fmt.Println("Logged out.")
		return nil
	case "whoami":
		identity, ok := authority.CurrentIdentity()
		if !ok {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Printf("%s (%s)\n", identity.DisplayName, identity.Role)
		return nil
	case "track":
		if len(args) != 2 {
			return fmt.Errorf("usage: trackctl track <tracking-id>")
		}
		return runTrack(ctx, client, args[1])
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runLogin(ctx context.Context, authority *session.Authority, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: trackctl login org|branch|guest [id] [password]")
	}

	var (
		role  domain.Role
		creds session.Credentials
	)
	switch args[0] {
	case "org":
		if len(args) != 2 {
			return fmt.Errorf("usage: trackctl login org <password>")
		}
		role = domain.RoleOrgAdmin
		creds.Password = args[1]
	case "branch":
		if len(args) != 3 {
			return fmt.Errorf("usage: trackctl login branch <branch-id> <password>")
		}
		role = domain.RoleBranchAdmin
		creds.ID = args[1]
		creds.Password = args[2]
	case "guest":
		role = domain.RolePublicGuest
	default:
		return fmt.Errorf("unknown login kind %q", args[0])
	}

	result, err := authority.Login(ctx, role, creds)
	if err != nil {
		return err
	}
	fmt.Println(result.Message)
	if !result.OK {
		os.Exit(1)
	}
	return nil
}

func runTrack(ctx context.Context, client *session.APIClient, trackingID string) error {
	parcel, err := client.Track(ctx, trackingID)
	if err != nil {
		return err
	}
	if parcel == nil {
		fmt.Println("Parcel not found.")
		return nil
	}

	fmt.Printf("%s  %s -> %s  [%s]\n", parcel.TrackingID, parcel.SenderName, parcel.ReceiverName, parcel.CurrentStatus)
	for _, event := range parcel.History {
		fmt.Printf("  %-12s %-20s %s  %s\n", event.Status, event.Location, event.Timestamp, event.Note)
	}
	return nil
}

func credentialsPath() string {
	if path := os.Getenv("TRACKCTL_CREDENTIALS"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".trackctl-credentials.json"
	}
	return filepath.Join(home, ".trackctl-credentials.json")
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: trackctl [-server URL] <command>

commands:
  login org <password>
  login branch <branch-id> <password>
  login guest
  logout
  whoami
  track <tracking-id>`)
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
