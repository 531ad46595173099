package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"feedharvest/pkg/config"
	errs "feedharvest/pkg/errors"
	"feedharvest/pkg/session"
	"feedharvest/pkg/ui"

	"github.com/spf13/cobra"
)

// sessionCmd represents the session command
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the cached login session",
	Long: `Manage the cached login session.

The session is stored using the backend selected by session.backend:
  - file       plain JSON file (default)
  - keyring    system keychain
  - encrypted  AES-GCM file, passphrase from FEEDHARVEST_PASSPHRASE

Never share your session file: it grants access to the account.`,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cached session with masked values",
	Args:  cobra.NoArgs,
	RunE:  runSessionShow,
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the cached session",
	Long:  `Remove the cached session. The next crawl will ask for an interactive login.`,
	Args:  cobra.NoArgs,
	RunE:  runSessionClear,
}

var sessionImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import cookies exported from a browser",
	Long: `Import a session from a JSON file into the configured backend.

Both the feedharvest session document and a plain array of cookies as
exported by browser extensions are accepted.`,
	Example: `  feedharvest session import ~/Downloads/cookies.json
  feedharvest session import cookies.json --session-backend keyring`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionImport,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionClearCmd)
	sessionCmd.AddCommand(sessionImportCmd)

	sessionCmd.PersistentFlags().StringVar(&sessionFile, "session-file", "", "session cache file")
	sessionCmd.PersistentFlags().StringVar(&sessionBackend, "session-backend", "", "session backend (file, keyring, encrypted)")
}

func openSessionStore(cmd *cobra.Command) (session.Store, *config.Config, error) {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("session-file") {
		flags["session-file"] = sessionFile
	}
	if cmd.Flags().Changed("session-backend") {
		flags["session-backend"] = sessionBackend
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, err
	}

	store, err := session.NewStore(cfg.Session, cfg.TargetDomain())
	if err != nil {
		return nil, nil, errs.New(errs.ErrorTypeSession, "failed to open session store", err)
	}
	return store, cfg, nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	store, cfg, err := openSessionStore(cmd)
	if err != nil {
		return err
	}
	marker := cfg.Session.AuthMarker

	set, err := store.Load()
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			ui.PrintInfo("No cached session", store.Location())
			return nil
		}
		return errs.New(errs.ErrorTypeSession, "failed to load session", err)
	}

	sanitized := session.Sanitize(set)
	ui.PrintHighlight("Cached Session")
	ui.PrintInfo("Location", store.Location())
	ui.PrintInfo("Domain", sanitized.Domain)
	if !sanitized.SavedAt.IsZero() {
		ui.PrintInfo("Saved", sanitized.SavedAt.Local().Format("2006-01-02 15:04:05"))
	}
	if session.HasAuthMarker(set, marker) {
		ui.PrintSuccess("Authenticated (" + marker + " present)")
	} else {
		ui.PrintWarning("Not authenticated", marker+" missing, the next crawl will ask for a login")
	}

	fmt.Println()
	for _, c := range sanitized.Credentials {
		expires := "session"
		if c.Expires > 0 {
			expires = time.Unix(int64(c.Expires), 0).Format("2006-01-02")
		}
		fmt.Printf("  %-20s %-14s %-16s %s\n", c.Name, c.Value, c.Domain, expires)
	}
	return nil
}

func runSessionClear(cmd *cobra.Command, args []string) error {
	store, _, err := openSessionStore(cmd)
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return errs.New(errs.ErrorTypeSession, "failed to clear session", err)
	}
	ui.PrintSuccess("Session removed: " + store.Location())
	return nil
}

func runSessionImport(cmd *cobra.Command, args []string) error {
	store, cfg, err := openSessionStore(cmd)
	if err != nil {
		return err
	}
	marker := cfg.Session.AuthMarker

	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return errs.New(errs.ErrorTypeSession, "cannot read import file", err)
	}

	domain := cfg.TargetDomain()
	set, err := session.NewFileStore(path, domain).Load()
	if err != nil {
		return errs.New(errs.ErrorTypeSession, "failed to parse import file", err)
	}
	set = session.NewCredentialSet(domain, set.Credentials, time.Now())

	if !session.HasAuthMarker(set, marker) {
		ui.PrintWarning("Imported session has no "+marker+" cookie", "the next crawl may still ask for a login")
	}

	if err := store.Save(set); err != nil {
		return errs.New(errs.ErrorTypeSession, "failed to save session", err)
	}
	ui.PrintSuccess(fmt.Sprintf("Imported %d credentials into %s", len(set.Credentials), store.Location()))
	return nil
}
