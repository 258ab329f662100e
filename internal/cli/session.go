package cli

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/law-makers/listcrawl/internal/auth"
	"github.com/law-makers/listcrawl/internal/fetch"
	"github.com/law-makers/listcrawl/internal/ui"
	"github.com/spf13/cobra"
)

var (
	captureWait    string
	captureTimeout time.Duration
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Capture and manage saved browser sessions",
	Long: `A saved session holds the cookies of a browser in which a person has
already passed the site's bot checks. Pass its name to crawl with --session to
start the crawl with those cookies.

Sessions are kept in the OS keyring, or in ~/.listcrawl/sessions when no
keyring is available.`,
	Example: `  # Open a visible browser, solve the captcha, press Enter
  listcrawl session capture avito https://www.avito.ru

  # List and delete saved sessions
  listcrawl session list
  listcrawl session delete avito`,
}

var sessionCaptureCmd = &cobra.Command{
	Use:   "capture <name> <url>",
	Short: "Open a visible browser and save its cookies",
	Args:  cobra.ExactArgs(2),
	RunE:  runSessionCapture,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionList,
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionDelete,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionCaptureCmd, sessionListCmd, sessionDeleteCmd)

	sessionCaptureCmd.Flags().StringVar(&captureWait, "wait-selector", "", "Finish once this selector is visible instead of waiting for Enter")
	sessionCaptureCmd.Flags().DurationVar(&captureTimeout, "capture-timeout", 5*time.Minute, "Give up after this long")
}

func runSessionCapture(cmd *cobra.Command, args []string) error {
	a := GetApp(cmd)
	defer a.Close()

	if runtime.GOOS == "linux" && os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return fmt.Errorf("session capture needs a display to show the browser")
	}

	sessions, err := auth.NewStore("")
	if err != nil {
		return err
	}

	session, err := auth.Capture(cmd.Context(), auth.CaptureOptions{
		Name:         args[0],
		URL:          args[1],
		WaitSelector: captureWait,
		ExecPath:     fetch.FindChrome(a.Config.ChromePath),
		UserAgent:    a.Config.UserAgent,
		Timeout:      captureTimeout,
		In:           cmd.InOrStdin(),
		Out:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	if err := sessions.Save(session); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s saved %d cookies as %q (%s)\n",
		ui.Success("✓"), len(session.Cookies), session.Name, sessions.Backend())
	return nil
}

func runSessionList(cmd *cobra.Command, args []string) error {
	a := GetApp(cmd)
	defer a.Close()

	sessions, err := auth.NewStore("")
	if err != nil {
		return err
	}
	names, err := sessions.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	w := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(w, "No saved sessions. Create one with: listcrawl session capture <name> <url>")
		return nil
	}

	for _, name := range names {
		s, err := sessions.Load(name)
		if err != nil {
			fmt.Fprintf(w, "%s  %s\n", ui.Bold(name), ui.Error(err.Error()))
			continue
		}
		expires := "session cookies only"
		if !s.ExpiresAt.IsZero() {
			expires = "expires " + s.ExpiresAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s  %s  %d cookies, %s\n", ui.Bold(name), s.URL, len(s.Cookies), ui.Info(expires))
	}
	return nil
}

func runSessionDelete(cmd *cobra.Command, args []string) error {
	a := GetApp(cmd)
	defer a.Close()

	sessions, err := auth.NewStore("")
	if err != nil {
		return err
	}
	if err := sessions.Delete(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s deleted session %q\n", ui.Success("✓"), args[0])
	return nil
}
