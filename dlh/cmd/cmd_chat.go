package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"dlh/dlh/services/exchange"
	"dlh/dlh/utils/color"
	"dlh/dlh/utils/jsonutils"

	"github.com/spf13/cobra"
)

var (
	sessionsCmd = &cobra.Command{
		Use:   "sessions",
		Short: "List your chat sessions, most recent first",
		RunE:  runSessions,
	}

	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat with the tutor",
		RunE:  runChat,
	}

	courseFlag  string
	sessionFlag string
	jsonFlag    bool
)

func init() {
	chatCmd.Flags().StringVar(&courseFlag, "course", "", "course id for course-specific tutoring, e.g. web-development")
	chatCmd.Flags().StringVar(&sessionFlag, "session", "", "resume an existing session by id")
	sessionsCmd.Flags().BoolVar(&jsonFlag, "json", false, "print sessions as JSON")
}

func runSessions(cmd *cobra.Command, args []string) error {
	c, err := authedClient()
	if err != nil {
		return err
	}
	sessions, err := (&remote{client: c}).Sessions(cmd.Context())
	if err != nil {
		return err
	}
	renderSessions(cmd.OutOrStdout(), sessions, jsonFlag)
	return nil
}

func renderSessions(w io.Writer, sessions []sessionInfo, asJSON bool) {
	if asJSON {
		if sessions == nil {
			sessions = []sessionInfo{}
		}
		fmt.Fprintln(w, jsonutils.ToJSON(sessions))
		return
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, color.Info("No sessions yet. Start one with `dlh chat`."))
		return
	}
	for _, s := range sessions {
		fmt.Fprintf(w, "%s  %s  %s\n", s.ID, s.UpdatedAt.Local().Format("2006-01-02 15:04"), color.Title(s.Title))
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	c, err := authedClient()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &remote{client: c}
	opts := []exchange.Option{exchange.WithCourse(courseFlag)}
	if sessionFlag != "" {
		history, err := r.Messages(ctx, sessionFlag)
		if err != nil {
			return fmt.Errorf("resume session: %w", err)
		}
		opts = append(opts, exchange.WithSessionID(sessionFlag), exchange.WithHistory(history))
		fmt.Println(color.Info(fmt.Sprintf("Resumed session with %d messages.", len(history))))
	}
	session := exchange.NewSession(r, r, opts...)

	fmt.Println(color.Title("DLH AI Tutor"))
	fmt.Println(color.Info("Type your question, or 'exit' to quit."))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(color.Prompt("you> "))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		if err := chatTurn(ctx, session, line); errors.Is(err, context.Canceled) {
			return nil
		}
	}
}

// chatTurn runs one exchange, printing only the newly arrived part of the accumulated text.
func chatTurn(ctx context.Context, session *exchange.Session, line string) error {
	printed := 0
	_, err := session.Send(ctx, line, func(acc string) {
		if printed == 0 {
			fmt.Print(color.Prompt("tutor> "))
		}
		fmt.Print(color.Assistant(acc[printed:]))
		printed = len(acc)
	})
	if printed > 0 {
		fmt.Println()
	}

	switch {
	case err == nil:
		if printed == 0 {
			fmt.Println(color.Warning("(no response)"))
		}
	case errors.Is(err, exchange.ErrInterrupted):
		fmt.Println(color.Warning("response interrupted"))
	case errors.Is(err, exchange.ErrEmptyMessage):
	default:
		fmt.Println(color.Error(notice(err)))
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
