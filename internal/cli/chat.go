package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"portfolio-site/internal/app"
	"portfolio-site/internal/client"
	"portfolio-site/internal/domain"
	"portfolio-site/internal/widget"
)

var chatServer string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the portfolio assistant in the terminal",
	Long: `Open an interactive chat session with the assistant.

By default the assistant runs in-process with the local configuration. Use
--server to talk to a running site API instead.

Inside the session:
  <number>   send the numbered suggestion
  /clear     clear the conversation
  /quit      leave

Examples:
  portfolio chat
  portfolio chat --server https://gloire.dev`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatServer, "server", "", "site API base URL (default: run the assistant locally)")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		session *widget.Session
		err     error
	)
	if chatServer != "" {
		session, err = remoteSession(ctx, chatServer)
	} else {
		var a *app.App
		a, err = app.New(ctx, cfg)
		if err == nil {
			session, err = a.NewWidgetSession(a.Relay)
		}
	}
	if err != nil {
		return err
	}
	return chatLoop(ctx, session, cmd.InOrStdin(), cmd.OutOrStdout())
}

func remoteSession(ctx context.Context, baseURL string) (*widget.Session, error) {
	c, err := client.New(baseURL)
	if err != nil {
		return nil, err
	}
	owner, err := c.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	cats, err := c.Suggestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch suggestions: %w", err)
	}
	suggestions := make([]domain.SuggestionCategory, 0, len(cats))
	for _, cat := range cats {
		suggestions = append(suggestions, domain.SuggestionCategory{ID: cat.ID, Title: cat.Title, Items: cat.Items})
	}
	return widget.NewSession(c, widget.Options{
		Welcome:     widget.Welcome(owner.Name),
		TypingDelay: cfg.TypingDelay,
		Suggestions: suggestions,
	})
}

// chatLoop drives a widget session from line-oriented input until EOF or /quit.
func chatLoop(ctx context.Context, s *widget.Session, in io.Reader, out io.Writer) error {
	t := defaultTheme
	s.Open()
	defer s.Close()

	for _, msg := range s.Transcript() {
		printMessage(out, msg)
	}
	printSuggestions(out, s.Suggestions())
	fmt.Fprintln(out, t.hintStyle().Render("Type a message, a suggestion number, /clear, or /quit."))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, t.userStyle().Render("you › "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			s.Clear()
			fmt.Fprintln(out, t.hintStyle().Render("Conversation cleared."))
			printSuggestions(out, s.Suggestions())
			continue
		}

		text := line
		if n, err := strconv.Atoi(line); err == nil {
			items := flattenSuggestions(s.Suggestions())
			if n >= 1 && n <= len(items) {
				text = items[n-1].Text
				fmt.Fprintln(out, t.hintStyle().Render("› "+text))
			}
		}

		reply, err := s.Submit(ctx, text)
		switch {
		case errors.Is(err, widget.ErrReplyDiscarded):
			continue
		case err != nil:
			fmt.Fprintln(out, t.errorStyle().Render("Error: "+err.Error()))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		printMessage(out, reply)
	}
	return scanner.Err()
}

func printMessage(out io.Writer, msg domain.ChatMessage) {
	t := defaultTheme
	label := t.assistantStyle().Render("assistant")
	if msg.Role == domain.RoleUser {
		label = t.userStyle().Render("you")
	}
	fmt.Fprintf(out, "%s %s\n  %s\n", label, t.hintStyle().Render(msg.Timestamp.Format("15:04")), renderTerminal(msg.Content))
}

func printSuggestions(out io.Writer, cats []domain.SuggestionCategory) {
	if len(cats) == 0 {
		return
	}
	t := defaultTheme
	n := 1
	for _, cat := range cats {
		fmt.Fprintf(out, "%s %s\n", t.headingStyle().Render(cat.Title), t.hintStyle().Render("("+widget.Icon(cat.ID)+")"))
		for _, item := range cat.Items {
			fmt.Fprintf(out, "  %d. %s\n", n, item.Text)
			n++
		}
	}
}

func flattenSuggestions(cats []domain.SuggestionCategory) []domain.Suggestion {
	var out []domain.Suggestion
	for _, cat := range cats {
		out = append(out, cat.Items...)
	}
	return out
}
