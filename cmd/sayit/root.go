package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sayit/auth"
	"sayit/client"
	"sayit/ratelimit"

	"github.com/spf13/cobra"
)

type app struct {
	config  Config
	stdin   io.Reader
	client  *client.Client
	limiter *ratelimit.Limiter
	now     func() time.Time
}

func newRootCmd(config Config, stdin io.Reader) *cobra.Command {
	a := &app{
		config:  config,
		stdin:   stdin,
		client:  client.New(config.APIURL, client.WithHTTPClient(&http.Client{Timeout: config.Timeout})),
		limiter: ratelimit.NewLimiter(ratelimit.NewFileStore(config.StateFile)),
		now:     time.Now,
	}

	root := &cobra.Command{
		Use:           "sayit",
		Short:         "Read and write the SayIt anonymous message board",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		a.feedCmd(),
		a.postCmd(),
		a.deleteCmd(),
		a.loginCmd(),
		a.limitCmd(),
		a.healthCmd(),
		a.adminCmd(),
	)
	return root
}

func (a *app) feedCmd() *cobra.Command {
	var (
		search       string
		serverSearch bool
		cards        bool
	)
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the newest messages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var (
				messages []client.Message
				err      error
			)
			if serverSearch {
				messages, err = a.client.SearchMessages(ctx, search)
			} else {
				messages, err = a.client.ListMessages(ctx)
				messages = client.FilterMessages(messages, search)
			}
			if err != nil {
				return err
			}
			r := renderer{out: cmd.OutOrStdout(), colours: a.config.Colours, now: a.now}
			if cards {
				r.cards(messages)
			} else {
				r.table(messages)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "keep messages whose recipient or content contains this text")
	cmd.Flags().BoolVar(&serverSearch, "server-search", false, "use the server full-text index instead of filtering locally")
	cmd.Flags().BoolVar(&cards, "cards", false, "render messages as coloured cards")
	return cmd
}

func (a *app) postCmd() *cobra.Command {
	var (
		recipient     string
		useSuggestion bool
	)
	cmd := &cobra.Command{
		Use:   "post <message>",
		Short: "Leave an anonymous message to someone",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			decision, err := a.limiter.Check()
			if err != nil {
				return err
			}
			if !decision.Allowed {
				return fmt.Errorf("you have reached the limit of %d messages per hour, try again in %d minute(s)",
					ratelimit.DefaultMaxSubmissions, decision.RemainingMinutes)
			}

			content := strings.Join(args, " ")
			message, err := a.client.PostMessage(cmd.Context(), content, recipient)
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.Rejected() {
				fmt.Fprintf(out, "%s\nReason: %s\nSuggested: %q\n", apiErr.Err, apiErr.Reason, apiErr.CleanVersion)
				if !useSuggestion {
					return fmt.Errorf("message rejected, rerun with --use-suggestion to send the suggested text")
				}
				if apiErr.Field == "recipient" {
					recipient = apiErr.CleanVersion
				} else {
					content = apiErr.CleanVersion
				}
				message, err = a.client.PostMessage(cmd.Context(), content, recipient)
			}
			if err != nil {
				return err
			}

			state, err := a.limiter.Record()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Message posted successfully! (%s)\n", message.ID)
			fmt.Fprintf(out, "%d of %d messages left this hour\n",
				max(ratelimit.DefaultMaxSubmissions-state.Count, 0), ratelimit.DefaultMaxSubmissions)
			return nil
		},
	}
	cmd.Flags().StringVarP(&recipient, "to", "t", "", "who the message is for")
	cmd.Flags().BoolVar(&useSuggestion, "use-suggestion", false, "resend the moderator's suggested text when rejected")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a message (admin token required)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = a.config.AdminToken
			}
			if token == "" {
				return fmt.Errorf("an admin token is required: run 'sayit login' and set SAYIT_ADMIN_TOKEN or --token")
			}
			c := client.New(a.config.APIURL, client.WithToken(token),
				client.WithHTTPClient(&http.Client{Timeout: a.config.Timeout}))
			if err := c.DeleteMessage(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Message deleted successfully")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "admin bearer token")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Exchange the admin password (read from stdin) for a token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readLine(a.stdin)
			if err != nil {
				return err
			}
			token, err := a.client.Login(cmd.Context(), password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func (a *app) limitCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "limit",
		Short: "Show how long until you can post again",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			decision, err := a.limiter.Check()
			if err != nil {
				return err
			}
			if decision.Allowed {
				fmt.Fprintln(out, "You can post now")
				return nil
			}
			if !watch {
				fmt.Fprintf(out, "You can post again in %d minute(s)\n", decision.RemainingMinutes)
				return nil
			}
			last := -1
			for minutes := range a.limiter.Countdown(cmd.Context(), time.Second) {
				if minutes != last {
					fmt.Fprintf(out, "You can post again in %d minute(s)\n", minutes)
					last = minutes
				}
			}
			if cmd.Context().Err() == nil {
				fmt.Fprintln(out, "You can post now")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep counting down until posting is allowed")
	return cmd
}

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the API is reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := a.client.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func (a *app) adminCmd() *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Server administration helpers",
	}
	admin.AddCommand(&cobra.Command{
		Use:   "hash-password",
		Short: "Hash an admin password (read from stdin) for ADMIN_PASSWORD_HASH",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readLine(a.stdin)
			if err != nil {
				return err
			}
			if err := auth.ValidateAdminPassword(password); err != nil {
				return fmt.Errorf("%w (12 to 72 characters with upper, lower, digit and symbol)", err)
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	})
	return admin
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("no input on stdin")
	}
	return line, nil
}
